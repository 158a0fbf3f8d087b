package tevoclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/tevo/internal/auth"
	"github.com/fivetwenty-io/tevo/pkg/tevo"
	"github.com/fivetwenty-io/tevo/pkg/tevoclient"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	signer, err := auth.NewSigner("token", "secret")
	require.NoError(t, err)

	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			expected := signer.Sign(request.Method, request.Host, request.URL.EscapedPath(), request.URL.RawQuery)
			if request.Header.Get(auth.SignatureHeader) != expected {
				writer.WriteHeader(http.StatusUnauthorized)
				_, _ = writer.Write([]byte(`{"error":"bad signature"}`))

				return
			}

			next.ServeHTTP(writer, request)
		})
	})

	router.HandleFunc("/v9/venues/1", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusMovedPermanently)
		_, _ = writer.Write([]byte(`{"url":"http://` + request.Host + `/v9/venues/2"}`))
	})
	router.HandleFunc("/v9/venues/2", func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte(`{"id":2,"name":"Fenway Park","popularity_score":0.9}`))
	})
	router.HandleFunc("/v9/venues", func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte(`{"current_page":1,"per_page":2,"total_entries":2,` +
			`"venues":[{"id":2,"name":"Fenway Park"},{"id":3,"name":"Wrigley Field"}]}`))
	})
	router.HandleFunc("/v9/venues/9", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
		_, _ = writer.Write([]byte(`{"error":"Venue not found"}`))
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := tevoclient.New(nil)
	require.ErrorIs(t, err, tevo.ErrConfigRequired)

	_, err = tevoclient.New(&tevo.Config{Secret: "secret"})
	require.ErrorIs(t, err, auth.ErrEmptyToken)

	_, err = tevoclient.New(&tevo.Config{Token: "token"})
	require.ErrorIs(t, err, auth.ErrEmptySecret)
}

func TestNewWithCredentials(t *testing.T) {
	t.Parallel()

	conn, err := tevoclient.NewWithCredentials("token", "secret")
	require.NoError(t, err)
	assert.Equal(t, "https://api.ticketevolution.com/v9", conn.BaseURL())
	assert.Equal(t, "token", conn.Token())

	sandbox, err := tevoclient.NewSandbox("token", "secret")
	require.NoError(t, err)
	assert.Equal(t, "https://api.sandbox.ticketevolution.com/v9", sandbox.BaseURL())
}

func TestNew_EndToEnd(t *testing.T) {
	t.Parallel()

	server := newAPIServer(t)
	registry := prometheus.NewRegistry()

	conn, err := tevoclient.New(&tevo.Config{
		Token:        "token",
		Secret:       "secret",
		APIURL:       server.URL,
		RetryMax:     1,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
		Metrics:      registry,
	})
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("follows redirects to the final record", func(t *testing.T) {
		venue, err := conn.Venues().Show(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), venue.ID)
		assert.Equal(t, "Fenway Park", venue.Name)
		assert.Same(t, conn, venue.Connection())
	})

	t.Run("lists records", func(t *testing.T) {
		list, err := conn.Venues().List(ctx, tevo.NewQueryParams().WithPerPage(2))
		require.NoError(t, err)
		require.Len(t, list.Entries, 2)
		assert.Equal(t, "Wrigley Field", list.Entries[1].Name)
		assert.False(t, list.HasNextPage())
	})

	t.Run("surfaces application errors", func(t *testing.T) {
		_, err := conn.Venues().Show(ctx, 9)
		require.Error(t, err)
		assert.True(t, tevo.IsNotFound(err))

		var apiErr *tevo.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Venue not found", apiErr.Detail)
	})

	t.Run("records metrics", func(t *testing.T) {
		count, err := testutil.GatherAndCount(registry, "tevo_http_requests_total")
		require.NoError(t, err)
		assert.Positive(t, count)
	})
}

func TestNew_CachesThroughRealTransport(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = writer.Write([]byte(`{"id":5,"name":"Red Sox"}`))
	}))
	defer server.Close()

	conn, err := tevoclient.New(&tevo.Config{
		Token:  "token",
		Secret: "secret",
		APIURL: server.URL,
		Cache:  &tevo.CacheConfig{Type: tevo.CacheTypeMemory},
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		performer, err := conn.Performers().Show(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, "Red Sox", performer.Name)
	}

	assert.Equal(t, int32(1), hits.Load())
}

func TestNew_RejectsDuplicateMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	config := &tevo.Config{Token: "token", Secret: "secret", Metrics: registry}

	_, err := tevoclient.New(config)
	require.NoError(t, err)

	_, err = tevoclient.New(config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registering metrics")
}
