package tevo_test

import (
	"encoding/json"
	"testing"

	"github.com/fivetwenty-io/tevo/pkg/tevo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnection_Validation(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport(nil)

	tests := []struct {
		name      string
		cfg       *tevo.Config
		transport tevo.Transport
		expected  error
	}{
		{"nil config", nil, transport, tevo.ErrConfigRequired},
		{"missing token", &tevo.Config{Secret: "s"}, transport, tevo.ErrTokenRequired},
		{"missing secret", &tevo.Config{Token: "t"}, transport, tevo.ErrSecretRequired},
		{"missing transport", &tevo.Config{Token: "t", Secret: "s"}, nil, tevo.ErrTransportRequired},
		{
			"bad cache",
			&tevo.Config{Token: "t", Secret: "s", Cache: &tevo.CacheConfig{Type: tevo.CacheTypeRedis}},
			transport,
			tevo.ErrRedisConfigRequired,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conn, err := tevo.NewConnection(tt.cfg, tt.transport)
			require.ErrorIs(t, err, tt.expected)
			assert.Nil(t, conn)
		})
	}
}

func TestConnection_Accessors(t *testing.T) {
	t.Parallel()

	conn := newTestConnection(t, newFakeTransport(nil))

	assert.Equal(t, "https://api.test.local/v9", conn.BaseURL())
	assert.Equal(t, 9, conn.APIVersion())
	assert.Equal(t, "test-token", conn.Token())

	self, err := conn.Connection()
	require.NoError(t, err)
	assert.Same(t, conn, self)

	var missing *tevo.Connection

	_, err = missing.Connection()
	require.ErrorIs(t, err, tevo.ErrNoConnection)
}

func TestConnection_MarshalJSON(t *testing.T) {
	t.Parallel()

	conn := newTestConnection(t, newFakeTransport(nil))

	data, err := json.Marshal(conn)
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"https://api.test.local/v9","api_version":9}`, string(data))
	assert.NotContains(t, string(data), "test-secret")
	assert.NotContains(t, string(data), "test-token")
}

func TestConfig_BaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      tevo.Config
		expected string
	}{
		{"production default", tevo.Config{}, "https://api.ticketevolution.com/v9"},
		{"sandbox", tevo.Config{Environment: "sandbox"}, "https://api.sandbox.ticketevolution.com/v9"},
		{"explicit url", tevo.Config{APIURL: "http://127.0.0.1:8080/"}, "http://127.0.0.1:8080/v9"},
		{"url without scheme", tevo.Config{APIURL: "api.example.com"}, "https://api.example.com/v9"},
		{"url already versioned", tevo.Config{APIURL: "https://api.example.com/v9"}, "https://api.example.com/v9"},
		{"other version", tevo.Config{APIVersion: 10}, "https://api.ticketevolution.com/v10"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.cfg.BaseURL())
		})
	}
}
