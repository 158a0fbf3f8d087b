package tevo_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/fivetwenty-io/tevo/pkg/tevo"
	"github.com/stretchr/testify/require"
)

type issuedCall struct {
	Verb   tevo.Method
	Method tevo.Method
	Path   string
	Params tevo.Params
}

// fakeTransport records every built and issued request and answers from
// respond.
type fakeTransport struct {
	mu      sync.Mutex
	builds  int
	calls   []issuedCall
	respond func(call issuedCall) (*tevo.RawResponse, error)
}

func newFakeTransport(respond func(call issuedCall) (*tevo.RawResponse, error)) *fakeTransport {
	return &fakeTransport{respond: respond}
}

func (f *fakeTransport) Build(method tevo.Method, path string, params tevo.Params) tevo.RequestHandle {
	f.mu.Lock()
	f.builds++
	f.mu.Unlock()

	return &fakeHandle{transport: f, method: method, path: path, params: params}
}

func (f *fakeTransport) Builds() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.builds
}

func (f *fakeTransport) Calls() []issuedCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]issuedCall(nil), f.calls...)
}

func (f *fakeTransport) issue(verb tevo.Method, h *fakeHandle) (*tevo.RawResponse, error) {
	call := issuedCall{Verb: verb, Method: h.method, Path: h.path, Params: h.params}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if f.respond == nil {
		return jsonResponse(http.StatusOK, `{}`), nil
	}

	return f.respond(call)
}

type fakeHandle struct {
	transport *fakeTransport
	method    tevo.Method
	path      string
	params    tevo.Params
}

func (h *fakeHandle) Get(context.Context) (*tevo.RawResponse, error) {
	return h.transport.issue(tevo.MethodGet, h)
}

func (h *fakeHandle) Post(context.Context) (*tevo.RawResponse, error) {
	return h.transport.issue(tevo.MethodPost, h)
}

func (h *fakeHandle) Put(context.Context) (*tevo.RawResponse, error) {
	return h.transport.issue(tevo.MethodPut, h)
}

func (h *fakeHandle) Delete(context.Context) (*tevo.RawResponse, error) {
	return h.transport.issue(tevo.MethodDelete, h)
}

func jsonResponse(status int, body string) *tevo.RawResponse {
	return &tevo.RawResponse{
		StatusCode: status,
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(body),
	}
}

// routes answers by path and fails the test on anything unexpected.
func routes(t *testing.T, table map[string]*tevo.RawResponse) func(issuedCall) (*tevo.RawResponse, error) {
	t.Helper()

	return func(call issuedCall) (*tevo.RawResponse, error) {
		resp, ok := table[call.Path]
		if !ok {
			t.Errorf("unexpected request to %s", call.Path)

			return jsonResponse(http.StatusNotFound, `{"error":"no route"}`), nil
		}

		return resp, nil
	}
}

func newTestConnection(t *testing.T, transport tevo.Transport, mutate ...func(*tevo.Config)) *tevo.Connection {
	t.Helper()

	cfg := &tevo.Config{
		Token:  "test-token",
		Secret: "test-secret",
		APIURL: "https://api.test.local",
	}

	for _, fn := range mutate {
		fn(cfg)
	}

	conn, err := tevo.NewConnection(cfg, transport)
	require.NoError(t, err)

	return conn
}
