package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	promadapter "github.com/GopherJ/xactor/adapters/prometheus"
	"github.com/GopherJ/xactor/core/app"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := promadapter.NewAllMetrics(reg)

	a, err := app.Run(app.Config{
		Context: t.Context(),
		Log:     slog.New(slog.DiscardHandler),
		Local:   app.LocalConfig{Contexts: 2},
		Actor:   app.ActorOptions{Metrics: metrics.Actor},
		Metrics: metrics.Service,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(newServer(a, reg, slog.New(slog.DiscardHandler)).routes())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string, out any) {
	t.Helper()
	res, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.NewDecoder(res.Body).Decode(out))
}

func TestServer_counter(t *testing.T) {
	srv := newTestServer(t)

	for want := 1; want <= 3; want++ {
		var resp counterResponse
		post(t, srv.URL+"/counter/increment", "", &resp)
		require.Equal(t, want, resp.Value)
	}

	var resp counterResponse
	post(t, srv.URL+"/counter/increment", `{"amount": 10}`, &resp)
	require.Equal(t, 13, resp.Value)

	res, err := http.Get(srv.URL + "/counter")
	require.NoError(t, err)
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	require.Equal(t, 13, resp.Value)
}

func TestServer_local_counter(t *testing.T) {
	srv := newTestServer(t)

	var first, second localCounterResponse
	post(t, srv.URL+"/local/tenant-1/increment", "", &first)
	post(t, srv.URL+"/local/tenant-1/increment", "", &second)

	require.Equal(t, "tenant-1", first.Key)
	require.Equal(t, first.Context, second.Context)
	require.Equal(t, 1, first.Value)
	require.Equal(t, 2, second.Value)
}

func TestServer_bad_request(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Post(srv.URL+"/counter/increment", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestServer_metrics(t *testing.T) {
	srv := newTestServer(t)

	var resp counterResponse
	post(t, srv.URL+"/counter/increment", "", &resp)

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "xactor_service_resolved_total")
	require.Contains(t, string(body), "xactor_actor_messages_total")
}
