package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GopherJ/xactor/core/app"
	"github.com/GopherJ/xactor/core/service"
	"github.com/GopherJ/xactor/internal/counter"
)

type server struct {
	app *app.App
	reg *prometheus.Registry
	log *slog.Logger
}

type (
	counterResponse struct {
		Value int `json:"value"`
	}

	localCounterResponse struct {
		Key     string `json:"key"`
		Context string `json:"context"`
		Value   int    `json:"value"`
	}
)

func newServer(a *app.App, reg *prometheus.Registry, log *slog.Logger) *server {
	return &server{app: a, reg: reg, log: log}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /counter/increment", s.handleIncrement)
	mux.HandleFunc("GET /counter", s.handleGet)
	mux.HandleFunc("POST /local/{key}/increment", s.handleLocalIncrement)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	return mux
}

func decodeIncrement(r *http.Request) (counter.Increment, error) {
	var inc counter.Increment
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&inc); err != nil {
			return inc, fmt.Errorf("invalid JSON: %w", err)
		}
	}
	return inc, nil
}

func (s *server) handleIncrement(w http.ResponseWriter, r *http.Request) {
	inc, err := decodeIncrement(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	addr, err := app.Resolve[counter.Counter](r.Context(), s.app)
	if err != nil {
		s.fail(w, "resolve counter", err)
		return
	}
	v, err := counter.Add(r.Context(), addr, inc.Amount)
	if err != nil {
		s.fail(w, "increment", err)
		return
	}
	writeJSON(w, counterResponse{Value: v})
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	addr, err := app.Resolve[counter.Counter](r.Context(), s.app)
	if err != nil {
		s.fail(w, "resolve counter", err)
		return
	}
	v, err := counter.Get(r.Context(), addr)
	if err != nil {
		s.fail(w, "get", err)
		return
	}
	writeJSON(w, counterResponse{Value: v})
}

func (s *server) handleLocalIncrement(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	inc, err := decodeIncrement(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := localCounterResponse{Key: key, Context: s.app.Local().ContextFor(key)}
	err = s.app.Local().Run(r.Context(), key, func(ctx context.Context) error {
		addr, err := service.FromLocalRegistry[counter.Counter](ctx)
		if err != nil {
			return err
		}
		resp.Value, err = counter.Add(ctx, addr, inc.Amount)
		return err
	})
	if err != nil {
		s.fail(w, "local increment", err)
		return
	}
	writeJSON(w, resp)
}

func (s *server) fail(w http.ResponseWriter, op string, err error) {
	s.log.Error("request failed", slog.String("op", op), slog.Any("error", err))
	http.Error(w, op+": "+err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
