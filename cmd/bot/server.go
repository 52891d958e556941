package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Proton-105/lovemenu-bot/internal/health"
	"github.com/Proton-105/lovemenu-bot/internal/middleware"
	"github.com/Proton-105/lovemenu-bot/pkg/logger"
)

// Prober is implemented by lifecycle.Probes.
type Prober interface {
	Liveness(ctx context.Context) error
	Report(ctx context.Context) (health.Report, error)
}

func newOpsRouter(log *slog.Logger, probes Prober) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(logger.Middleware)
	r.Use(middleware.HTTPLogging(log))

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := probes.Liveness(req.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "up"})
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		report, err := probes.Report(req.Context())
		if err != nil {
			log.WarnContext(req.Context(), "not ready", slog.Any("error", err))
			writeJSON(w, http.StatusServiceUnavailable, report)
			return
		}
		writeJSON(w, http.StatusOK, report)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
