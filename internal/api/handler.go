package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"reddit-status-alerts/internal/poller"
	"reddit-status-alerts/internal/report"
)

// Handler holds the HTTP handler dependencies.
type Handler struct {
	aggregator *report.Aggregator
	poller     *poller.Poller
	phrases    []string
	logger     zerolog.Logger
	mux        *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(aggregator *report.Aggregator, statusPoller *poller.Poller, phrases []string, logger zerolog.Logger) http.Handler {
	h := &Handler{
		aggregator: aggregator,
		poller:     statusPoller,
		phrases:    phrases,
		logger:     logger.With().Str("component", "api").Logger(),
		mux:        http.NewServeMux(),
	}

	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.HandleFunc("GET /v1/report", h.reportSeries)
	h.mux.HandleFunc("GET /v1/status", h.currentStatus)
	h.mux.HandleFunc("GET /v1/status/history", h.statusHistory)
	h.mux.HandleFunc("GET /", h.root)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return h.loggingMiddleware(h.mux)
}

// GET / — plain liveness reply for hosting probes.
func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 until the poller has completed at least one cycle.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.poller.Latest(); !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "waiting for first poll"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// GET /v1/report — trailing-24h report series.
func (h *Handler) reportSeries(w http.ResponseWriter, r *http.Request) {
	series, source := h.aggregator.FetchSeries(r.Context(), h.phrases)
	writeJSON(w, http.StatusOK, map[string]any{
		"source":  source,
		"no_data": series.AllZero(),
		"series":  series,
	})
}

// GET /v1/status — latest snapshot plus the coarse operational flag.
func (h *Handler) currentStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.poller.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no status observed yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"operational": h.poller.Operational(snap.Description),
		"snapshot":    snap,
	})
}

// GET /v1/status/history — read-only copy of the bounded snapshot ring.
func (h *Handler) statusHistory(w http.ResponseWriter, r *http.Request) {
	history := h.poller.History()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(history),
		"snapshots": history,
	})
}

func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request served")
	})
}
