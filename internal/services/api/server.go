// Package api serves the dashboard state over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"

	"github.com/climaneer/climaneer/internal/model"
	"github.com/climaneer/climaneer/internal/services/alerts"
	"github.com/climaneer/climaneer/internal/services/control"
	"github.com/climaneer/climaneer/internal/services/history"
	"github.com/climaneer/climaneer/internal/services/poller"
	"github.com/climaneer/climaneer/internal/services/simulator"
	"github.com/climaneer/climaneer/internal/services/trends"
)

type breakerStater interface {
	BreakerState() gobreaker.State
}

// Deps carries everything the HTTP surface reads from or writes to.
// Generator may be nil to disable the simulate endpoint.
type Deps struct {
	Poller    *poller.Poller
	Alerts    *alerts.Engine
	History   *history.Log
	Trends    *trends.Store
	Coord     *control.Coordinator
	Generator *simulator.Generator
	Breaker   breakerStater
}

// NewHTTPMux builds the dashboard API.
func NewHTTPMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, _ *http.Request) {
		status := "ok"
		code := http.StatusOK
		if !d.Poller.Online() {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		breaker := ""
		if d.Breaker != nil {
			breaker = d.Breaker.BreakerState().String()
			if d.Breaker.BreakerState() == gobreaker.StateOpen {
				status = "down"
				code = http.StatusServiceUnavailable
			}
		}
		writeJSON(w, code, map[string]any{
			"status":  status,
			"online":  d.Poller.Online(),
			"breaker": breaker,
		})
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /dashboard/data", func(w http.ResponseWriter, _ *http.Request) {
		var sensors any
		if r, ok := d.Poller.Reading(); ok {
			sensors = r
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"sensors":          sensors,
			"status":           d.Coord.Status(),
			"settings":         d.Coord.Settings(),
			"aiRecommendation": d.Poller.Recommendation(),
			"statistics":       d.History.Statistics(d.Coord.PumpRuntimeMinutes()),
			"online":           d.Poller.Online(),
			"unreadAlerts":     d.Alerts.UnreadCount(),
		})
	})

	mux.HandleFunc("GET /trends", func(w http.ResponseWriter, r *http.Request) {
		hours := 24
		if s := r.URL.Query().Get("hours"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				hours = n
			}
		}
		writeJSON(w, http.StatusOK, d.Trends.TrendData(hours, time.Now()))
	})

	mux.HandleFunc("GET /history", func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if s := r.URL.Query().Get("limit"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				limit = n
			}
		}
		writeJSON(w, http.StatusOK, d.History.Recent(limit))
	})

	mux.HandleFunc("GET /alerts", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, d.Alerts.List())
	})

	mux.HandleFunc("POST /alerts/{id}/read", func(w http.ResponseWriter, r *http.Request) {
		d.Alerts.MarkRead(r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("DELETE /alerts/{id}", func(w http.ResponseWriter, r *http.Request) {
		d.Alerts.Dismiss(r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("DELETE /alerts", func(w http.ResponseWriter, _ *http.Request) {
		d.Alerts.ClearAll()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /export", func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		switch r.URL.Query().Get("format") {
		case "csv":
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition",
				fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("climaneer-export-%d.csv", now.UnixMilli())))
			if err := d.History.WriteCSV(w); err != nil {
				writeError(w, http.StatusInternalServerError, err)
			}
		case "", "json":
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Header().Set("Content-Disposition",
				fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("climaneer-export-%d.json", now.UnixMilli())))
			if err := d.History.WriteJSON(w, now); err != nil {
				writeError(w, http.StatusInternalServerError, err)
			}
		default:
			writeError(w, http.StatusBadRequest, fmt.Errorf("format must be csv or json"))
		}
	})

	mux.HandleFunc("GET /settings", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, d.Coord.Settings())
	})

	mux.HandleFunc("PUT /settings", func(w http.ResponseWriter, r *http.Request) {
		// Start from the current settings so a partial document keeps the rest.
		s := d.Coord.Settings()
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode settings: %w", err))
			return
		}
		synced := true
		if err := d.Coord.SaveSettings(r.Context(), s); err != nil {
			// Local settings are applied regardless; the remote sync is best
			// effort and reported to the caller.
			synced = false
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"settings": d.Coord.Settings(),
			"synced":   synced,
		})
	})

	mux.HandleFunc("POST /pump", func(w http.ResponseWriter, r *http.Request) {
		on, err := strconv.ParseBool(r.URL.Query().Get("on"))
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("on must be true or false"))
			return
		}
		if err := d.Coord.TogglePump(r.Context(), on); err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, d.Coord.Status())
	})

	mux.HandleFunc("POST /mode", func(w http.ResponseWriter, r *http.Request) {
		var err error
		switch mode := r.URL.Query().Get("mode"); model.ControlMode(mode) {
		case model.ModeAutomatic:
			err = d.Coord.SwitchToAutoMode(r.Context())
		case model.ModeManual:
			err = d.Coord.SwitchToManualMode(r.Context())
		case model.ModeScheduled:
			writeError(w, http.StatusBadRequest, fmt.Errorf("scheduled mode is enabled through PUT /settings"))
			return
		default:
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown mode %q", mode))
			return
		}
		if err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, d.Coord.Status())
	})

	if d.Generator != nil {
		mux.HandleFunc("POST /simulate", func(w http.ResponseWriter, _ *http.Request) {
			now := time.Now()
			reading := d.Generator.Reading(now)
			d.Poller.Ingest(reading, now)
			writeJSON(w, http.StatusOK, reading)
		})
	}

	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"message": err.Error()})
}
