package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apimiddleware "github.com/streamdate/sapi/internal/api/middleware"
	"github.com/streamdate/sapi/internal/config"
	"github.com/streamdate/sapi/internal/ice"
	"github.com/streamdate/sapi/internal/logger"
)

// ReadyCheck reports whether one backing resource is reachable.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Dependencies holds everything the routers need.
type Dependencies struct {
	Config      *config.AppConfig
	Loggers     *logger.Live
	ReadyChecks []ReadyCheck
}

// NewRouter creates the client-facing router served on server.http_port.
func NewRouter(deps *Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apimiddleware.AccessLogger(deps.Loggers.Access))

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, deps.Config.Current().Redacted())
		})

		r.Get("/iceservers", func(w http.ResponseWriter, req *http.Request) {
			servers := deps.Config.Current().ICEServers()
			writeJSON(w, ice.ClientServers(servers))
		})
	})

	return r
}

// NewHealthRouter creates the probe router served on server.healthz_port.
// /healthz is pure liveness; /readyz runs the registered resource checks.
func NewHealthRouter(deps *Dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		status := http.StatusOK
		result := make(map[string]string, len(deps.ReadyChecks))

		for _, check := range deps.ReadyChecks {
			if err := check.Check(req.Context()); err != nil {
				status = http.StatusServiceUnavailable
				result[check.Name] = err.Error()
				continue
			}
			result[check.Name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(result)
	})

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
	}
}
