// Package httpapi is the HTTP boundary: routing, the bearer auth gate,
// payload validation, and the mapping from service errors to status codes.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"apiscope.dev/internal/auth"
	"apiscope.dev/internal/history"
	"apiscope.dev/internal/obs"
	"apiscope.dev/internal/relay"
)

// ReadyProbe is a readiness check (ping the database when one is configured).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	auth     *auth.Service
	executor *relay.Executor
	history  history.Store

	rateBurst  int
	ratePerSec int
}

// Options carries the collaborators and tunables the API composes.
type Options struct {
	Ready      ReadyProbe
	Version    string
	Auth       *auth.Service
	Executor   *relay.Executor
	History    history.Store
	RateBurst  int
	RatePerSec int
}

func New(opts Options) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: opts.Ready,
		version:    opts.Version,
		auth:       opts.Auth,
		executor:   opts.Executor,
		history:    opts.History,
		rateBurst:  opts.RateBurst,
		ratePerSec: opts.RatePerSec,
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 20
	}
	if a.ratePerSec <= 0 {
		a.ratePerSec = 10
	}

	// health/ready
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)

	// auth
	a.mux.HandleFunc("/auth/register", a.handleRegister)
	a.mux.HandleFunc("/auth/login", a.handleLogin)
	a.mux.HandleFunc("/auth/me", a.handleMe)

	// request execution + history
	a.mux.HandleFunc("/request/send", a.handleSend)
	a.mux.HandleFunc("/request/history", a.handleHistory)
	a.mux.HandleFunc("/request/history/update", a.handleHistoryUpdate)
	a.mux.HandleFunc("/request/history/delete", a.handleHistoryDelete)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler assembles the middleware chain around the route table. The auth
// gate sits innermost so rejected requests are still logged and rate limited.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = LoggingJSON(h)
	h = RequestID(h)
	h = SecurityHeaders(h)
	h = CORS(h)
	return obs.Instrument(h)
}

// --- health handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "apiscope-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.readyProbe.Check(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
