// internal/httpserver/server.go
//
// HTTP server wiring for the rock-paper-scissors frame.
// Responsibilities:
//   - Router + middleware (request IDs, access logs, panic recovery, timeouts, CORS).
//   - Frame endpoints: "/" (start screen) and "/play" (scoreboard screen).
//   - Image endpoint: "/image" renders the SVG card referenced by each frame.
//   - Diagnostics: "/health".
//
// Notes:
//   - Frame clients echo the previous response's state string back to us;
//     the Store turns it into the session's prior State.
//   - A request with no fid never advances the game; it re-renders.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rps-frame/internal/frame"
	"github.com/robalobadob/rps-frame/internal/random"
	"github.com/robalobadob/rps-frame/internal/store"
)

// Options configures a Server.
type Options struct {
	Store        store.Store
	Random       random.Source
	Renderer     *frame.Renderer
	BaseURL      string        // absolute URL the frame client reaches us on, no trailing slash
	ClientOrigin string        // CORS origin; "*" allows any
	Timeout      time.Duration // per-request handler budget
}

// Server bundles the router with the session store and random source.
type Server struct {
	r       *chi.Mux
	store   store.Store
	rng     random.Source
	render  *frame.Renderer
	baseURL string
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	s := &Server{
		r:       chi.NewRouter(),
		store:   opts.Store,
		rng:     opts.Random,
		render:  opts.Renderer,
		baseURL: opts.BaseURL,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)             // add X-Request-ID
	s.r.Use(chimw.RealIP)                // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger)) // per-request logger in context
	s.r.Use(requestIDLogger)             // tag it with the request ID
	s.r.Use(accessLog())                 // one line per request
	s.r.Use(chimw.Recoverer)             // recover from panics
	s.r.Use(chimw.Timeout(opts.Timeout)) // bound handler time
	s.r.Use(corsFor(opts.ClientOrigin))  // frame clients fetch cross-origin

	// --- diagnostics ---
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// --- frames ---
	s.r.Get("/", s.handleStart)
	s.r.Post("/", s.handleStart)
	s.r.Get("/play", s.handlePlay)
	s.r.Post("/play", s.handlePlay)
	s.r.Get("/image", s.handleImage)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ServeHTTP lets the Server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }
