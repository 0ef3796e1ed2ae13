package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/profissa/profissa/internal/auth"
	"github.com/profissa/profissa/internal/config"
	"github.com/profissa/profissa/internal/http/handlers"
	"github.com/profissa/profissa/internal/middleware"
	"github.com/profissa/profissa/internal/notify"
	"github.com/profissa/profissa/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner   *http.Server
	limiter *middleware.RateLimiter
	stop    chan struct{}
	once    sync.Once
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store) *Server {
	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	s := &Server{limiter: limiter, stop: make(chan struct{})}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Routes(cfg, store, limiter),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.inner = httpServer
	return s
}

// Routes builds the full handler tree. It is exported so tests can serve it from httptest.
func Routes(cfg config.Config, store storage.Store, limiter *middleware.RateLimiter) http.Handler {
	mux := http.NewServeMux()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	handlers.NewHealthHandler(time.Now(), store).Register(mux)
	handlers.NewAuthHandler(store, tokens, limiter).Register(mux)
	handlers.NewDirectoryHandler(store, store).Register(mux)
	handlers.NewAppointmentHandler(store, store, tokens, notify.NewHub()).Register(mux)

	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(mux))
}

// Start begins serving HTTP traffic and sweeping idle rate-limit entries.
func (s *Server) Start() error {
	go s.sweep()
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	s.once.Do(func() { close(s.stop) })
	return s.inner.Shutdown(ctx)
}

func (s *Server) sweep() {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.limiter.Sweep(3 * time.Minute)
		}
	}
}
