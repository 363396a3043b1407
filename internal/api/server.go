// Package api is an in-memory stand-in for the reputation scoring backend.
//
// It serves the three endpoints the client uses (lookup, job status, user
// scores) with jobs that advance on each status read, so the CLI and TUI can
// be exercised end to end without the real pipeline.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// DefaultSteps is the number of status reads a job spends in "processing".
const DefaultSteps = 2

// Server is the stub backend HTTP handler.
type Server struct {
	store    *Store
	router   chi.Router
	log      zerolog.Logger
	validate *validator.Validate
}

// Option configures a Server.
type Option func(*Server)

// WithSteps sets how many status reads a job spends processing before done.
func WithSteps(n int) Option {
	return func(s *Server) { s.store.steps = max(n, 0) }
}

// WithLogger sets the access and event logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithClock replaces the clock used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.store.now = now }
}

// New creates a Server with an empty store.
func New(opts ...Option) *Server {
	s := &Server{
		store:    NewStore(DefaultSteps),
		log:      zerolog.Nop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, o := range opts {
		o(s)
	}
	s.router = s.routes()
	return s
}

// Store exposes the job and report store.
func (s *Server) Store() *Store { return s.store }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
