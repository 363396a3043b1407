package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// routes wires all endpoints onto a chi router.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Cache-Control", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(chimw.NoCache)
	r.Use(s.accessLog)

	r.Post("/v1/lookup", s.handleLookup)
	r.Get("/v1/user/{id}/scores", s.handleScores)
	r.Get("/internal/jobs/score/{id}", s.handleJobStatus)
	return r
}
