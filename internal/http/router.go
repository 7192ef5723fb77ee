package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/finnyai/internal/http/auth"
	"github.com/MrJamesThe3rd/finnyai/internal/http/chat"
	"github.com/MrJamesThe3rd/finnyai/internal/http/extraction"
	"github.com/MrJamesThe3rd/finnyai/internal/http/fincontext"
)

type Options struct {
	// JWTSecret enables bearer authentication when set.
	JWTSecret      string
	AllowedOrigins []string
	Timeout        time.Duration
}

func New(
	opts Options,
	chatV1 *chat.Handler,
	extractionV1 *extraction.Handler,
	contextV1 *fincontext.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.JWTSecret))

		r.Route("/sessions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			chatV1.Routes(r)
		})

		r.Route("/extractions", extractionV1.Routes)

		r.Route("/context", contextV1.Routes)
	})

	return router
}
