package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/parisxmas/intake-relay/internal/auth"
	"github.com/parisxmas/intake-relay/internal/handler"
	mw "github.com/parisxmas/intake-relay/internal/middleware"
)

type Options struct {
	AllowedOrigins []string
	// DebugAuthSecret mounts /_debug/auth behind an operator token when set.
	DebugAuthSecret string
}

func New(
	logger *zap.Logger,
	opts Options,
	subH *handler.SubmissionHandler,
	debugH *handler.DebugHandler,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RealIP)
	r.Use(mw.Logger(logger))
	r.Use(mw.Recovery(logger))
	r.Use(mw.CORS(opts.AllowedOrigins))

	r.Get("/health", handler.Health)

	if opts.DebugAuthSecret != "" && debugH != nil {
		r.With(auth.Middleware(opts.DebugAuthSecret)).Get("/_debug/auth", debugH.Auth)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/schemas", subH.Schemas)
		// pacientes, registrar, traumatologo, medico-general, ...
		r.Post("/{kind}", subH.Create)
	})

	return r
}
