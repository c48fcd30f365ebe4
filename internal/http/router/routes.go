// Package router registra las rutas de la API sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apihttp "github.com/dropDatabas3/splice/internal/http"
	"github.com/dropDatabas3/splice/internal/http/controllers/accounts"
	"github.com/dropDatabas3/splice/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/splice/internal/http/errors"
	mw "github.com/dropDatabas3/splice/internal/http/middlewares"
	"github.com/dropDatabas3/splice/internal/rate"
)

// Deps contiene las dependencias del router.
type Deps struct {
	Accounts *accounts.Controllers
	Health   *health.Controllers
	Verifier mw.TokenVerifier
	// RateLimiter aplica a register y login. nil = sin límite.
	RateLimiter rate.Limiter
	// Metrics es el handler de /metrics. nil = no se expone.
	Metrics http.Handler
}

// New arma el handler completo de la API.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		apihttp.WithMetrics,
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithLogging(),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	r.Get("/healthz", d.Health.Health.Healthz)
	r.Get("/readyz", d.Health.Health.Readyz)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	c := d.Accounts
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mw.WithNoStore())
			if d.RateLimiter != nil {
				r.Use(mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.RateLimiter, KeyFunc: mw.IPPathRateKey}))
			}
			r.Post("/register", c.Register.Register)
			r.Post("/login", c.Login.Login)
		})

		r.Get("/verify-email", c.VerifyEmail.Confirm)

		r.Method(http.MethodPut, "/profile", mw.Chain(
			http.HandlerFunc(c.Profile.Update),
			mw.WithNoStore(),
			mw.RequireAuth(d.Verifier),
		))
	})
	return r
}
