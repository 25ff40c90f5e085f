package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/dsx-leads/internal/infra/http/middleware"
	"github.com/xavierca1/dsx-leads/internal/usecase"
)

type Router struct {
	Wizard       *WizardHandler
	Auth         *AuthHandler
	Leads        *LeadHandler
	Health       *HealthHandler
	LoginLimiter *middleware.IPRateLimiter
	CORSOrigins  []string
}

// Handler monta as rotas públicas, as de login e o painel protegido.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Metrics)

	r.Get("/health", rt.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	rt.Wizard.Routes(r)
	r.Get(usecase.ThankYouPath, ThankYou)

	r.Get(middleware.LoginPath, rt.Auth.LoginPage)
	r.Group(func(r chi.Router) {
		if rt.LoginLimiter != nil {
			r.Use(rt.LoginLimiter.Handler)
		}
		r.Post("/api/login", rt.Auth.Login)
	})
	r.Post("/api/logout", rt.Auth.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionGate)
		r.Get("/leads", rt.Leads.List)
		r.Get("/leads/stream", rt.Leads.Stream)
	})

	return r
}
