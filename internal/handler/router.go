package handler

import (
	"net/http"
	"skillbridge/internal/api"
	"skillbridge/internal/logging"
	"skillbridge/internal/middleware"
	"skillbridge/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxFormBytes = 1 << 20

type Router struct {
	Logger       *logging.Logger
	Resolver     *session.Resolver
	Pages        *Pages
	Auth         *AuthHandler
	Tutors       *TutorsHandler
	Dashboard    *DashboardHandler
	Profile      *ProfileHandler
	Availability *AvailabilityHandler
}

// Handler assembles the routes. Everything under the dashboard layout
// resolves the session on each request; /tutor/* also needs the TUTOR role
// and /admin/* the ADMIN role.
func (rt Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NewLoggingMiddleware(rt.Logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.MaxBytes(maxFormBytes))
	r.Use(middleware.Credentials)

	r.Get("/health", Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", Root)
	r.NotFound(rt.Pages.NotFound)

	rt.Auth.RegisterRoutes(r)
	rt.Tutors.RegisterRoutes(r)

	requireSession := middleware.NewRequireSession(rt.Resolver)
	forbidden := http.HandlerFunc(rt.Pages.Forbidden)

	r.Group(func(r chi.Router) {
		r.Use(requireSession)

		r.Get("/dashboard", rt.Pages.Home)
		r.With(middleware.NewRequireRole(api.RoleAdmin, forbidden)).Get("/admin/dashboard", rt.Pages.Home)

		r.Route("/tutor", func(r chi.Router) {
			r.Use(middleware.NewRequireRole(api.RoleTutor, forbidden))
			rt.Dashboard.RegisterRoutes(r)
			rt.Profile.RegisterRoutes(r)
			rt.Availability.RegisterRoutes(r)
		})
	})

	return r
}
