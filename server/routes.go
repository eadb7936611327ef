package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-adcampaign-dashboard/guards"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	r := chi.NewRouter()
	r.Use(s.LoggingMiddleware, s.RecoverMiddleware, s.FrameSecurityMiddleware)

	r.Get(RouteHealth, s.HealthHandler())
	r.Handle(RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.With(s.CacheMiddleware).Handle(RouteStatic, http.StripPrefix("/static/", s.fileServer))

	r.Get(RouteIndex, s.IndexHandler())
	r.Get(RouteSessionEvents, s.SessionEventsHandler())
	r.Post(RouteLogout, s.LogoutHandler())

	// Guest pages
	r.Group(func(r chi.Router) {
		r.Use(s.Guard(guards.Guest))

		r.Get(RouteLogin, s.LoginPageHandler())
		r.Get(RouteRegister, s.RegisterPageHandler())
		r.Get(RouteForgotPassword, s.ForgotPasswordPageHandler())
		r.Get(RoutePasswordReset, s.PasswordResetPageHandler())

		r.Group(func(r chi.Router) {
			r.Use(s.RateLimit(s.config.GetLoginRateLimit(), time.Minute))
			r.Post(RouteLogin, s.LoginSubmissionHandler())
			r.Post(RouteRegister, s.RegisterSubmissionHandler())
			r.Post(RouteForgotPassword, s.ForgotPasswordSubmissionHandler())
			r.Post(RoutePasswordReset, s.PasswordResetSubmissionHandler())
		})
	})

	// Protected pages
	r.Group(func(r chi.Router) {
		r.Use(s.Guard(guards.Protected))

		r.Get(RouteCampaigns, s.CampaignListHandler())
		r.Get(RouteCampaignCreate, s.CampaignCreatePageHandler())
		r.Post(RouteCampaignCreate, s.CampaignCreateSubmissionHandler())
		r.Get(RouteCampaignLocations, s.CampaignLocationsHandler())
		r.Get(RouteProfile, s.ProfilePageHandler())
		r.Post(RouteProfile, s.ProfileSubmissionHandler())
	})

	r.NotFound(s.NotFoundHandler())
	s.router = r
}

// IndexHandler sends the root to the login page, whose guard forwards a signed
// in user on to the campaign list
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}
