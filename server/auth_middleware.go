package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-adcampaign-dashboard/guards"
	"github.com/rs/zerolog/log"
)

// Guard wraps a group of routes in the access rule of kind. Navigations that
// arrive before hydration wait for it briefly and get the loading page if it
// still has not finished.
func (s *Server) Guard(kind guards.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := guards.Evaluate(kind, s.state.Snapshot())
			if decision.Action == guards.Wait {
				ctx, cancel := context.WithTimeout(r.Context(), s.readyWait)
				err := s.state.WaitReady(ctx)
				cancel()
				if err != nil {
					s.LoadingHandler()(w, r)
					return
				}
				decision = guards.Evaluate(kind, s.state.Snapshot())
			}

			switch decision.Action {
			case guards.Redirect:
				log.Debug().
					Str("guard", kind.String()).
					Str("path", r.URL.Path).
					Str("target", decision.Target).
					Msg("Guard redirect")
				http.Redirect(w, r, decision.Target, http.StatusSeeOther)
			case guards.Allow:
				next.ServeHTTP(w, r)
			default:
				s.LoadingHandler()(w, r)
			}
		})
	}
}

// sessionEnded reports whether a failed API call ended the session, in which
// case the handler redirects to the login page instead of rendering an error
func (s *Server) sessionEnded(w http.ResponseWriter, r *http.Request) bool {
	if s.state.Snapshot().IsAuthenticated {
		return false
	}
	http.Redirect(w, r, guards.LoginPath, http.StatusSeeOther)
	return true
}
