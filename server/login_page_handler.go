package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-adcampaign-dashboard/auth"
	"github.com/jrsteele09/go-adcampaign-dashboard/guards"
)

// LoginPageHandler displays the sign in page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, pageLogin, pageData{
			Title: "Sign in",
			Form:  url.Values{"email": {r.URL.Query().Get("email")}},
		})
	}
}

// LoginSubmissionHandler signs in and moves on to the campaign list (POST /login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		form := auth.LoginForm{
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
		}
		if err := s.accounts.Login(r.Context(), form); err != nil {
			fields, msg := formFailure(err, "Login failed")
			s.render(w, failureStatus(err), pageLogin, pageData{
				Title:  "Sign in",
				Error:  msg,
				Fields: fields,
				Form:   url.Values{"email": {form.Email}},
			})
			return
		}
		http.Redirect(w, r, guards.CampaignsPath, http.StatusSeeOther)
	}
}

// LogoutHandler ends the session whatever the API says (POST /logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.accounts.Logout(r.Context())
		http.Redirect(w, r, guards.LoginPath, http.StatusSeeOther)
	}
}
