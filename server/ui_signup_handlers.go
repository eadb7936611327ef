package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-adcampaign-dashboard/auth"
	"github.com/jrsteele09/go-adcampaign-dashboard/guards"
)

// RegisterPageHandler displays the membership form (GET /register)
func (s *Server) RegisterPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, pageRegister, pageData{Title: "Register a new membership"})
	}
}

// RegisterSubmissionHandler creates the account and signs straight in (POST /register)
func (s *Server) RegisterSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		form := auth.RegisterForm{
			Name:     r.PostFormValue("name"),
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
			Agree:    r.PostFormValue("agree") != "",
		}
		if err := s.accounts.Register(r.Context(), form); err != nil {
			fields, msg := formFailure(err, "Registration failed")
			kept := url.Values{"name": {form.Name}, "email": {form.Email}}
			if form.Agree {
				kept.Set("agree", "on")
			}
			s.render(w, failureStatus(err), pageRegister, pageData{
				Title:  "Register a new membership",
				Error:  msg,
				Fields: fields,
				Form:   kept,
			})
			return
		}
		http.Redirect(w, r, guards.CampaignsPath, http.StatusSeeOther)
	}
}
