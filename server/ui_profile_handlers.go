package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-adcampaign-dashboard/auth"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
)

const activeProfile = "profile"

// ProfilePageHandler shows the signed in user's profile (GET /profile)
func (s *Server) ProfilePageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{Title: "Profile", ActivePage: activeProfile}

		user, err := s.accounts.Profile(r.Context())
		switch {
		case err == nil:
			data.Form = url.Values{"name": {user.Name}, "email": {user.Email}}
		case s.sessionEnded(w, r):
			return
		default:
			log.Err(err).Msg("Failed to load profile")
			data.Error = "Failed to load profile."
			if snap := s.state.Snapshot(); snap.HasUser() {
				data.Form = url.Values{"name": {snap.User.Name}, "email": {snap.User.Email}}
			}
		}
		s.render(w, http.StatusOK, pageProfile, data)
	}
}

// ProfileSubmissionHandler saves the profile (POST /profile)
func (s *Server) ProfileSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		form := auth.ProfileForm{
			Name:     r.PostFormValue("name"),
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
			Confirm:  r.PostFormValue("confirm_password"),
		}
		data := pageData{
			Title:      "Profile",
			ActivePage: activeProfile,
			Form:       url.Values{"name": {form.Name}, "email": {form.Email}},
		}

		if err := s.accounts.UpdateProfile(r.Context(), form); err != nil {
			if s.sessionEnded(w, r) {
				return
			}
			if errors.Is(err, auth.NoProfileErr) {
				data.Error = "Failed to load profile."
				s.render(w, http.StatusConflict, pageProfile, data)
				return
			}
			data.Fields, data.Error = formFailure(err, "Update failed.")
			s.render(w, failureStatus(err), pageProfile, data)
			return
		}

		data.Message = "Profile updated successfully!"
		s.render(w, http.StatusOK, pageProfile, data)
	}
}
