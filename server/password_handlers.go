package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-adcampaign-dashboard/auth"
)

const missingResetToken = "Invalid or missing reset token. Please request a new one."

// resetPage is the password reset page state
type resetPage struct {
	Token   string
	Done    bool
	Missing bool
}

// ForgotPasswordPageHandler displays the reset link request (GET /forgot-password)
func (s *Server) ForgotPasswordPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, pageForgotPassword, pageData{Title: "Forgot password"})
	}
}

// ForgotPasswordSubmissionHandler asks the API to mail a reset link (POST /forgot-password)
func (s *Server) ForgotPasswordSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := r.PostFormValue("email")
		msg, err := s.accounts.ForgotPassword(r.Context(), email)
		if err != nil {
			fields, errMsg := formFailure(err, "Failed to send reset link. Try again.")
			s.render(w, failureStatus(err), pageForgotPassword, pageData{
				Title:  "Forgot password",
				Error:  errMsg,
				Fields: fields,
				Form:   url.Values{"email": {email}},
			})
			return
		}
		s.render(w, http.StatusOK, pageForgotPassword, pageData{
			Title:   "Forgot password",
			Message: msg,
		})
	}
}

// PasswordResetPageHandler displays the new password form reached from the
// emailed link (GET /password-reset?token=...&email=...)
func (s *Server) PasswordResetPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		token := query.Get("token")
		data := pageData{
			Title:   "Reset password",
			Form:    url.Values{"email": {query.Get("email")}},
			Content: resetPage{Token: token, Missing: token == ""},
		}
		if token == "" {
			data.Error = missingResetToken
		}
		s.render(w, http.StatusOK, pagePasswordReset, data)
	}
}

// PasswordResetSubmissionHandler sets the new password (POST /password-reset)
func (s *Server) PasswordResetSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		form := auth.ResetPasswordForm{
			Token:    r.PostFormValue("token"),
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
			Confirm:  r.PostFormValue("password_confirmation"),
		}
		msg, err := s.accounts.ResetPassword(r.Context(), form)
		if err != nil {
			fields, errMsg := formFailure(err, "Failed to reset password")
			s.render(w, failureStatus(err), pagePasswordReset, pageData{
				Title:   "Reset password",
				Error:   errMsg,
				Fields:  fields,
				Form:    url.Values{"email": {form.Email}},
				Content: resetPage{Token: form.Token, Missing: form.Token == ""},
			})
			return
		}
		s.render(w, http.StatusOK, pagePasswordReset, pageData{
			Title:   "Reset password",
			Message: msg,
			Content: resetPage{Token: form.Token, Done: true},
		})
	}
}
