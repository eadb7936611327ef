package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-adcampaign-dashboard/apiclient"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/forms"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"

	maxFormBytes   = 1 << 20
	maxUploadBytes = 16 << 20
)

// HealthHandler reports liveness and whether the session has been hydrated
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"ready":  s.state.Snapshot().IsReady,
		})
	}
}

// LoadingHandler is shown while the session is still being restored. The page
// reloads itself until the guards can decide.
func (s *Server) LoadingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		s.render(w, http.StatusServiceUnavailable, pageLoading, pageData{Title: "Loading", AutoRefresh: 1})
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusNotFound, pageNotFound, pageData{Title: "Page not found"})
	}
}

// formFailure splits a failed submission into inline field errors and a page
// level message
func formFailure(err error, fallback string) (forms.FieldErrors, string) {
	if fields := forms.FieldsOf(err); fields != nil {
		return fields, ""
	}
	return nil, apiclient.MessageOf(err, fallback)
}

// failureStatus is the status a page re-rendered after err is served with
func failureStatus(err error) int {
	if forms.FieldsOf(err) != nil {
		return http.StatusUnprocessableEntity
	}
	switch status := apiclient.StatusOf(err); {
	case status >= 400 && status < 500:
		return status
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to write JSON response")
	}
}
