package apiclient

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	outcomeRecovered = "recovered"
	outcomeForbidden = "forbidden"
	outcomeFailed    = "failed"

	reasonUnauthorized  = "unauthorized"
	reasonRefreshFailed = "refresh_failed"

	maxDrainBytes = 64 << 10
)

// Refresher obtains a new access token
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// SessionEnder ends the local session after a terminal authorization failure
type SessionEnder func(ctx context.Context)

type retriedKey struct{}

func isRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}

// exemptFromRecovery covers the public auth endpoints and logout. A failed
// logout must not start another logout.
func exemptFromRecovery(path string) bool {
	return IsPublic(path) || strings.HasSuffix(path, logoutPath)
}

// Recovery handles authorization failures on the way back. A 403 triggers one
// token refresh and a single resend with the new token; a 403 on the resend is
// returned as is. A 401, or a refresh that fails, ends the session.
func Recovery(refresher Refresher, endSession SessionEnder, m *Metrics) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(r)
			if err != nil || exemptFromRecovery(r.URL.Path) {
				return resp, err
			}

			switch resp.StatusCode {
			case http.StatusUnauthorized:
				log.Warn().Str("path", r.URL.Path).Msg("API rejected the session, logging out")
				m.forcedLogout(reasonUnauthorized)
				endSession(r.Context())
				return resp, nil
			case http.StatusForbidden:
				if isRetried(r.Context()) {
					return resp, nil
				}
				return retry(next, r, resp, refresher, endSession, m)
			default:
				return resp, nil
			}
		})
	}
}

func retry(next http.RoundTripper, r *http.Request, forbidden *http.Response, refresher Refresher, endSession SessionEnder, m *Metrics) (*http.Response, error) {
	if r.Body != nil && r.Body != http.NoBody && r.GetBody == nil {
		log.Warn().Str("path", r.URL.Path).Msg("Request body cannot be replayed, not retrying")
		return forbidden, nil
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(forbidden.Body, maxDrainBytes))
	_ = forbidden.Body.Close()

	ctx := context.WithValue(r.Context(), retriedKey{}, true)

	access, err := refresher.Refresh(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Token refresh failed, logging out")
		m.retried(outcomeFailed)
		m.forcedLogout(reasonRefreshFailed)
		endSession(ctx)
		return nil, &APIError{
			Status:  http.StatusForbidden,
			Message: "Your session has expired, please log in again",
			Err:     err,
		}
	}

	resend := r.Clone(ctx)
	if r.GetBody != nil {
		body, err := r.GetBody()
		if err != nil {
			return nil, errors.Wrapf(err, "rewind request body")
		}
		resend.Body = body
	}
	(&oauth2.Token{AccessToken: access}).SetAuthHeader(resend)

	resp, err := next.RoundTrip(resend)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		m.retried(outcomeFailed)
		m.forcedLogout(reasonUnauthorized)
		endSession(ctx)
	case http.StatusForbidden:
		m.retried(outcomeForbidden)
	default:
		m.retried(outcomeRecovered)
	}
	return resp, nil
}
