package apiclient

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
)

// Paths that must never carry a bearer credential
var publicPaths = []string{
	"/auth/login",
	"/auth/register",
	"/auth/forgot-password",
	"/auth/refresh-token",
}

const logoutPath = "/auth/logout"

// Middleware wraps a RoundTripper with one stage of the gateway
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain wraps base with the middleware. The first middleware is the outermost
// and sees the request first and the response last.
func Chain(base http.RoundTripper, mw ...Middleware) http.RoundTripper {
	rt := base
	for i := len(mw) - 1; i >= 0; i-- {
		rt = mw[i](rt)
	}
	return rt
}

// IsPublic reports whether path is one of the unauthenticated auth endpoints
func IsPublic(path string) bool {
	for _, p := range publicPaths {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

// TokenReader exposes the current access token
type TokenReader interface {
	AccessToken() string
}

// Credentials attaches the session's bearer token. Public endpoints have any
// Authorization header removed; other requests keep an explicit header and
// otherwise get the current token, when there is one.
func Credentials(tokens TokenReader) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if IsPublic(r.URL.Path) {
				if r.Header.Get(headerAuthorization) != "" {
					r = r.Clone(r.Context())
					r.Header.Del(headerAuthorization)
				}
				return next.RoundTrip(r)
			}

			if r.Header.Get(headerAuthorization) == "" {
				if access := tokens.AccessToken(); access != "" {
					r = r.Clone(r.Context())
					(&oauth2.Token{AccessToken: access}).SetAuthHeader(r)
				}
			}
			return next.RoundTrip(r)
		})
	}
}

// RequestID tags each outgoing request with an X-Request-ID unless it has one
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(headerRequestID) == "" {
				r = r.Clone(r.Context())
				r.Header.Set(headerRequestID, uuid.NewString())
			}
			return next.RoundTrip(r)
		})
	}
}
