package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
	"golang.org/x/oauth2"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Pair is the token body returned by the login, register and refresh endpoints
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Claims holds the access token claims the dashboard looks at. They are read
// without verification: the API owns the signing key and is the only party
// that can decide whether a token is still acceptable.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Inspect decodes the claims of a JWT access token. Opaque tokens yield an error.
func Inspect(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.ErrMissingAccessToken
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, errors.Wrapf(err, "inspect access token")
	}

	claims := &Claims{}
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// Remaining returns how long the access token has left. ok is false when the
// token carries no readable expiry.
func Remaining(raw string) (remaining time.Duration, ok bool) {
	claims, err := Inspect(raw)
	if err != nil || claims.ExpiresAt.IsZero() {
		return 0, false
	}
	return claims.ExpiresAt.Sub(NowTimeFunc()), true
}

// OAuth2 converts a token pair into an oauth2.Token. Expiry is taken from the
// access token's exp claim when there is one.
func OAuth2(p Pair) *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
	}
	if claims, err := Inspect(p.AccessToken); err == nil {
		t.Expiry = claims.ExpiresAt
	}
	return t
}
