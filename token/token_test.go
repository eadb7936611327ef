package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-adcampaign-dashboard/token"
	"github.com/stretchr/testify/require"
)

func mint(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestInspect(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	raw := mint(t, jwt.MapClaims{"sub": "42", "exp": exp.Unix()})

	claims, err := token.Inspect(raw)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)
	require.True(t, exp.Equal(claims.ExpiresAt))
}

func TestInspect_Opaque(t *testing.T) {
	_, err := token.Inspect("not-a-jwt")
	require.Error(t, err)

	_, err = token.Inspect("  ")
	require.Error(t, err)
}

func TestRemaining(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	orig := token.NowTimeFunc
	token.NowTimeFunc = func() time.Time { return now }
	defer func() { token.NowTimeFunc = orig }()

	raw := mint(t, jwt.MapClaims{"exp": now.Add(15 * time.Minute).Unix()})
	left, ok := token.Remaining(raw)
	require.True(t, ok)
	require.Equal(t, 15*time.Minute, left)

	_, ok = token.Remaining(mint(t, jwt.MapClaims{"sub": "1"}))
	require.False(t, ok)

	_, ok = token.Remaining("opaque")
	require.False(t, ok)
}

func TestOAuth2(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	raw := mint(t, jwt.MapClaims{"exp": exp.Unix()})

	tok := token.OAuth2(token.Pair{AccessToken: raw, RefreshToken: "R1"})
	require.Equal(t, raw, tok.AccessToken)
	require.Equal(t, "R1", tok.RefreshToken)
	require.Equal(t, "Bearer", tok.Type())
	require.True(t, exp.Equal(tok.Expiry))

	opaque := token.OAuth2(token.Pair{AccessToken: "T2"})
	require.True(t, opaque.Expiry.IsZero())
	require.True(t, opaque.Valid())
}
