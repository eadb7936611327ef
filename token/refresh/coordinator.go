package refresh

import (
	"context"
	"sync/atomic"

	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
	"github.com/jrsteele09/go-adcampaign-dashboard/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const flightKey = "refresh"

var _ oauth2.TokenSource = (*Coordinator)(nil)

// Exchanger calls the API's refresh endpoint
type Exchanger interface {
	RefreshToken(ctx context.Context, refreshToken string) (*token.Pair, error)
}

// SessionTokens is the part of the session the coordinator reads and updates
type SessionTokens interface {
	RefreshToken() string
	ApplyRefresh(accessToken, refreshToken string) error
}

// Coordinator exchanges the refresh token for a new access token. Concurrent
// callers share one in-flight exchange, so the API sees a single refresh call
// no matter how many requests were rejected at the same time.
type Coordinator struct {
	exchanger Exchanger
	session   SessionTokens
	group     singleflight.Group
	calls     atomic.Int64
}

// NewCoordinator creates a new refresh coordinator
func NewCoordinator(exchanger Exchanger, session SessionTokens) *Coordinator {
	return &Coordinator{
		exchanger: exchanger,
		session:   session,
	}
}

// Refresh returns a fresh access token. Callers arriving while an exchange is
// pending wait for its outcome. A caller whose ctx ends stops waiting, but the
// shared exchange runs to completion for the others.
func (c *Coordinator) Refresh(ctx context.Context) (string, error) {
	t, err := c.refresh(ctx)
	if err != nil {
		return "", err
	}
	return t.AccessToken, nil
}

// Token implements oauth2.TokenSource by forcing an exchange
func (c *Coordinator) Token() (*oauth2.Token, error) {
	return c.refresh(context.Background())
}

// Exchanges returns the number of refresh calls sent to the API
func (c *Coordinator) Exchanges() int64 {
	return c.calls.Load()
}

func (c *Coordinator) refresh(ctx context.Context) (*oauth2.Token, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flightKey, func() (interface{}, error) {
		return c.exchange(shared)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*oauth2.Token), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) exchange(ctx context.Context) (*oauth2.Token, error) {
	c.calls.Add(1)

	// The refresh token may be absent when the API tracks it in a cookie, so
	// the call is made either way.
	pair, err := c.exchanger.RefreshToken(ctx, c.session.RefreshToken())
	if err != nil {
		log.Warn().Err(err).Msg("Token refresh failed")
		return nil, errors.Wrapf(refreshFailed(err), "refresh")
	}
	if pair == nil || pair.AccessToken == "" {
		return nil, errors.Wrapf(errors.ErrRefreshFailed, "refresh response has no access token")
	}

	if err := c.session.ApplyRefresh(pair.AccessToken, pair.RefreshToken); err != nil {
		return nil, errors.Wrapf(refreshFailed(err), "apply refreshed token")
	}

	log.Debug().Bool("rotated", pair.RefreshToken != "").Msg("Access token refreshed")
	return token.OAuth2(*pair), nil
}

// refreshFailed keeps the underlying cause reachable while marking the error
// as a refresh failure.
func refreshFailed(cause error) error {
	return &failure{cause: cause}
}

type failure struct {
	cause error
}

func (f *failure) Error() string {
	return errors.ErrRefreshFailed.Error() + ": " + f.cause.Error()
}

func (f *failure) Is(target error) bool {
	return target == errors.ErrRefreshFailed
}

func (f *failure) Unwrap() error {
	return f.cause
}
