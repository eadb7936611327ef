package apiclient

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
	"github.com/jrsteele09/go-adcampaign-dashboard/sessions"
	"github.com/jrsteele09/go-adcampaign-dashboard/token"
)

// LoginRequest carries the login form
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates an account
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// Login exchanges credentials for a session
func (c *Client) Login(ctx context.Context, req LoginRequest) (*sessions.LoginPayload, error) {
	return c.authenticate(ctx, "/auth/login", req)
}

// Register creates an account and returns its session
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*sessions.LoginPayload, error) {
	return c.authenticate(ctx, "/auth/register", req)
}

func (c *Client) authenticate(ctx context.Context, path string, body interface{}) (*sessions.LoginPayload, error) {
	var payload sessions.LoginPayload
	if _, err := c.doJSON(ctx, http.MethodPost, path, body, &payload); err != nil {
		return nil, err
	}
	if payload.AccessToken == "" {
		return nil, errors.Wrapf(errors.ErrMissingAccessToken, "%s response", path)
	}
	return &payload, nil
}

// Logout tells the API the session is over. The refresh cookie, if any, is
// sent from the client's jar.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.doJSON(ctx, http.MethodPost, logoutPath, nil, nil)
	return err
}

// NotifyLogout implements sessions.LogoutNotifier
func (c *Client) NotifyLogout(ctx context.Context) error {
	return c.Logout(ctx)
}

// RefreshToken exchanges a refresh token for a new access token
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*token.Pair, error) {
	var pair token.Pair
	if _, err := c.doJSON(ctx, http.MethodPost, "/auth/refresh-token", refreshRequest{RefreshToken: refreshToken}, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// ForgotPassword asks the API to email a reset link. It returns the API's message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/auth/forgot-password", forgotPasswordRequest{Email: email}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// ResetPassword sets a new password using the emailed token
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (string, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/auth/password-reset", req, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
