package auth

import (
	"context"
	"strings"

	"github.com/jrsteele09/go-adcampaign-dashboard/apiclient"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/utils"
	"github.com/jrsteele09/go-adcampaign-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

const (
	defaultForgotPasswordMessage = "A password reset link has been sent to your email."
	defaultResetPasswordMessage  = "Your password has been reset. You can now sign in."
)

// LoginForm is the sign in form
type LoginForm struct {
	Email    string
	Password string
}

// RegisterForm is the membership form
type RegisterForm struct {
	Name     string
	Email    string
	Password string
	Agree    bool
}

// ResetPasswordForm is the form behind the emailed reset link
type ResetPasswordForm struct {
	Token    string
	Email    string
	Password string
	Confirm  string
}

// ProfileForm is the profile page form. Leaving the password blank keeps it.
type ProfileForm struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// API is the part of the campaign API the account flows use
type API interface {
	Login(ctx context.Context, req apiclient.LoginRequest) (*sessions.LoginPayload, error)
	Register(ctx context.Context, req apiclient.RegisterRequest) (*sessions.LoginPayload, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, req apiclient.ResetPasswordRequest) (string, error)
	GetUser(ctx context.Context, id sessions.UserID) (*sessions.User, error)
	UpdateUser(ctx context.Context, id sessions.UserID, update apiclient.UserUpdate) error
}

// Session is the part of the session state the account flows mutate
type Session interface {
	Snapshot() sessions.Session
	Login(p sessions.LoginPayload) error
	Logout(ctx context.Context)
	UpdateProfile(u sessions.ProfileUpdate)
}

// Service runs the account flows: validate the form, call the API, update the session
type Service struct {
	api       API
	session   Session
	validator *Validator
}

// NewService creates an account service
func NewService(api API, session Session) (*Service, error) {
	if api == nil {
		return nil, errors.New("[NewService] api is required")
	}
	if session == nil {
		return nil, errors.New("[NewService] session is required")
	}
	return &Service{
		api:       api,
		session:   session,
		validator: NewValidator(),
	}, nil
}

// Login signs in and establishes the session
func (s *Service) Login(ctx context.Context, f LoginForm) error {
	if err := s.validator.ValidateLogin(f).Err(); err != nil {
		return err
	}
	payload, err := s.api.Login(ctx, apiclient.LoginRequest{
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	})
	if err != nil {
		return err
	}
	if err := s.session.Login(*payload); err != nil {
		return errors.Wrapf(err, "login")
	}
	log.Info().Str("user", s.session.Snapshot().DisplayName()).Msg("Signed in")
	return nil
}

// Register creates the account and signs in with the returned session
func (s *Service) Register(ctx context.Context, f RegisterForm) error {
	if err := s.validator.ValidateRegister(f).Err(); err != nil {
		return err
	}
	payload, err := s.api.Register(ctx, apiclient.RegisterRequest{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	})
	if err != nil {
		return err
	}
	if err := s.session.Login(*payload); err != nil {
		return errors.Wrapf(err, "register")
	}
	log.Info().Str("user", s.session.Snapshot().DisplayName()).Msg("Registered")
	return nil
}

// Logout ends the session
func (s *Service) Logout(ctx context.Context) {
	s.session.Logout(ctx)
}

// ForgotPassword requests a reset link and returns the message to show
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	if err := s.validator.ValidateForgotPassword(email).Err(); err != nil {
		return "", err
	}
	msg, err := s.api.ForgotPassword(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}
	return utils.Coalesce(utils.NonEmpty(msg), defaultForgotPasswordMessage), nil
}

// ResetPassword sets a new password and returns the message to show
func (s *Service) ResetPassword(ctx context.Context, f ResetPasswordForm) (string, error) {
	if err := s.validator.ValidateResetPassword(f).Err(); err != nil {
		return "", err
	}
	msg, err := s.api.ResetPassword(ctx, apiclient.ResetPasswordRequest{
		Token:    strings.TrimSpace(f.Token),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	})
	if err != nil {
		return "", err
	}
	return utils.Coalesce(utils.NonEmpty(msg), defaultResetPasswordMessage), nil
}

// Profile loads the signed in user's profile from the API
func (s *Service) Profile(ctx context.Context) (*sessions.User, error) {
	snap := s.session.Snapshot()
	if !snap.HasUser() || snap.User.ID == "" {
		return nil, NoProfileErr
	}
	return s.api.GetUser(ctx, snap.User.ID)
}

// UpdateProfile saves the profile and merges the new name and email into the session
func (s *Service) UpdateProfile(ctx context.Context, f ProfileForm) error {
	if err := s.validator.ValidateProfile(f).Err(); err != nil {
		return err
	}
	snap := s.session.Snapshot()
	if !snap.HasUser() || snap.User.ID == "" {
		return NoProfileErr
	}

	name := strings.TrimSpace(f.Name)
	email := strings.TrimSpace(f.Email)
	if err := s.api.UpdateUser(ctx, snap.User.ID, apiclient.UserUpdate{
		Name:     name,
		Email:    email,
		Password: f.Password,
	}); err != nil {
		return err
	}

	s.session.UpdateProfile(sessions.ProfileUpdate{
		Name:  utils.NonEmpty(name),
		Email: utils.NonEmpty(email),
	})
	return nil
}
