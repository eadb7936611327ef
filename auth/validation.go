package auth

import (
	"strings"

	"github.com/jrsteele09/go-adcampaign-dashboard/internal/forms"
)

const (
	minResetPasswordLength   = 8
	minProfilePasswordLength = 6
)

// Validator holds the client side checks of the account forms
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLogin checks the login form
func (v *Validator) ValidateLogin(f LoginForm) forms.FieldErrors {
	errs := forms.FieldErrors{}
	if strings.TrimSpace(f.Email) == "" {
		errs.Add("email", "Email is required")
	}
	if f.Password == "" {
		errs.Add("password", "Password is required")
	}
	return errs
}

// ValidateRegister checks the registration form. The terms must be accepted
// before anything else is looked at.
func (v *Validator) ValidateRegister(f RegisterForm) forms.FieldErrors {
	errs := forms.FieldErrors{}
	if !f.Agree {
		errs.Add("", "You must agree to the terms")
		return errs
	}
	if strings.TrimSpace(f.Name) == "" {
		errs.Add("name", "Full name is required")
	}
	v.validateEmail(errs, f.Email, "Email is required", "Invalid email format")
	if f.Password == "" {
		errs.Add("password", "Password is required")
	}
	return errs
}

// ValidateForgotPassword checks the reset link request
func (v *Validator) ValidateForgotPassword(email string) forms.FieldErrors {
	errs := forms.FieldErrors{}
	v.validateEmail(errs, email, "Please enter your email address.", "Please enter a valid email address.")
	return errs
}

// ValidateResetPassword checks the new password form
func (v *Validator) ValidateResetPassword(f ResetPasswordForm) forms.FieldErrors {
	errs := forms.FieldErrors{}
	switch {
	case strings.TrimSpace(f.Token) == "":
		errs.Add("", "No token provided.")
	case f.Password != f.Confirm:
		errs.Add("password_confirmation", "Passwords do not match.")
	case len(f.Password) < minResetPasswordLength:
		errs.Add("password", "Password must be at least 8 characters")
	}
	return errs
}

// ValidateProfile checks the profile form. The password is optional.
func (v *Validator) ValidateProfile(f ProfileForm) forms.FieldErrors {
	errs := forms.FieldErrors{}
	if strings.TrimSpace(f.Name) == "" {
		errs.Add("name", "Name is required")
	}
	v.validateEmail(errs, f.Email, "Email is required", "Invalid email format")
	if f.Password != "" && len(f.Password) < minProfilePasswordLength {
		errs.Add("password", "Password must be at least 6 characters")
	}
	if f.Password != "" && f.Password != f.Confirm {
		errs.Add("confirm_password", "Passwords do not match")
	}
	return errs
}

func (v *Validator) validateEmail(errs forms.FieldErrors, email, required, invalid string) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", required)
		return
	}
	if !forms.ValidEmail(email) {
		errs.Add("email", invalid)
	}
}
