package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-adcampaign-dashboard/auth"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateLogin(t *testing.T) {
	v := auth.NewValidator()

	require.Empty(t, v.ValidateLogin(auth.LoginForm{Email: "a@b.com", Password: "pw"}))

	errs := v.ValidateLogin(auth.LoginForm{Email: " "})
	require.Equal(t, "Email is required", errs["email"])
	require.Equal(t, "Password is required", errs["password"])
}

func TestValidator_ValidateRegister(t *testing.T) {
	v := auth.NewValidator()
	valid := auth.RegisterForm{Name: "A", Email: "a@b.com", Password: "pw", Agree: true}

	t.Run("valid", func(t *testing.T) {
		require.Empty(t, v.ValidateRegister(valid))
	})

	t.Run("terms first", func(t *testing.T) {
		f := valid
		f.Agree = false
		f.Email = ""
		errs := v.ValidateRegister(f)
		require.Len(t, errs, 1)
		require.Equal(t, "You must agree to the terms", errs.Form())
	})

	t.Run("bad email", func(t *testing.T) {
		f := valid
		f.Email = "not-an-email"
		require.Equal(t, "Invalid email format", v.ValidateRegister(f)["email"])
	})
}

func TestValidator_ValidateForgotPassword(t *testing.T) {
	v := auth.NewValidator()
	require.Empty(t, v.ValidateForgotPassword("a@b.com"))
	require.Equal(t, "Please enter your email address.", v.ValidateForgotPassword("")["email"])
	require.Equal(t, "Please enter a valid email address.", v.ValidateForgotPassword("a@b")["email"])
}

func TestValidator_ValidateResetPassword(t *testing.T) {
	v := auth.NewValidator()

	t.Run("valid", func(t *testing.T) {
		require.Empty(t, v.ValidateResetPassword(auth.ResetPasswordForm{Token: "tok", Password: "longenough", Confirm: "longenough"}))
	})

	t.Run("missing token", func(t *testing.T) {
		errs := v.ValidateResetPassword(auth.ResetPasswordForm{Password: "longenough", Confirm: "longenough"})
		require.Equal(t, "No token provided.", errs.Form())
	})

	t.Run("mismatch", func(t *testing.T) {
		errs := v.ValidateResetPassword(auth.ResetPasswordForm{Token: "tok", Password: "longenough", Confirm: "different"})
		require.Equal(t, "Passwords do not match.", errs["password_confirmation"])
	})

	t.Run("too short", func(t *testing.T) {
		errs := v.ValidateResetPassword(auth.ResetPasswordForm{Token: "tok", Password: "short", Confirm: "short"})
		require.Equal(t, "Password must be at least 8 characters", errs["password"])
	})
}

func TestValidator_ValidateProfile(t *testing.T) {
	v := auth.NewValidator()

	require.Empty(t, v.ValidateProfile(auth.ProfileForm{Name: "A", Email: "a@b.com"}))
	require.Empty(t, v.ValidateProfile(auth.ProfileForm{Name: "A", Email: "a@b.com", Password: "secret", Confirm: "secret"}))

	errs := v.ValidateProfile(auth.ProfileForm{Name: " ", Email: "nope", Password: "abc", Confirm: "abd"})
	require.Equal(t, "Name is required", errs["name"])
	require.Equal(t, "Invalid email format", errs["email"])
	require.Equal(t, "Password must be at least 6 characters", errs["password"])
	require.Equal(t, "Passwords do not match", errs["confirm_password"])

	errs = v.ValidateProfile(auth.ProfileForm{Name: "A"})
	require.Equal(t, "Email is required", errs["email"])
}
