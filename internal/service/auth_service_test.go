package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/pkg/apperr"
)

func passwordAdmin(t *testing.T, e *env, phone, email, password string) *model.User {
	t.Helper()
	user := &model.User{
		Phone:    phone,
		Email:    &email,
		FullName: "Panel Admin",
		IsActive: true,
	}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func TestLoginEnforcesSingleSession(t *testing.T) {
	e := newEnv(t)
	passwordAdmin(t, e, "8100000001", "ops@example.com", "secret-pass-1")

	first, err := e.auth.Login("ops@example.com", "secret-pass-1")
	require.NoError(t, err)
	require.NotEmpty(t, first.Token)

	_, err = e.auth.ValidateToken(first.Token)
	require.NoError(t, err)

	// A second login rotates the token version and kills the first session
	second, err := e.auth.Login("ops@example.com", "secret-pass-1")
	require.NoError(t, err)

	_, err = e.auth.ValidateToken(first.Token)
	require.Error(t, err)
	_, err = e.auth.ValidateToken(second.Token)
	require.NoError(t, err)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newEnv(t)
	admin := passwordAdmin(t, e, "8100000002", "ops2@example.com", "secret-pass-2")

	_, err := e.auth.Login("ops2@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = e.auth.Login("nobody@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, e.db.Model(admin).Update("is_active", false).Error)
	_, err = e.auth.Login("ops2@example.com", "secret-pass-2")
	require.ErrorIs(t, err, ErrUserInactive)
}

func TestResetPasswordInvalidatesSessions(t *testing.T) {
	e := newEnv(t)
	passwordAdmin(t, e, "8100000003", "ops3@example.com", "old-password-1")

	login, err := e.auth.Login("ops3@example.com", "old-password-1")
	require.NoError(t, err)

	err = e.auth.ResetPassword("ops3@example.com", "not-the-old-one", "new-password-1")
	require.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, e.auth.ResetPassword("ops3@example.com", "old-password-1", "new-password-1"))

	// The pre-reset token is dead
	_, err = e.auth.ValidateToken(login.Token)
	require.Error(t, err)

	_, err = e.auth.Login("ops3@example.com", "old-password-1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.auth.Login("ops3@example.com", "new-password-1")
	require.NoError(t, err)
}

func TestOTPLoginFlow(t *testing.T) {
	e := newEnv(t)
	member := approvedRetailer(t, e, "9500000001")

	issued, err := e.auth.IssueOTP("9500000001", model.OTPLogin)
	require.NoError(t, err)
	require.Len(t, issued.Code, 6)

	// A wrong code burns an attempt but leaves the OTP usable
	wrong := "000000"
	if issued.Code == wrong {
		wrong = "000001"
	}
	_, err = e.auth.VerifyOTP("9500000001", model.OTPLogin, wrong)
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	user, err := e.auth.VerifyOTP("9500000001", model.OTPLogin, issued.Code)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, member.ID, user.ID)

	// A verified OTP cannot be replayed
	_, err = e.auth.VerifyOTP("9500000001", model.OTPLogin, issued.Code)
	require.Error(t, err)
	require.True(t, apperr.IsNotFound(err))
}

func TestOTPRequiresKnownPhoneExceptRegistration(t *testing.T) {
	e := newEnv(t)

	_, err := e.auth.IssueOTP("9500000002", model.OTPLogin)
	require.Error(t, err)
	require.True(t, apperr.IsNotFound(err))

	// Registration OTPs are allowed before any user exists
	issued, err := e.auth.IssueOTP("9500000002", model.OTPRegistration)
	require.NoError(t, err)

	user, err := e.auth.VerifyOTP("9500000002", model.OTPRegistration, issued.Code)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestOTPLocksAfterMaxAttempts(t *testing.T) {
	e := newEnv(t)
	approvedRetailer(t, e, "9500000003")

	issued, err := e.auth.IssueOTP("9500000003", model.OTPLogin)
	require.NoError(t, err)

	wrong := "000000"
	if issued.Code == wrong {
		wrong = "000001"
	}
	for i := 0; i < otpMaxAttempts; i++ {
		_, err = e.auth.VerifyOTP("9500000003", model.OTPLogin, wrong)
		require.Error(t, err)
		require.True(t, apperr.IsValidation(err))
	}

	// Even the right code is refused once the attempt budget is spent
	_, err = e.auth.VerifyOTP("9500000003", model.OTPLogin, issued.Code)
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))
}
