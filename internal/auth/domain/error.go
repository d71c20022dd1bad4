package domain

import "errors"

var (
	ErrInvalidPlatform     = errors.New("platform context is required")
	ErrUserNotFound        = errors.New("no account found with this email")
	ErrInactiveUser        = errors.New("this account has been deactivated")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrTooManyAttempts     = errors.New("too many login attempts, try again later")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrPlatformMismatch    = errors.New("token was issued for another platform")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrSamePassword        = errors.New("new password must differ from the current password")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
)
