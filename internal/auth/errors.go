package auth

import "errors"

var (
	ErrMissingPhone  = errors.New("phone number is required")
	ErrUserExists    = errors.New("user already registered")
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidOTP    = errors.New("invalid or expired otp")
	ErrNotVerified   = errors.New("user is not verified")
	ErrMissingSecret = errors.New("jwt secret is not configured")
)
