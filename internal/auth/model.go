package auth

import (
	"strings"
	"time"
)

// User is an account keyed by phone number. Verified flips once after a
// successful OTP check and never back.
type User struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name,omitempty"`
	Language  string    `json:"language,omitempty"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest is the body for POST /api/register.
type RegisterRequest struct {
	Phone    string `json:"phone"`
	Name     string `json:"name,omitempty"`
	Language string `json:"language,omitempty"`
}

// Validate normalizes and checks the phone number.
func (r *RegisterRequest) Validate() error {
	r.Phone = strings.TrimSpace(r.Phone)
	if r.Phone == "" {
		return ErrMissingPhone
	}
	return nil
}

// VerifyRequest is the body for POST /api/verify.
type VerifyRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// LoginRequest is the body for POST /api/login.
type LoginRequest struct {
	Phone string `json:"phone"`
}

// TokenResponse carries the issued session token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user,omitempty"`
}
