package domain

import "time"

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

type PasswordResetToken struct {
	ID         int64
	AccountUID string
	Token      string
	ExpiresAt  time.Time
	// UsedAt is set once the code reset a password.
	UsedAt *time.Time
}
