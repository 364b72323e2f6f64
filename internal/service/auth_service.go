package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/yusufkecer/fitcoach-backend/internal/domain"
	"github.com/yusufkecer/fitcoach-backend/internal/validation"
)

const resetTokenTTL = 15 * time.Minute

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid or expired token")
)

type PasswordResetSender interface {
	SendPasswordReset(ctx context.Context, to, otp string) error
}

type AuthService struct {
	accounts    AccountStore
	resetTokens ResetTokenStore
	sender      PasswordResetSender
	now         func() time.Time
	bcryptCost  int
}

func NewAuthService(accounts AccountStore, resetTokens ResetTokenStore, sender PasswordResetSender) *AuthService {
	return &AuthService{
		accounts:    accounts,
		resetTokens: resetTokens,
		sender:      sender,
		now:         time.Now,
		bcryptCost:  bcrypt.DefaultCost,
	}
}

func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.bcryptCost = cost
	return s
}

func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, &validation.Error{Field: "email", Message: "email and password are required"}
	}
	if err := validation.Email(email); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// RequestReset issues a fresh one-time code and mails it. Unknown emails are
// ignored so callers cannot tell which emails have accounts.
func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account == nil {
		return nil
	}

	if err := s.resetTokens.DeleteByAccountUID(ctx, account.UID); err != nil {
		log.Warnf("[forgot-password] failed to delete old tokens for %s: %s", account.UID, err)
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	if err := s.resetTokens.Create(ctx, account.UID, otp, s.now().UTC().Add(resetTokenTTL)); err != nil {
		return err
	}

	if err := s.sender.SendPasswordReset(ctx, email, otp); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	log.Infof("[forgot-password] reset email sent to account %s", account.UID)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error {
	email := NormalizeEmail(req.Email)
	if email == "" || req.Token == "" || req.Password == "" {
		return &validation.Error{Field: "token", Message: "email, token and password are required"}
	}
	if err := validation.Password(req.Password); err != nil {
		return err
	}

	token, err := s.resetTokens.GetValidByEmailAndToken(ctx, email, req.Token)
	if err != nil {
		return err
	}
	if token == nil {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	redeemed, err := s.resetTokens.Redeem(ctx, token.ID, token.AccountUID, string(hash), s.now().UTC())
	if err != nil {
		return err
	}
	if !redeemed {
		return ErrInvalidResetToken
	}
	return nil
}

var otpSpace = big.NewInt(1_000_000)

// generateOTP returns a uniformly drawn 6-digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
