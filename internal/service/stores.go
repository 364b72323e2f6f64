package service

import (
	"context"
	"errors"
	"time"

	"github.com/yusufkecer/fitcoach-backend/internal/domain"
	"github.com/yusufkecer/fitcoach-backend/internal/repository"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrEmailExists = repository.ErrDuplicateEmail
)

type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type ProfileStore interface {
	Register(ctx context.Context, account *domain.Account, p *domain.Profile, rec *domain.HistoryRecord) error
	GetByUID(ctx context.Context, uid string) (*domain.Profile, error)
	Update(ctx context.Context, p *domain.Profile, rec *domain.HistoryRecord) error
	SetCoachValue(ctx context.Context, uid, column string, value float64) error
}

type HistoryStore interface {
	ListByUID(ctx context.Context, uid string) ([]domain.HistoryRecord, error)
}

type MealStore interface {
	Create(ctx context.Context, m *domain.Meal) (int64, error)
	ListBetween(ctx context.Context, uid string, from, to time.Time) ([]domain.Meal, error)
	ListRecent(ctx context.Context, uid string, limit int) ([]domain.Meal, error)
}

type ResetTokenStore interface {
	Create(ctx context.Context, accountUID string, token string, expiresAt time.Time) error
	GetValidByEmailAndToken(ctx context.Context, email, token string) (*domain.PasswordResetToken, error)
	// Redeem marks an unused token used and stores the new password hash
	// atomically. It reports whether this call redeemed the token.
	Redeem(ctx context.Context, id int64, accountUID, passwordHash string, at time.Time) (bool, error)
	DeleteByAccountUID(ctx context.Context, accountUID string) error
}
