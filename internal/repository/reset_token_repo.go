package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yusufkecer/fitcoach-backend/internal/domain"
)

// ResetTokenRepository stores the one-time password reset codes.
type ResetTokenRepository struct {
	db *sql.DB
}

func NewResetTokenRepository(db *sql.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Create(ctx context.Context, accountUID string, token string, expiresAt time.Time) error {
	const q = `INSERT INTO password_reset_tokens (account_uid, token, expires_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, accountUID, token, expiresAt.UTC()); err != nil {
		return fmt.Errorf("insert reset token for %s: %w", accountUID, err)
	}
	return nil
}

// GetValidByEmailAndToken returns the newest unused, unexpired code matching
// email and token, or nil when there is none.
func (r *ResetTokenRepository) GetValidByEmailAndToken(ctx context.Context, email, token string) (*domain.PasswordResetToken, error) {
	const q = `
		SELECT t.id, t.account_uid, t.token, t.expires_at, t.used_at
		FROM password_reset_tokens t
		INNER JOIN accounts a ON a.uid = t.account_uid
		WHERE a.email = ? AND t.token = ? AND t.used_at IS NULL AND t.expires_at > UTC_TIMESTAMP()
		ORDER BY t.id DESC
		LIMIT 1`

	var (
		rt     domain.PasswordResetToken
		usedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, email, token).Scan(&rt.ID, &rt.AccountUID, &rt.Token, &rt.ExpiresAt, &usedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query reset token: %w", err)
	}
	if usedAt.Valid {
		rt.UsedAt = &usedAt.Time
	}
	return &rt, nil
}

// Redeem stamps used_at on an unused token and sets the account's new
// password hash in the same transaction. It reports false, changing nothing,
// when another request already used the token.
func (r *ResetTokenRepository) Redeem(ctx context.Context, id int64, accountUID, passwordHash string, at time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin redeem reset token %d: %w", id, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		at.UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("consume reset token %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume reset token %d: %w", id, err)
	}
	if n != 1 {
		return false, nil
	}

	if err := updatePassword(ctx, tx, accountUID, passwordHash); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit redeem reset token %d: %w", id, err)
	}
	return true, nil
}

func (r *ResetTokenRepository) DeleteByAccountUID(ctx context.Context, accountUID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE account_uid = ?`, accountUID); err != nil {
		return fmt.Errorf("delete reset tokens of %s: %w", accountUID, err)
	}
	return nil
}
