package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/yusufkecer/fitcoach-backend/internal/domain"
)

var ErrDuplicateEmail = errors.New("email already exists")

const mysqlDuplicateEntry = 1062

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func insertAccount(ctx context.Context, ex execer, account *domain.Account) (int64, error) {
	result, err := ex.ExecContext(ctx,
		`INSERT INTO accounts (uid, email, password_hash) VALUES (?, ?, ?)`,
		account.UID,
		account.Email,
		account.PasswordHash,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return 0, ErrDuplicateEmail
		}
		return 0, fmt.Errorf("failed to create account: %w", err)
	}
	return result.LastInsertId()
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.QueryRowContext(ctx,
		`SELECT id, uid, email, password_hash FROM accounts WHERE email = ?`,
		email,
	).Scan(&account.ID, &account.UID, &account.Email, &account.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func updatePassword(ctx context.Context, ex execer, uid, passwordHash string) error {
	res, err := ex.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ? WHERE uid = ?`,
		passwordHash, uid,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update password: account %s not found", uid)
	}
	return nil
}
