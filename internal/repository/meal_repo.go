package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yusufkecer/fitcoach-backend/internal/domain"
)

const mealColumns = `id, uid, meal_name, cals, protein, carbs, fat, meal_time, eaten_at`

type MealRepository struct {
	db *sql.DB
}

func NewMealRepository(db *sql.DB) *MealRepository {
	return &MealRepository{db: db}
}

func (r *MealRepository) Create(ctx context.Context, m *domain.Meal) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO meals (uid, meal_name, cals, protein, carbs, fat, meal_time, eaten_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.UID, m.MealName, m.Cals, m.Protein, m.Carbs, m.Fat, m.MealTime, m.Timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create meal: %w", err)
	}
	return result.LastInsertId()
}

// ListBetween returns meals eaten in [from, to), oldest first.
func (r *MealRepository) ListBetween(ctx context.Context, uid string, from, to time.Time) ([]domain.Meal, error) {
	return r.query(ctx,
		`SELECT `+mealColumns+` FROM meals
		 WHERE uid = ? AND eaten_at >= ? AND eaten_at < ?
		 ORDER BY eaten_at ASC, id ASC`,
		uid, from, to,
	)
}

func (r *MealRepository) ListRecent(ctx context.Context, uid string, limit int) ([]domain.Meal, error) {
	return r.query(ctx,
		`SELECT `+mealColumns+` FROM meals
		 WHERE uid = ?
		 ORDER BY eaten_at DESC, id DESC
		 LIMIT ?`,
		uid, limit,
	)
}

func (r *MealRepository) query(ctx context.Context, query string, args ...any) ([]domain.Meal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	defer rows.Close()

	var meals []domain.Meal
	for rows.Next() {
		var m domain.Meal
		if err := rows.Scan(&m.ID, &m.UID, &m.MealName, &m.Cals, &m.Protein, &m.Carbs, &m.Fat, &m.MealTime, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}
