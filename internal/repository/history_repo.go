package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yusufkecer/fitcoach-backend/internal/domain"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func insertHistory(ctx context.Context, ex execer, rec *domain.HistoryRecord) (int64, error) {
	result, err := ex.ExecContext(ctx,
		`INSERT INTO history_records (uid, weight, height, bmi, bmr, maintenance_calories,
			exercise_intensity, body_type, goal, budget, any_complication, explain_goal, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UID, rec.Weight, rec.Height, rec.BMI, rec.BMR, rec.MaintenanceCalories,
		rec.ExerciseIntensity, rec.BodyType, rec.Goal, rec.Budget, rec.AnyComplication, rec.ExplainGoal, rec.Timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append history: %w", err)
	}
	return result.LastInsertId()
}

func (r *HistoryRepository) ListByUID(ctx context.Context, uid string) ([]domain.HistoryRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, uid, weight, height, bmi, bmr, maintenance_calories,
			COALESCE(exercise_intensity, ''), COALESCE(body_type, ''), COALESCE(goal, ''),
			COALESCE(budget, 0), COALESCE(any_complication, ''), COALESCE(explain_goal, ''), recorded_at
		 FROM history_records
		 WHERE uid = ?
		 ORDER BY recorded_at ASC, id ASC`, uid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var h domain.HistoryRecord
		if err := rows.Scan(
			&h.ID, &h.UID, &h.Weight, &h.Height, &h.BMI, &h.BMR, &h.MaintenanceCalories,
			&h.ExerciseIntensity, &h.BodyType, &h.Goal, &h.Budget, &h.AnyComplication, &h.ExplainGoal, &h.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, h)
	}
	return records, rows.Err()
}
