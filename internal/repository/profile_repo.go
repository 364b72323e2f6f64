package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yusufkecer/fitcoach-backend/internal/domain"
)

const profileColumns = `uid, name, email, COALESCE(phone, ''), dob, COALESCE(gender, ''), COALESCE(diet, ''),
	weight, height, exercise_intensity, COALESCE(body_type, ''), COALESCE(goal, ''), COALESCE(budget, 0),
	bmi, bmr, ideal_bmi, ideal_bmr, maintenance_calories, COALESCE(any_complication, ''),
	COALESCE(explain_goal, ''), req_cal_intake, data_updated_at, created_at, updated_at`

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Register stores the account, its profile and the first history record in
// one transaction.
func (r *ProfileRepository) Register(ctx context.Context, account *domain.Account, p *domain.Profile, rec *domain.HistoryRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin registration: %w", err)
	}
	defer tx.Rollback()

	id, err := insertAccount(ctx, tx, account)
	if err != nil {
		return err
	}
	account.ID = id

	cd := p.CurrentData
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (uid, name, email, phone, dob, gender, diet,
			weight, height, exercise_intensity, body_type, goal, budget,
			bmi, bmr, ideal_bmi, ideal_bmr, maintenance_calories,
			any_complication, explain_goal, req_cal_intake, data_updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UID, p.Name, p.Email, p.Phone, p.DOB, p.Gender, p.Diet,
		cd.Weight, cd.Height, cd.ExerciseIntensity, cd.BodyType, cd.Goal, cd.Budget,
		cd.BMI, cd.BMR, cd.IdealBMI, cd.IdealBMR, cd.MaintenanceCalories,
		cd.AnyComplication, cd.ExplainGoal, cd.ReqCalIntake, cd.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	recID, err := insertHistory(ctx, tx, rec)
	if err != nil {
		return err
	}
	rec.ID = recID

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetByUID(ctx context.Context, uid string) (*domain.Profile, error) {
	var (
		p        domain.Profile
		idealBMI sql.NullFloat64
		idealBMR sql.NullFloat64
		reqCal   sql.NullFloat64
	)
	cd := &p.CurrentData
	err := r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE uid = ?`, uid,
	).Scan(
		&p.UID, &p.Name, &p.Email, &p.Phone, &p.DOB, &p.Gender, &p.Diet,
		&cd.Weight, &cd.Height, &cd.ExerciseIntensity, &cd.BodyType, &cd.Goal, &cd.Budget,
		&cd.BMI, &cd.BMR, &idealBMI, &idealBMR, &cd.MaintenanceCalories, &cd.AnyComplication,
		&cd.ExplainGoal, &reqCal, &cd.UpdatedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	cd.IdealBMI = nullableFloat(idealBMI)
	cd.IdealBMR = nullableFloat(idealBMR)
	cd.ReqCalIntake = nullableFloat(reqCal)
	return &p, nil
}

// Update overwrites the profile and appends rec in one transaction, so the
// history never misses a stored state.
func (r *ProfileRepository) Update(ctx context.Context, p *domain.Profile, rec *domain.HistoryRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin profile update: %w", err)
	}
	defer tx.Rollback()

	cd := p.CurrentData
	if _, err := tx.ExecContext(ctx,
		`UPDATE profiles SET name = ?, phone = ?, diet = ?,
			weight = ?, height = ?, exercise_intensity = ?, body_type = ?, goal = ?, budget = ?,
			bmi = ?, bmr = ?, ideal_bmi = ?, ideal_bmr = ?, maintenance_calories = ?,
			any_complication = ?, explain_goal = ?, req_cal_intake = ?, data_updated_at = ?
		 WHERE uid = ?`,
		p.Name, p.Phone, p.Diet,
		cd.Weight, cd.Height, cd.ExerciseIntensity, cd.BodyType, cd.Goal, cd.Budget,
		cd.BMI, cd.BMR, cd.IdealBMI, cd.IdealBMR, cd.MaintenanceCalories,
		cd.AnyComplication, cd.ExplainGoal, cd.ReqCalIntake, cd.UpdatedAt,
		p.UID,
	); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	recID, err := insertHistory(ctx, tx, rec)
	if err != nil {
		return err
	}
	rec.ID = recID

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile update: %w", err)
	}
	return nil
}

// SetCoachValue stores a value returned by the coach backend. Only the
// ideal_bmi, ideal_bmr and req_cal_intake columns are writable this way.
func (r *ProfileRepository) SetCoachValue(ctx context.Context, uid, column string, value float64) error {
	allowed := map[string]bool{
		"ideal_bmi": true, "ideal_bmr": true, "req_cal_intake": true,
	}
	if !allowed[column] {
		return fmt.Errorf("column %q is not writable", column)
	}

	_, err := r.db.ExecContext(ctx,
		"UPDATE profiles SET "+column+" = ? WHERE uid = ?",
		value, uid,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", column, err)
	}
	return nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
