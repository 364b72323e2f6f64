package domain

import "time"

// HistoryRecord is an immutable snapshot of a profile's current data.
type HistoryRecord struct {
	ID                  int64     `json:"id"`
	UID                 string    `json:"uid"`
	Weight              float64   `json:"weight"`
	Height              float64   `json:"height"`
	BMI                 float64   `json:"bmi"`
	BMR                 float64   `json:"bmr"`
	MaintenanceCalories float64   `json:"maintenanceCalories"`
	ExerciseIntensity   string    `json:"exercise_intensity"`
	BodyType            string    `json:"body_type"`
	Goal                string    `json:"goal"`
	Budget              float64   `json:"budget"`
	AnyComplication     string    `json:"any_complication"`
	ExplainGoal         string    `json:"explain_goal"`
	Timestamp           time.Time `json:"timestamp"`
}

func NewHistoryRecord(uid string, cd CurrentData, at time.Time) *HistoryRecord {
	return &HistoryRecord{
		UID:                 uid,
		Weight:              cd.Weight,
		Height:              cd.Height,
		BMI:                 cd.BMI,
		BMR:                 cd.BMR,
		MaintenanceCalories: cd.MaintenanceCalories,
		ExerciseIntensity:   cd.ExerciseIntensity,
		BodyType:            cd.BodyType,
		Goal:                cd.Goal,
		Budget:              cd.Budget,
		AnyComplication:     cd.AnyComplication,
		ExplainGoal:         cd.ExplainGoal,
		Timestamp:           at,
	}
}

type WeightPoint struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
}

type BMIPoint struct {
	Date time.Time `json:"date"`
	BMI  float64   `json:"bmi"`
}
