package domain

import "time"

// Profile is the per-user document. CurrentData holds the latest body
// measurements together with the metrics derived from them.
type Profile struct {
	UID         string      `json:"uid"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	DOB         string      `json:"dob"`
	Gender      string      `json:"gender"`
	Diet        string      `json:"diet"`
	CurrentData CurrentData `json:"currentData"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type CurrentData struct {
	Weight              float64   `json:"weight"`
	Height              float64   `json:"height"`
	ExerciseIntensity   string    `json:"exercise_intensity"`
	BodyType            string    `json:"body_type"`
	Goal                string    `json:"goal"`
	Budget              float64   `json:"budget"`
	BMI                 float64   `json:"bmi"`
	BMR                 float64   `json:"bmr"`
	IdealBMI            *float64  `json:"ideal_bmi"`
	IdealBMR            *float64  `json:"ideal_bmr"`
	MaintenanceCalories float64   `json:"maintenanceCalories"`
	AnyComplication     string    `json:"any_complication"`
	ExplainGoal         string    `json:"explain_goal"`
	ReqCalIntake        *float64  `json:"req_cal_intake"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

type RegisterRequest struct {
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Password          string  `json:"password"`
	Phone             string  `json:"phone"`
	DOB               string  `json:"dob"`
	Gender            string  `json:"gender"`
	Diet              string  `json:"diet"`
	Weight            float64 `json:"weight"`
	Height            float64 `json:"height"`
	ExerciseIntensity string  `json:"exercise_intensity"`
	BodyType          string  `json:"body_type"`
	Goal              string  `json:"goal"`
	Budget            float64 `json:"budget"`
	AnyComplication   string  `json:"any_complication"`
	ExplainGoal       string  `json:"explain_goal"`
}

// UpdateProfileRequest carries only the fields being changed.
type UpdateProfileRequest struct {
	Name              *string  `json:"name"`
	Phone             *string  `json:"phone"`
	Diet              *string  `json:"diet"`
	Weight            *float64 `json:"weight"`
	Height            *float64 `json:"height"`
	ExerciseIntensity *string  `json:"exercise_intensity"`
	BodyType          *string  `json:"body_type"`
	Goal              *string  `json:"goal"`
	Budget            *float64 `json:"budget"`
	AnyComplication   *string  `json:"any_complication"`
	ExplainGoal       *string  `json:"explain_goal"`
}
