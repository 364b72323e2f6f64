package bodymetrics

import "time"

// IdealBMI is the upper bound of the normal band, stored as the profile
// target when the coach has not provided one.
const IdealBMI = 24.9

type Input struct {
	WeightKg float64
	HeightCm float64
	AgeYears int
	Activity ActivityLevel
}

type UserMetrics struct {
	BMI                 float64 `json:"bmi"`
	BMR                 float64 `json:"bmr"`
	MaintenanceCalories float64 `json:"maintenanceCalories"`
}

// Compute derives all three metrics in one pass. BMI and BMR are rounded to
// two decimals and maintenance is computed from the rounded BMR, which is the
// form stored on profiles.
func Compute(in Input) UserMetrics {
	bmr := Round2(BMR(in.WeightKg, in.HeightCm, in.AgeYears))
	return UserMetrics{
		BMI:                 Round2(BMI(in.WeightKg, in.HeightCm)),
		BMR:                 bmr,
		MaintenanceCalories: Round2(MaintenanceCalories(bmr, in.Activity)),
	}
}

// AgeOn returns the completed years between dob and now.
func AgeOn(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

type BMICategory string

const (
	Underweight   BMICategory = "Underweight"
	NormalWeight  BMICategory = "Normal Weight"
	Overweight    BMICategory = "Overweight"
	ObesityLevel1 BMICategory = "Obesity Level 1"
	ObesityLevel2 BMICategory = "Obesity Level 2"
	ObesityLevel3 BMICategory = "Obesity Level 3"
)

func Category(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return Underweight
	case bmi < 25:
		return NormalWeight
	case bmi < 30:
		return Overweight
	case bmi < 35:
		return ObesityLevel1
	case bmi < 40:
		return ObesityLevel2
	default:
		return ObesityLevel3
	}
}
