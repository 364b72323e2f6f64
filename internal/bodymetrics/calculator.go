// Package bodymetrics derives BMI, BMR and maintenance calories from body
// measurements. It has no I/O and keeps no state; callers validate ranges.
package bodymetrics

import "math"

type ActivityLevel string

const (
	ActivityNone    ActivityLevel = "no"
	ActivityLight   ActivityLevel = "light"
	ActivityMedium  ActivityLevel = "medium"
	ActivityRegular ActivityLevel = "regular"
	ActivityStudent ActivityLevel = "student"
)

const defaultMultiplier = 1.2

var activityMultipliers = map[ActivityLevel]float64{
	ActivityNone:    1.2,
	ActivityLight:   1.375,
	ActivityMedium:  1.55,
	ActivityRegular: 1.725,
	ActivityStudent: 1.9,
}

// Multiplier returns the energy expenditure factor for the level.
// Unknown levels get the sedentary factor.
func (l ActivityLevel) Multiplier() float64 {
	if m, ok := activityMultipliers[l]; ok {
		return m
	}
	return defaultMultiplier
}

func (l ActivityLevel) Valid() bool {
	_, ok := activityMultipliers[l]
	return ok
}

// BMI returns weight over height squared, height given in centimetres.
func BMI(weightKg, heightCm float64) float64 {
	heightM := heightCm / 100
	return weightKg / (heightM * heightM)
}

// BMR is the Mifflin-St Jeor estimate without the sex term; the +5 constant
// is applied to everyone.
func BMR(weightKg, heightCm float64, ageYears int) float64 {
	return 10*weightKg + 6.25*heightCm - 5*float64(ageYears) + 5
}

func MaintenanceCalories(bmr float64, level ActivityLevel) float64 {
	return bmr * level.Multiplier()
}

// PercentChange is the relative difference of a required intake against
// maintenance, in percent with two decimals.
func PercentChange(maintenance, required float64) float64 {
	return Round2((required - maintenance) / maintenance * 100)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
