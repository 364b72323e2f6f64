package domain

import "time"

type MealTime string

const (
	Breakfast MealTime = "breakfast"
	Lunch     MealTime = "lunch"
	Snack     MealTime = "snack"
	Dinner    MealTime = "dinner"
	LateNight MealTime = "late-night"
)

// MaxMealNameLength matches the meal_name column width.
const MaxMealNameLength = 255

func (t MealTime) Valid() bool {
	switch t {
	case Breakfast, Lunch, Snack, Dinner, LateNight:
		return true
	}
	return false
}

type Meal struct {
	ID        int64     `json:"id"`
	UID       string    `json:"uid"`
	MealName  string    `json:"meal_name"`
	Cals      float64   `json:"cals"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fat       float64   `json:"fat"`
	MealTime  MealTime  `json:"meal_time"`
	Timestamp time.Time `json:"timestamp"`
}

type NutritionTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

type ProteinPoint struct {
	Date    string  `json:"date"`
	Protein float64 `json:"protein"`
}
