package coachapi

import "encoding/json"

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AskRequest struct {
	UserID  string        `json:"user_id"`
	Query   string        `json:"query"`
	History []ChatMessage `json:"history"`
	Type    string        `json:"type"`
}

type FoodAnalysis struct {
	FoodName      string  `json:"food_name"`
	TotalCalories float64 `json:"total_calories"`
	ProteinG      float64 `json:"protein_g"`
	CarbsG        float64 `json:"carbs_g"`
	FatG          float64 `json:"fat_g"`
}

type IdealBMI struct {
	AIResponse string   `json:"ai_response,omitempty"`
	IdealBMI   *float64 `json:"ideal_bmi"`
}

type IdealBMR struct {
	AIResponse string   `json:"ai_response,omitempty"`
	IdealBMR   *float64 `json:"ideal_bmr"`
}

type CalorieIntake struct {
	ReqIntake  *float64 `json:"req_intake"`
	PercentChg *float64 `json:"percent_chg"`
}

type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type RatedMeal struct {
	DocID         string  `json:"doc_id"`
	MealName      string  `json:"meal_name"`
	MealTime      string  `json:"meal_time"`
	Timestamp     string  `json:"timestamp"`
	Cals          float64 `json:"cals"`
	Carbs         float64 `json:"carbs"`
	Fats          float64 `json:"fats"`
	Protein       float64 `json:"protein"`
	Rating        string  `json:"rating,omitempty"`
	RatingExplain string  `json:"rating_explain,omitempty"`
}

// MealPlan is a one-day plan. Meals maps a meal slot to its food options.
type MealPlan struct {
	Meals            map[string][]string `json:"meal_plan"`
	TotalDailyMacros json.RawMessage     `json:"total_daily_macros,omitempty"`
	// Stale is set when the plan comes from the cache of an earlier day.
	Stale bool `json:"stale,omitempty"`
}

type Recipe struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Image    string  `json:"image,omitempty"`
	Calories float64 `json:"calories,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
}

type MacroGuess struct {
	Found      bool     `json:"found"`
	Name       string   `json:"name"`
	Calories   float64  `json:"calories"`
	Protein    float64  `json:"protein"`
	Carbs      float64  `json:"carbs"`
	Fat        float64  `json:"fat"`
	Confidence *float64 `json:"confidence"`
}
