package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yusufkecer/fitcoach-backend/internal/bodymetrics"
	"github.com/yusufkecer/fitcoach-backend/internal/domain"
	"github.com/yusufkecer/fitcoach-backend/internal/validation"
)

const (
	DefaultRecentMeals = 5
	macroHistoryDays   = 365
	proteinHistoryDays = 30
)

type MealService struct {
	meals MealStore
	now   func() time.Time
}

func NewMealService(meals MealStore) *MealService {
	return &MealService{meals: meals, now: time.Now}
}

func (s *MealService) WithClock(now func() time.Time) *MealService {
	s.now = now
	return s
}

// MealTimeAt buckets an hour of day into the meal it most likely is.
func MealTimeAt(hour int) domain.MealTime {
	switch {
	case hour >= 5 && hour < 11:
		return domain.Breakfast
	case hour >= 11 && hour < 16:
		return domain.Lunch
	case hour >= 16 && hour < 19:
		return domain.Snack
	case hour >= 19 && hour < 24:
		return domain.Dinner
	default:
		return domain.LateNight
	}
}

// Log appends a meal. A missing timestamp means now; a missing meal time is
// derived from the timestamp's hour in its own zone.
func (s *MealService) Log(ctx context.Context, uid string, m *domain.Meal) (*domain.Meal, error) {
	m.MealName = strings.TrimSpace(m.MealName)
	if err := validation.Required("meal_name", m.MealName, "Please enter a meal name"); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(m.MealName) > domain.MaxMealNameLength {
		return nil, &validation.Error{Field: "meal_name", Message: "Meal name must be at most 255 characters"}
	}
	if m.MealTime != "" && !m.MealTime.Valid() {
		return nil, &validation.Error{Field: "meal_time", Message: "Meal time must be breakfast, lunch, snack, dinner or late-night"}
	}
	if m.Cals < 0 || m.Protein < 0 || m.Carbs < 0 || m.Fat < 0 {
		return nil, &validation.Error{Field: "macros", Message: "Nutrition values cannot be negative"}
	}

	m.UID = uid
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now()
	}
	if m.MealTime == "" {
		m.MealTime = MealTimeAt(m.Timestamp.Hour())
	}

	id, err := s.meals.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	m.ID = id
	return m, nil
}

func (s *MealService) Recent(ctx context.Context, uid string, limit int) ([]domain.Meal, error) {
	if limit <= 0 {
		limit = DefaultRecentMeals
	}
	meals, err := s.meals.ListRecent(ctx, uid, limit)
	if err != nil {
		return nil, err
	}
	if meals == nil {
		meals = []domain.Meal{}
	}
	return meals, nil
}

// TodayTotals sums the meals of the current UTC day.
func (s *MealService) TodayTotals(ctx context.Context, uid string) (domain.NutritionTotals, error) {
	start := startOfDay(s.now())
	meals, err := s.meals.ListBetween(ctx, uid, start, start.AddDate(0, 0, 1))
	if err != nil {
		return domain.NutritionTotals{}, err
	}
	return sumMeals(meals), nil
}

// MacroTotals sums the meals of the last year. It returns nil when no meal
// was logged in that period.
func (s *MealService) MacroTotals(ctx context.Context, uid string) (*domain.NutritionTotals, error) {
	end := startOfDay(s.now()).AddDate(0, 0, 1)
	meals, err := s.meals.ListBetween(ctx, uid, end.AddDate(0, 0, -macroHistoryDays-1), end)
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, nil
	}

	totals := sumMeals(meals)
	totals.Calories = bodymetrics.Round2(totals.Calories)
	totals.Protein = bodymetrics.Round2(totals.Protein)
	totals.Carbs = bodymetrics.Round2(totals.Carbs)
	totals.Fats = bodymetrics.Round2(totals.Fats)
	return &totals, nil
}

// ProteinHistory returns the protein eaten per day over the last 30 days,
// one point per day with meals, ordered by date.
func (s *MealService) ProteinHistory(ctx context.Context, uid string) ([]domain.ProteinPoint, error) {
	now := s.now().UTC()
	meals, err := s.meals.ListBetween(ctx, uid, now.AddDate(0, 0, -proteinHistoryDays), now.Add(time.Nanosecond))
	if err != nil {
		return nil, err
	}

	points := []domain.ProteinPoint{}
	for _, m := range meals {
		day := m.Timestamp.UTC().Format(validation.DateLayout)
		if n := len(points); n > 0 && points[n-1].Date == day {
			points[n-1].Protein += m.Protein
			continue
		}
		points = append(points, domain.ProteinPoint{Date: day, Protein: m.Protein})
	}
	for i := range points {
		points[i].Protein = bodymetrics.Round2(points[i].Protein)
	}
	return points, nil
}

func sumMeals(meals []domain.Meal) domain.NutritionTotals {
	var t domain.NutritionTotals
	for _, m := range meals {
		t.Calories += m.Cals
		t.Protein += m.Protein
		t.Carbs += m.Carbs
		t.Fats += m.Fat
	}
	return t
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
