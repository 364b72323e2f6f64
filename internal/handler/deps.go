package handler

import (
	"context"
	"io"

	"github.com/yusufkecer/fitcoach-backend/internal/coachapi"
	"github.com/yusufkecer/fitcoach-backend/internal/domain"
	"github.com/yusufkecer/fitcoach-backend/internal/imagehost"
	"github.com/yusufkecer/fitcoach-backend/internal/service"
)

type profileService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Account, *domain.Profile, error)
	Get(ctx context.Context, uid string) (*domain.Profile, error)
	Update(ctx context.Context, uid string, req *domain.UpdateProfileRequest) (*domain.Profile, error)
	History(ctx context.Context, uid string) ([]domain.HistoryRecord, error)
	WeightSeries(ctx context.Context, uid string) ([]domain.WeightPoint, error)
	BMISeries(ctx context.Context, uid string) ([]domain.BMIPoint, error)
	SetIdealBMI(ctx context.Context, uid string, v float64) error
	SetIdealBMR(ctx context.Context, uid string, v float64) error
	SetRequiredIntake(ctx context.Context, uid string, v float64) error
}

type authService interface {
	Login(ctx context.Context, email, password string) (*domain.Account, error)
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error
}

type mealService interface {
	Log(ctx context.Context, uid string, m *domain.Meal) (*domain.Meal, error)
	Recent(ctx context.Context, uid string, limit int) ([]domain.Meal, error)
	TodayTotals(ctx context.Context, uid string) (domain.NutritionTotals, error)
	MacroTotals(ctx context.Context, uid string) (*domain.NutritionTotals, error)
	ProteinHistory(ctx context.Context, uid string) ([]domain.ProteinPoint, error)
}

type coachClient interface {
	Ask(ctx context.Context, req coachapi.AskRequest) (string, error)
	AnalyzeFood(ctx context.Context, imageURL string) (*coachapi.FoodAnalysis, error)
	DeleteTempImage(ctx context.Context, publicID string) error
	IdealBMI(ctx context.Context, uid string) (*coachapi.IdealBMI, error)
	IdealBMR(ctx context.Context, uid string) (*coachapi.IdealBMR, error)
	RequiredIntake(ctx context.Context, uid string) (*coachapi.CalorieIntake, error)
	BodyInsights(ctx context.Context, uid string) ([]coachapi.Insight, error)
	RatedMeals(ctx context.Context, uid string) ([]coachapi.RatedMeal, error)
	TodayMealPlan(ctx context.Context, uid string) (*coachapi.MealPlan, error)
	RandomFact(ctx context.Context) (string, error)
	SearchRecipes(ctx context.Context, query string, number int) ([]coachapi.Recipe, error)
	GuessMacros(ctx context.Context, name string) (*coachapi.MacroGuess, error)
}

type imageUploader interface {
	Upload(ctx context.Context, filename string, image io.Reader) (*imagehost.UploadResult, error)
}

var (
	_ profileService = (*service.ProfileService)(nil)
	_ authService    = (*service.AuthService)(nil)
	_ mealService    = (*service.MealService)(nil)
	_ coachClient    = (*coachapi.Client)(nil)
	_ imageUploader  = (*imagehost.Client)(nil)
)
