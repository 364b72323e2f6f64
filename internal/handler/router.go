package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/yusufkecer/fitcoach-backend/internal/instrumentation"
	"github.com/yusufkecer/fitcoach-backend/internal/middleware"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	Auth    *AuthHandler
	Users   *UserHandler
	Meals   *MealHandler
	Metrics *MetricHandler
	Coach   *CoachHandler
}

type RouterConfig struct {
	JWTSecret      string
	APIKey         string
	AllowedOrigins string

	Instrumentation *instrumentation.Manager
	// PrometheusHandler is served on /metrics when set.
	PrometheusHandler http.Handler

	// ClientIPs keys the per-client limiters; nil uses the peer address.
	ClientIPs *middleware.IPResolver

	LoginLimiter  middleware.Limiter
	ForgotLimiter middleware.Limiter
	ResetLimiter  middleware.Limiter
	APILimiter    middleware.Limiter
}

func NewRouter(cfg RouterConfig, h Handlers) *mux.Router {
	r := mux.NewRouter()

	// Global middleware: recovery → metrics → logging → CORS → security headers → body limit
	r.Use(middleware.PanicRecovery(cfg.Instrumentation))
	if cfg.Instrumentation != nil {
		r.Use(middleware.RequestMetrics(cfg.Instrumentation))
	}
	r.Use(middleware.LogRequest())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(limitBody)

	if cfg.PrometheusHandler != nil {
		r.Handle("/metrics", cfg.PrometheusHandler).Methods(http.MethodGet)
	}
	r.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet, http.MethodOptions)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.APIKeyMiddleware(cfg.APIKey))
	if cfg.APILimiter != nil {
		api.Use(middleware.RateLimit(cfg.APILimiter, cfg.ClientIPs, cfg.Instrumentation))
	}

	api.Handle("/auth/register", http.HandlerFunc(h.Auth.Register)).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/auth/login", limited(cfg, cfg.LoginLimiter, h.Auth.Login)).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/auth/forgot-password", limited(cfg, cfg.ForgotLimiter, h.Auth.ForgotPassword)).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/auth/reset-password", limited(cfg, cfg.ResetLimiter, h.Auth.ResetPassword)).Methods(http.MethodPost, http.MethodOptions)

	api.HandleFunc("/metrics/calculate", h.Metrics.Calculate).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/facts/random", h.Coach.RandomFact).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/recipes", h.Coach.SearchRecipes).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/foods/macros", h.Coach.GuessMacros).Methods(http.MethodPost, http.MethodOptions)

	protected := api.PathPrefix("/users/{uid}").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret), middleware.RequireOwner)

	protected.HandleFunc("/profile", h.Users.GetProfile).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/profile", h.Users.UpdateProfile).Methods(http.MethodPatch, http.MethodOptions)
	protected.HandleFunc("/history", h.Users.History).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/history/weight", h.Users.WeightHistory).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/history/bmi", h.Users.BMIHistory).Methods(http.MethodGet, http.MethodOptions)

	protected.HandleFunc("/meals", h.Meals.List).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/meals", h.Meals.Create).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/meals/rated", h.Coach.RatedMeals).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/nutrition/today", h.Meals.TodayNutrition).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/nutrition/macros", h.Meals.MacroHistory).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/nutrition/protein", h.Meals.ProteinHistory).Methods(http.MethodGet, http.MethodOptions)

	protected.HandleFunc("/insights/ideal-bmi", h.Coach.IdealBMI).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/insights/ideal-bmr", h.Coach.IdealBMR).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/insights/calorie-intake", h.Coach.CalorieIntake).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/insights/body", h.Coach.BodyInsights).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/meal-plan/today", h.Coach.TodayMealPlan).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/chat", h.Coach.Chat).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/food-images", h.Coach.FoodImage).Methods(http.MethodPost, http.MethodOptions)

	return r
}

func limited(cfg RouterConfig, limiter middleware.Limiter, fn http.HandlerFunc) http.Handler {
	if limiter == nil {
		return fn
	}
	return middleware.RateLimit(limiter, cfg.ClientIPs, cfg.Instrumentation)(fn)
}

// limitBody caps request bodies; image uploads set their own larger cap.
func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/food-images") {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}
