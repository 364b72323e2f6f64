package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/yusufkecer/fitcoach-backend/internal/bodymetrics"
	"github.com/yusufkecer/fitcoach-backend/internal/coachapi"
	"github.com/yusufkecer/fitcoach-backend/internal/domain"
)

const (
	maxImageBytes       = 10 << 20
	defaultRecipeCount  = 6
	maxRecipeCount      = 20
	maxChatHistory      = 5
	tempImageCleanupTTL = 15 * time.Second
)

// CoachHandler forwards the AI features to the coach backend and keeps the
// values it returns on the profile.
type CoachHandler struct {
	coach    coachClient
	images   imageUploader
	profiles profileService
	meals    mealService
}

func NewCoachHandler(coach coachClient, images imageUploader, profiles profileService, meals mealService) *CoachHandler {
	return &CoachHandler{
		coach:    coach,
		images:   images,
		profiles: profiles,
		meals:    meals,
	}
}

type chatRequest struct {
	Query   string                 `json:"query"`
	History []coachapi.ChatMessage `json:"history"`
	Type    string                 `json:"type"`
}

func (h *CoachHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Type == "" {
		req.Type = "general"
	}
	if len(req.History) > maxChatHistory {
		req.History = req.History[len(req.History)-maxChatHistory:]
	}

	answer, err := h.coach.Ask(r.Context(), coachapi.AskRequest{
		UserID:  mux.Vars(r)["uid"],
		Query:   req.Query,
		History: req.History,
		Type:    req.Type,
	})
	if err != nil {
		writeRemoteError(w, err, "chat")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// IdealBMI returns the stored target BMI, asking the coach for one and
// keeping it when the profile has none yet.
func (h *CoachHandler) IdealBMI(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]
	profile, err := h.profiles.Get(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err, "failed to get profile")
		return
	}

	resp := map[string]interface{}{
		"bmi":       profile.CurrentData.BMI,
		"category":  bodymetrics.Category(profile.CurrentData.BMI),
		"ideal_bmi": profile.CurrentData.IdealBMI,
	}
	if profile.CurrentData.IdealBMI == nil {
		ai, err := h.coach.IdealBMI(r.Context(), uid)
		if err != nil {
			writeRemoteError(w, err, "ideal bmi")
			return
		}
		if ai.IdealBMI != nil {
			h.store(r.Context(), uid, "ideal bmi", *ai.IdealBMI, h.profiles.SetIdealBMI)
		}
		resp["ideal_bmi"] = ai.IdealBMI
		resp["ai_response"] = ai.AIResponse
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CoachHandler) IdealBMR(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]
	profile, err := h.profiles.Get(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err, "failed to get profile")
		return
	}

	resp := map[string]interface{}{
		"bmr":       profile.CurrentData.BMR,
		"ideal_bmr": profile.CurrentData.IdealBMR,
	}
	if profile.CurrentData.IdealBMR == nil {
		ai, err := h.coach.IdealBMR(r.Context(), uid)
		if err != nil {
			writeRemoteError(w, err, "ideal bmr")
			return
		}
		if ai.IdealBMR != nil {
			h.store(r.Context(), uid, "ideal bmr", *ai.IdealBMR, h.profiles.SetIdealBMR)
		}
		resp["ideal_bmr"] = ai.IdealBMR
		resp["ai_response"] = ai.AIResponse
	}
	writeJSON(w, http.StatusOK, resp)
}

// CalorieIntake returns the required daily intake and how far it is from
// maintenance, in percent.
func (h *CoachHandler) CalorieIntake(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]
	profile, err := h.profiles.Get(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err, "failed to get profile")
		return
	}
	maintenance := profile.CurrentData.MaintenanceCalories

	intake := profile.CurrentData.ReqCalIntake
	if intake == nil {
		ai, err := h.coach.RequiredIntake(r.Context(), uid)
		if err != nil {
			writeRemoteError(w, err, "required intake")
			return
		}
		if ai.ReqIntake != nil {
			h.store(r.Context(), uid, "required intake", *ai.ReqIntake, h.profiles.SetRequiredIntake)
		}
		intake = ai.ReqIntake
	}

	var percent *float64
	if intake != nil && maintenance > 0 {
		p := bodymetrics.PercentChange(maintenance, *intake)
		percent = &p
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"req_intake":          intake,
		"percent_chg":         percent,
		"maintenanceCalories": maintenance,
	})
}

func (h *CoachHandler) BodyInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.coach.BodyInsights(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		writeRemoteError(w, err, "body insights")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"insights": insights})
}

func (h *CoachHandler) RatedMeals(w http.ResponseWriter, r *http.Request) {
	meals, err := h.coach.RatedMeals(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		writeRemoteError(w, err, "rated meals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": meals})
}

func (h *CoachHandler) TodayMealPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.coach.TodayMealPlan(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		writeRemoteError(w, err, "meal plan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// FoodImage uploads the photo, has it analysed and removes the hosted copy
// again, also when the analysis failed. With log=true the analysed food is
// added to the user's meals.
func (h *CoachHandler) FoodImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "image must be a multipart upload of at most 10 MB")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()

	uploaded, err := h.images.Upload(r.Context(), header.Filename, file)
	if err != nil {
		writeRemoteError(w, err, "upload food image")
		return
	}
	defer h.deleteTempImage(r.Context(), uploaded.PublicID)

	analysis, err := h.coach.AnalyzeFood(r.Context(), uploaded.SecureURL)
	if err != nil {
		if errors.Is(err, coachapi.ErrInvalidAnswer) {
			writeError(w, http.StatusUnprocessableEntity, "Could not read the food on this image. Try another photo.")
			return
		}
		writeRemoteError(w, err, "analyze food")
		return
	}

	resp := map[string]interface{}{"analysis": analysis}
	if r.FormValue("log") == "true" {
		meal, err := h.meals.Log(r.Context(), mux.Vars(r)["uid"], &domain.Meal{
			MealName: analysis.FoodName,
			Cals:     analysis.TotalCalories,
			Protein:  analysis.ProteinG,
			Carbs:    analysis.CarbsG,
			Fat:      analysis.FatG,
		})
		if err != nil {
			writeServiceError(w, err, "failed to log meal")
			return
		}
		resp["meal"] = meal
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CoachHandler) RandomFact(w http.ResponseWriter, r *http.Request) {
	fact, err := h.coach.RandomFact(r.Context())
	if err != nil {
		writeRemoteError(w, err, "random fact")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"fact": fact})
}

func (h *CoachHandler) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	number := defaultRecipeCount
	if v := r.URL.Query().Get("number"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxRecipeCount {
			writeError(w, http.StatusBadRequest, "number must be between 1 and 20")
			return
		}
		number = n
	}

	recipes, err := h.coach.SearchRecipes(r.Context(), query, number)
	if err != nil {
		writeRemoteError(w, err, "search recipes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": recipes})
}

func (h *CoachHandler) GuessMacros(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	guess, err := h.coach.GuessMacros(r.Context(), req.Name)
	if err != nil {
		writeRemoteError(w, err, "guess macros")
		return
	}
	writeJSON(w, http.StatusOK, guess)
}

func (h *CoachHandler) store(ctx context.Context, uid, what string, v float64, set func(context.Context, string, float64) error) {
	if err := set(ctx, uid, v); err != nil {
		log.Errorf("failed to store %s for %s: %s", what, uid, err)
	}
}

func (h *CoachHandler) deleteTempImage(ctx context.Context, publicID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tempImageCleanupTTL)
	defer cancel()
	if err := h.coach.DeleteTempImage(ctx, publicID); err != nil {
		log.Warnf("failed to delete temporary image %s: %s", publicID, err)
	}
}
