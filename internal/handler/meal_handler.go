package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/yusufkecer/fitcoach-backend/internal/domain"
	"github.com/yusufkecer/fitcoach-backend/internal/instrumentation"
)

const maxMealsLimit = 100

type MealHandler struct {
	meals   mealService
	metrics *instrumentation.Manager
}

func NewMealHandler(meals mealService, metrics *instrumentation.Manager) *MealHandler {
	return &MealHandler{meals: meals, metrics: metrics}
}

func (h *MealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var meal domain.Meal
	if err := decodeJSON(r, &meal); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.meals.Log(r.Context(), mux.Vars(r)["uid"], &meal)
	if err != nil {
		writeServiceError(w, err, "failed to log meal")
		return
	}
	if h.metrics != nil {
		h.metrics.CounterMealsLogged.Inc()
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxMealsLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	meals, err := h.meals.Recent(r.Context(), mux.Vars(r)["uid"], limit)
	if err != nil {
		writeServiceError(w, err, "failed to list meals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": meals})
}

func (h *MealHandler) TodayNutrition(w http.ResponseWriter, r *http.Request) {
	totals, err := h.meals.TodayTotals(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		writeServiceError(w, err, "failed to sum today's meals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": totals})
}

func (h *MealHandler) MacroHistory(w http.ResponseWriter, r *http.Request) {
	totals, err := h.meals.MacroTotals(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		writeServiceError(w, err, "failed to sum macros")
		return
	}
	if totals == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "No entries found in the past year.",
			"data":    nil,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": totals})
}

func (h *MealHandler) ProteinHistory(w http.ResponseWriter, r *http.Request) {
	points, err := h.meals.ProteinHistory(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		writeServiceError(w, err, "failed to list protein history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": points})
}
