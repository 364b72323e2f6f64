package handler

import (
	"net/http"
	"time"

	"github.com/yusufkecer/fitcoach-backend/internal/bodymetrics"
	"github.com/yusufkecer/fitcoach-backend/internal/validation"
)

type calculateRequest struct {
	Weight            float64 `json:"weight"`
	Height            float64 `json:"height"`
	Age               *int    `json:"age"`
	DOB               string  `json:"dob"`
	ExerciseIntensity string  `json:"exercise_intensity"`
}

type calculateResponse struct {
	bodymetrics.UserMetrics
	Category bodymetrics.BMICategory `json:"category"`
}

// MetricHandler exposes the stateless calculator.
type MetricHandler struct {
	now func() time.Time
}

func NewMetricHandler() *MetricHandler {
	return &MetricHandler{now: time.Now}
}

func (h *MetricHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validation.First(
		validation.Weight(req.Weight),
		validation.Height(req.Height),
		validation.ExerciseIntensity(req.ExerciseIntensity),
	); err != nil {
		writeServiceError(w, err, "failed to calculate metrics")
		return
	}

	var age int
	switch {
	case req.DOB != "":
		dob, err := validation.DateOfBirth(req.DOB, h.now().UTC())
		if err != nil {
			writeServiceError(w, err, "failed to calculate metrics")
			return
		}
		age = bodymetrics.AgeOn(dob, h.now().UTC())
	case req.Age != nil:
		if *req.Age < 13 || *req.Age > 120 {
			writeError(w, http.StatusBadRequest, "age must be between 13 and 120")
			return
		}
		age = *req.Age
	default:
		writeError(w, http.StatusBadRequest, "either age or dob is required")
		return
	}

	metrics := bodymetrics.Compute(bodymetrics.Input{
		WeightKg: req.Weight,
		HeightCm: req.Height,
		AgeYears: age,
		Activity: bodymetrics.ActivityLevel(req.ExerciseIntensity),
	})
	writeJSON(w, http.StatusOK, calculateResponse{
		UserMetrics: metrics,
		Category:    bodymetrics.Category(metrics.BMI),
	})
}
