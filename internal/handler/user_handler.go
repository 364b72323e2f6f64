package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yusufkecer/fitcoach-backend/internal/domain"
)

// UserHandler serves the profile document and its history.
type UserHandler struct {
	profiles profileService
}

func NewUserHandler(profiles profileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Get(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		writeServiceError(w, err, "failed to get profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.profiles.Update(r.Context(), mux.Vars(r)["uid"], &req)
	if err != nil {
		writeServiceError(w, err, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.profiles.History(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		writeServiceError(w, err, "failed to list history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": records})
}

func (h *UserHandler) WeightHistory(w http.ResponseWriter, r *http.Request) {
	points, err := h.profiles.WeightSeries(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		writeServiceError(w, err, "failed to list weight history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": points})
}

func (h *UserHandler) BMIHistory(w http.ResponseWriter, r *http.Request) {
	points, err := h.profiles.BMISeries(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		writeServiceError(w, err, "failed to list bmi history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": points})
}
