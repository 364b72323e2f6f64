package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/yusufkecer/fitcoach-backend/internal/imagehost"
	"github.com/yusufkecer/fitcoach-backend/internal/service"
	"github.com/yusufkecer/fitcoach-backend/internal/validation"
)

const coachUnavailable = "The coach is not available right now. Please try again in a moment."

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to write response: %s", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errors.New("empty request body")
	}
	return err
}

// writeServiceError maps service errors to statuses. Anything unknown is
// logged and reported as a 500 with msg.
func writeServiceError(w http.ResponseWriter, err error, msg string) {
	var vErr *validation.Error
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "profile not found")
	case service.IsEmailTaken(err):
		writeError(w, http.StatusConflict, "email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrInvalidResetToken):
		writeError(w, http.StatusUnauthorized, service.ErrInvalidResetToken.Error())
	default:
		log.Errorf("%s: %s", msg, err)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

// writeRemoteError reports a failed call to an outside service. The message
// is safe to show and dismiss; nothing is retried.
func writeRemoteError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, imagehost.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, "image uploads are not configured")
		return
	}
	log.Warnf("%s: %s", what, err)
	writeError(w, http.StatusBadGateway, coachUnavailable)
}
