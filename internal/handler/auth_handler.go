package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yusufkecer/fitcoach-backend/internal/domain"
	"github.com/yusufkecer/fitcoach-backend/internal/instrumentation"
	"github.com/yusufkecer/fitcoach-backend/internal/middleware"
	"github.com/yusufkecer/fitcoach-backend/internal/service"
)

const forgotPasswordTimeout = 30 * time.Second

type AuthHandler struct {
	jwtSecret string
	profiles  profileService
	auth      authService
	metrics   *instrumentation.Manager

	// guesses per email, whatever address they come from
	resetLimiter middleware.Limiter

	// pending password reset mails
	wg sync.WaitGroup
}

func NewAuthHandler(
	jwtSecret string,
	profiles profileService,
	auth authService,
	metrics *instrumentation.Manager,
) *AuthHandler {
	return &AuthHandler{
		jwtSecret: jwtSecret,
		profiles:  profiles,
		auth:      auth,
		metrics:   metrics,
	}
}

// WithResetLimiter caps reset-password attempts per email address.
func (h *AuthHandler) WithResetLimiter(l middleware.Limiter) *AuthHandler {
	h.resetLimiter = l
	return h
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, profile, err := h.profiles.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, "failed to create account")
		return
	}
	if h.metrics != nil {
		h.metrics.CounterRegistrations.Inc()
	}

	token, err := middleware.GenerateToken(account.UID, account.Email, h.jwtSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusCreated, domain.TokenResponse{Token: token, UID: account.UID, Profile: profile})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err, "failed to login")
		return
	}

	token, err := middleware.GenerateToken(account.UID, account.Email, h.jwtSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	resp := domain.TokenResponse{Token: token, UID: account.UID}
	if profile, err := h.profiles.Get(r.Context(), account.UID); err != nil {
		log.Warnf("login %s: profile not loaded: %s", account.UID, err)
	} else {
		resp.Profile = profile
	}
	writeJSON(w, http.StatusOK, resp)
}

// ForgotPassword answers at once and mails the code in the background, so the
// response does not reveal whether the email is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	const answer = "if the email exists, a code has been sent"

	var req domain.ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusOK, map[string]string{"message": answer})
		return
	}

	h.wg.Add(1)
	go func(email string) {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), forgotPasswordTimeout)
		defer cancel()
		if err := h.auth.RequestReset(ctx, email); err != nil {
			log.Errorf("[forgot-password] %s", err)
		}
	}(req.Email)

	writeJSON(w, http.StatusOK, map[string]string{"message": answer})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if email := service.NormalizeEmail(req.Email); h.resetLimiter != nil && email != "" {
		allowed, retryAfter, err := h.resetLimiter.Allow(r.Context(), "email:"+email)
		if err != nil {
			log.Errorf("reset limiter: %s", err)
		} else if !allowed {
			if h.metrics != nil {
				h.metrics.CounterRateLimited.Inc()
			}
			middleware.TooManyRequests(w, retryAfter)
			return
		}
	}

	if err := h.auth.ResetPassword(r.Context(), &req); err != nil {
		writeServiceError(w, err, "failed to reset password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset successful"})
}

// Wait blocks until every background reset mail finished.
func (h *AuthHandler) Wait() {
	h.wg.Wait()
}
