package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailService_SendPasswordReset(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	}))
	defer srv.Close()

	svc := NewEmailService("re_test", "FitCoach <noreply@fitcoach.app>", srv.URL+"/", srv.Client())
	require.NoError(t, svc.SendPasswordReset(context.Background(), "jane@example.com", "042137"))

	assert.Equal(t, "FitCoach <noreply@fitcoach.app>", got["from"])
	assert.Equal(t, []interface{}{"jane@example.com"}, got["to"])
	assert.Contains(t, got["html"], "042137")
}

func TestEmailService_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid from"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	svc := NewEmailService("re_test", "x@y.z", srv.URL, srv.Client())
	err := svc.SendPasswordReset(context.Background(), "jane@example.com", "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "invalid from")
}
