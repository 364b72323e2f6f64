package imagehost

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1_1/democloud/upload", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "temp_food_upload", r.FormValue("upload_preset"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "lunch.png", header.Filename)
		assert.Equal(t, "png-bytes", string(data))

		_, _ = w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/democloud/lunch.png","public_id":"temp/lunch"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "democloud", "temp_food_upload", srv.Client())
	res, err := c.Upload(context.Background(), "/tmp/lunch.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/democloud/lunch.png", res.SecureURL)
	assert.Equal(t, "temp/lunch", res.PublicID)
}

func TestUpload_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Upload preset not found"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "democloud", "missing", srv.Client())
	_, err := c.Upload(context.Background(), "a.jpg", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Upload preset not found")
}

func TestUpload_NotConfigured(t *testing.T) {
	c := NewClient("https://api.cloudinary.com", "", "", http.DefaultClient)
	_, err := c.Upload(context.Background(), "a.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}
