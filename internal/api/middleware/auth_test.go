package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticTokenAuth(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("empty configured token disables auth", func(t *testing.T) {
		handler := StaticTokenAuth("")(okHandler)

		req := httptest.NewRequest(http.MethodGet, "/notes/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		handler := StaticTokenAuth("secret")(okHandler)

		req := httptest.NewRequest(http.MethodGet, "/notes/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-bearer scheme is rejected", func(t *testing.T) {
		handler := StaticTokenAuth("secret")(okHandler)

		req := httptest.NewRequest(http.MethodGet, "/notes/", nil)
		req.Header.Set("Authorization", "Basic c2VjcmV0")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong token is rejected", func(t *testing.T) {
		handler := StaticTokenAuth("secret")(okHandler)

		req := httptest.NewRequest(http.MethodGet, "/notes/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("matching token passes", func(t *testing.T) {
		handler := StaticTokenAuth("secret")(okHandler)

		req := httptest.NewRequest(http.MethodGet, "/notes/", nil)
		req.Header.Set("Authorization", "Bearer secret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
