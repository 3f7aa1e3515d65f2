package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lanternlabs/lantern/internal/api/handlers"
)

func newTestRouter(token string) http.Handler {
	return NewRouter(RouterConfig{
		APIToken:     token,
		EntryHandler: handlers.NewEntryHandler(nil),
		ChatHandler:  handlers.NewChatHandler(nil),
		NoteHandler:  handlers.NewNoteHandler(nil),
	})
}

func TestRouter_HealthIsOpen(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	newTestRouter("secret").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_APIRequiresToken(t *testing.T) {
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/notes/"},
		{http.MethodPost, "/notes/create"},
		{http.MethodDelete, "/notes/delete/n1"},
		{http.MethodGet, "/notes/search"},
		{http.MethodPost, "/notes/summarize"},
		{http.MethodPost, "/chat"},
	}

	router := newTestRouter("secret")
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equalf(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)
	}
}

func TestRouter_UnknownRouteIs404(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	newTestRouter("").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
