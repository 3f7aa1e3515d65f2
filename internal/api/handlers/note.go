package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lanternlabs/lantern/internal/api"
	"github.com/lanternlabs/lantern/internal/domain"
	"github.com/lanternlabs/lantern/internal/service"
)

type NoteService interface {
	Create(ctx context.Context, content string) (*domain.Note, error)
	List(ctx context.Context, cursor string, limit int) (*service.NotePageResult, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]*service.NoteSearchResult, error)
}

type NoteHandler struct {
	svc NoteService
}

func NewNoteHandler(svc NoteService) *NoteHandler {
	return &NoteHandler{svc: svc}
}

type CreateNoteRequest struct {
	Content string `json:"content"`
}

type NoteResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Timestamp string  `json:"timestamp"`
	Score     float64 `json:"score,omitempty"`
}

type NoteListResponse struct {
	Items   []*NoteResponse `json:"items"`
	Cursor  string          `json:"cursor,omitempty"`
	HasMore bool            `json:"has_more"`
}

func noteToResponse(n *domain.Note) *NoteResponse {
	return &NoteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Timestamp: n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.svc.Create(r.Context(), req.Content)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, noteToResponse(note))
}

// List returns notes newest-first. Without a limit parameter the full set
// comes back as a bare array; with one, a page envelope with a cursor.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	limitStr := r.URL.Query().Get("limit")

	limit := 0
	if limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	page, err := h.svc.List(r.Context(), cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*NoteResponse, len(page.Items))
	for i, n := range page.Items {
		items[i] = noteToResponse(n)
	}

	if limit == 0 && cursor == "" {
		api.JSON(w, http.StatusOK, items)
		return
	}

	api.JSON(w, http.StatusOK, NoteListResponse{
		Items:   items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	})
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NoteHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		api.Error(w, http.StatusBadRequest, `query parameter "q" is required`)
		return
	}

	results, err := h.svc.Search(r.Context(), query)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*NoteResponse, len(results))
	for i, res := range results {
		resp := noteToResponse(res.Note)
		resp.Score = res.Score
		responses[i] = resp
	}

	api.JSON(w, http.StatusOK, responses)
}
