package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lanternlabs/lantern/internal/domain"
	"github.com/lanternlabs/lantern/internal/pagination"
	"github.com/lanternlabs/lantern/internal/telemetry"
)

// NoteRepository defines the persistence interface for notes
type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	List(ctx context.Context) ([]*domain.Note, error)
	ListPage(ctx context.Context, cursor *pagination.Cursor, limit int) (*NotePageResult, error)
	Delete(ctx context.Context, id string) error
}

// TitleGenerator defines the interface for automatic note titling
type TitleGenerator interface {
	GenerateTitle(ctx context.Context, content string) (string, error)
}

// NotePageResult is one page of the notes listing
type NotePageResult struct {
	Items      []*domain.Note
	NextCursor string
	HasMore    bool
}

// NoteSearchResult pairs a note with its similarity score
type NoteSearchResult struct {
	Note  *domain.Note
	Score float64
}

// NoteService persists immutable notes with an auto-generated title and a
// synchronously computed embedding, and serves the semantic search over
// them.
type NoteService struct {
	repo       NoteRepository
	titles     TitleGenerator
	index      *EmbeddingIndex
	dimensions int
}

// NewNoteService creates a new NoteService instance. dimensions is the
// expected embedding width; zero disables the width check.
func NewNoteService(repo NoteRepository, titles TitleGenerator, index *EmbeddingIndex, dimensions int) *NoteService {
	return &NoteService{
		repo:       repo,
		titles:     titles,
		index:      index,
		dimensions: dimensions,
	}
}

// Create validates, titles, embeds and persists a new note
func (s *NoteService) Create(ctx context.Context, content string) (*domain.Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrMissingContent
	}

	ctx, span := telemetry.StartSpan(ctx, "NoteService.Create", telemetry.SpanAttributes{
		Operation: "create",
	})
	defer span.End()

	title, err := s.titles.GenerateTitle(ctx, content)
	if err != nil {
		return nil, err
	}

	embedding, err := s.index.Embed(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("failed to embed note content: %w", err)
	}

	note := domain.NewNote(uuid.NewString(), title, content, embedding, time.Now().UTC())
	if err := domain.ValidateNote(note, s.dimensions); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, note); err != nil {
		return nil, err
	}

	return note, nil
}

// List returns notes newest-first. A cursor and limit select one page;
// a zero limit returns everything.
func (s *NoteService) List(ctx context.Context, cursorStr string, limit int) (*NotePageResult, error) {
	if limit <= 0 && cursorStr == "" {
		notes, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		return &NotePageResult{Items: notes}, nil
	}

	cursor, err := pagination.DecodeCursor(cursorStr)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	return s.repo.ListPage(ctx, cursor, limit)
}

// Delete removes a note by ID; a missing note is a distinct NotFound
func (s *NoteService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Search embeds the query, ranks every stored note by cosine similarity in
// a full scan, and returns only notes scoring strictly above the threshold,
// descending.
func (s *NoteService) Search(ctx context.Context, query string) ([]*NoteSearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrMissingQuery
	}

	ctx, span := telemetry.StartSpan(ctx, "NoteService.Search", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	queryEmbedding, err := s.index.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Note, len(notes))
	candidates := make([]Candidate, 0, len(notes))
	for _, note := range notes {
		byID[note.ID] = note
		candidates = append(candidates, Candidate{ID: note.ID, Vector: note.Embedding})
	}

	ranked := s.index.Search(queryEmbedding, candidates)
	results := make([]*NoteSearchResult, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, &NoteSearchResult{Note: byID[r.ID], Score: r.Score})
	}
	return results, nil
}
