package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lanternlabs/lantern/internal/domain"
	"github.com/lanternlabs/lantern/internal/pagination"
)

// MockNoteRepository is a mock implementation of NoteRepository
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, note *domain.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) List(ctx context.Context) ([]*domain.Note, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) ListPage(ctx context.Context, cursor *pagination.Cursor, limit int) (*NotePageResult, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*NotePageResult), args.Error(1)
}

func (m *MockNoteRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTitleGenerator is a mock implementation of TitleGenerator
type MockTitleGenerator struct {
	mock.Mock
}

func (m *MockTitleGenerator) GenerateTitle(ctx context.Context, content string) (string, error) {
	args := m.Called(ctx, content)
	return args.String(0), args.Error(1)
}

func newTestNoteService(repo *MockNoteRepository, titles *MockTitleGenerator, embed *MockEmbeddingClient) *NoteService {
	return NewNoteService(repo, titles, NewEmbeddingIndex(embed, 0.5), 0)
}

func TestNoteService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("titles, embeds and persists a note", func(t *testing.T) {
		repo := new(MockNoteRepository)
		titles := new(MockTitleGenerator)
		embed := new(MockEmbeddingClient)

		titles.On("GenerateTitle", mock.Anything, "remember the milk").Return("Milk", nil)
		embed.On("Embed", mock.Anything, "remember the milk").Return([]float32{0.1, 0.2}, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Note) bool {
			return n.ID != "" &&
				n.Title == "Milk" &&
				n.Content == "remember the milk" &&
				len(n.Embedding) == 2
		})).Return(nil)

		svc := newTestNoteService(repo, titles, embed)
		note, err := svc.Create(ctx, "remember the milk")

		require.NoError(t, err)
		assert.Equal(t, "Milk", note.Title)
		repo.AssertExpectations(t)
		titles.AssertExpectations(t)
		embed.AssertExpectations(t)
	})

	t.Run("rejects blank content", func(t *testing.T) {
		svc := newTestNoteService(new(MockNoteRepository), new(MockTitleGenerator), new(MockEmbeddingClient))

		_, err := svc.Create(ctx, "   \n ")

		assert.ErrorIs(t, err, domain.ErrMissingContent)
	})

	t.Run("propagates title generation failure", func(t *testing.T) {
		titles := new(MockTitleGenerator)
		titles.On("GenerateTitle", mock.Anything, mock.Anything).Return("", domain.ErrInferenceUnavailable)

		svc := newTestNoteService(new(MockNoteRepository), titles, new(MockEmbeddingClient))
		_, err := svc.Create(ctx, "content")

		assert.ErrorIs(t, err, domain.ErrInferenceUnavailable)
	})

	t.Run("rejects an embedding of the wrong width", func(t *testing.T) {
		titles := new(MockTitleGenerator)
		titles.On("GenerateTitle", mock.Anything, mock.Anything).Return("Title", nil)
		embed := new(MockEmbeddingClient)
		embed.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.1, 0.2}, nil)
		repo := new(MockNoteRepository)

		svc := NewNoteService(repo, titles, NewEmbeddingIndex(embed, 0.5), 4)
		_, err := svc.Create(ctx, "content")

		assert.ErrorIs(t, err, domain.ErrWrongDimensions)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("propagates embedding failure", func(t *testing.T) {
		titles := new(MockTitleGenerator)
		titles.On("GenerateTitle", mock.Anything, mock.Anything).Return("Title", nil)
		embed := new(MockEmbeddingClient)
		embed.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("embedding down"))

		svc := newTestNoteService(new(MockNoteRepository), titles, embed)
		_, err := svc.Create(ctx, "content")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding down")
	})
}

func TestNoteService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("no cursor and no limit returns everything", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("List", mock.Anything).Return([]*domain.Note{{ID: "n1"}, {ID: "n2"}}, nil)

		svc := newTestNoteService(repo, new(MockTitleGenerator), new(MockEmbeddingClient))
		result, err := svc.List(ctx, "", 0)

		require.NoError(t, err)
		assert.Len(t, result.Items, 2)
		assert.False(t, result.HasMore)
		repo.AssertExpectations(t)
	})

	t.Run("limit selects one page", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("ListPage", mock.Anything, (*pagination.Cursor)(nil), 10).
			Return(&NotePageResult{Items: []*domain.Note{{ID: "n1"}}, HasMore: true, NextCursor: "cur"}, nil)

		svc := newTestNoteService(repo, new(MockTitleGenerator), new(MockEmbeddingClient))
		result, err := svc.List(ctx, "", 10)

		require.NoError(t, err)
		assert.True(t, result.HasMore)
		assert.Equal(t, "cur", result.NextCursor)
		repo.AssertExpectations(t)
	})

	t.Run("garbage cursor is a validation error", func(t *testing.T) {
		svc := newTestNoteService(new(MockNoteRepository), new(MockTitleGenerator), new(MockEmbeddingClient))

		_, err := svc.List(ctx, "not-base64!!!", 10)

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
	})
}

func TestNoteService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("passes missing-note errors through", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("Delete", mock.Anything, "missing").Return(domain.ErrNoteNotFound)

		svc := newTestNoteService(repo, new(MockTitleGenerator), new(MockEmbeddingClient))
		err := svc.Delete(ctx, "missing")

		assert.ErrorIs(t, err, domain.ErrNoteNotFound)
	})
}

func TestNoteService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("returns notes above the threshold, best first", func(t *testing.T) {
		repo := new(MockNoteRepository)
		embed := new(MockEmbeddingClient)

		embed.On("Embed", mock.Anything, "sunset").Return([]float32{1, 0}, nil)
		// scores: close=1.0, far=0.0, near~0.707
		repo.On("List", mock.Anything).Return([]*domain.Note{
			{ID: "far", Embedding: []float32{0, 1}},
			{ID: "close", Embedding: []float32{1, 0}},
			{ID: "near", Embedding: []float32{1, 1}},
		}, nil)

		svc := newTestNoteService(repo, new(MockTitleGenerator), embed)
		results, err := svc.Search(ctx, "sunset")

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "close", results[0].Note.ID)
		assert.Equal(t, "near", results[1].Note.ID)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("rejects a blank query", func(t *testing.T) {
		svc := newTestNoteService(new(MockNoteRepository), new(MockTitleGenerator), new(MockEmbeddingClient))

		_, err := svc.Search(ctx, "  ")

		assert.ErrorIs(t, err, domain.ErrMissingQuery)
	})

	t.Run("propagates query embedding failure", func(t *testing.T) {
		embed := new(MockEmbeddingClient)
		embed.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("embedding down"))

		svc := newTestNoteService(new(MockNoteRepository), new(MockTitleGenerator), embed)
		_, err := svc.Search(ctx, "query")

		require.Error(t, err)
	})
}
