package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lanternlabs/lantern/internal/domain"
	"github.com/lanternlabs/lantern/internal/service"
)

type MockEntryService struct {
	mock.Mock
}

func (m *MockEntryService) ProcessEntry(ctx context.Context, input service.EntryInput) (*service.EntryResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EntryResult), args.Error(1)
}

type summarizeForm struct {
	noteData          string
	settings          string
	previousSummaries string
	files             map[string][]byte
}

func buildSummarizeRequest(t *testing.T, form summarizeForm) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("noteData", form.noteData))
	if form.settings != "" {
		require.NoError(t, w.WriteField("settings", form.settings))
	}
	if form.previousSummaries != "" {
		require.NoError(t, w.WriteField("previousSummaries", form.previousSummaries))
	}
	for field, content := range form.files {
		part, err := w.CreateFormFile(field, field+".bin")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/notes/summarize", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestEntryHandler_Summarize(t *testing.T) {
	t.Run("summarizes a mixed entry", func(t *testing.T) {
		svc := new(MockEntryService)
		ts := int64(1741988460000)
		svc.On("ProcessEntry", mock.Anything, mock.MatchedBy(func(input service.EntryInput) bool {
			if len(input.Items) != 2 || input.Timestamp == nil || *input.Timestamp != ts {
				return false
			}
			if input.Items[0].Type != domain.ItemTypeText || input.Items[0].Text != "Long day." {
				return false
			}
			if input.Items[1].Type != domain.ItemTypeAudio || input.Items[1].FieldName != "file_1" {
				return false
			}
			if len(input.Uploads) != 1 || input.Uploads[0].FieldName != "file_1" {
				return false
			}
			if input.Settings.Name != "Ada" {
				return false
			}
			return len(input.PreviousSummaries) == 1 && input.PreviousSummaries[0].Title == "Yesterday"
		})).Return(&service.EntryResult{
			Title:     "A Long Day",
			Summary:   "It was long.",
			RawText:   "Long day.\n\n",
			Timestamp: &ts,
		}, nil)

		req := buildSummarizeRequest(t, summarizeForm{
			noteData: `{"timestamp":1741988460000,"items":[` +
				`{"type":"text","text":"Long day."},` +
				`{"type":"audio","fieldName":"file_1","duration":4.2}]}`,
			settings:          `{"name":"Ada","sex":"female","language":"English"}`,
			previousSummaries: `[{"title":"Yesterday","summary":"Rain.","timestamp":"Thursday, March 13, 2025 at 9:00 AM"}]`,
			files:             map[string][]byte{"file_1": []byte("fake audio")},
		})
		rec := httptest.NewRecorder()
		NewEntryHandler(svc).Summarize(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp SummarizeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "A Long Day", resp.Title)
		assert.Equal(t, "It was long.", resp.Summary)
		assert.Equal(t, "Long day.\n\n", resp.RawText)
		require.NotNil(t, resp.Timestamp)
		assert.Equal(t, ts, *resp.Timestamp)
		svc.AssertExpectations(t)
	})

	t.Run("string timestamps from older clients are accepted", func(t *testing.T) {
		svc := new(MockEntryService)
		svc.On("ProcessEntry", mock.Anything, mock.MatchedBy(func(input service.EntryInput) bool {
			return input.Timestamp != nil && *input.Timestamp == int64(1741988460000)
		})).Return(&service.EntryResult{Title: "T", Summary: "S"}, nil)

		req := buildSummarizeRequest(t, summarizeForm{
			noteData: `{"timestamp":"1741988460000","items":[{"type":"text","text":"hi"}]}`,
		})
		rec := httptest.NewRecorder()
		NewEntryHandler(svc).Summarize(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing file part still reaches the service", func(t *testing.T) {
		svc := new(MockEntryService)
		svc.On("ProcessEntry", mock.Anything, mock.MatchedBy(func(input service.EntryInput) bool {
			return len(input.Items) == 1 && len(input.Uploads) == 0
		})).Return(&service.EntryResult{Title: "T", Summary: "S"}, nil)

		req := buildSummarizeRequest(t, summarizeForm{
			noteData: `{"items":[{"type":"image","fieldName":"file_0"}]}`,
		})
		rec := httptest.NewRecorder()
		NewEntryHandler(svc).Summarize(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("invalid noteData JSON is a 400", func(t *testing.T) {
		req := buildSummarizeRequest(t, summarizeForm{noteData: "{broken"})
		rec := httptest.NewRecorder()
		NewEntryHandler(new(MockEntryService)).Summarize(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty item list is a 400", func(t *testing.T) {
		req := buildSummarizeRequest(t, summarizeForm{noteData: `{"items":[]}`})
		rec := httptest.NewRecorder()
		NewEntryHandler(new(MockEntryService)).Summarize(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown item type is a 400", func(t *testing.T) {
		req := buildSummarizeRequest(t, summarizeForm{
			noteData: `{"items":[{"type":"video","fieldName":"file_0"}]}`,
		})
		rec := httptest.NewRecorder()
		NewEntryHandler(new(MockEntryService)).Summarize(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-multipart body is a 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/notes/summarize", bytes.NewReader([]byte("plain")))
		rec := httptest.NewRecorder()
		NewEntryHandler(new(MockEntryService)).Summarize(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("generation failures map through the error codes", func(t *testing.T) {
		svc := new(MockEntryService)
		svc.On("ProcessEntry", mock.Anything, mock.Anything).
			Return(nil, domain.ErrMalformedGenerationOutput)

		req := buildSummarizeRequest(t, summarizeForm{
			noteData: `{"items":[{"type":"text","text":"hi"}]}`,
		})
		rec := httptest.NewRecorder()
		NewEntryHandler(svc).Summarize(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
