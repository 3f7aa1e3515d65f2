package handlers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/lanternlabs/lantern/internal/api"
	"github.com/lanternlabs/lantern/internal/domain"
	"github.com/lanternlabs/lantern/internal/service"
)

type EntryService interface {
	ProcessEntry(ctx context.Context, input service.EntryInput) (*service.EntryResult, error)
}

type EntryHandler struct {
	svc EntryService
}

func NewEntryHandler(svc EntryService) *EntryHandler {
	return &EntryHandler{svc: svc}
}

// noteDataPayload mirrors the client's noteData form field. The timestamp
// arrives as a string or a number depending on the client version.
type noteDataPayload struct {
	Timestamp json.Number        `json:"timestamp"`
	Items     []entryItemPayload `json:"items"`
}

type entryItemPayload struct {
	Type      string  `json:"type"`
	Text      string  `json:"text"`
	FieldName string  `json:"fieldName"`
	Duration  float64 `json:"duration"`
}

type SummarizeResponse struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	RawText   string `json:"raw_text"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

// Summarize accepts one mixed-media entry as multipart form data: a
// noteData JSON field describing the ordered items, settings and
// previousSummaries JSON fields, and one file part per media item keyed by
// the item's fieldName.
func (h *EntryHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	var noteData noteDataPayload
	if err := json.Unmarshal([]byte(r.FormValue("noteData")), &noteData); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid noteData field")
		return
	}

	if len(noteData.Items) == 0 {
		api.Error(w, http.StatusBadRequest, "noteData must contain at least one item")
		return
	}

	settings, err := parseSettings(r.FormValue("settings"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid settings field")
		return
	}

	var summaries []domain.SummaryRecord
	if raw := r.FormValue("previousSummaries"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &summaries); err != nil {
			api.Error(w, http.StatusBadRequest, "invalid previousSummaries field")
			return
		}
	}

	items := make([]domain.EntryItem, 0, len(noteData.Items))
	for i, item := range noteData.Items {
		itemType := domain.ItemType(item.Type)
		if !domain.IsValidItemType(itemType) {
			api.Error(w, http.StatusBadRequest, "invalid item type")
			return
		}
		items = append(items, domain.EntryItem{
			Index:     i,
			Type:      itemType,
			Text:      item.Text,
			FieldName: item.FieldName,
			Duration:  item.Duration,
		})
	}

	uploads, closeUploads, err := collectUploads(r, items)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid file upload")
		return
	}
	defer closeUploads()

	input := service.EntryInput{
		Timestamp:         parseTimestamp(noteData.Timestamp),
		Items:             items,
		Settings:          settings,
		PreviousSummaries: summaries,
		Uploads:           uploads,
	}

	result, err := h.svc.ProcessEntry(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, SummarizeResponse{
		Title:     result.Title,
		Summary:   result.Summary,
		RawText:   result.RawText,
		Timestamp: result.Timestamp,
	})
}

// maxMultipartMemory bounds in-memory buffering while parsing multipart
// bodies; larger parts spill to temp files.
const maxMultipartMemory = 32 << 20

func parseSettings(raw string) (domain.UserSettings, error) {
	var settings domain.UserSettings
	if raw == "" {
		return settings, nil
	}
	err := json.Unmarshal([]byte(raw), &settings)
	return settings, err
}

func parseTimestamp(n json.Number) *int64 {
	if n.String() == "" {
		return nil
	}
	ms, err := n.Int64()
	if err != nil {
		return nil
	}
	return &ms
}

// collectUploads opens the file part referenced by each media item. Items
// whose part is missing are skipped rather than rejected; they degrade to
// empty fragments downstream.
func collectUploads(r *http.Request, items []domain.EntryItem) ([]service.EntryUpload, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	uploads := make([]service.EntryUpload, 0, len(items))
	for _, item := range items {
		if item.Type == domain.ItemTypeText || item.FieldName == "" {
			continue
		}

		file, header, err := r.FormFile(item.FieldName)
		if err == http.ErrMissingFile {
			continue
		}
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		opened = append(opened, file)

		uploads = append(uploads, service.EntryUpload{
			FieldName:   item.FieldName,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			SizeBytes:   header.Size,
			File:        file,
		})
	}

	return uploads, closeAll, nil
}
