package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/lanternlabs/lantern/internal/domain"
	"github.com/lanternlabs/lantern/internal/telemetry"
)

// UploadStore defines the interface for the upload collaborator: it
// materializes an uploaded stream on local disk under a collision-free name
// preserving the original extension.
type UploadStore interface {
	SaveUpload(stream io.Reader, originalName string) (string, error)
}

// MediaAssetRecorder defines the repository interface for recording
// uploaded media files for later archival.
type MediaAssetRecorder interface {
	Create(ctx context.Context, asset *domain.MediaAsset) error
}

// EntryUpload is one media file received alongside an entry or chat request
type EntryUpload struct {
	FieldName   string
	Filename    string
	ContentType string
	SizeBytes   int64
	File        io.Reader
}

// EntryInput is one journal submission
type EntryInput struct {
	Timestamp         *int64
	Items             []domain.EntryItem
	Settings          domain.UserSettings
	PreviousSummaries []domain.SummaryRecord
	Uploads           []EntryUpload
}

// EntryResult is the generated title and summary for one entry
type EntryResult struct {
	Title     string
	Summary   string
	Timestamp *int64
	RawText   string
}

// EntryService runs the ingestion pipeline: save uploads, transcode media
// concurrently, reassemble in original order, prepend the rolling context
// window and generate the title and summary.
type EntryService struct {
	assembler *EntryAssembler
	generator *NarrativeGenerator
	uploads   UploadStore
	assets    MediaAssetRecorder
	timeout   time.Duration
}

// NewEntryService creates a new EntryService instance. The asset recorder
// may be nil when no media archive is configured.
func NewEntryService(
	assembler *EntryAssembler,
	generator *NarrativeGenerator,
	uploads UploadStore,
	assets MediaAssetRecorder,
	timeout time.Duration,
) *EntryService {
	return &EntryService{
		assembler: assembler,
		generator: generator,
		uploads:   uploads,
		assets:    assets,
		timeout:   timeout,
	}
}

// ProcessEntry runs the pipeline for one submission. Media transcoding
// failures degrade to empty fragments; a failed or malformed generation
// call fails the whole request, since the summary is the deliverable.
func (s *EntryService) ProcessEntry(ctx context.Context, input EntryInput) (*EntryResult, error) {
	if len(input.Items) == 0 {
		return nil, domain.ErrMissingNoteData
	}

	ctx, span := telemetry.StartSpan(ctx, "EntryService.ProcessEntry", telemetry.SpanAttributes{
		Operation: "summarize",
	})
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	items, err := s.materializeUploads(ctx, input.Items, input.Uploads)
	if err != nil {
		return nil, err
	}

	assembled := s.assembler.Assemble(ctx, items)
	prompt := BuildEntryPrompt(input.PreviousSummaries, assembled, input.Timestamp)

	raw, err := s.generator.Generate(ctx, input.Settings, prompt)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	title, summary, err := ParseTitleSummary(raw)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &EntryResult{
		Title:     title,
		Summary:   summary,
		Timestamp: input.Timestamp,
		RawText:   assembled,
	}, nil
}

// materializeUploads writes each received file to local storage and fills
// the LocalPath of the matching media item. An item whose upload never
// arrived keeps an empty path and later resolves to an empty fragment.
func (s *EntryService) materializeUploads(ctx context.Context, items []domain.EntryItem, uploads []EntryUpload) ([]domain.EntryItem, error) {
	paths := make(map[string]string, len(uploads))
	for _, upload := range uploads {
		path, err := s.uploads.SaveUpload(upload.File, upload.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to save upload %q: %w", upload.FieldName, err)
		}
		paths[upload.FieldName] = path
		recordMediaAsset(ctx, s.assets, upload, path)
	}

	out := make([]domain.EntryItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Type == domain.ItemTypeText {
			continue
		}
		out[i].LocalPath = paths[out[i].FieldName]
	}
	return out, nil
}

// recordMediaAsset queues an uploaded file for archival. Archival is
// best-effort; a failed insert never fails the request.
func recordMediaAsset(ctx context.Context, assets MediaAssetRecorder, upload EntryUpload, path string) {
	if assets == nil {
		return
	}

	asset := &domain.MediaAsset{
		ID:          uuid.NewString(),
		LocalPath:   path,
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		SizeBytes:   upload.SizeBytes,
		Status:      domain.MediaAssetStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := domain.ValidateMediaAsset(asset); err != nil {
		log.Printf("skipping media asset record for %q: %v", upload.FieldName, err)
		return
	}
	if err := assets.Create(ctx, asset); err != nil {
		log.Printf("failed to record media asset %s: %v", asset.ID, err)
	}
}
