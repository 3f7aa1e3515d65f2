package jobs

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/lanternlabs/lantern/internal/domain"
)

const (
	// MaxRetries is the maximum number of archive attempts per asset
	MaxRetries = 3

	claimBatchSize = 10
)

// MediaAssetRepository defines the persistence interface for archival state
type MediaAssetRepository interface {
	GetPendingAssets(ctx context.Context, limit int) ([]*domain.MediaAsset, error)
	MarkArchived(ctx context.Context, id, archiveKey string) error
	MarkFailed(ctx context.Context, id, errMsg string) error
	IncrementRetries(ctx context.Context, id, errMsg string) error
}

// ArchiveStore defines the interface for the archive bucket
type ArchiveStore interface {
	UploadFile(ctx context.Context, key, localPath, contentType string) error
}

// UploadCleaner removes local upload files after successful archival
type UploadCleaner interface {
	Remove(path string) error
}

// ArchiveWorker uploads pending media files to the archive bucket, marks
// them archived and removes the local copy. It runs outside the request
// path; archival never delays entry processing.
type ArchiveWorker struct {
	repo    MediaAssetRepository
	store   ArchiveStore
	cleaner UploadCleaner
}

// NewArchiveWorker creates a new ArchiveWorker instance
func NewArchiveWorker(repo MediaAssetRepository, store ArchiveStore, cleaner UploadCleaner) *ArchiveWorker {
	return &ArchiveWorker{
		repo:    repo,
		store:   store,
		cleaner: cleaner,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *ArchiveWorker) ProcessJobs(ctx context.Context) error {
	assets, err := w.repo.GetPendingAssets(ctx, claimBatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending assets: %w", err)
	}

	if len(assets) == 0 {
		return nil
	}

	log.Printf("archiving %d pending media assets", len(assets))

	for _, asset := range assets {
		if err := w.processAsset(ctx, asset); err != nil {
			log.Printf("error archiving asset %s: %v", asset.ID, err)
		}
	}

	return nil
}

func (w *ArchiveWorker) processAsset(ctx context.Context, asset *domain.MediaAsset) error {
	key := archiveKey(asset)

	if err := w.store.UploadFile(ctx, key, asset.LocalPath, asset.ContentType); err != nil {
		return w.handleFailure(ctx, asset, err)
	}

	if err := w.repo.MarkArchived(ctx, asset.ID, key); err != nil {
		return fmt.Errorf("failed to mark asset archived: %w", err)
	}

	if err := w.cleaner.Remove(asset.LocalPath); err != nil {
		// the archived copy is authoritative; a leftover local file is
		// only wasted disk
		log.Printf("failed to remove local file for asset %s: %v", asset.ID, err)
	}

	log.Printf("asset %s archived as %s", asset.ID, key)
	return nil
}

func (w *ArchiveWorker) handleFailure(ctx context.Context, asset *domain.MediaAsset, uploadErr error) error {
	log.Printf("asset %s archive failed: %v", asset.ID, uploadErr)

	if asset.Retries+1 >= MaxRetries {
		log.Printf("asset %s exceeded max retries (%d), marking as failed", asset.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", uploadErr)
		if err := w.repo.MarkFailed(ctx, asset.ID, errMsg); err != nil {
			return fmt.Errorf("failed to mark asset failed: %w", err)
		}
		return nil
	}

	errMsg := fmt.Sprintf("retry %d: %v", asset.Retries+1, uploadErr)
	if err := w.repo.IncrementRetries(ctx, asset.ID, errMsg); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	return nil
}

// archiveKey namespaces objects by upload date so the bucket stays
// browsable.
func archiveKey(asset *domain.MediaAsset) string {
	return fmt.Sprintf("media/%s/%s%s",
		asset.CreatedAt.UTC().Format("2006/01/02"),
		asset.ID,
		filepath.Ext(asset.LocalPath),
	)
}
