package domain

import (
	"fmt"
	"time"
)

// MediaAssetStatus represents the archival state of an uploaded media file
type MediaAssetStatus string

const (
	MediaAssetStatusPending  MediaAssetStatus = "pending"
	MediaAssetStatusArchived MediaAssetStatus = "archived"
	MediaAssetStatusFailed   MediaAssetStatus = "failed"
)

// MediaAsset records one uploaded image or audio file materialized on local
// disk. When an S3 archive is configured, the background worker uploads the
// file to the bucket and removes the local copy.
type MediaAsset struct {
	ID          string
	LocalPath   string
	Filename    string
	ContentType string
	SizeBytes   int64
	Status      MediaAssetStatus
	Retries     int32
	Error       string
	ArchiveKey  string
	CreatedAt   time.Time
	ArchivedAt  *time.Time
}

// ValidateMediaAsset validates a MediaAsset instance
func ValidateMediaAsset(a *MediaAsset) error {
	if a == nil {
		return fmt.Errorf("media asset cannot be nil")
	}

	if a.ID == "" {
		return fmt.Errorf("media asset ID is required")
	}

	if a.LocalPath == "" {
		return fmt.Errorf("media asset LocalPath is required")
	}

	if !isValidMediaAssetStatus(a.Status) {
		return fmt.Errorf("media asset Status is invalid: %s", a.Status)
	}

	if a.Retries < 0 {
		return fmt.Errorf("media asset Retries cannot be negative")
	}

	return nil
}

func isValidMediaAssetStatus(s MediaAssetStatus) bool {
	switch s {
	case MediaAssetStatusPending, MediaAssetStatusArchived, MediaAssetStatusFailed:
		return true
	}
	return false
}
