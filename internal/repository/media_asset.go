package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lanternlabs/lantern/internal/domain"
)

// MediaAssetRepository persists uploaded media files awaiting archival.
type MediaAssetRepository struct {
	pool *pgxpool.Pool
}

func NewMediaAssetRepository(pool *pgxpool.Pool) *MediaAssetRepository {
	return &MediaAssetRepository{pool: pool}
}

func (r *MediaAssetRepository) Create(ctx context.Context, a *domain.MediaAsset) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO media_assets (id, local_path, filename, content_type, size_bytes, status, retries, error, archive_key, created_at, archived_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.LocalPath, a.Filename, a.ContentType, a.SizeBytes, a.Status, a.Retries, a.Error, nullableString(a.ArchiveKey), a.CreatedAt, a.ArchivedAt,
	)
	return err
}

func (r *MediaAssetRepository) GetByID(ctx context.Context, id string) (*domain.MediaAsset, error) {
	var a domain.MediaAsset
	var archiveKey *string
	err := r.pool.QueryRow(ctx,
		`SELECT id, local_path, filename, content_type, size_bytes, status, retries, error, archive_key, created_at, archived_at
		 FROM media_assets WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.LocalPath, &a.Filename, &a.ContentType, &a.SizeBytes, &a.Status, &a.Retries, &a.Error, &archiveKey, &a.CreatedAt, &a.ArchivedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrMediaAssetNotFound
		}
		return nil, err
	}
	if archiveKey != nil {
		a.ArchiveKey = *archiveKey
	}
	return &a, nil
}

// GetPendingAssets returns unarchived assets oldest-first for the archive
// worker.
func (r *MediaAssetRepository) GetPendingAssets(ctx context.Context, limit int) ([]*domain.MediaAsset, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, local_path, filename, content_type, size_bytes, status, retries, error, archive_key, created_at, archived_at
		 FROM media_assets WHERE status = $1 ORDER BY created_at ASC LIMIT $2`,
		domain.MediaAssetStatusPending, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.MediaAsset
	for rows.Next() {
		var a domain.MediaAsset
		var archiveKey *string
		if err := rows.Scan(&a.ID, &a.LocalPath, &a.Filename, &a.ContentType, &a.SizeBytes, &a.Status, &a.Retries, &a.Error, &archiveKey, &a.CreatedAt, &a.ArchivedAt); err != nil {
			return nil, err
		}
		if archiveKey != nil {
			a.ArchiveKey = *archiveKey
		}
		results = append(results, &a)
	}
	return results, rows.Err()
}

// MarkArchived records a successful archive upload.
func (r *MediaAssetRepository) MarkArchived(ctx context.Context, id, archiveKey string) error {
	now := time.Now().UTC()
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE media_assets SET status = $1, archive_key = $2, error = '', archived_at = $3 WHERE id = $4`,
		domain.MediaAssetStatusArchived, archiveKey, now, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrMediaAssetNotFound
	}
	return nil
}

// MarkFailed records a terminal archival failure.
func (r *MediaAssetRepository) MarkFailed(ctx context.Context, id, errMsg string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE media_assets SET status = $1, error = $2 WHERE id = $3`,
		domain.MediaAssetStatusFailed, errMsg, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrMediaAssetNotFound
	}
	return nil
}

// IncrementRetries bumps the retry count after a transient archival failure.
func (r *MediaAssetRepository) IncrementRetries(ctx context.Context, id, errMsg string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE media_assets SET retries = retries + 1, error = $1 WHERE id = $2`,
		errMsg, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrMediaAssetNotFound
	}
	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
