package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/lanternlabs/lantern/internal/domain"
	"github.com/lanternlabs/lantern/internal/pagination"
	"github.com/lanternlabs/lantern/internal/service"
)

// NoteRepository persists immutable notes with their embedding vectors.
type NoteRepository struct {
	pool *pgxpool.Pool
}

func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

func (r *NoteRepository) Create(ctx context.Context, n *domain.Note) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notes (id, title, content, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		n.ID, n.Title, n.Content, pgvector.NewVector(n.Embedding), n.CreatedAt,
	)
	return err
}

// List returns all notes, embeddings included, newest first.
func (r *NoteRepository) List(ctx context.Context) ([]*domain.Note, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, content, embedding, created_at
		 FROM notes ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNoteRows(rows)
}

func (r *NoteRepository) ListPage(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.NotePageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT id, title, content, embedding, created_at
			 FROM notes
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.CreatedAt, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT id, title, content, embedding, created_at
			 FROM notes
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanNoteRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &service.NotePageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM notes WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func scanNoteRows(rows pgx.Rows) ([]*domain.Note, error) {
	var results []*domain.Note
	for rows.Next() {
		var n domain.Note
		var embedding pgvector.Vector
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &embedding, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Embedding = embedding.Slice()
		results = append(results, &n)
	}
	return results, rows.Err()
}
