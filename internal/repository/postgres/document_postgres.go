package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"doclib/internal/model"
	"doclib/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, owner_id, name, type, storage_key, thumbnail_key, downloads, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	var thumb sql.NullString
	if err := row.Scan(
		&d.ID,
		&d.OwnerID,
		&d.Name,
		&d.Type,
		&d.StorageKey,
		&thumb,
		&d.Downloads,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.ThumbnailKey = thumb.String
	return &d, nil
}

// FindByKey fetches a single document by its unique storage key.
func (r *DocumentPostgres) FindByKey(ctx context.Context, storageKey string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE storage_key = $1
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, storageKey))
}

// FindByOwnerAndName fetches a single document by owner and display name.
func (r *DocumentPostgres) FindByOwnerAndName(ctx context.Context, ownerID, name string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_id = $1 AND name = $2
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, ownerID, name))
}

// FindByOwner returns all documents for an owner ordered by last update.
func (r *DocumentPostgres) FindByOwner(ctx context.Context, ownerID string) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_id = $1
		ORDER BY updated_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpsertBatch inserts or refreshes all given documents inside one transaction.
// Conflicts on storage_key refresh updated_at and, when provided, thumbnail_key;
// created_at and downloads are preserved.
func (r *DocumentPostgres) UpsertBatch(ctx context.Context, docs []*model.Document) error {
	if len(docs) == 0 {
		return nil
	}

	const q = `
		INSERT INTO documents (id, owner_id, name, type, storage_key, thumbnail_key)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		ON CONFLICT (storage_key) DO UPDATE
		SET updated_at = now(),
		    thumbnail_key = COALESCE(NULLIF($6, ''), documents.thumbnail_key)
	`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, doc := range docs {
		id := doc.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := tx.ExecContext(ctx, q,
			id,
			doc.OwnerID,
			doc.Name,
			doc.Type,
			doc.StorageKey,
			doc.ThumbnailKey,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// IncrementDownloads bumps the counter in a single UPDATE and returns the new row.
func (r *DocumentPostgres) IncrementDownloads(ctx context.Context, storageKey string) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET downloads = downloads + 1
		WHERE storage_key = $1
		RETURNING ` + documentColumns + `
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, storageKey))
}
