package repository

import (
	"context"

	"doclib/internal/model"
)

// DocumentRepository defines data access for document metadata using SQL queries only.
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// FindByKey returns the document addressed by its unique storage key.
	FindByKey(ctx context.Context, storageKey string) (*model.Document, error)

	// FindByOwnerAndName returns the document with the given display name
	// belonging to the given owner.
	FindByOwnerAndName(ctx context.Context, ownerID, name string) (*model.Document, error)

	// FindByOwner returns every document belonging to the given owner,
	// newest first.
	FindByOwner(ctx context.Context, ownerID string) ([]model.Document, error)

	// UpsertBatch persists the given documents in one transaction. A document
	// whose storage key already exists gets its updated_at refreshed (and its
	// thumbnail key replaced when a new one is supplied); created_at and
	// downloads are left untouched. New keys are inserted as fresh rows.
	UpsertBatch(ctx context.Context, docs []*model.Document) error

	// IncrementDownloads atomically bumps the download counter for the given
	// storage key and returns the updated record. The increment is a single
	// UPDATE so concurrent calls cannot lose updates.
	IncrementDownloads(ctx context.Context, storageKey string) (*model.Document, error)
}
