package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"doclib/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func documentRows(docs ...*model.Document) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "type", "storage_key", "thumbnail_key", "downloads", "created_at", "updated_at"})
	for _, d := range docs {
		var thumb any
		if d.ThumbnailKey != "" {
			thumb = d.ThumbnailKey
		}
		rows.AddRow(d.ID, d.OwnerID, d.Name, d.Type, d.StorageKey, thumb, d.Downloads, d.CreatedAt, d.UpdatedAt)
	}
	return rows
}

func TestDocumentPostgres_FindByKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		now := time.Now().UTC()
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE storage_key = ?").
			WithArgs("alice/report.txt").
			WillReturnRows(documentRows(&model.Document{
				ID: "test-id", OwnerID: "alice", Name: "report.txt", Type: ".txt",
				StorageKey: "alice/report.txt", ThumbnailKey: "alice/thumbnails/report.png",
				Downloads: 3, CreatedAt: now, UpdatedAt: now,
			}))

		doc, err := repo.FindByKey(ctx, "alice/report.txt")

		assert.NoError(t, err)
		assert.NotNil(t, doc)
		assert.Equal(t, "alice", doc.OwnerID)
		assert.Equal(t, "alice/thumbnails/report.png", doc.ThumbnailKey)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE storage_key = ?").
			WithArgs("alice/missing.txt").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByKey(ctx, "alice/missing.txt")

		assert.Error(t, err)
		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_FindByOwnerAndName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE owner_id = (.+) AND name = ?").
		WithArgs("alice", "report.txt").
		WillReturnRows(documentRows(&model.Document{
			ID: "test-id", OwnerID: "alice", Name: "report.txt", Type: ".txt",
			StorageKey: "alice/report.txt",
		}))

	doc, err := repo.FindByOwnerAndName(ctx, "alice", "report.txt")

	assert.NoError(t, err)
	assert.Equal(t, "alice/report.txt", doc.StorageKey)
	// NULL thumbnail scans to empty string
	assert.Equal(t, "", doc.ThumbnailKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE owner_id = (.+) ORDER BY").
		WithArgs("alice").
		WillReturnRows(documentRows(
			&model.Document{ID: "1", OwnerID: "alice", Name: "a.txt", Type: ".txt", StorageKey: "alice/a.txt"},
			&model.Document{ID: "2", OwnerID: "alice", Name: "b.pdf", Type: ".pdf", StorageKey: "alice/b.pdf"},
		))

	docs, err := repo.FindByOwner(ctx, "alice")

	assert.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_UpsertBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO documents").
			WithArgs(sqlmock.AnyArg(), "alice", "a.txt", ".txt", "alice/a.txt", "alice/thumbnails/a.png").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO documents").
			WithArgs(sqlmock.AnyArg(), "alice", "b.pdf", ".pdf", "alice/b.pdf", "").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpsertBatch(ctx, []*model.Document{
			{OwnerID: "alice", Name: "a.txt", Type: ".txt", StorageKey: "alice/a.txt", ThumbnailKey: "alice/thumbnails/a.png"},
			{OwnerID: "alice", Name: "b.pdf", Type: ".pdf", StorageKey: "alice/b.pdf"},
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("re-upload refreshes updated_at only", func(t *testing.T) {
		// Pin the full statement: the conflict branch may touch updated_at
		// and thumbnail_key, never created_at or downloads. sqlmock collapses
		// whitespace before matching, so the pattern is anchored end to end.
		const upsertSQL = `^INSERT INTO documents \(id, owner_id, name, type, storage_key, thumbnail_key\) ` +
			`VALUES \(\$1, \$2, \$3, \$4, \$5, NULLIF\(\$6, ''\)\) ` +
			`ON CONFLICT \(storage_key\) DO UPDATE ` +
			`SET updated_at = now\(\), ` +
			`thumbnail_key = COALESCE\(NULLIF\(\$6, ''\), documents\.thumbnail_key\)$`

		for i := 0; i < 2; i++ {
			mock.ExpectBegin()
			mock.ExpectExec(upsertSQL).
				WithArgs(sqlmock.AnyArg(), "alice", "a.txt", ".txt", "alice/a.txt", "").
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			err := repo.UpsertBatch(ctx, []*model.Document{
				{OwnerID: "alice", Name: "a.txt", Type: ".txt", StorageKey: "alice/a.txt"},
			})
			assert.NoError(t, err)
		}

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		err := repo.UpsertBatch(ctx, nil)
		assert.NoError(t, err)
	})

	t.Run("exec failure rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO documents").
			WillReturnError(errors.New("db fail"))
		mock.ExpectRollback()

		err := repo.UpsertBatch(ctx, []*model.Document{
			{OwnerID: "alice", Name: "a.txt", Type: ".txt", StorageKey: "alice/a.txt"},
		})

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDocumentPostgres_IncrementDownloads(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("UPDATE documents SET downloads = downloads \\+ 1").
		WithArgs("alice/a.txt").
		WillReturnRows(documentRows(&model.Document{
			ID: "1", OwnerID: "alice", Name: "a.txt", Type: ".txt",
			StorageKey: "alice/a.txt", Downloads: 4,
		}))

	doc, err := repo.IncrementDownloads(ctx, "alice/a.txt")

	assert.NoError(t, err)
	assert.Equal(t, 4, doc.Downloads)
	assert.NoError(t, mock.ExpectationsWereMet())
}
