package service

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"doclib/internal/model"
	"doclib/internal/repository"
	"doclib/internal/storage"
	"doclib/internal/token"
)

// allowedTypes is the upload extension allow-list. Anything else rejects the
// whole batch before a single byte is written.
var allowedTypes = map[string]struct{}{
	".pdf":  {},
	".docx": {},
	".xlsx": {},
	".txt":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".gif":  {},
}

// orphanScanLimit bounds how many keys one orphan scan inspects.
const orphanScanLimit = 1000

// UploadFile is one file of an upload batch, fully buffered. The content is
// needed twice (object write and thumbnail extraction), so streaming would
// buy nothing here.
type UploadFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// Thumbnailer produces a PNG preview for the given bytes and extension, or
// reports that none exists. It never fails an upload.
type Thumbnailer interface {
	Generate(data []byte, ext string) ([]byte, bool)
}

// DocumentService defines the document storage and sharing use cases.
type DocumentService interface {
	// UploadFiles stores a batch of files for the owner. The whole batch is
	// rejected up front when any extension is outside the allow-list; after
	// that, per-file storage failures are collected into the returned list
	// and the batch still succeeds (partial success is the normal outcome).
	UploadFiles(ctx context.Context, ownerID string, files []UploadFile) *Result[[]string]

	// DownloadFile fetches one file under the owner's key prefix. The object
	// store itself is the source of truth for this path.
	DownloadFile(ctx context.Context, ownerID, fileName string) *Result[*model.FileResponse]

	// DownloadFiles bundles the requested files into one in-memory zip. The
	// call fails as a whole if any single fetch fails.
	DownloadFiles(ctx context.Context, ownerID string, fileNames []string) *Result[*model.FileResponse]

	// ShareFile issues a time-limited share link for a document owned by
	// ownerID. Ownership is checked against metadata, not the key prefix.
	ShareFile(ctx context.Context, ownerID, fileName string, expirationHours int) *Result[string]

	// DownloadSharedFile resolves a share token, fetches the content and
	// increments the download counter before returning it.
	DownloadSharedFile(ctx context.Context, tokenString string) *Result[*model.FileResponse]

	// GetSharedFile resolves a share token to document metadata only, with no
	// side effect.
	GetSharedFile(ctx context.Context, tokenString string) *Result[*model.DocumentInfo]

	// GetFiles lists the owner's documents with freshly presigned thumbnail
	// URLs where thumbnails exist.
	GetFiles(ctx context.Context, ownerID string) *Result[[]model.DocumentInfo]

	// ListOrphans reports owner-prefixed object keys with no metadata record,
	// the recoverable inconsistency a crash between write and upsert leaves.
	ListOrphans(ctx context.Context, ownerID string) *Result[[]string]
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store      storage.Storage
	repo       repository.DocumentRepository
	thumbs     Thumbnailer
	codec      *token.Codec
	appHost    string
	presignTTL time.Duration
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, thumbs Thumbnailer, codec *token.Codec, appHost string, presignTTL time.Duration) DocumentService {
	return &documentService{
		store:      store,
		repo:       repo,
		thumbs:     thumbs,
		codec:      codec,
		appHost:    strings.TrimRight(appHost, "/"),
		presignTTL: presignTTL,
	}
}

func (s *documentService) UploadFiles(ctx context.Context, ownerID string, files []UploadFile) *Result[[]string] {
	if ownerID == "" {
		return Failed[[]string](http.StatusBadRequest, "owner is required")
	}
	if len(files) == 0 {
		return Failed[[]string](http.StatusBadRequest, "no files to upload")
	}

	// Validate the whole batch before any write so a doomed batch has no
	// partial side effects.
	for _, f := range files {
		ext := strings.ToLower(path.Ext(f.Name))
		if _, ok := allowedTypes[ext]; !ok {
			return Failed[[]string](http.StatusBadRequest, fmt.Sprintf("file type %q is not supported", ext))
		}
	}

	failed := make([]string, 0)
	docs := make([]*model.Document, 0, len(files))

	for _, f := range files {
		ext := strings.ToLower(path.Ext(f.Name))
		key := ownerID + "/" + f.Name

		_, err := s.store.Put(ctx, key, bytes.NewReader(f.Content), storage.PutObjectOptions{
			Size:        int64(len(f.Content)),
			ContentType: f.ContentType,
		})
		if err != nil {
			// Per-file storage failure: record and continue, no batch abort.
			failed = append(failed, f.Name)
			continue
		}

		doc := &model.Document{
			OwnerID:    ownerID,
			Name:       f.Name,
			Type:       ext,
			StorageKey: key,
		}

		// PDF has no generator path; an absent thumbnail is expected there.
		if ext != ".pdf" {
			if preview, ok := s.thumbs.Generate(f.Content, ext); ok {
				thumbKey := ownerID + "/thumbnails/" + strings.TrimSuffix(f.Name, path.Ext(f.Name)) + ".png"
				if _, err := s.store.Put(ctx, thumbKey, bytes.NewReader(preview), storage.PutObjectOptions{
					Size:        int64(len(preview)),
					ContentType: "image/png",
				}); err == nil {
					doc.ThumbnailKey = thumbKey
				}
			}
		}

		docs = append(docs, doc)
	}

	// One metadata batch for the successful subset; the object writes above
	// are the recovery point if this fails (orphan objects, never orphan
	// metadata).
	if err := s.repo.UpsertBatch(ctx, docs); err != nil {
		return Failed[[]string](http.StatusInternalServerError, fmt.Sprintf("save metadata: %v", err))
	}

	res := Success(failed)
	if len(failed) > 0 {
		res.WithMessage("Some files failed to upload: " + strings.Join(failed, ", "))
	}
	return res
}

func (s *documentService) DownloadFile(ctx context.Context, ownerID, fileName string) *Result[*model.FileResponse] {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Failed[*model.FileResponse](http.StatusBadRequest, "file name is required")
	}

	key := ownerID + "/" + fileName
	rc, info, err := s.store.Get(ctx, key)
	if err != nil {
		return Failed[*model.FileResponse](http.StatusNotFound, fmt.Sprintf("file %q not found: %v", fileName, err))
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return Failed[*model.FileResponse](http.StatusBadGateway, fmt.Sprintf("read object: %v", err))
	}

	return Success(&model.FileResponse{
		Name:        fileName,
		ContentType: info.ContentType,
		Content:     content,
	})
}

func (s *documentService) DownloadFiles(ctx context.Context, ownerID string, fileNames []string) *Result[*model.FileResponse] {
	if len(fileNames) == 0 {
		return Failed[*model.FileResponse](http.StatusBadRequest, "no files to download")
	}

	// Unlike uploads, the bundle fails atomically: the caller expects a
	// coherent archive or none.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range fileNames {
		name = strings.TrimSpace(name)
		rc, _, err := s.store.Get(ctx, ownerID+"/"+name)
		if err != nil {
			return Failed[*model.FileResponse](http.StatusNotFound, fmt.Sprintf("file %q not found: %v", name, err))
		}

		entry, err := zw.Create(name)
		if err == nil {
			_, err = io.Copy(entry, rc)
		}
		rc.Close()
		if err != nil {
			return Failed[*model.FileResponse](http.StatusBadGateway, fmt.Sprintf("archive %q: %v", name, err))
		}
	}
	if err := zw.Close(); err != nil {
		return Failed[*model.FileResponse](http.StatusInternalServerError, fmt.Sprintf("finalize archive: %v", err))
	}

	return Success(&model.FileResponse{
		Name:        "files.zip",
		ContentType: "application/zip",
		Content:     buf.Bytes(),
	})
}

func (s *documentService) ShareFile(ctx context.Context, ownerID, fileName string, expirationHours int) *Result[string] {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Failed[string](http.StatusBadRequest, "file name is required")
	}
	if expirationHours <= 0 {
		return Failed[string](http.StatusBadRequest, "expiration must be a positive number of hours")
	}

	// Shareable identity is the logical document, so ownership is checked
	// against metadata by name and owner.
	doc, err := s.repo.FindByOwnerAndName(ctx, ownerID, fileName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Failed[string](http.StatusNotFound, "document not found or does not belong to the user")
		}
		return Failed[string](http.StatusInternalServerError, fmt.Sprintf("look up document: %v", err))
	}

	tok, err := s.codec.Issue(doc.StorageKey, time.Duration(expirationHours)*time.Hour)
	if err != nil {
		return Failed[string](http.StatusInternalServerError, fmt.Sprintf("issue share token: %v", err))
	}

	return Success(s.appHost + "/api/documents/get-shared-file?token=" + url.QueryEscape(tok))
}

// resolveShared verifies a share token and loads the record it points at.
// A verified token whose record is missing means metadata and object diverged.
func (s *documentService) resolveShared(ctx context.Context, tokenString string) (*model.Document, int, string) {
	key, err := s.codec.Verify(tokenString)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return nil, http.StatusUnauthorized, "share link has expired"
		}
		return nil, http.StatusUnauthorized, "share token is invalid"
	}

	doc, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, http.StatusNotFound, "shared document no longer exists"
		}
		return nil, http.StatusInternalServerError, fmt.Sprintf("look up document: %v", err)
	}
	return doc, 0, ""
}

func (s *documentService) DownloadSharedFile(ctx context.Context, tokenString string) *Result[*model.FileResponse] {
	doc, status, msg := s.resolveShared(ctx, tokenString)
	if doc == nil {
		return Failed[*model.FileResponse](status, msg)
	}

	rc, info, err := s.store.Get(ctx, doc.StorageKey)
	if err != nil {
		return Failed[*model.FileResponse](http.StatusNotFound, fmt.Sprintf("file %q not found: %v", doc.Name, err))
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return Failed[*model.FileResponse](http.StatusBadGateway, fmt.Sprintf("read object: %v", err))
	}

	// The increment is persisted before the content goes out, so a client
	// that disconnects mid-stream has still counted.
	if _, err := s.repo.IncrementDownloads(ctx, doc.StorageKey); err != nil {
		return Failed[*model.FileResponse](http.StatusInternalServerError, fmt.Sprintf("record download: %v", err))
	}

	return Success(&model.FileResponse{
		Name:        doc.Name,
		ContentType: info.ContentType,
		Content:     content,
	})
}

func (s *documentService) GetSharedFile(ctx context.Context, tokenString string) *Result[*model.DocumentInfo] {
	doc, status, msg := s.resolveShared(ctx, tokenString)
	if doc == nil {
		return Failed[*model.DocumentInfo](status, msg)
	}
	info := s.toInfo(ctx, doc, false)
	return Success(&info)
}

func (s *documentService) GetFiles(ctx context.Context, ownerID string) *Result[[]model.DocumentInfo] {
	docs, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return Failed[[]model.DocumentInfo](http.StatusInternalServerError, fmt.Sprintf("list documents: %v", err))
	}

	infos := make([]model.DocumentInfo, 0, len(docs))
	for i := range docs {
		infos = append(infos, s.toInfo(ctx, &docs[i], true))
	}
	return Success(infos)
}

func (s *documentService) ListOrphans(ctx context.Context, ownerID string) *Result[[]string] {
	keys, err := s.store.ListByPrefix(ctx, ownerID+"/", orphanScanLimit)
	if err != nil {
		return Failed[[]string](http.StatusBadGateway, fmt.Sprintf("list objects: %v", err))
	}

	orphans := make([]string, 0)
	for _, key := range keys {
		if strings.HasPrefix(key, ownerID+"/thumbnails/") {
			continue
		}
		_, err := s.repo.FindByKey(ctx, key)
		if errors.Is(err, sql.ErrNoRows) {
			orphans = append(orphans, key)
			continue
		}
		if err != nil {
			return Failed[[]string](http.StatusInternalServerError, fmt.Sprintf("look up key %q: %v", key, err))
		}
	}
	return Success(orphans)
}

// toInfo builds the read model; thumbnail URLs are presigned lazily per call
// and never stored, so every listing hands out a fresh, unexpired grant.
func (s *documentService) toInfo(ctx context.Context, doc *model.Document, withThumbnail bool) model.DocumentInfo {
	info := model.DocumentInfo{
		Name:      doc.Name,
		Type:      doc.Type,
		Path:      doc.StorageKey,
		Downloads: doc.Downloads,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	if withThumbnail && doc.ThumbnailKey != "" {
		if u, err := s.store.PresignGet(ctx, doc.ThumbnailKey, s.presignTTL); err == nil {
			info.ThumbnailURL = u
		}
	}
	return info
}
