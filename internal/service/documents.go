package service

import (
	"context"
	"io"
	"log"

	"github.com/cloo-solutions/paperchat/internal/domain"
	"github.com/cloo-solutions/paperchat/internal/telemetry"
)

// DocumentStoreInterface defines the full document store contract
type DocumentStoreInterface interface {
	Save(ctx context.Context, filename string, r io.Reader) (*domain.Document, error)
	Delete(ctx context.Context, filename string) error
	List(ctx context.Context) ([]*domain.Document, error)
	Fetch(ctx context.Context, filename string) (string, func(), error)
}

// IndexRebuilder triggers a full vector index rebuild
type IndexRebuilder interface {
	Rebuild(ctx context.Context) error
}

// UploadOutput reports the stored document and, when the follow-up index
// rebuild failed, a warning that the index is stale.
type UploadOutput struct {
	Document     *domain.Document
	IndexWarning string
}

// DeleteOutput reports a stale-index warning after a failed rebuild.
type DeleteOutput struct {
	IndexWarning string
}

// DocumentService orchestrates document store mutations and the index
// rebuilds they require. A rebuild failure never rolls back the store
// mutation; it is surfaced as a warning instead.
type DocumentService struct {
	store   DocumentStoreInterface
	indexer IndexRebuilder
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(store DocumentStoreInterface, indexer IndexRebuilder) *DocumentService {
	return &DocumentService{
		store:   store,
		indexer: indexer,
	}
}

// Upload stores a new document and rebuilds the index.
func (s *DocumentService) Upload(ctx context.Context, filename string, r io.Reader) (*UploadOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Upload", telemetry.SpanAttributes{
		Document:  filename,
		Operation: "upload",
	})
	defer span.End()

	doc, err := s.store.Save(ctx, filename, r)
	if err != nil {
		return nil, err
	}

	return &UploadOutput{
		Document:     doc,
		IndexWarning: s.rebuild(ctx),
	}, nil
}

// Delete removes a document and rebuilds the index.
func (s *DocumentService) Delete(ctx context.Context, filename string) (*DeleteOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Delete", telemetry.SpanAttributes{
		Document:  filename,
		Operation: "delete",
	})
	defer span.End()

	if err := s.store.Delete(ctx, filename); err != nil {
		return nil, err
	}

	return &DeleteOutput{IndexWarning: s.rebuild(ctx)}, nil
}

// List returns the current document store contents.
func (s *DocumentService) List(ctx context.Context) ([]*domain.Document, error) {
	return s.store.List(ctx)
}

func (s *DocumentService) rebuild(ctx context.Context) string {
	err := s.indexer.Rebuild(ctx)
	if err == nil {
		return ""
	}

	log.Printf("index rebuild failed, serving stale index: %v", err)
	telemetry.CaptureError(ctx, err)
	return "index rebuild failed, search results may be stale: " + err.Error()
}
