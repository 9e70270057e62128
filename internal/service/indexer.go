package service

import (
	"context"

	"github.com/cloo-solutions/paperchat/internal/domain"
	"github.com/cloo-solutions/paperchat/internal/telemetry"
)

// IndexDocumentStore defines the document store operations the indexer needs
type IndexDocumentStore interface {
	List(ctx context.Context) ([]*domain.Document, error)
	Fetch(ctx context.Context, filename string) (string, func(), error)
}

// DocumentLoader converts a stored document file into text segments
type DocumentLoader interface {
	Load(ctx context.Context, path, source string) ([]domain.Segment, error)
}

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkWriter replaces the vector index contents with a new chunk set
type ChunkWriter interface {
	ReplaceAll(ctx context.Context, chunks []domain.Chunk) error
}

// embeddingBatchSize bounds the number of inputs per embeddings request.
const embeddingBatchSize = 128

// IndexService rebuilds the vector index from the current document store
// contents.
type IndexService struct {
	store    IndexDocumentStore
	loader   DocumentLoader
	embedder EmbeddingClient
	chunks   ChunkWriter
	chunkCfg ChunkConfig
}

// NewIndexService creates a new IndexService instance
func NewIndexService(store IndexDocumentStore, docLoader DocumentLoader, embedder EmbeddingClient, chunks ChunkWriter) *IndexService {
	return NewIndexServiceWithConfig(store, docLoader, embedder, chunks, DefaultChunkConfig())
}

// NewIndexServiceWithConfig creates an IndexService with explicit chunking configuration
func NewIndexServiceWithConfig(store IndexDocumentStore, docLoader DocumentLoader, embedder EmbeddingClient, chunks ChunkWriter, cfg ChunkConfig) *IndexService {
	return &IndexService{
		store:    store,
		loader:   docLoader,
		embedder: embedder,
		chunks:   chunks,
		chunkCfg: cfg,
	}
}

// Rebuild regenerates the whole vector index from the documents currently in
// the store. The operation is all-or-nothing: a single unreadable document or
// a failed embedding call aborts the rebuild and leaves the previous index
// untouched. Rebuilding twice against unchanged store contents produces the
// same chunk set.
func (s *IndexService) Rebuild(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "IndexService.Rebuild", telemetry.SpanAttributes{
		Operation: "reindex",
	})
	defer span.End()

	docs, err := s.store.List(ctx)
	if err != nil {
		return err
	}

	segments := make([]domain.Segment, 0, len(docs))
	for _, doc := range docs {
		docSegments, err := s.loadDocument(ctx, doc.Name)
		if err != nil {
			return err
		}
		segments = append(segments, docSegments...)
	}

	chunks := splitSegments(segments, s.chunkCfg)

	if err := s.embedChunks(ctx, chunks); err != nil {
		return err
	}

	// Replacing with an empty set is the correct result for an empty store.
	return s.chunks.ReplaceAll(ctx, chunks)
}

func (s *IndexService) loadDocument(ctx context.Context, filename string) ([]domain.Segment, error) {
	path, cleanup, err := s.store.Fetch(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return s.loader.Load(ctx, path, filename)
}

func (s *IndexService) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Content)
		}

		embeddings, err := s.embedder.GenerateEmbeddings(ctx, texts)
		if err != nil {
			return domain.EmbeddingError(err)
		}

		for i := range embeddings {
			chunks[start+i].Embedding = embeddings[i]
		}
	}
	return nil
}
