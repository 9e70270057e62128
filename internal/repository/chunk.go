package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/cloo-solutions/paperchat/internal/domain"
	"github.com/cloo-solutions/paperchat/internal/service"
)

// ChunkRepository persists the vector index: embedded document chunks with
// nearest-neighbor search.
type ChunkRepository struct {
	pool *pgxpool.Pool
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{pool: pool}
}

// ReplaceAll swaps the full index contents inside one transaction, so
// concurrent searches observe either the old or the new chunk set, never a
// partially-built one.
func (r *ChunkRepository) ReplaceAll(ctx context.Context, chunks []domain.Chunk) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM document_chunks`); err != nil {
			return err
		}

		for _, c := range chunks {
			_, err := tx.Exec(ctx,
				`INSERT INTO document_chunks (source, page, chunk_index, content, embedding)
				 VALUES ($1, $2, $3, $4, $5)`,
				c.Source,
				c.Page,
				c.Index,
				c.Content,
				pgvector.NewVector(c.Embedding),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.StorageError("failed to replace index chunks", err)
	}
	return nil
}

// Search returns the k chunks nearest to the query embedding, most similar
// first (cosine distance). Fewer than k rows is not an error; an empty index
// yields an empty result.
func (r *ChunkRepository) Search(ctx context.Context, embedding []float32, k int) ([]*service.RetrievedChunk, error) {
	if k <= 0 {
		k = service.DefaultRetrievalK
	}

	rows, err := r.pool.Query(ctx,
		`SELECT content, source, page, 1.0 / (1.0 + (embedding <=> $1)) AS score
		 FROM document_chunks
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(embedding),
		k,
	)
	if err != nil {
		return nil, domain.StorageError("failed to search index chunks", err)
	}
	defer rows.Close()

	results := make([]*service.RetrievedChunk, 0, k)
	for rows.Next() {
		var chunk service.RetrievedChunk
		if err := rows.Scan(&chunk.Content, &chunk.Source, &chunk.Page, &chunk.Score); err != nil {
			return nil, domain.StorageError("failed to scan index chunk", err)
		}
		results = append(results, &chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("failed to search index chunks", err)
	}
	return results, nil
}

// Count returns the number of chunks currently in the index.
func (r *ChunkRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM document_chunks`).Scan(&count); err != nil {
		return 0, domain.StorageError("failed to count index chunks", err)
	}
	return count, nil
}
