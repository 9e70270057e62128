package service

import (
	"strings"
	"unicode"

	"github.com/cloo-solutions/paperchat/internal/domain"
)

// ChunkConfig controls how loaded document text is split before embedding.
type ChunkConfig struct {
	MaxChars int
	MinChars int
	Overlap  int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChars: 2000,
		MinChars: 400,
		Overlap:  200,
	}
}

// splitSegments chunks every segment and carries its source metadata through.
// Chunk indexes are assigned per source document, in segment order.
func splitSegments(segments []domain.Segment, cfg ChunkConfig) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(segments))
	indexBySource := make(map[string]int)

	for _, segment := range segments {
		for _, text := range chunkText(segment.Text, cfg) {
			chunks = append(chunks, domain.Chunk{
				Source:  segment.Source,
				Page:    segment.Page,
				Index:   indexBySource[segment.Source],
				Content: text,
			})
			indexBySource[segment.Source]++
		}
	}

	return chunks
}

// chunkText splits text into passages of at most MaxChars runes with Overlap
// runes shared between adjacent passages, cutting on whitespace where one
// falls within the MinChars..MaxChars window. Deterministic for identical
// input and config.
func chunkText(text string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if cfg.MaxChars <= 0 {
		cfg = DefaultChunkConfig()
	}
	runes := []rune(clean)
	if len(runes) <= cfg.MaxChars {
		return []string{clean}
	}

	chunks := make([]string, 0, 8)
	start := 0
	for start < len(runes) {
		end := start + cfg.MaxChars
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			cut := end
			minCut := start + cfg.MinChars
			if minCut > end {
				minCut = start
			}
			for i := end; i > minCut; i-- {
				if unicode.IsSpace(runes[i-1]) {
					cut = i
					break
				}
			}
			end = cut
		}

		if end <= start {
			break
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}

		nextStart := end
		if cfg.Overlap > 0 {
			if end-start > cfg.Overlap {
				nextStart = end - cfg.Overlap
			}
		}
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return chunks
}
