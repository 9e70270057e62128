package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/paperchat/internal/config"
	"github.com/cloo-solutions/paperchat/internal/loader"
	"github.com/cloo-solutions/paperchat/internal/openai"
	"github.com/cloo-solutions/paperchat/internal/repository"
	"github.com/cloo-solutions/paperchat/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
)

// ReindexCmd returns the reindex command
func ReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the vector index from the document store",
		Long:  "Load every stored document, re-chunk and re-embed it, and swap the vector index contents",
		RunE:  runReindex,
	}
}

func runReindex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("PAPERCHAT_OPENAI_API_KEY is required")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	store, err := newDocumentStore(ctx, cfg)
	if err != nil {
		return err
	}

	aiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		EmbeddingModel: goopenai.EmbeddingModel(cfg.EmbeddingModel),
		ChatModel:      cfg.ChatModel,
	})

	chunkRepo := repository.NewChunkRepository(pool)

	chunkCfg := service.DefaultChunkConfig()
	chunkCfg.MaxChars = cfg.ChunkMaxChars
	chunkCfg.Overlap = cfg.ChunkOverlap

	indexSvc := service.NewIndexServiceWithConfig(store, loader.New(), aiClient, chunkRepo, chunkCfg)
	if err := indexSvc.Rebuild(ctx); err != nil {
		return fmt.Errorf("index rebuild failed: %w", err)
	}

	count, err := chunkRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count index chunks: %w", err)
	}
	log.Printf("index rebuilt: %d chunks", count)
	return nil
}
