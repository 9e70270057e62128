package service

import (
	"context"
	"strings"

	"github.com/cloo-solutions/paperchat/internal/domain"
	"github.com/cloo-solutions/paperchat/internal/telemetry"
)

const contextualizeSystemPrompt = "Given the chat history and the latest user question, " +
	"which might reference context in the chat history, formulate a standalone question " +
	"that can be understood without the chat history. Do NOT answer the question; " +
	"reformulate it if needed and otherwise return it as is."

const answerSystemPrompt = "You are a helpful assistant that answers the user's question " +
	"using only the provided context. If the context does not contain the answer, " +
	"say \"I don't know\"."

// LLMClient defines the interface for chat completions
type LLMClient interface {
	Complete(ctx context.Context, messages []domain.Message) (string, error)
}

// ChunkSearcher runs nearest-neighbor search against the vector index
type ChunkSearcher interface {
	Search(ctx context.Context, embedding []float32, k int) ([]*RetrievedChunk, error)
}

// QueryEmbedder embeds a single search query
type QueryEmbedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// RetrievedChunk is one vector search hit, most-similar-first ordering is
// preserved by the searcher.
type RetrievedChunk struct {
	Content string
	Source  string
	Page    int
	Score   float64
}

// DefaultRetrievalK is the number of chunks retrieved per question.
const DefaultRetrievalK = 2

// ChatService answers questions grounded in the vector index, using prior
// session turns as conversational context.
type ChatService struct {
	llm      LLMClient
	embedder QueryEmbedder
	searcher ChunkSearcher
	topK     int
}

// NewChatService creates a new ChatService instance
func NewChatService(llm LLMClient, embedder QueryEmbedder, searcher ChunkSearcher) *ChatService {
	return NewChatServiceWithK(llm, embedder, searcher, DefaultRetrievalK)
}

// NewChatServiceWithK creates a ChatService with an explicit retrieval depth
func NewChatServiceWithK(llm LLMClient, embedder QueryEmbedder, searcher ChunkSearcher, topK int) *ChatService {
	if topK <= 0 {
		topK = DefaultRetrievalK
	}
	return &ChatService{
		llm:      llm,
		embedder: embedder,
		searcher: searcher,
		topK:     topK,
	}
}

// Answer runs the two-stage retrieval pipeline: first the question is
// reformulated into a standalone one using the chat history, then the top
// matching chunks are retrieved and a grounded completion is generated. The
// stages run strictly in order. An empty index is not an error; the model is
// still invoked with an empty context block and declines per its instruction.
func (s *ChatService) Answer(ctx context.Context, question string, history []domain.Turn) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChatService.Answer", telemetry.SpanAttributes{
		Operation: "chat",
	})
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.ErrEmptyQuestion
	}

	standalone, err := s.contextualize(ctx, question, history)
	if err != nil {
		return "", err
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, standalone)
	if err != nil {
		return "", domain.EmbeddingError(err)
	}

	retrieved, err := s.searcher.Search(ctx, embedding, s.topK)
	if err != nil {
		return "", err
	}

	messages := make([]domain.Message, 0, len(history)*2+3)
	messages = append(messages,
		domain.Message{Role: domain.RoleSystem, Content: answerSystemPrompt},
		domain.Message{Role: domain.RoleSystem, Content: "Context:\n" + contextBlock(retrieved)},
	)
	messages = appendHistory(messages, history)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: question})

	answer, err := s.llm.Complete(ctx, messages)
	if err != nil {
		return "", domain.LLMError(err)
	}
	return answer, nil
}

// contextualize rewrites a follow-up question into a standalone one. The
// first turn of a session has no history to resolve against, so the question
// passes through without an LLM call.
func (s *ChatService) contextualize(ctx context.Context, question string, history []domain.Turn) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	messages := make([]domain.Message, 0, len(history)*2+2)
	messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: contextualizeSystemPrompt})
	messages = appendHistory(messages, history)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: question})

	standalone, err := s.llm.Complete(ctx, messages)
	if err != nil {
		return "", domain.LLMError(err)
	}

	standalone = strings.TrimSpace(standalone)
	if standalone == "" {
		return question, nil
	}
	return standalone, nil
}

// contextBlock concatenates retrieved chunk texts most-similar-first.
func contextBlock(retrieved []*RetrievedChunk) string {
	parts := make([]string, 0, len(retrieved))
	for _, chunk := range retrieved {
		parts = append(parts, chunk.Content)
	}
	return strings.Join(parts, "\n\n")
}

// appendHistory converts logged turns into user/assistant message pairs in
// chronological order.
func appendHistory(messages []domain.Message, history []domain.Turn) []domain.Message {
	for _, turn := range history {
		messages = append(messages,
			domain.Message{Role: domain.RoleUser, Content: turn.Question},
			domain.Message{Role: domain.RoleAssistant, Content: turn.Answer},
		)
	}
	return messages
}
