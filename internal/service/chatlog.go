package service

import (
	"context"

	"github.com/cloo-solutions/paperchat/internal/domain"
	"github.com/cloo-solutions/paperchat/internal/pagination"
)

// ChatLogInterface defines the repository contract for session turn storage.
// Session identifiers are opaque and generated by the caller; the log is
// purely keyed storage.
type ChatLogInterface interface {
	AppendTurn(ctx context.Context, sessionID, question, answer, model string) error
	GetHistory(ctx context.Context, sessionID string) ([]domain.Turn, error)
	ListTurns(ctx context.Context, sessionID string, cursor *pagination.Cursor, limit int) (*TurnPageResult, error)
}

// TurnPageResult is one page of session turns in ascending creation order.
type TurnPageResult struct {
	Items      []domain.Turn
	NextCursor string
	HasMore    bool
}
