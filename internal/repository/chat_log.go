package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/paperchat/internal/domain"
	"github.com/cloo-solutions/paperchat/internal/pagination"
	"github.com/cloo-solutions/paperchat/internal/service"
)

// ChatLogRepository stores session turns in an append-only table.
type ChatLogRepository struct {
	pool *pgxpool.Pool
}

func NewChatLogRepository(pool *pgxpool.Pool) *ChatLogRepository {
	return &ChatLogRepository{pool: pool}
}

// AppendTurn inserts one immutable turn record. Repeated identical turns are
// legal; there is no uniqueness constraint.
func (r *ChatLogRepository) AppendTurn(ctx context.Context, sessionID, question, answer, model string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO chat_turns (session_id, user_query, gpt_response, model)
		 VALUES ($1, $2, $3, $4)`,
		sessionID,
		question,
		answer,
		model,
	)
	if err != nil {
		return domain.StorageError("failed to append chat turn", err)
	}
	return nil
}

// GetHistory returns all turns for a session in ascending creation order.
// An unknown session yields an empty slice, not an error.
func (r *ChatLogRepository) GetHistory(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, user_query, gpt_response, model, created_at
		 FROM chat_turns
		 WHERE session_id = $1
		 ORDER BY created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, domain.StorageError("failed to read chat history", err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

// ListTurns returns one page of a session's turns in ascending creation
// order, using a keyset cursor over (created_at, id).
func (r *ChatLogRepository) ListTurns(ctx context.Context, sessionID string, cursor *pagination.Cursor, limit int) (*service.TurnPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, session_id, user_query, gpt_response, model, created_at
	          FROM chat_turns
	          WHERE session_id = $1`
	args := []interface{}{sessionID}

	if cursor != nil {
		query += ` AND (created_at, id) > ($2, $3)`
		args = append(args, cursor.Timestamp, cursor.LastID)
	}

	query += ` ORDER BY created_at, id LIMIT ` + strconv.Itoa(limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.StorageError("failed to list chat turns", err)
	}
	defer rows.Close()

	turns, err := scanTurns(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(turns) > limit
	if hasMore {
		turns = turns[:limit]
	}

	nextCursor := ""
	if hasMore && len(turns) > 0 {
		last := turns[len(turns)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &service.TurnPageResult{
		Items:      turns,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

type turnRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTurns(rows turnRows) ([]domain.Turn, error) {
	turns := make([]domain.Turn, 0)
	for rows.Next() {
		var turn domain.Turn
		if err := rows.Scan(&turn.ID, &turn.SessionID, &turn.Question, &turn.Answer, &turn.Model, &turn.CreatedAt); err != nil {
			return nil, domain.StorageError("failed to scan chat turn", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("failed to read chat turns", err)
	}
	return turns, nil
}
