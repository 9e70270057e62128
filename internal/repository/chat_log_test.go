//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloo-solutions/paperchat/internal/pagination"
	"github.com/cloo-solutions/paperchat/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendTestTurns(ctx context.Context, t *testing.T, repo *ChatLogRepository, sessionID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := repo.AppendTurn(ctx, sessionID,
			fmt.Sprintf("question %d", i),
			fmt.Sprintf("answer %d", i),
			"gpt-4o-mini")
		require.NoError(t, err)
	}
}

func TestChatLogRepository_AppendAndGetHistory(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChatLogRepository(pool)
	appendTestTurns(ctx, t, repo, "sess-1", 3)

	turns, err := repo.GetHistory(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, turns, 3)

	for i, turn := range turns {
		assert.Equal(t, "sess-1", turn.SessionID)
		assert.Equal(t, fmt.Sprintf("question %d", i), turn.Question)
		assert.Equal(t, fmt.Sprintf("answer %d", i), turn.Answer)
		assert.Equal(t, "gpt-4o-mini", turn.Model)
		assert.False(t, turn.CreatedAt.IsZero())
	}
}

func TestChatLogRepository_GetHistory_SessionsIsolated(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChatLogRepository(pool)
	appendTestTurns(ctx, t, repo, "sess-a", 2)
	appendTestTurns(ctx, t, repo, "sess-b", 1)

	turnsA, err := repo.GetHistory(ctx, "sess-a")
	require.NoError(t, err)
	assert.Len(t, turnsA, 2)

	turnsB, err := repo.GetHistory(ctx, "sess-b")
	require.NoError(t, err)
	assert.Len(t, turnsB, 1)
}

func TestChatLogRepository_GetHistory_UnknownSessionEmpty(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChatLogRepository(pool)

	turns, err := repo.GetHistory(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, turns)
	assert.Empty(t, turns)
}

func TestChatLogRepository_ListTurns_Pagination(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChatLogRepository(pool)
	appendTestTurns(ctx, t, repo, "sess-1", 5)

	page1, err := repo.ListTurns(ctx, "sess-1", nil, 2)
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.True(t, page1.HasMore)
	require.NotEmpty(t, page1.NextCursor)
	assert.Equal(t, "question 0", page1.Items[0].Question)
	assert.Equal(t, "question 1", page1.Items[1].Question)

	cursor, err := pagination.DecodeCursor(page1.NextCursor)
	require.NoError(t, err)

	page2, err := repo.ListTurns(ctx, "sess-1", cursor, 2)
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.True(t, page2.HasMore)
	assert.Equal(t, "question 2", page2.Items[0].Question)

	cursor, err = pagination.DecodeCursor(page2.NextCursor)
	require.NoError(t, err)

	page3, err := repo.ListTurns(ctx, "sess-1", cursor, 2)
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.False(t, page3.HasMore)
	assert.Empty(t, page3.NextCursor)
	assert.Equal(t, "question 4", page3.Items[0].Question)
}

func TestChatLogRepository_ListTurns_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChatLogRepository(pool)
	appendTestTurns(ctx, t, repo, "sess-1", 3)

	page, err := repo.ListTurns(ctx, "sess-1", nil, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.False(t, page.HasMore)
}
