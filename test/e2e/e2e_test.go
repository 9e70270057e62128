//go:build e2e

package e2e

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_Health(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	resp, err := env.Get("/health")
	require.NoError(t, err)

	var health struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &health))
	assert.Equal(t, "ok", health.Status)
}

func TestE2E_DocumentLifecycle(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	docx := DOCXFixture(t, "The refund policy allows returns within thirty days of purchase.")

	t.Run("upload", func(t *testing.T) {
		resp, err := env.UploadDocument("policy.docx", docx)
		require.NoError(t, err)

		var upload struct {
			Document struct {
				Filename string `json:"filename"`
				Format   string `json:"format"`
			} `json:"document"`
			IndexWarning string `json:"index_warning"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &upload))
		assert.Equal(t, "policy.docx", upload.Document.Filename)
		assert.Equal(t, "docx", upload.Document.Format)
		assert.Empty(t, upload.IndexWarning)
	})

	t.Run("list shows the document", func(t *testing.T) {
		resp, err := env.Get("/documents")
		require.NoError(t, err)

		var list struct {
			Documents []struct {
				Filename string `json:"filename"`
			} `json:"documents"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		require.Len(t, list.Documents, 1)
		assert.Equal(t, "policy.docx", list.Documents[0].Filename)
	})

	t.Run("index was rebuilt", func(t *testing.T) {
		var count int64
		require.NoError(t, env.Pool.QueryRow(env.Ctx, "SELECT COUNT(*) FROM document_chunks").Scan(&count))
		assert.Greater(t, count, int64(0))
	})

	t.Run("delete", func(t *testing.T) {
		resp, err := env.Delete("/documents/policy.docx")
		require.NoError(t, err)

		var del struct {
			Deleted string `json:"deleted"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &del))
		assert.Equal(t, "policy.docx", del.Deleted)

		var count int64
		require.NoError(t, env.Pool.QueryRow(env.Ctx, "SELECT COUNT(*) FROM document_chunks").Scan(&count))
		assert.Equal(t, int64(0), count)
	})

	t.Run("delete missing document", func(t *testing.T) {
		_, err := env.Delete("/documents/policy.docx")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("unsupported format rejected", func(t *testing.T) {
		_, err := env.UploadDocument("data.csv", []byte("a,b,c"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "400")
	})
}

func TestE2E_ChatFlow(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	docx := DOCXFixture(t, "The refund policy allows returns within thirty days of purchase.")
	_, err := env.UploadDocument("policy.docx", docx)
	require.NoError(t, err)

	var sessionID string

	t.Run("first question creates a session", func(t *testing.T) {
		resp, err := env.Post("/chat", map[string]string{
			"question": "What does the refund policy allow?",
		})
		require.NoError(t, err)

		var chat struct {
			Answer    string `json:"answer"`
			SessionID string `json:"session_id"`
			Model     string `json:"model"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &chat))
		assert.NotEmpty(t, chat.SessionID)
		assert.Equal(t, "stub-model", chat.Model)
		assert.Contains(t, chat.Answer, "refund policy")
		sessionID = chat.SessionID
	})

	t.Run("follow-up reuses the session", func(t *testing.T) {
		resp, err := env.Post("/chat", map[string]string{
			"question":   "How many days does it mention?",
			"session_id": sessionID,
		})
		require.NoError(t, err)

		var chat struct {
			Answer    string `json:"answer"`
			SessionID string `json:"session_id"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &chat))
		assert.Equal(t, sessionID, chat.SessionID)
		assert.NotEmpty(t, chat.Answer)
	})

	t.Run("history records both turns in order", func(t *testing.T) {
		resp, err := env.Get("/chat/" + sessionID + "/history")
		require.NoError(t, err)

		var history struct {
			Items []struct {
				Question string `json:"question"`
				Answer   string `json:"answer"`
				Model    string `json:"model"`
			} `json:"items"`
			HasMore bool `json:"has_more"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &history))
		require.Len(t, history.Items, 2)
		assert.Equal(t, "What does the refund policy allow?", history.Items[0].Question)
		assert.Equal(t, "How many days does it mention?", history.Items[1].Question)
		assert.False(t, history.HasMore)
	})

	t.Run("unknown session history is empty", func(t *testing.T) {
		resp, err := env.Get("/chat/no-such-session/history")
		require.NoError(t, err)

		var history struct {
			Items []json.RawMessage `json:"items"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &history))
		assert.Empty(t, history.Items)
	})

	t.Run("empty question rejected", func(t *testing.T) {
		_, err := env.Post("/chat", map[string]string{"question": ""})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "400")
	})
}

func TestE2E_ChatWithEmptyIndex(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	resp, err := env.Post("/chat", map[string]string{"question": "Is anything indexed?"})
	require.NoError(t, err)

	var chat struct {
		Answer string `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &chat))
	assert.Equal(t, "I don't know", chat.Answer)
}
