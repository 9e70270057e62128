package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/cloo-solutions/paperchat/internal/api"
	"github.com/cloo-solutions/paperchat/internal/domain"
	"github.com/cloo-solutions/paperchat/internal/pagination"
	"github.com/cloo-solutions/paperchat/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ChatAnswerer interface {
	Answer(ctx context.Context, question string, history []domain.Turn) (string, error)
}

type ChatLog interface {
	AppendTurn(ctx context.Context, sessionID, question, answer, model string) error
	GetHistory(ctx context.Context, sessionID string) ([]domain.Turn, error)
	ListTurns(ctx context.Context, sessionID string, cursor *pagination.Cursor, limit int) (*service.TurnPageResult, error)
}

type ChatHandler struct {
	svc   ChatAnswerer
	log   ChatLog
	model string

	// newSessionID is swappable in tests
	newSessionID func() string
}

func NewChatHandler(svc ChatAnswerer, chatLog ChatLog, model string) *ChatHandler {
	return &ChatHandler{
		svc:          svc,
		log:          chatLog,
		model:        model,
		newSessionID: uuid.NewString,
	}
}

type ChatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
	Model     string `json:"model"`
}

type TurnResponse struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
}

type HistoryResponse struct {
	Items   []*TurnResponse `json:"items"`
	Cursor  string          `json:"cursor,omitempty"`
	HasMore bool            `json:"has_more"`
}

func turnToResponse(t domain.Turn) *TurnResponse {
	return &TurnResponse{
		ID:        t.ID,
		SessionID: t.SessionID,
		Question:  t.Question,
		Answer:    t.Answer,
		Model:     t.Model,
		CreatedAt: t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = h.newSessionID()
	}

	history, err := h.log.GetHistory(r.Context(), sessionID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	answer, err := h.svc.Answer(r.Context(), req.Question, history)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	// The answer was already generated; a failed log append must not lose it.
	if err := h.log.AppendTurn(r.Context(), sessionID, req.Question, answer, h.model); err != nil {
		log.Printf("chat turn append failed for session %s: %v", sessionID, err)
	}

	api.Success(w, http.StatusOK, ChatResponse{
		Answer:    answer,
		SessionID: sessionID,
		Model:     h.model,
	})
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	if sessionID == "" {
		api.Error(w, http.StatusBadRequest, "session_id is required")
		return
	}

	var cursor *pagination.Cursor
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		decoded, err := pagination.DecodeCursor(raw)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid cursor")
			return
		}
		cursor = decoded
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	page, err := h.log.ListTurns(r.Context(), sessionID, cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*TurnResponse, 0, len(page.Items))
	for _, t := range page.Items {
		items = append(items, turnToResponse(t))
	}

	api.Success(w, http.StatusOK, HistoryResponse{
		Items:   items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	})
}
