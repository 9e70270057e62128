package domain

import "time"

// Turn is one logged question/answer exchange within a session.
// Turns are append-only and retrieved in creation order.
type Turn struct {
	ID        int64
	SessionID string
	Question  string
	Answer    string
	Model     string
	CreatedAt time.Time
}

// Message roles for chat completion requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a chat completion conversation.
type Message struct {
	Role    string
	Content string
}
