package types

import "time"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is one turn of a trip's brainstorm conversation.
type ChatMessage struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at,omitempty"`
}

// Suggestion is a place pulled out of an assistant reply.
type Suggestion struct {
	PlaceName   string `json:"place_name"`
	DisplayText string `json:"display_text"`
}

type BrainstormRequest struct {
	Message string `json:"message"`
}

type BrainstormResponse struct {
	Reply       string       `json:"reply"`
	Suggestions []Suggestion `json:"suggestions"`
}
