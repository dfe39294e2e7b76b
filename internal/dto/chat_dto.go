// FILE: internal/dto/chat_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	// Internal session id; omitted for a brand-new conversation.
	SessionId *uuid.UUID `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Response    string    `json:"response"`
	SessionId   uuid.UUID `json:"session_id"`
	SessionName string    `json:"session_name"`
	ChatHistory []TurnDTO `json:"chat_history"`
}

// TurnDTO is one user message paired with the AI message answering it.
// AI is nil for a user message that has no reply yet.
type TurnDTO struct {
	User string  `json:"user"`
	AI   *string `json:"ai"`
}

type RagQueryRequest struct {
	Query   string `json:"query" validate:"required"`
	TopK    int    `json:"top_k,omitempty" validate:"omitempty,min=1"`
	RerankK int    `json:"rerank_k,omitempty" validate:"omitempty,min=1"`
	Feature string `json:"feature,omitempty"`
}

type DirectQueryRequest struct {
	Query string `json:"query" validate:"required"`
}

type SessionResponse struct {
	Id          uuid.UUID  `json:"id"`
	UserId      *uuid.UUID `json:"user_id,omitempty"`
	SessionName string     `json:"session_name"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

type SessionHistoryResponse struct {
	SessionId   uuid.UUID `json:"session_id"`
	SessionName string    `json:"session_name"`
	ChatHistory []TurnDTO `json:"chat_history"`
}

type ChatGeneralResponse struct {
	Message string `json:"message"`
}
