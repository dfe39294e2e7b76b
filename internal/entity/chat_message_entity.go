package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatMessageSenderUser = "user"
	ChatMessageSenderAI   = "ai"
)

// ChatMessage is immutable once created; ordering is by CreatedAt.
type ChatMessage struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Sender    string
	Content   string
	CreatedAt time.Time
}
