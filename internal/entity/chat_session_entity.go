package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id uuid.UUID
	// Nullable: some proxy flows resolve the session before the user.
	UserId *uuid.UUID
	// Derived from the first AI response; set once, never overwritten.
	SessionName *string
	// Conversation id assigned by the remote LLM API. At most one internal
	// session maps to a given external id.
	ExternalSessionId *string
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}
