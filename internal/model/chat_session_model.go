package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id     uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId *uuid.UUID `gorm:"type:uuid;index"`
	// Nullable until the first turn is saved.
	SessionName *string `gorm:"type:text"`
	// Unique index enforces the one-internal-per-external invariant; a
	// concurrent create for the same external id loses with a constraint
	// error, surfaced as a save failure (no retry).
	ExternalSessionId *string   `gorm:"type:varchar(255);uniqueIndex"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`

	Messages []ChatMessage `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
