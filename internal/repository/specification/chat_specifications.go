package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByUserID struct {
	UserID uuid.UUID
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByExternalSessionID struct {
	ExternalSessionID string
}

func (s ByExternalSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("external_session_id = ?", s.ExternalSessionID)
}
