package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email             string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash      *string   `gorm:"type:varchar(255)"`
	FullName          string    `gorm:"type:varchar(255)"`
	EmailVerified     bool      `gorm:"default:false"`
	VerificationToken *string   `gorm:"type:varchar(255);index"`
	AvatarURL         *string   `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`

	ResetTokens []PasswordResetToken `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	Providers   []UserProvider       `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

type PasswordResetToken struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Token     string    `gorm:"type:varchar(255);not null;index"`
	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

type UserProvider struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index"`
	ProviderName   string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_provider_identity"`
	ProviderUserId string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_provider_identity"`
	AvatarURL      string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (UserProvider) TableName() string {
	return "user_providers"
}
