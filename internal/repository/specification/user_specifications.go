package specification

import "gorm.io/gorm"

// ByEmail filters users by email
type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

// ByVerificationToken filters users by their pending verification token
type ByVerificationToken struct {
	Token string
}

func (s ByVerificationToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("verification_token = ?", s.Token)
}

// ByToken filters token tables by token value
type ByToken struct {
	Token string
}

func (s ByToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("token = ?", s.Token)
}
