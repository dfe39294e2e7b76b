package mapper

import (
	"govllminer-be/internal/entity"
	"govllminer-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:                u.Id,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		FullName:          u.FullName,
		EmailVerified:     u.EmailVerified,
		VerificationToken: u.VerificationToken,
		AvatarURL:         u.AvatarURL,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:                u.Id,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		FullName:          u.FullName,
		EmailVerified:     u.EmailVerified,
		VerificationToken: u.VerificationToken,
		AvatarURL:         u.AvatarURL,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (m *UserMapper) ResetTokenToEntity(t *model.PasswordResetToken) *entity.PasswordResetToken {
	if t == nil {
		return nil
	}
	e := entity.PasswordResetToken(*t)
	return &e
}

func (m *UserMapper) ResetTokenToModel(t *entity.PasswordResetToken) *model.PasswordResetToken {
	if t == nil {
		return nil
	}
	mo := model.PasswordResetToken(*t)
	return &mo
}

func (m *UserMapper) ProviderToModel(p *entity.UserProvider) *model.UserProvider {
	if p == nil {
		return nil
	}
	mo := model.UserProvider(*p)
	return &mo
}
