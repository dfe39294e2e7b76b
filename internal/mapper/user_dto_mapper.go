package mapper

import (
	"govllminer-be/internal/dto"
	"govllminer-be/internal/entity"
)

// ToUserDTO shapes a user entity for API responses. The password hash and
// verification token never leave the service layer.
func ToUserDTO(u *entity.User) dto.UserDTO {
	avatar := ""
	if u.AvatarURL != nil {
		avatar = *u.AvatarURL
	}
	return dto.UserDTO{
		Id:              u.Id,
		Email:           u.Email,
		FullName:        u.FullName,
		IsEmailVerified: u.EmailVerified,
		AvatarURL:       avatar,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
