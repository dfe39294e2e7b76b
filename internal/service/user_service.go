// FILE: internal/service/user_service.go
package service

import (
	"context"

	"govllminer-be/internal/dto"
	"govllminer-be/internal/mapper"
	"govllminer-be/internal/pkg/apperrors"
	"govllminer-be/internal/repository/specification"
	"govllminer-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserDTO, error)
	DeleteAccount(ctx context.Context, userId uuid.UUID) error
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{uowFactory: uowFactory}
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperrors.ErrDatabase
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	profile := mapper.ToUserDTO(user)
	return &profile, nil
}

// DeleteAccount removes the user together with their chat sessions. Reset
// tokens and provider links go via the store's cascade.
func (s *userService) DeleteAccount(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return apperrors.ErrDatabase
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return apperrors.ErrDatabase
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().DeleteAllByUserId(ctx, userId); err != nil {
		return apperrors.ErrDatabase
	}
	if err := uow.UserRepository().Delete(ctx, userId); err != nil {
		return apperrors.ErrDatabase
	}
	return uow.Commit()
}
