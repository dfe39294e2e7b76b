// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"govllminer-be/internal/dto"
	"govllminer-be/internal/entity"
	"govllminer-be/internal/mapper"
	"govllminer-be/internal/pkg/apperrors"
	"govllminer-be/internal/pkg/logger"
	"govllminer-be/internal/pkg/serverutils"
	"govllminer-be/internal/repository/specification"
	"govllminer-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = 1 * time.Hour

type IAuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error)
	Signin(ctx context.Context, req *dto.SigninRequest) (*dto.LoginResponse, error)
	VerifyEmail(ctx context.Context, token string) (*dto.LoginResponse, error)
	RequestEmailVerification(ctx context.Context, req *dto.RequestVerificationRequest) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	logger     logger.ILogger
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, publisher IPublisherService, logger logger.ILogger) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger,
	}
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, apperrors.ErrDatabase
	}
	if existing != nil {
		return nil, apperrors.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	user := &entity.User{
		Id:            uuid.New(),
		Email:         req.Email,
		FullName:      req.FullName,
		PasswordHash:  &hashStr,
		EmailVerified: false,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	user.VerificationToken = &token

	if err := uow.Begin(ctx); err != nil {
		return nil, apperrors.ErrDatabase
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, apperrors.ErrDatabase
	}
	if err := uow.Commit(); err != nil {
		return nil, apperrors.ErrDatabase
	}

	if err := s.publisher.PublishMail(ctx, dto.PublishMailMessage{
		Kind:    dto.MailKindVerification,
		ToEmail: user.Email,
		Token:   token,
	}); err != nil {
		s.logger.Error("auth", "failed to enqueue verification mail", map[string]interface{}{
			"email": user.Email,
			"error": err.Error(),
		})
	}

	return &dto.SignupResponse{User: mapper.ToUserDTO(user)}, nil
}

func (s *authService) Signin(ctx context.Context, req *dto.SigninRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, apperrors.ErrDatabase
	}
	if user == nil || user.PasswordHash == nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return nil, apperrors.ErrAccountNotVerified
	}

	return s.issueLogin(user)
}

// VerifyEmail consumes the emailed token: the user flips to verified, the
// token column is cleared, and the caller is logged in directly.
func (s *authService) VerifyEmail(ctx context.Context, token string) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByVerificationToken{Token: token})
	if err != nil {
		return nil, apperrors.ErrDatabase
	}
	if user == nil {
		return nil, apperrors.ErrInvalidToken
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperrors.ErrDatabase
	}
	defer uow.Rollback()

	if err := uow.UserRepository().ConsumeVerificationToken(ctx, user.Id); err != nil {
		return nil, apperrors.ErrDatabase
	}
	if err := uow.Commit(); err != nil {
		return nil, apperrors.ErrDatabase
	}

	user.EmailVerified = true
	user.VerificationToken = nil
	return s.issueLogin(user)
}

// RequestEmailVerification re-sends the verification link. An unknown email
// or an already-verified account returns success without sending, so the
// endpoint does not leak which addresses exist.
func (s *authService) RequestEmailVerification(ctx context.Context, req *dto.RequestVerificationRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return apperrors.ErrDatabase
	}
	if user == nil || user.EmailVerified {
		return nil
	}

	token, err := generateToken()
	if err != nil {
		return err
	}
	if err := uow.UserRepository().SetVerificationToken(ctx, user.Id, token); err != nil {
		return apperrors.ErrDatabase
	}

	return s.publisher.PublishMail(ctx, dto.PublishMailMessage{
		Kind:    dto.MailKindVerification,
		ToEmail: user.Email,
		Token:   token,
	})
}

func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return apperrors.ErrDatabase
	}
	if user == nil {
		// Same response whether the address exists or not.
		return nil
	}

	token, err := generateToken()
	if err != nil {
		return err
	}

	resetToken := &entity.PasswordResetToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenTTL),
		CreatedAt: time.Now(),
	}
	if err := uow.UserRepository().CreatePasswordResetToken(ctx, resetToken); err != nil {
		return apperrors.ErrDatabase
	}

	return s.publisher.PublishMail(ctx, dto.PublishMailMessage{
		Kind:    dto.MailKindPasswordReset,
		ToEmail: user.Email,
		Token:   token,
	})
}

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	resetToken, err := uow.UserRepository().FindPasswordResetToken(ctx, specification.ByToken{Token: req.Token})
	if err != nil {
		return apperrors.ErrDatabase
	}
	if resetToken == nil {
		return apperrors.ErrTokenNotFound
	}
	if resetToken.Used || time.Now().After(resetToken.ExpiresAt) {
		return apperrors.ErrTokenNotFound.WithMessage("Reset token already used or expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return apperrors.ErrDatabase
	}
	defer uow.Rollback()

	if err := uow.UserRepository().UpdatePassword(ctx, resetToken.UserId, string(hash)); err != nil {
		return apperrors.ErrDatabase
	}
	if err := uow.UserRepository().MarkTokenUsed(ctx, resetToken.Id); err != nil {
		return apperrors.ErrDatabase
	}
	return uow.Commit()
}

func (s *authService) issueLogin(user *entity.User) (*dto.LoginResponse, error) {
	accessToken, err := serverutils.GenerateAccessToken(user.Id.String(), user.Email, user.EmailVerified)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		User:        mapper.ToUserDTO(user),
	}, nil
}
