// FILE: internal/service/oauth_service.go
package service

import (
	"context"
	"encoding/json"
	"io"
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
	"golang.org/x/oauth2"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type IOAuthService interface {
	GetLoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (*dto.LoginResponse, error)
}

type oauthService struct {
	oauthConfig *oauth2.Config
	uowFactory  unitofwork.RepositoryFactory
	logger      logger.ILogger
}

func NewOAuthService(oauthConfig *oauth2.Config, uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) IOAuthService {
	return &oauthService{
		oauthConfig: oauthConfig,
		uowFactory:  uowFactory,
		logger:      logger,
	}
}

type googleUserInfo struct {
	Id            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (s *oauthService) GetLoginURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// HandleCallback exchanges the provider code, fetches the Google profile and
// signs the user in, creating the account on first contact. Accounts reached
// through Google count as email-verified.
func (s *oauthService) HandleCallback(ctx context.Context, code string) (*dto.LoginResponse, error) {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("oauth", "code exchange failed", map[string]interface{}{"error": err.Error()})
		return nil, apperrors.ErrOAuth
	}

	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		s.logger.Error("oauth", "userinfo fetch failed", map[string]interface{}{"error": err.Error()})
		return nil, apperrors.ErrOAuth
	}
	if info.Email == "" {
		return nil, apperrors.ErrOAuth
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: info.Email})
	if err != nil {
		return nil, apperrors.ErrDatabase
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperrors.ErrDatabase
	}
	defer uow.Rollback()

	if user == nil {
		user = &entity.User{
			Id:            uuid.New(),
			Email:         info.Email,
			FullName:      info.Name,
			EmailVerified: true,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		if info.Picture != "" {
			pic := info.Picture
			user.AvatarURL = &pic
		}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, apperrors.ErrDatabase
		}
	} else if !user.EmailVerified {
		// Google vouches for the address.
		if err := uow.UserRepository().ConsumeVerificationToken(ctx, user.Id); err != nil {
			return nil, apperrors.ErrDatabase
		}
		user.EmailVerified = true
	}

	provider := &entity.UserProvider{
		Id:             uuid.New(),
		UserId:         user.Id,
		ProviderName:   "google",
		ProviderUserId: info.Id,
		AvatarURL:      info.Picture,
		CreatedAt:      time.Now(),
	}
	if err := uow.UserRepository().SaveUserProvider(ctx, provider); err != nil {
		return nil, apperrors.ErrDatabase
	}

	if err := uow.Commit(); err != nil {
		return nil, apperrors.ErrDatabase
	}

	accessToken, err := serverutils.GenerateAccessToken(user.Id.String(), user.Email, true)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		User:        mapper.ToUserDTO(user),
	}, nil
}

func (s *oauthService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := s.oauthConfig.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
