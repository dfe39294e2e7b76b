package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"govllminer-be/internal/dto"
	"govllminer-be/internal/entity"
	"govllminer-be/internal/pkg/apperrors"
	"govllminer-be/internal/repository/contract"
	"govllminer-be/internal/repository/specification"
	"govllminer-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubUserRepo struct {
	contract.UserRepository

	resetToken  *entity.PasswordResetToken
	updatedHash string
	markedUsed  bool
}

func (r *stubUserRepo) FindPasswordResetToken(ctx context.Context, specs ...specification.Specification) (*entity.PasswordResetToken, error) {
	for _, spec := range specs {
		if byToken, ok := spec.(specification.ByToken); ok {
			if r.resetToken != nil && r.resetToken.Token == byToken.Token {
				return r.resetToken, nil
			}
		}
	}
	return nil, nil
}

func (r *stubUserRepo) UpdatePassword(ctx context.Context, userId uuid.UUID, hash string) error {
	r.updatedHash = hash
	return nil
}

func (r *stubUserRepo) MarkTokenUsed(ctx context.Context, id uuid.UUID) error {
	r.markedUsed = true
	return nil
}

type authUow struct {
	users *stubUserRepo
}

func (u *authUow) Begin(ctx context.Context) error { return nil }
func (u *authUow) Commit() error                   { return nil }
func (u *authUow) Rollback() error                 { return nil }

func (u *authUow) UserRepository() contract.UserRepository { return u.users }
func (u *authUow) ChatSessionRepository() contract.ChatSessionRepository {
	return nil
}
func (u *authUow) ChatMessageRepository() contract.ChatMessageRepository {
	return nil
}

type authUowFactory struct {
	users *stubUserRepo
}

func (f *authUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &authUow{users: f.users}
}

type nopPublisher struct{}

func (nopPublisher) PublishMail(ctx context.Context, mail dto.PublishMailMessage) error {
	return nil
}

func newResetFixture(token *entity.PasswordResetToken) (IAuthService, *stubUserRepo) {
	users := &stubUserRepo{resetToken: token}
	svc := NewAuthService(&authUowFactory{users: users}, nopPublisher{}, nopLogger{})
	return svc, users
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown token is rejected", func(t *testing.T) {
		svc, _ := newResetFixture(nil)

		err := svc.ResetPassword(ctx, &dto.ResetPasswordRequest{
			Token:       "no-such-token",
			NewPassword: "brand-new-pass",
		})
		assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
	})

	t.Run("Expired token is rejected", func(t *testing.T) {
		svc, users := newResetFixture(&entity.PasswordResetToken{
			Id:        uuid.New(),
			UserId:    uuid.New(),
			Token:     "expired-token",
			ExpiresAt: time.Now().Add(-time.Minute),
		})

		err := svc.ResetPassword(ctx, &dto.ResetPasswordRequest{
			Token:       "expired-token",
			NewPassword: "brand-new-pass",
		})

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperrors.ErrTokenNotFound.Code, appErr.Code)
		assert.Empty(t, users.updatedHash)
	})

	t.Run("Used token is rejected", func(t *testing.T) {
		svc, users := newResetFixture(&entity.PasswordResetToken{
			Id:        uuid.New(),
			UserId:    uuid.New(),
			Token:     "used-token",
			ExpiresAt: time.Now().Add(time.Hour),
			Used:      true,
		})

		err := svc.ResetPassword(ctx, &dto.ResetPasswordRequest{
			Token:       "used-token",
			NewPassword: "brand-new-pass",
		})

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperrors.ErrTokenNotFound.Code, appErr.Code)
		assert.Empty(t, users.updatedHash)
	})

	t.Run("Valid token updates the password and burns the token", func(t *testing.T) {
		svc, users := newResetFixture(&entity.PasswordResetToken{
			Id:        uuid.New(),
			UserId:    uuid.New(),
			Token:     "fresh-token",
			ExpiresAt: time.Now().Add(time.Hour),
		})

		err := svc.ResetPassword(ctx, &dto.ResetPasswordRequest{
			Token:       "fresh-token",
			NewPassword: "brand-new-pass",
		})
		require.NoError(t, err)

		assert.True(t, users.markedUsed)
		require.NotEmpty(t, users.updatedHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.updatedHash), []byte("brand-new-pass")))
	})
}
