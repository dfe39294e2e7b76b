package contract

import (
	"context"

	"govllminer-be/internal/entity"
	"govllminer-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Verification token lifecycle (token lives on the user row; consuming
	// it clears the column so it is single-use)
	SetVerificationToken(ctx context.Context, userId uuid.UUID, token string) error
	ConsumeVerificationToken(ctx context.Context, userId uuid.UUID) error

	UpdatePassword(ctx context.Context, userId uuid.UUID, hash string) error

	// Password reset tokens
	CreatePasswordResetToken(ctx context.Context, token *entity.PasswordResetToken) error
	FindPasswordResetToken(ctx context.Context, specs ...specification.Specification) (*entity.PasswordResetToken, error)
	MarkTokenUsed(ctx context.Context, id uuid.UUID) error

	// OAuth provider link
	SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error
}
