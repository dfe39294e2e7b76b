package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"govllminer-be/internal/entity"
	"govllminer-be/internal/model"
	"govllminer-be/internal/repository/specification"
	"govllminer-be/internal/repository/unitofwork"
	"govllminer-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(gormDB))
	return gormDB
}

func TestGormConnection(t *testing.T) {
	gormDB := setupDB(t)

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.ChatSessionRepository())
	assert.NotNil(t, uow.ChatMessageRepository())

	sqlDB, _ := gormDB.DB()
	assert.NoError(t, sqlDB.Ping())
}

func TestChatSessionLifecycle(t *testing.T) {
	gormDB := setupDB(t)
	ctx := context.Background()

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(ctx)

	user := &entity.User{
		Id:            uuid.New(),
		Email:         "test-integration-" + uuid.NewString() + "@example.com",
		EmailVerified: true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	require.NoError(t, uow.UserRepository().Create(ctx, user))
	defer uow.UserRepository().Delete(ctx, user.Id)

	externalId := "ext-" + uuid.NewString()
	session := &entity.ChatSession{
		Id:                uuid.New(),
		UserId:            &user.Id,
		ExternalSessionId: &externalId,
		CreatedAt:         time.Now(),
	}
	require.NoError(t, uow.ChatSessionRepository().Create(ctx, session))

	t.Run("Lookup by external id finds the same session", func(t *testing.T) {
		found, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByExternalSessionID{ExternalSessionID: externalId})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, session.Id, found.Id)
	})

	t.Run("Duplicate external id is rejected", func(t *testing.T) {
		dup := &entity.ChatSession{
			Id:                uuid.New(),
			UserId:            &user.Id,
			ExternalSessionId: &externalId,
			CreatedAt:         time.Now(),
		}
		assert.Error(t, uow.ChatSessionRepository().Create(ctx, dup))
	})

	t.Run("Session name persists once set", func(t *testing.T) {
		name := "First answer"
		session.SessionName = &name
		require.NoError(t, uow.ChatSessionRepository().Update(ctx, session))

		found, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
		require.NoError(t, err)
		require.NotNil(t, found)
		require.NotNil(t, found.SessionName)
		assert.Equal(t, name, *found.SessionName)
	})

	t.Run("Deleting the session removes its messages", func(t *testing.T) {
		msg := &entity.ChatMessage{
			Id:        uuid.New(),
			SessionId: session.Id,
			Sender:    entity.ChatMessageSenderUser,
			Content:   "hello",
			CreatedAt: time.Now(),
		}
		require.NoError(t, uow.ChatMessageRepository().Create(ctx, msg))

		require.NoError(t, uow.ChatSessionRepository().Delete(ctx, session.Id))

		leftover, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.BySessionID{SessionID: session.Id})
		require.NoError(t, err)
		assert.Empty(t, leftover)
	})
}

func TestUserProviderUpsert(t *testing.T) {
	gormDB := setupDB(t)
	ctx := context.Background()

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(ctx)

	user := &entity.User{
		Id:        uuid.New(),
		Email:     "test-provider-" + uuid.NewString() + "@example.com",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, uow.UserRepository().Create(ctx, user))
	defer uow.UserRepository().Delete(ctx, user.Id)

	providerUserId := "g-" + uuid.NewString()
	first := &entity.UserProvider{
		Id:             uuid.New(),
		UserId:         user.Id,
		ProviderName:   "google",
		ProviderUserId: providerUserId,
		AvatarURL:      "https://lh3.example.com/old.png",
		CreatedAt:      time.Now(),
	}
	require.NoError(t, uow.UserRepository().SaveUserProvider(ctx, first))

	// A repeat login with the same provider identity must not add a row.
	second := &entity.UserProvider{
		Id:             uuid.New(),
		UserId:         user.Id,
		ProviderName:   "google",
		ProviderUserId: providerUserId,
		AvatarURL:      "https://lh3.example.com/new.png",
		CreatedAt:      time.Now(),
	}
	require.NoError(t, uow.UserRepository().SaveUserProvider(ctx, second))

	var count int64
	require.NoError(t, gormDB.Model(&model.UserProvider{}).
		Where("provider_name = ? AND provider_user_id = ?", "google", providerUserId).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var row model.UserProvider
	require.NoError(t, gormDB.
		Where("provider_name = ? AND provider_user_id = ?", "google", providerUserId).
		First(&row).Error)
	assert.Equal(t, "https://lh3.example.com/new.png", row.AvatarURL)
}

func TestAccountDeletionSweepsChildRows(t *testing.T) {
	gormDB := setupDB(t)
	ctx := context.Background()

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(ctx)

	user := &entity.User{
		Id:        uuid.New(),
		Email:     "test-cascade-" + uuid.NewString() + "@example.com",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, uow.UserRepository().Create(ctx, user))

	resetToken := &entity.PasswordResetToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     "tok-" + uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, uow.UserRepository().CreatePasswordResetToken(ctx, resetToken))

	provider := &entity.UserProvider{
		Id:             uuid.New(),
		UserId:         user.Id,
		ProviderName:   "google",
		ProviderUserId: "g-" + uuid.NewString(),
		CreatedAt:      time.Now(),
	}
	require.NoError(t, uow.UserRepository().SaveUserProvider(ctx, provider))

	require.NoError(t, uow.UserRepository().Delete(ctx, user.Id))

	var tokens, providers int64
	require.NoError(t, gormDB.Model(&model.PasswordResetToken{}).
		Where("user_id = ?", user.Id).Count(&tokens).Error)
	require.NoError(t, gormDB.Model(&model.UserProvider{}).
		Where("user_id = ?", user.Id).Count(&providers).Error)
	assert.Zero(t, tokens)
	assert.Zero(t, providers)
}

func TestVerificationTokenConsumption(t *testing.T) {
	gormDB := setupDB(t)
	ctx := context.Background()

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(ctx)

	token := "tok-" + uuid.NewString()
	user := &entity.User{
		Id:                uuid.New(),
		Email:             "test-verify-" + uuid.NewString() + "@example.com",
		VerificationToken: &token,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	require.NoError(t, uow.UserRepository().Create(ctx, user))
	defer uow.UserRepository().Delete(ctx, user.Id)

	found, err := uow.UserRepository().FindOne(ctx, specification.ByVerificationToken{Token: token})
	require.NoError(t, err)
	require.NotNil(t, found)

	require.NoError(t, uow.UserRepository().ConsumeVerificationToken(ctx, user.Id))

	// Token is single use
	gone, err := uow.UserRepository().FindOne(ctx, specification.ByVerificationToken{Token: token})
	require.NoError(t, err)
	assert.Nil(t, gone)

	verified, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: user.Id})
	require.NoError(t, err)
	require.NotNil(t, verified)
	assert.True(t, verified.EmailVerified)
}
