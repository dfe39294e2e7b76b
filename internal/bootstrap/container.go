package bootstrap

import (
	"time"

	"govllminer-be/internal/config"
	"govllminer-be/internal/controller"
	"govllminer-be/internal/pkg/logger"
	"govllminer-be/internal/pkg/mailer"
	"govllminer-be/internal/repository/unitofwork"
	"govllminer-be/internal/service"
	"govllminer-be/pkg/llmapi"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController  controller.IAuthController
	OAuthController controller.IOAuthController
	UserController  controller.IUserController
	ChatController  controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.SenderEmail,
		cfg.App.FrontendURL,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	publisherService := service.NewPublisherService(cfg.App.MailTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.MailTopic, emailService)

	// 3. Outbound LLM API client
	llmClient := llmapi.NewClient(
		cfg.LLMAPI.BaseURL,
		time.Duration(cfg.LLMAPI.TimeoutSeconds)*time.Second,
	)

	// 4. OAuth
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	// 5. Services
	authService := service.NewAuthService(uowFactory, publisherService, sysLogger)
	oauthService := service.NewOAuthService(oauthConfig, uowFactory, sysLogger)
	userService := service.NewUserService(uowFactory)
	chatService := service.NewChatService(uowFactory, llmClient, sysLogger)

	// 6. Controllers
	return &Container{
		AuthController:  controller.NewAuthController(authService),
		OAuthController: controller.NewOAuthController(oauthService, cfg.App.FrontendURL),
		UserController:  controller.NewUserController(userService),
		ChatController:  controller.NewChatController(chatService),
		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}
