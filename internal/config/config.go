package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	LLMAPI   LLMAPIConfig
	OAuth    OAuthConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	FrontendURL        string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	MailTopic          string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderEmail string
}

type LLMAPIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			MailTopic:          getEnv("MAIL_TOPIC_NAME", "SEND_MAIL"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvAsInt("SMTP_PORT", 587),
			Username:    getEnv("SMTP_USERNAME", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			SenderEmail: getEnv("SMTP_SENDER_EMAIL", ""),
		},
		LLMAPI: LLMAPIConfig{
			BaseURL:        getEnv("LLM_API_BASE_URL", "https://bizllminer.equalyz.ai"),
			TimeoutSeconds: getEnvAsInt("LLM_API_TIMEOUT_SECONDS", 30),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
