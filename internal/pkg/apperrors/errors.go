// FILE: internal/pkg/apperrors/errors.go
package apperrors

import "github.com/gofiber/fiber/v2"

// AppError is the error type surfaced to HTTP clients. Code is a stable
// machine-readable identifier so clients can distinguish "our bug" from
// "their service is down" without parsing messages.
type AppError struct {
	Code    string
	Message string
	Status  int
}

func (e *AppError) Error() string {
	return e.Message
}

func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// WithMessage returns a copy with a different message but the same code and
// status, so sentinels stay comparable by code.
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{Code: e.Code, Message: message, Status: e.Status}
}

// Authentication / authorization
var (
	ErrInvalidCredentials = New(fiber.StatusUnauthorized, "invalid_credentials", "Incorrect email or password")
	ErrAccountNotVerified = New(fiber.StatusForbidden, "account_not_verified", "Email not verified, please verify your email to continue")
	ErrNotAuthenticated   = New(fiber.StatusUnauthorized, "not_authenticated", "Missing or invalid access token")
	ErrInvalidToken       = New(fiber.StatusUnauthorized, "invalid_token", "Token is invalid or expired")
)

// Resource lookups
var (
	ErrUserExists      = New(fiber.StatusConflict, "user_exists", "User with email already exists")
	ErrUserNotFound    = New(fiber.StatusNotFound, "user_not_found", "User not found")
	ErrSessionNotFound = New(fiber.StatusNotFound, "session_not_found", "Chat session not found")
	ErrNoChatHistory   = New(fiber.StatusNotFound, "no_chat_history", "No chat history found for this session")
	ErrInvalidSession  = New(fiber.StatusBadRequest, "invalid_session_id", "Invalid session id")
	ErrTokenNotFound   = New(fiber.StatusBadRequest, "token_invalid", "Invalid or expired token")
)

// Upstream (remote LLM API, OAuth, email provider). 502 keeps these
// distinguishable from our own persistence failures.
var (
	ErrChatAPI     = New(fiber.StatusBadGateway, "chat_api_error", "Error communicating with chat API")
	ErrRAGQuery    = New(fiber.StatusBadGateway, "rag_query_error", "RAG query failed")
	ErrDirectQuery = New(fiber.StatusBadGateway, "direct_query_error", "Direct query failed")
	ErrChatUpload  = New(fiber.StatusBadGateway, "chat_upload_error", "Chat upload failed")
	ErrFileUpload  = New(fiber.StatusBadGateway, "file_upload_error", "File upload failed")
	ErrOAuth       = New(fiber.StatusBadGateway, "oauth_error", "OAuth provider error")
)

// Persistence. Messages stay generic; internals are never leaked.
var (
	ErrSessionSave = New(fiber.StatusInternalServerError, "chat_session_save_error", "Failed to save chat session or messages")
	ErrDatabase    = New(fiber.StatusInternalServerError, "database_error", "Database error occurred")
)
