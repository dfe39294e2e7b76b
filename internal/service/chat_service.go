// FILE: internal/service/chat_service.go
package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"govllminer-be/internal/dto"
	"govllminer-be/internal/entity"
	"govllminer-be/internal/pkg/apperrors"
	"govllminer-be/internal/pkg/logger"
	"govllminer-be/internal/repository/specification"
	"govllminer-be/internal/repository/unitofwork"
	"govllminer-be/pkg/llmapi"

	"github.com/google/uuid"
)

// recentTurns bounds the history slice returned after a write, regardless of
// how long the session has grown.
const recentTurns = 2

// sessionNameMaxLen caps a derived session name when the AI response has no
// period or comma to cut at.
const sessionNameMaxLen = 50

type IChatService interface {
	SendChat(ctx context.Context, userId uuid.UUID, token string, req *dto.ChatRequest) (*dto.ChatResponse, error)
	GetSessions(ctx context.Context, userId uuid.UUID) (*dto.SessionListResponse, error)
	GetSessionHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SessionHistoryResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	ClearAllSessions(ctx context.Context, userId uuid.UUID) error
	MapExternalId(ctx context.Context, sessionId uuid.UUID) (string, error)

	// Pure proxies to the remote LLM API.
	RAGQuery(ctx context.Context, token string, req *dto.RagQueryRequest) (json.RawMessage, error)
	DirectQuery(ctx context.Context, token string, req *dto.DirectQueryRequest) (json.RawMessage, error)
	UploadFile(ctx context.Context, token, filename, contentType string, content []byte) (json.RawMessage, error)
	ChatUpload(ctx context.Context, token, filename, contentType string, content []byte, message, sessionId, documentId string, clearHistory bool) (json.RawMessage, error)
	ListFeatures(ctx context.Context, token string) (json.RawMessage, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	llmClient  *llmapi.Client
	logger     logger.ILogger
}

func NewChatService(uowFactory unitofwork.RepositoryFactory, llmClient *llmapi.Client, logger logger.ILogger) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		llmClient:  llmClient,
		logger:     logger,
	}
}

// SendChat forwards the message to the remote LLM API and persists the
// resulting turn: the internal session id (when given) is swapped for the
// remote's continuity token before the call, and the reply is appended to the
// resolved session in one transaction.
func (s *chatService) SendChat(ctx context.Context, userId uuid.UUID, token string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	externalId := ""
	if req.SessionId != nil {
		mapped, err := s.mapExternalId(ctx, uow, *req.SessionId)
		if err != nil {
			return nil, err
		}
		externalId = mapped
	}

	result, err := s.llmClient.Chat(ctx, token, req.Message, userId.String(), externalId)
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperrors.ErrSessionSave
	}

	chatSession, err := s.resolveSession(ctx, uow, req.SessionId, result.SessionId, userId)
	if err != nil {
		uow.Rollback()
		return nil, err
	}

	if err := s.appendTurn(ctx, uow, chatSession, req.Message, result.Response); err != nil {
		uow.Rollback()
		s.logger.Error("chat", "failed to save chat turn", map[string]interface{}{
			"session_id": chatSession.Id,
			"error":      err.Error(),
		})
		return nil, apperrors.ErrSessionSave
	}

	if err := uow.Commit(); err != nil {
		s.logger.Error("chat", "failed to commit chat turn", map[string]interface{}{
			"session_id": chatSession.Id,
			"error":      err.Error(),
		})
		return nil, apperrors.ErrSessionSave
	}

	history, err := s.loadTurns(ctx, uow, chatSession.Id)
	if err != nil {
		return nil, apperrors.ErrDatabase
	}

	name := ""
	if chatSession.SessionName != nil {
		name = *chatSession.SessionName
	}

	return &dto.ChatResponse{
		Response:    result.Response,
		SessionId:   chatSession.Id,
		SessionName: name,
		ChatHistory: historyTail(history, recentTurns),
	}, nil
}

// resolveSession maps an inbound turn to exactly one session. An internal id
// must resolve (a stale id never fabricates a fresh session); an external id
// is reused when known and adopted otherwise; with neither, a brand-new
// session starts with no external id. Creation happens inside the caller's
// open transaction so the session and its first message pair commit together.
func (s *chatService) resolveSession(ctx context.Context, uow unitofwork.UnitOfWork, internalId *uuid.UUID, externalId string, ownerId uuid.UUID) (*entity.ChatSession, error) {
	sessions := uow.ChatSessionRepository()

	if internalId != nil {
		found, err := sessions.FindOne(ctx, specification.ByID{ID: *internalId})
		if err != nil {
			return nil, apperrors.ErrDatabase
		}
		if found == nil {
			return nil, apperrors.ErrSessionNotFound
		}
		return found, nil
	}

	if externalId != "" {
		found, err := sessions.FindOne(ctx, specification.ByExternalSessionID{ExternalSessionID: externalId})
		if err != nil {
			return nil, apperrors.ErrDatabase
		}
		if found != nil {
			return found, nil
		}
	}

	created := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    &ownerId,
		CreatedAt: time.Now(),
	}
	if externalId != "" {
		ext := externalId
		created.ExternalSessionId = &ext
	}
	if err := sessions.Create(ctx, created); err != nil {
		return nil, apperrors.ErrSessionSave
	}
	return created, nil
}

// appendTurn writes the user message then the AI reply. The first successful
// append to an unnamed session also derives its display name from the AI
// response; an existing name is never overwritten.
func (s *chatService) appendTurn(ctx context.Context, uow unitofwork.UnitOfWork, chatSession *entity.ChatSession, userText, aiText string) error {
	messages := uow.ChatMessageRepository()
	now := time.Now()

	userMsg := &entity.ChatMessage{
		Id:        uuid.New(),
		SessionId: chatSession.Id,
		Sender:    entity.ChatMessageSenderUser,
		Content:   userText,
		CreatedAt: now,
	}
	if err := messages.Create(ctx, userMsg); err != nil {
		return err
	}

	// The AI row must sort after the user row even at equal wall-clock.
	aiMsg := &entity.ChatMessage{
		Id:        uuid.New(),
		SessionId: chatSession.Id,
		Sender:    entity.ChatMessageSenderAI,
		Content:   aiText,
		CreatedAt: now.Add(time.Millisecond),
	}
	if err := messages.Create(ctx, aiMsg); err != nil {
		return err
	}

	if chatSession.SessionName == nil {
		name := deriveSessionName(aiText)
		chatSession.SessionName = &name
		if err := uow.ChatSessionRepository().Update(ctx, chatSession); err != nil {
			return err
		}
	}
	return nil
}

// deriveSessionName cuts the AI response at the first period or comma, else
// truncates it to sessionNameMaxLen characters.
func deriveSessionName(response string) string {
	if idx := strings.IndexAny(response, ".,"); idx >= 0 {
		return response[:idx]
	}
	runes := []rune(response)
	if len(runes) > sessionNameMaxLen {
		return string(runes[:sessionNameMaxLen])
	}
	return response
}

// pairTurns groups messages (ordered oldest first) into user/AI turns. User
// messages enter a pending queue and each AI message answers the oldest
// unmatched one, so consecutive user messages (client retries) pair with the
// next replies in arrival order instead of assuming strict alternation.
// Unanswered user messages trail as partial turns with a nil AI side.
func pairTurns(messages []*entity.ChatMessage) []dto.TurnDTO {
	turns := []dto.TurnDTO{}
	queue := []string{}

	for _, msg := range messages {
		switch msg.Sender {
		case entity.ChatMessageSenderUser:
			queue = append(queue, msg.Content)
		case entity.ChatMessageSenderAI:
			if len(queue) == 0 {
				continue
			}
			ai := msg.Content
			turns = append(turns, dto.TurnDTO{User: queue[0], AI: &ai})
			queue = queue[1:]
		}
	}

	for _, leftover := range queue {
		turns = append(turns, dto.TurnDTO{User: leftover})
	}
	return turns
}

// historyTail returns the last n turns in chronological order.
func historyTail(turns []dto.TurnDTO, n int) []dto.TurnDTO {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

func (s *chatService) loadTurns(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]dto.TurnDTO, error) {
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	return pairTurns(messages), nil
}

// MapExternalId resolves an internal session id to the remote provider's own
// session id. A session that does not resolve, or that has not been assigned
// an external id yet, is reported as not found rather than a silent empty
// value.
func (s *chatService) MapExternalId(ctx context.Context, sessionId uuid.UUID) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.mapExternalId(ctx, uow, sessionId)
}

func (s *chatService) mapExternalId(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) (string, error) {
	found, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return "", apperrors.ErrDatabase
	}
	if found == nil || found.ExternalSessionId == nil {
		return "", apperrors.ErrSessionNotFound
	}
	return *found.ExternalSessionId, nil
}

func (s *chatService) GetSessions(ctx context.Context, userId uuid.UUID) (*dto.SessionListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperrors.ErrDatabase
	}

	res := &dto.SessionListResponse{Sessions: make([]dto.SessionResponse, 0, len(sessions))}
	for _, cs := range sessions {
		name := ""
		if cs.SessionName != nil {
			name = *cs.SessionName
		}
		res.Sessions = append(res.Sessions, dto.SessionResponse{
			Id:          cs.Id,
			UserId:      cs.UserId,
			SessionName: name,
			CreatedAt:   cs.CreatedAt,
		})
	}
	return res, nil
}

func (s *chatService) GetSessionHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SessionHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chatSession, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, apperrors.ErrDatabase
	}
	if chatSession == nil {
		return nil, apperrors.ErrSessionNotFound
	}
	if chatSession.UserId != nil && *chatSession.UserId != userId {
		return nil, apperrors.ErrSessionNotFound
	}

	turns, err := s.loadTurns(ctx, uow, sessionId)
	if err != nil {
		return nil, apperrors.ErrDatabase
	}
	if len(turns) == 0 {
		return nil, apperrors.ErrNoChatHistory
	}

	name := "Unknown"
	if chatSession.SessionName != nil {
		name = *chatSession.SessionName
	}
	return &dto.SessionHistoryResponse{
		SessionId:   sessionId,
		SessionName: name,
		ChatHistory: turns,
	}, nil
}

// DeleteSession removes the session; its messages go with it via the store's
// cascade.
func (s *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chatSession, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return apperrors.ErrDatabase
	}
	if chatSession == nil {
		return apperrors.ErrSessionNotFound
	}
	if chatSession.UserId != nil && *chatSession.UserId != userId {
		return apperrors.ErrSessionNotFound
	}

	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return apperrors.ErrDatabase
	}
	return nil
}

func (s *chatService) ClearAllSessions(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().DeleteAllByUserId(ctx, userId); err != nil {
		return apperrors.ErrDatabase
	}
	return nil
}

// Proxy pass-throughs

func (s *chatService) RAGQuery(ctx context.Context, token string, req *dto.RagQueryRequest) (json.RawMessage, error) {
	return s.llmClient.RAGQuery(ctx, token, req)
}

func (s *chatService) DirectQuery(ctx context.Context, token string, req *dto.DirectQueryRequest) (json.RawMessage, error) {
	return s.llmClient.DirectQuery(ctx, token, req)
}

func (s *chatService) UploadFile(ctx context.Context, token, filename, contentType string, content []byte) (json.RawMessage, error) {
	return s.llmClient.UploadFile(ctx, token, filename, contentType, content)
}

func (s *chatService) ChatUpload(ctx context.Context, token, filename, contentType string, content []byte, message, sessionId, documentId string, clearHistory bool) (json.RawMessage, error) {
	return s.llmClient.ChatUpload(ctx, token, filename, contentType, content, message, sessionId, documentId, clearHistory)
}

func (s *chatService) ListFeatures(ctx context.Context, token string) (json.RawMessage, error) {
	return s.llmClient.ListFeatures(ctx, token)
}
