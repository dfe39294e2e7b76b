// FILE: internal/controller/chat_controller.go
package controller

import (
	"io"
	"mime/multipart"

	"govllminer-be/internal/dto"
	"govllminer-be/internal/pkg/apperrors"
	"govllminer-be/internal/pkg/serverutils"
	"govllminer-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	ChatUpload(ctx *fiber.Ctx) error
	RagQuery(ctx *fiber.Ctx) error
	DirectQuery(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	Features(ctx *fiber.Ctx) error
	Sessions(ctx *fiber.Ctx) error
	SessionHistory(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	ClearSessions(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Chat)
	h.Post("/upload", c.ChatUpload)
	h.Post("/query/rag", c.RagQuery)
	h.Post("/query/direct", c.DirectQuery)
	h.Post("/file/upload", c.Upload)
	h.Get("/features", c.Features)
	h.Get("/sessions", c.Sessions)
	h.Get("/session/:id", c.SessionHistory)
	h.Delete("/session/:id", c.DeleteSession)
	h.Delete("/sessions", c.ClearSessions)
}

func callerIdentity(ctx *fiber.Ctx) (uuid.UUID, string) {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	token := ctx.Locals("access_token").(string)
	return userId, token
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	userId, token := callerIdentity(ctx)
	res, err := c.service.SendChat(ctx.Context(), userId, token, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) ChatUpload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file")
	}
	content, contentType, err := readUpload(fileHeader)
	if err != nil {
		return err
	}

	message := ctx.FormValue("message")
	sessionId := ctx.FormValue("session_id")
	documentId := ctx.FormValue("document_id")
	clearHistory := ctx.FormValue("clear_history") == "true"

	_, token := callerIdentity(ctx)
	res, err := c.service.ChatUpload(ctx.Context(), token, fileHeader.Filename, contentType, content, message, sessionId, documentId, clearHistory)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) RagQuery(ctx *fiber.Ctx) error {
	var req dto.RagQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	_, token := callerIdentity(ctx)
	res, err := c.service.RAGQuery(ctx.Context(), token, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) DirectQuery(ctx *fiber.Ctx) error {
	var req dto.DirectQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	_, token := callerIdentity(ctx)
	res, err := c.service.DirectQuery(ctx.Context(), token, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file")
	}
	content, contentType, err := readUpload(fileHeader)
	if err != nil {
		return err
	}

	_, token := callerIdentity(ctx)
	res, err := c.service.UploadFile(ctx.Context(), token, fileHeader.Filename, contentType, content)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) Features(ctx *fiber.Ctx) error {
	_, token := callerIdentity(ctx)
	res, err := c.service.ListFeatures(ctx.Context(), token)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) Sessions(ctx *fiber.Ctx) error {
	userId, _ := callerIdentity(ctx)
	res, err := c.service.GetSessions(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) SessionHistory(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperrors.ErrInvalidSession
	}

	userId, _ := callerIdentity(ctx)
	res, err := c.service.GetSessionHistory(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperrors.ErrInvalidSession
	}

	userId, _ := callerIdentity(ctx)
	if err := c.service.DeleteSession(ctx.Context(), userId, sessionId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session deleted", dto.ChatGeneralResponse{Message: "Session deleted"}))
}

func (c *chatController) ClearSessions(ctx *fiber.Ctx) error {
	userId, _ := callerIdentity(ctx)
	if err := c.service.ClearAllSessions(ctx.Context(), userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("All sessions deleted", dto.ChatGeneralResponse{Message: "All sessions deleted"}))
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return content, contentType, nil
}
