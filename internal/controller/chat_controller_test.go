package controller

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"govllminer-be/internal/pkg/apperrors"
	"govllminer-be/internal/pkg/serverutils"
	"govllminer-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The handlers under test reject before reaching the service, so the
// embedded interface never gets called.
type stubChatService struct {
	service.IChatService
}

func chatTestApp() *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewChatController(stubChatService{}).RegisterRoutes(app.Group("/api/v1"))
	return app
}

func TestChatControllerSessionIdParsing(t *testing.T) {
	app := chatTestApp()

	token, err := serverutils.GenerateAccessToken("user-1", "user@example.com", true)
	require.NoError(t, err)

	for _, route := range []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/chat/session/not-a-uuid"},
		{"DELETE", "/api/v1/chat/session/not-a-uuid"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body serverutils.ErrorBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, apperrors.ErrInvalidSession.Code, body.ErrorCode)
	}
}
