package serverutils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func protectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/protected", JwtMiddleware, func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"user_id": ctx.Locals("user_id"),
			"email":   ctx.Locals("user_email"),
		})
	})
	return app
}

func TestJwtMiddleware(t *testing.T) {
	app := protectedApp()

	token, err := GenerateAccessToken("user-1", "user@example.com", true)
	assert.NoError(t, err)

	t.Run("Accepts bearer header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("Accepts access_token cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Cookie", AccessTokenCookie+"="+token)

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("Rejects missing token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Rejects garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Rejects expired token", func(t *testing.T) {
		claims := jwt.MapClaims{
			"user_id": "user-1",
			"sub":     "user@example.com",
			"exp":     time.Now().Add(-time.Minute).Unix(),
		}
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("default_secret"))
		assert.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+expired)

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Rejects token signed with wrong key", func(t *testing.T) {
		claims := jwt.MapClaims{
			"user_id": "user-1",
			"sub":     "user@example.com",
			"exp":     time.Now().Add(time.Hour).Unix(),
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong_secret"))
		assert.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+forged)

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
