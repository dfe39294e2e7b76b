// FILE: internal/controller/oauth_controller.go
package controller

import (
	"fmt"

	"govllminer-be/internal/pkg/serverutils"
	"govllminer-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type oauthController struct {
	service     service.IOAuthService
	frontendURL string
}

func NewOAuthController(service service.IOAuthService, frontendURL string) IOAuthController {
	return &oauthController{service: service, frontendURL: frontendURL}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/google")
	h.Get("", c.Login)
	h.Get("/callback", c.Callback)
}

func (c *oauthController) Login(ctx *fiber.Ctx) error {
	state := uuid.NewString()
	ctx.Cookie(&fiber.Cookie{
		Name:     "oauth_state",
		Value:    state,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   300,
	})
	return ctx.Redirect(c.service.GetLoginURL(state))
}

func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	code := ctx.Query("code")
	if code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing code")
	}
	if state := ctx.Query("state"); state == "" || state != ctx.Cookies("oauth_state") {
		return fiber.NewError(fiber.StatusBadRequest, "invalid state")
	}

	res, err := c.service.HandleCallback(ctx.Context(), code)
	if err != nil {
		return err
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     serverutils.AccessTokenCookie,
		Value:    res.AccessToken,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	if c.frontendURL != "" {
		return ctx.Redirect(fmt.Sprintf("%s/auth/callback", c.frontendURL))
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}
