// FILE: internal/controller/user_controller.go
package controller

import (
	"govllminer-be/internal/pkg/serverutils"
	"govllminer-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	Me(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type userController struct {
	service service.IUserService
}

func NewUserController(service service.IUserService) IUserController {
	return &userController{service: service}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/me", c.Me)
	h.Delete("/me", c.Delete)
}

func (c *userController) Me(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.GetProfile(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *userController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	if err := c.service.DeleteAccount(ctx.Context(), userId); err != nil {
		return err
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     serverutils.AccessTokenCookie,
		Value:    "",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ctx.JSON(serverutils.SuccessResponse[any]("Account deleted", nil))
}
