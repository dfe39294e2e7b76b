// FILE: internal/controller/auth_controller.go
package controller

import (
	"govllminer-be/internal/dto"
	"govllminer-be/internal/pkg/serverutils"
	"govllminer-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Signup(ctx *fiber.Ctx) error
	Signin(ctx *fiber.Ctx) error
	VerifyEmail(ctx *fiber.Ctx) error
	RequestEmailVerification(ctx *fiber.Ctx) error
	ForgotPassword(ctx *fiber.Ctx) error
	ResetPassword(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/signup", c.Signup)
	h.Post("/signin", c.Signin)
	h.Get("/verify-email", c.VerifyEmail)
	h.Post("/request-email-verification", c.RequestEmailVerification)
	h.Post("/forgot-password", c.ForgotPassword)
	h.Post("/reset-password", c.ResetPassword)
	h.Post("/logout", c.Logout)
}

func (c *authController) Signup(ctx *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Signup(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Signup successful, check your email to verify the account", res))
}

func (c *authController) Signin(ctx *fiber.Ctx) error {
	var req dto.SigninRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Signin(ctx.Context(), &req)
	if err != nil {
		return err
	}

	setAccessTokenCookie(ctx, res.AccessToken)
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) VerifyEmail(ctx *fiber.Ctx) error {
	token := ctx.Query("token")
	if token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing token")
	}

	res, err := c.service.VerifyEmail(ctx.Context(), token)
	if err != nil {
		return err
	}

	setAccessTokenCookie(ctx, res.AccessToken)
	return ctx.JSON(serverutils.SuccessResponse("Email verified successfully", res))
}

func (c *authController) RequestEmailVerification(ctx *fiber.Ctx) error {
	var req dto.RequestVerificationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.RequestEmailVerification(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Verification email sent if the account exists", nil))
}

func (c *authController) ForgotPassword(ctx *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.ForgotPassword(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Reset email sent if the account exists", nil))
}

func (c *authController) ResetPassword(ctx *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.ResetPassword(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Password reset successful", nil))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	ctx.Cookie(&fiber.Cookie{
		Name:     serverutils.AccessTokenCookie,
		Value:    "",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ctx.JSON(serverutils.SuccessResponse[any]("Logged out", nil))
}

func setAccessTokenCookie(ctx *fiber.Ctx, token string) {
	ctx.Cookie(&fiber.Cookie{
		Name:     serverutils.AccessTokenCookie,
		Value:    token,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
