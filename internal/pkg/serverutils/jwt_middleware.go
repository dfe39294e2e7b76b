// FILE: internal/pkg/serverutils/jwt_middleware.go
package serverutils

import (
	"os"
	"strconv"
	"time"

	"govllminer-be/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenCookie is the cookie the OAuth callback and signin set; the
// middleware accepts it as an alternative to the Authorization header.
const AccessTokenCookie = "access_token"

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	return []byte(secret)
}

func tokenExpiry() time.Duration {
	if v, err := strconv.Atoi(os.Getenv("JWT_EXPIRY_MINUTES")); err == nil && v > 0 {
		return time.Duration(v) * time.Minute
	}
	return 30 * time.Minute
}

// GenerateAccessToken issues a signed HS256 token carrying the user id, the
// subject email and the verification flag. Claims are trusted until expiry;
// there is no per-request revocation check.
func GenerateAccessToken(userId, email string, emailVerified bool) (string, error) {
	claims := jwt.MapClaims{
		"user_id":        userId,
		"sub":            email,
		"email_verified": emailVerified,
		"exp":            time.Now().Add(tokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// JwtMiddleware validates a bearer token or the access_token cookie and puts
// user_id, user_email and email_verified into request locals.
func JwtMiddleware(ctx *fiber.Ctx) error {
	tokenStr := ""
	authHeader := ctx.Get("Authorization")
	if len(authHeader) >= 7 && authHeader[:7] == "Bearer " {
		tokenStr = authHeader[7:]
	} else if cookie := ctx.Cookies(AccessTokenCookie); cookie != "" {
		tokenStr = cookie
	}
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			ErrorResponseWithCode(401, apperrors.ErrNotAuthenticated.Code, "Missing token"))
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			ErrorResponseWithCode(401, apperrors.ErrInvalidToken.Code, "Invalid token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			ErrorResponseWithCode(401, apperrors.ErrInvalidToken.Code, "Invalid claims"))
	}

	ctx.Locals("user_id", claims["user_id"])
	ctx.Locals("user_email", claims["sub"])
	ctx.Locals("email_verified", claims["email_verified"])
	// The raw token is forwarded to the remote LLM API on proxy calls.
	ctx.Locals("access_token", tokenStr)
	return ctx.Next()
}
