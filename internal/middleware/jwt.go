package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-reservation/internal/apperr"
	"github.com/iliyamo/hotel-room-reservation/internal/utils"
)

// Context keys set by JWTAuth.
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxIdentity = "identity"
)

// TokenAuthenticator verifies a raw bearer token.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, raw string) (utils.Identity, error)
}

func deny(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"statusCode": status, "message": msg})
}

// bearer extracts the token from "Authorization: Bearer <token>".
func bearer(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(auth[7:])
	return raw, raw != ""
}

// JWTAuth rejects requests without a valid bearer token and stores the
// verified identity in the context for handlers and RequireRole.
func JWTAuth(auth TokenAuthenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c)
			if !ok {
				return deny(c, http.StatusUnauthorized, "missing bearer token")
			}
			id, err := auth.Authenticate(c.Request().Context(), raw)
			if err != nil {
				return deny(c, apperr.HTTPStatus(err), apperr.Message(err))
			}
			c.Set(CtxUserID, id.UserID)
			c.Set(CtxRole, id.Role)
			c.Set(CtxIdentity, id)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by JWTAuth.
func IdentityFrom(c echo.Context) (utils.Identity, bool) {
	id, ok := c.Get(CtxIdentity).(utils.Identity)
	return id, ok
}
