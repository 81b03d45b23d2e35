package handler

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-reservation/internal/middleware"
	"github.com/iliyamo/hotel-room-reservation/internal/service"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	Auth     *service.Authenticator
	TokenTTL time.Duration
}

// NewAuthHandler reports ttl as the token expiration time on login.
func NewAuthHandler(auth *service.Authenticator, ttl time.Duration) *AuthHandler {
	return &AuthHandler{Auth: auth, TokenTTL: ttl}
}

type registerReq struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// expirationLabel renders the token lifetime the way clients display it,
// e.g. "7 Days" or "12 Hours".
func expirationLabel(ttl time.Duration) string {
	if ttl >= 24*time.Hour && ttl%(24*time.Hour) == 0 {
		return fmt.Sprintf("%d Days", int(ttl/(24*time.Hour)))
	}
	return fmt.Sprintf("%d Hours", int(ttl/time.Hour))
}

// Register creates an account. It does not log the user in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, err)
	}
	u, err := h.Auth.Register(c.Request().Context(), service.RegisterRequest{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
	})
	if err != nil {
		return fail(c, err)
	}
	dto := toUser(u)
	return ok(c, Response{User: &dto})
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, err)
	}
	s, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, Response{
		Token:          s.Token.Token,
		Role:           s.User.Role,
		ExpirationTime: expirationLabel(h.TokenTTL),
	})
}

// Logout revokes the bearer token presented on this request.
func (h *AuthHandler) Logout(c echo.Context) error {
	id, found := middleware.IdentityFrom(c)
	if !found {
		return fail(c, errNoIdentity)
	}
	if err := h.Auth.Logout(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, Response{Message: "logged out"})
}
