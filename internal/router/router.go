package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-reservation/internal/handler"
	"github.com/iliyamo/hotel-room-reservation/internal/middleware"
	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

// Guards bundles the middleware shared by the route groups. A nil Cache
// or Limit disables that concern.
type Guards struct {
	Auth  middleware.TokenAuthenticator
	Cache echo.MiddlewareFunc
	Limit echo.MiddlewareFunc
}

func (g Guards) token() echo.MiddlewareFunc { return middleware.JWTAuth(g.Auth) }

func (g Guards) cache() echo.MiddlewareFunc { return orPass(g.Cache) }
func (g Guards) limit() echo.MiddlewareFunc { return orPass(g.Limit) }

func orPass(m echo.MiddlewareFunc) echo.MiddlewareFunc {
	if m == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return m
}

func (g Guards) admin() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{g.token(), middleware.RequireRole(model.RoleAdmin)}
}

// RegisterRoutes registers routes that need no dependencies.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth mounts /auth. Logout needs the token it revokes.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, g Guards) {
	grp := e.Group("/auth")
	grp.POST("/register", a.Register)
	grp.POST("/login", a.Login)
	grp.POST("/logout", a.Logout, g.token())
}

// RegisterConcierge mounts the public, rate limited /ai endpoints.
func RegisterConcierge(e *echo.Echo, h *handler.ConciergeHandler, g Guards) {
	grp := e.Group("/ai", g.limit())
	grp.POST("/chat", h.Chat)
	grp.POST("/recommend-rooms", h.RecommendRooms)
}
