package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foundly/foundly-api/internal/container"
	handlers "github.com/foundly/foundly-api/internal/interface/http"
	"github.com/foundly/foundly-api/internal/interface/middleware"
	"github.com/foundly/foundly-api/pkg/helpers"
)

// AuthModule wires registration, login and the token/verification
// flows under /auth.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIP(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil)
	resetLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	auth := rg.Group("/auth")
	auth.POST("/register", registerLimiter, m.Handler.Register)
	auth.POST("/login", loginLimiter, m.Handler.Login)
	auth.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	auth.POST("/verify/confirm", resetLimiter, m.Handler.VerifyConfirm)
	auth.POST("/reset/init", resetLimiter, m.Handler.ResetInit)
	auth.POST("/reset/confirm", resetLimiter, m.Handler.ResetConfirm)

	protected := auth.Group("/")
	protected.Use(middleware.Auth(rdb, m.JWT))
	{
		protected.POST("/logout", m.Handler.Logout)
		protected.POST("/verify/init", m.Handler.VerifyInit)
	}
}
