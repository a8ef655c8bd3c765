package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foundly/foundly-api/internal/container"
	handlers "github.com/foundly/foundly-api/internal/interface/http"
	"github.com/foundly/foundly-api/internal/interface/middleware"
	"github.com/foundly/foundly-api/pkg/helpers"
)

// UserModule exposes the self-service profile routes under /users.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	users := rg.Group("/users")
	users.Use(middleware.Auth(rdb, m.JWT))
	users.Use(
		middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		users.GET("/me", m.Handler.Me)
		users.PATCH("/me", m.Handler.UpdateMe)
		users.POST("/me/avatar", m.Handler.UploadAvatar)
		users.GET("/search", m.Handler.Search)
	}
}
