package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foundly/foundly-api/internal/container"
	"github.com/foundly/foundly-api/internal/domain/entity"
	handlers "github.com/foundly/foundly-api/internal/interface/http"
	"github.com/foundly/foundly-api/internal/interface/middleware"
	"github.com/foundly/foundly-api/pkg/helpers"
)

// AdminModule exposes user administration under /admin; every route
// requires the ADMIN role.
type AdminModule struct {
	Users *handlers.AdminHandler
	Email *handlers.EmailHandler
	JWT   *helpers.JWTManager
}

func NewAdminModule(users *handlers.AdminHandler, email *handlers.EmailHandler, jwt *helpers.JWTManager) *AdminModule {
	return &AdminModule{Users: users, Email: email, JWT: jwt}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(rdb, m.JWT))
	admin.Use(middleware.RequireRole(string(entity.RoleAdmin)))
	admin.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		admin.GET("/users", m.Users.List)
		admin.POST("/users", m.Users.Create)
		admin.GET("/users/:id", m.Users.Get)
		admin.PATCH("/users/:id", m.Users.Update)
		admin.DELETE("/users/:id", m.Users.Remove)
		admin.DELETE("/users/:id/permanent", m.Users.HardDelete)

		admin.POST("/emails", m.Email.Send)
	}
}
