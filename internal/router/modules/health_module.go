package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/foundly/foundly-api/internal/interface/http"
)

// HealthModule exposes liveness and readiness probes. No auth and no
// rate limiting so orchestrators can always reach them.
type HealthModule struct {
	Handler *handlers.HealthHandler
}

func NewHealthModule(h *handlers.HealthHandler) *HealthModule {
	return &HealthModule{Handler: h}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health/live", m.Handler.Live)
	rg.GET("/health/ready", m.Handler.Ready)
}
