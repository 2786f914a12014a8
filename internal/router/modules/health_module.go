package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/devfolio-api/internal/interface/http"
)

type HealthModule struct {
	Handler *handlers.HealthHandler
}

func NewHealthModule(h *handlers.HealthHandler) *HealthModule {
	return &HealthModule{Handler: h}
}

func (m *HealthModule) Register(public, _ *gin.RouterGroup) {
	public.GET("/healthz", m.Handler.Health)
}
