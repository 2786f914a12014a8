package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/devfolio-api/internal/interface/http"
	"github.com/oksasatya/devfolio-api/internal/interface/middleware"
)

// ProjectModule serves the owner-scoped /api/projects routes.
type ProjectModule struct {
	Handler *handlers.ProjectHandler
	Authn   *middleware.Authenticator
}

func NewProjectModule(h *handlers.ProjectHandler, authn *middleware.Authenticator) *ProjectModule {
	return &ProjectModule{Handler: h, Authn: authn}
}

func (m *ProjectModule) Register(_, api *gin.RouterGroup) {
	g := api.Group("/projects")
	g.POST("", m.Authn.Protect(m.Handler.Create))
	g.GET("", m.Authn.Protect(m.Handler.List))
	g.GET("/search", m.Authn.Protect(m.Handler.Search))
	g.GET("/:id", m.Authn.Protect(m.Handler.Get))
	g.PUT("/:id", m.Authn.Protect(m.Handler.Update))
	g.DELETE("/:id", m.Authn.Protect(m.Handler.Delete))
}
