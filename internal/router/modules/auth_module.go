package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/devfolio-api/internal/interface/http"
	"github.com/oksasatya/devfolio-api/internal/interface/middleware"
)

// AuthModule serves POST /signup, POST /login and GET /api/me.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Authn   *middleware.Authenticator
}

func NewAuthModule(h *handlers.AuthHandler, authn *middleware.Authenticator) *AuthModule {
	return &AuthModule{Handler: h, Authn: authn}
}

func (m *AuthModule) Register(public, api *gin.RouterGroup) {
	public.POST("/signup", m.Handler.Signup)
	public.POST("/login", m.Handler.Login)

	api.GET("/me", m.Authn.Protect(m.Handler.Me))
}
