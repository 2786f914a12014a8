package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/devfolio-api/internal/container"
	"github.com/oksasatya/devfolio-api/internal/interface/middleware"
	"github.com/oksasatya/devfolio-api/pkg/response"
)

// NewEngine builds the gin engine with the global middleware chain and every
// module registered.
func NewEngine(c *container.Container) *gin.Engine {
	cfg := c.Config

	r := gin.New()
	r.Use(gin.CustomRecovery(func(ctx *gin.Context, _ any) {
		response.Error(ctx, http.StatusInternalServerError, "Internal server error", nil)
	}))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(cfg.TrustProxyHeaders))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(c.Logger))
	}
	r.Use(cors.New(corsConfig(cfg.CORSOrigins())))

	r.NoRoute(func(ctx *gin.Context) {
		response.Error(ctx, http.StatusNotFound, "Route not found", nil)
	})

	reg := NewRegistry(r)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

// corsConfig allows every origin for "*" or an empty list. Tokens travel in
// the Authorization header, so credentials are never enabled.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
