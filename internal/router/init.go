package router

import (
	"github.com/oksasatya/devfolio-api/internal/container"
	handlers "github.com/oksasatya/devfolio-api/internal/interface/http"
	"github.com/oksasatya/devfolio-api/internal/interface/middleware"
	"github.com/oksasatya/devfolio-api/internal/router/modules"
)

// InitModules builds the handlers from c and registers every module.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	authn := middleware.NewAuthenticator(c.Auth, c.Logger)
	r.Use(middleware.NoStore())

	// A nil *pgxpool.Pool must stay a nil Pinger.
	var store handlers.Pinger
	if c.Pool != nil {
		store = c.Pool
	}

	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(store, c.Logger)))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(c.Auth, c.Logger), authn))
	r.Add(modules.NewProjectModule(handlers.NewProjectHandler(c.ProjectsSvc, c.Logger), authn))
}
