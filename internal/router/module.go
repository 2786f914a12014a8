package router

import "github.com/gin-gonic/gin"

// Module describes a feature module that registers its routes. public is
// the engine root; api is the /api group.
type Module interface {
	Register(public, api *gin.RouterGroup)
}
