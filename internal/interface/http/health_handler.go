package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devfolio-api/pkg/helpers"
	"github.com/oksasatya/devfolio-api/pkg/response"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store  Pinger // nil for the memory store
	Logger *logrus.Logger
}

func NewHealthHandler(store Pinger, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{Store: store, Logger: logger}
}

// Health GET /healthz
func (h *HealthHandler) Health(c *gin.Context) {
	if h.Store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			helpers.LogError(h.Logger, "health check failed", err, nil)
			response.JSON(c, http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
}
