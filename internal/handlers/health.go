package handlers

import (
	"context"
	"net/http"
	"time"

	"auction-backend/internal/logger"
	"auction-backend/internal/models"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// DropCounter is satisfied by *realtime.Hub.
type DropCounter interface {
	Dropped() uint64
}

type HealthHandler struct {
	db     Pinger
	fanout DropCounter
}

// NewHealthHandler reports on db when it is non-nil. The in-memory store has
// nothing to ping.
func NewHealthHandler(db Pinger, fanout DropCounter) *HealthHandler {
	return &HealthHandler{db: db, fanout: fanout}
}

// Health godoc
// @Summary     Health check
// @Description Returns the health status of the API and its database
// @Tags        health
// @Accept      json
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Failure     503 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := models.HealthResponse{Status: "ok"}
	if h.fanout != nil {
		resp.DroppedEvents = h.fanout.Dropped()
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			logger.Warn("health check: database unreachable", map[string]any{"error": err.Error()})
			resp.Status = "unavailable"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}
