package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notiapp/notiapp/internal/server/storage"
)

type HealthHandler struct {
	Store storage.Storage
}

// Health handles GET /api/health. The client's connectivity watcher polls
// this endpoint, so it must answer fast and reflect storage reachability.
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
