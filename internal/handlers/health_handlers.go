package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/epeers/portfolio-tracker/internal/services"
	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *database.DB
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness and transparency endpoints
type HealthHandler struct {
	db              Pinger
	transparencySvc *services.TransparencyService
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, transparencySvc *services.TransparencyService) *HealthHandler {
	return &HealthHandler{
		db:              db,
		transparencySvc: transparencySvc,
	}
}

// Health handles GET /health
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}

// HealthDB handles GET /health/db
// @Summary Database connectivity check
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.HealthResponse
// @Router /health/db [get]
func (h *HealthHandler) HealthDB(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, models.HealthResponse{Status: "error", DB: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok", DB: "ok"})
}

// LatestSnapshot handles GET /api/transparency/latest-snapshot
// @Summary Fingerprint of the newest archived positions export
// @Tags transparency
// @Produce json
// @Success 200 {object} models.SnapshotFileInfo
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/transparency/latest-snapshot [get]
func (h *HealthHandler) LatestSnapshot(c *gin.Context) {
	info, err := h.transparencySvc.LatestSnapshot()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
