package handlers

import (
	"net/http"

	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/epeers/portfolio-tracker/internal/services"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles the job endpoints also available as cmd/ binaries
type AdminHandler struct {
	betaSvc   *services.BetaService
	marketSvc *services.MarketService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(betaSvc *services.BetaService, marketSvc *services.MarketService) *AdminHandler {
	return &AdminHandler{
		betaSvc:   betaSvc,
		marketSvc: marketSvc,
	}
}

// UpdateMetrics handles POST /admin/metrics/update
// @Summary Compute betas for the newest missing day
// @Description Writes rolling betas for the latest performance day that has none and is after every stored metrics day. Earlier days are never rewritten.
// @Tags admin
// @Produce json
// @Success 200 {object} models.MetricsRunResult
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/metrics/update [post]
func (h *AdminHandler) UpdateMetrics(c *gin.Context) {
	ctx, wc := services.NewWarningContext(c.Request.Context())
	result, err := h.betaSvc.UpdateLatestMissing(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	result.Warnings = wc.GetWarnings()

	c.JSON(http.StatusOK, result)
}

// BackfillMetrics handles POST /admin/metrics/backfill
// @Summary Recompute betas for every day
// @Tags admin
// @Produce json
// @Success 200 {object} models.MetricsRunResult
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/metrics/backfill [post]
func (h *AdminHandler) BackfillMetrics(c *gin.Context) {
	ctx, wc := services.NewWarningContext(c.Request.Context())
	result, err := h.betaSvc.BackfillAll(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	result.Warnings = wc.GetWarnings()

	c.JSON(http.StatusOK, result)
}

// BackfillBars handles POST /admin/bars/backfill
// @Summary Load grouped daily bars for a date range
// @Description Fetches and commits each weekday on its own; failing days are reported and skipped
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.BackfillRequest true "Date range"
// @Success 200 {object} models.BackfillResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/bars/backfill [post]
func (h *AdminHandler) BackfillBars(c *gin.Context) {
	var req models.BackfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	result, err := h.marketSvc.Backfill(ctx, req.Start.Time, req.End.Time)
	if err != nil {
		writeError(c, err)
		return
	}
	result.Warnings = wc.GetWarnings()

	c.JSON(http.StatusOK, result)
}
