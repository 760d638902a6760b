package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/epeers/portfolio-tracker/internal/ingest"
	"github.com/epeers/portfolio-tracker/internal/services"
	"github.com/gin-gonic/gin"
)

const defaultSnapshotsLimit = 365

// HistoryHandler handles point-in-time snapshot endpoints
type HistoryHandler struct {
	historySvc *services.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(historySvc *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historySvc: historySvc,
	}
}

// queryDate parses a required YYYY-MM-DD query parameter
func queryDate(c *gin.Context, key string) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		badRequest(c, key+" is required (YYYY-MM-DD)")
		return time.Time{}, false
	}
	t, err := time.Parse(ingest.DateLayout, raw)
	if err != nil {
		badRequest(c, key+" must be in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return t, true
}

// Snapshots handles GET /api/history/snapshots
// @Summary Snapshot dates
// @Tags history
// @Produce json
// @Param limit query int false "Maximum dates returned" default(365)
// @Success 200 {array} string
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/history/snapshots [get]
func (h *HistoryHandler) Snapshots(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultSnapshotsLimit)
	if !ok {
		return
	}
	dates, err := h.historySvc.Snapshots(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dates)
}

// Positions handles GET /api/history/positions
// @Summary Positions as of a date
// @Tags history
// @Produce json
// @Param as_of query string true "Snapshot date (YYYY-MM-DD)"
// @Success 200 {object} models.SnapshotPositions
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/history/positions [get]
func (h *HistoryHandler) Positions(c *gin.Context) {
	asOf, ok := queryDate(c, "as_of")
	if !ok {
		return
	}
	snapshot, err := h.historySvc.PositionsAsOf(c.Request.Context(), asOf)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// DashboardLatest handles GET /api/history/dashboard-latest
// @Summary Latest raw snapshot totals
// @Description Totals of the latest positions upload including pending buys and sells
// @Tags history
// @Produce json
// @Success 200 {object} models.DashboardLatest
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/history/dashboard-latest [get]
func (h *HistoryHandler) DashboardLatest(c *gin.Context) {
	dashboard, err := h.historySvc.DashboardLatest(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Activity handles GET /api/history/activity
// @Summary Inferred trades between two snapshots
// @Tags history
// @Produce json
// @Param from query string true "Earlier snapshot date (YYYY-MM-DD)"
// @Param to query string true "Later snapshot date (YYYY-MM-DD)"
// @Success 200 {object} models.ActivityResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/history/activity [get]
func (h *HistoryHandler) Activity(c *gin.Context) {
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}
	activity, err := h.historySvc.Activity(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}
