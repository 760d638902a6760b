package handlers

import (
	"net/http"
	"strconv"

	"github.com/epeers/portfolio-tracker/internal/services"
	"github.com/gin-gonic/gin"
)

const defaultEquityWindow = 60

// PerformanceHandler handles the daily performance endpoints
type PerformanceHandler struct {
	perfSvc *services.PerformanceService
}

// NewPerformanceHandler creates a new PerformanceHandler
func NewPerformanceHandler(perfSvc *services.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{
		perfSvc: perfSvc,
	}
}

// queryInt reads an integer query parameter, returning def when it is absent.
// A malformed value writes a 400 and returns ok=false.
func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, key+" must be an integer")
		return 0, false
	}
	return v, true
}

// Upload handles POST /api/portfolio/performance/upload
// @Summary Upload a performance export
// @Description Upsert daily balances and returns from a CSV or XLSX export, keyed by day
// @Tags performance
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Performance export (.csv or .xlsx)"
// @Success 200 {object} models.PerformanceUploadResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/portfolio/performance/upload [post]
func (h *PerformanceHandler) Upload(c *gin.Context) {
	f, filename, ok := openUpload(c)
	if !ok {
		return
	}
	defer f.Close()

	ctx, wc := services.NewWarningContext(c.Request.Context())
	result, err := h.perfSvc.Upload(ctx, filename, f)
	if err != nil {
		writeError(c, err)
		return
	}
	result.Warnings = wc.GetWarnings()

	c.JSON(http.StatusOK, result)
}

// Series handles GET /api/portfolio/performance/series
// @Summary Daily performance series
// @Tags performance
// @Produce json
// @Param days query int false "Newest N days (1-10000)" default(120)
// @Success 200 {array} models.PerformanceDay
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/portfolio/performance/series [get]
func (h *PerformanceHandler) Series(c *gin.Context) {
	days, ok := queryInt(c, "days", services.DefaultSeriesDays)
	if !ok {
		return
	}
	series, err := h.perfSvc.Series(c.Request.Context(), days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

// Rollups handles GET /api/portfolio/performance/rollups
// @Summary Compounded returns
// @Description Since start, last 30 days, last 7 days and year to date for the portfolio, VOO and QQQ
// @Tags performance
// @Produce json
// @Success 200 {object} models.RollupsResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/portfolio/performance/rollups [get]
func (h *PerformanceHandler) Rollups(c *gin.Context) {
	rollups, err := h.perfSvc.Rollups(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rollups)
}

// Metrics handles GET /api/portfolio/performance/metrics
// @Summary Rolling betas
// @Tags performance
// @Produce json
// @Param days query int false "Newest N days (1-10000)" default(120)
// @Success 200 {array} models.MetricsDay
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/portfolio/performance/metrics [get]
func (h *PerformanceHandler) Metrics(c *gin.Context) {
	days, ok := queryInt(c, "days", services.DefaultSeriesDays)
	if !ok {
		return
	}
	metrics, err := h.perfSvc.Metrics(c.Request.Context(), days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// EquityCurve handles GET /api/portfolio/equity-curve
// @Summary Account balance curve
// @Tags performance
// @Produce json
// @Param window query int false "Newest N days" default(60)
// @Success 200 {object} models.EquityCurveResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/portfolio/equity-curve [get]
func (h *PerformanceHandler) EquityCurve(c *gin.Context) {
	window, ok := queryInt(c, "window", defaultEquityWindow)
	if !ok {
		return
	}
	curve, err := h.perfSvc.EquityCurve(c.Request.Context(), window)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, curve)
}

// LegacyEquityCurve handles GET /api/portfolio/equity_curve
// @Summary Account balance curve (legacy shape)
// @Tags performance
// @Produce json
// @Param window query int false "Newest N days" default(60)
// @Success 200 {array} models.LegacyEquityPoint
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/portfolio/equity_curve [get]
func (h *PerformanceHandler) LegacyEquityCurve(c *gin.Context) {
	window, ok := queryInt(c, "window", defaultEquityWindow)
	if !ok {
		return
	}
	points, err := h.perfSvc.LegacyEquityCurve(c.Request.Context(), window)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}
