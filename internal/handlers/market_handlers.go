package handlers

import (
	"net/http"

	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/epeers/portfolio-tracker/internal/services"
	"github.com/gin-gonic/gin"
)

// MarketHandler handles market data endpoints
type MarketHandler struct {
	marketSvc *services.MarketService
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(marketSvc *services.MarketService) *MarketHandler {
	return &MarketHandler{
		marketSvc: marketSvc,
	}
}

// Bars handles GET /api/markets/bars
// @Summary Daily bars for a ticker
// @Tags markets
// @Produce json
// @Param ticker query string true "Ticker symbol"
// @Param timeframe query string false "1D, 1M, 3M, 6M, 1Y or 5Y" default(6M)
// @Success 200 {object} models.BarsResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/markets/bars [get]
func (h *MarketHandler) Bars(c *gin.Context) {
	bars, err := h.marketSvc.Bars(c.Request.Context(), c.Query("ticker"), c.Query("timeframe"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bars)
}

// BatchBars handles POST /api/markets/bars/daily/batch
// @Summary Daily bars for several tickers
// @Description Fetch each ticker in turn; a failing ticker is reported in errors and does not fail the request
// @Tags markets
// @Accept json
// @Produce json
// @Param request body models.BatchBarsRequest true "Tickers and date range"
// @Success 200 {object} models.BatchBarsResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/markets/bars/daily/batch [post]
func (h *MarketHandler) BatchBars(c *gin.Context) {
	var req models.BatchBarsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.marketSvc.BatchBars(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
