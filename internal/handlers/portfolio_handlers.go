package handlers

import (
	"net/http"

	"github.com/epeers/portfolio-tracker/internal/services"
	"github.com/gin-gonic/gin"
)

// PortfolioHandler handles the latest-snapshot portfolio endpoints
type PortfolioHandler struct {
	portfolioSvc *services.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioSvc *services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioSvc: portfolioSvc,
	}
}

// Summary handles GET /api/portfolio/summary
// @Summary Headline KPIs
// @Description Market value, cost, cash and P&L of the latest positions upload
// @Tags portfolio
// @Produce json
// @Success 200 {object} models.SummaryKPIs
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/portfolio/summary [get]
func (h *PortfolioHandler) Summary(c *gin.Context) {
	summary, err := h.portfolioSvc.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Positions handles GET /api/portfolio/positions
// @Summary Latest positions
// @Tags portfolio
// @Produce json
// @Success 200 {object} models.PositionsResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/portfolio/positions [get]
func (h *PortfolioHandler) Positions(c *gin.Context) {
	positions, err := h.portfolioSvc.Positions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, positions)
}

// Performance handles GET /api/portfolio/performance
// @Summary Latest snapshot totals
// @Tags portfolio
// @Produce json
// @Success 200 {object} models.PortfolioTotals
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/portfolio/performance [get]
func (h *PortfolioHandler) Performance(c *gin.Context) {
	totals, err := h.portfolioSvc.Totals(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// Accounts handles GET /api/portfolio/accounts
// @Summary Known brokerage accounts
// @Tags portfolio
// @Produce json
// @Success 200 {array} string
// @Failure 500 {object} models.ErrorResponse
// @Router /api/portfolio/accounts [get]
func (h *PortfolioHandler) Accounts(c *gin.Context) {
	accounts, err := h.portfolioSvc.Accounts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}
