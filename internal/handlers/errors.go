package handlers

import (
	"errors"
	"net/http"

	"github.com/epeers/portfolio-tracker/internal/ingest"
	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/epeers/portfolio-tracker/internal/polygon"
	"github.com/epeers/portfolio-tracker/internal/repository"
	"github.com/epeers/portfolio-tracker/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// badRequest writes a 400 with the given message
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// writeError maps a service error onto the API error envelope.
// Unrecognised errors are 500s.
func writeError(c *gin.Context, err error) {
	var statusErr *polygon.StatusError
	switch {
	case errors.Is(err, ingest.ErrMissingColumns),
		errors.Is(err, ingest.ErrNoUsableRows),
		errors.Is(err, ingest.ErrUnsupportedFile),
		errors.Is(err, ingest.ErrEmptyFile),
		errors.Is(err, services.ErrInvalidRange),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrInvalidParameter),
		errors.Is(err, services.ErrMissingAsOf),
		errors.Is(err, services.ErrInvalidReport):
		badRequest(c, err.Error())
	case errors.Is(err, repository.ErrSnapshotNotFound),
		errors.Is(err, repository.ErrNoPerformanceData),
		errors.Is(err, services.ErrNoArchivedSnapshot):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, polygon.ErrMissingAPIKey), errors.As(err, &statusErr):
		log.Warnf("market data request failed: %v", err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "upstream_error",
			Message: err.Error(),
		})
	default:
		log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}
