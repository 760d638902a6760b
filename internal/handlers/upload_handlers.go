package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/epeers/portfolio-tracker/internal/services"
	"github.com/gin-gonic/gin"
)

// UploadHandler handles file upload endpoints
type UploadHandler struct {
	snapshotSvc *services.SnapshotService
	rankingSvc  *services.RankingService
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(snapshotSvc *services.SnapshotService, rankingSvc *services.RankingService) *UploadHandler {
	return &UploadHandler{
		snapshotSvc: snapshotSvc,
		rankingSvc:  rankingSvc,
	}
}

// formValue reads a field from the multipart form, falling back to the query string
func formValue(c *gin.Context, key string) string {
	if v, ok := c.GetPostForm(key); ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(c.Query(key))
}

// openUpload returns the multipart "file" part. The caller closes it.
func openUpload(c *gin.Context) (multipart.File, string, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "multipart field \"file\" is required")
		return nil, "", false
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, fmt.Sprintf("failed to open uploaded file: %v", err))
		return nil, "", false
	}
	return f, fh.Filename, true
}

// UploadPositions handles POST /api/uploads/positions
// @Summary Upload a positions export
// @Description Ingest a brokerage positions CSV as one snapshot. The snapshot date comes from as_of, else a date in the filename, else today.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Positions CSV"
// @Param as_of formData string false "Snapshot date (YYYY-MM-DD)"
// @Param replace formData bool false "Replace holdings and prices already stored for this date"
// @Success 200 {object} models.PositionsUploadResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/uploads/positions [post]
func (h *UploadHandler) UploadPositions(c *gin.Context) {
	replace := false
	if raw := formValue(c, "replace"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "replace must be true or false")
			return
		}
		replace = v
	}

	f, filename, ok := openUpload(c)
	if !ok {
		return
	}
	defer f.Close()

	ctx, wc := services.NewWarningContext(c.Request.Context())
	result, err := h.snapshotSvc.UploadPositions(ctx, services.UploadPositionsRequest{
		Filename: filename,
		Body:     f,
		AsOf:     formValue(c, "as_of"),
		Replace:  replace,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	result.Warnings = wc.GetWarnings()

	c.JSON(http.StatusOK, result)
}

// UploadRanking handles POST /api/uploads/rankings/:report_type
// @Summary Upload a ranking export
// @Description Ingest a vendor ranking workbook. Re-uploading identical content reports status "duplicate".
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param report_type path string true "top_rated or quant"
// @Param file formData file true "Ranking workbook (.xlsx)"
// @Param as_of formData string false "Report date (YYYY-MM-DD); required when the filename has none"
// @Success 200 {object} models.RankingUploadResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/uploads/rankings/{report_type} [post]
func (h *UploadHandler) UploadRanking(c *gin.Context) {
	reportType := models.RankingReportType(c.Param("report_type"))
	if !reportType.Valid() {
		badRequest(c, "report_type must be 'top_rated' or 'quant'")
		return
	}

	f, filename, ok := openUpload(c)
	if !ok {
		return
	}
	defer f.Close()

	ctx, wc := services.NewWarningContext(c.Request.Context())
	result, err := h.rankingSvc.Upload(ctx, reportType, filename, formValue(c, "as_of"), f)
	if err != nil {
		writeError(c, err)
		return
	}
	result.Warnings = wc.GetWarnings()

	c.JSON(http.StatusOK, result)
}

// RankingFiles handles GET /api/uploads/rankings/files
// @Summary List ranking uploads
// @Tags uploads
// @Produce json
// @Param report_type query string false "Filter by report type"
// @Success 200 {array} models.RankingFile
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/uploads/rankings/files [get]
func (h *UploadHandler) RankingFiles(c *gin.Context) {
	files, err := h.rankingSvc.Files(c.Request.Context(), models.RankingReportType(c.Query("report_type")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// RankingLatest handles GET /api/uploads/rankings/latest
// @Summary Latest ranking per symbol
// @Tags uploads
// @Produce json
// @Param symbols query string true "Comma-separated symbols"
// @Param report_type query string false "Restrict to one report type"
// @Success 200 {array} models.RankingEntry
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/uploads/rankings/latest [get]
func (h *UploadHandler) RankingLatest(c *gin.Context) {
	entries, err := h.rankingSvc.Latest(c.Request.Context(), models.RankingReportType(c.Query("report_type")), c.Query("symbols"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
