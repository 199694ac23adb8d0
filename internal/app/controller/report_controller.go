package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront/internal/app/service"
	apperrors "github.com/ikkim/shopfront/internal/errors"
	"github.com/ikkim/shopfront/internal/middleware"
)

type ReportController struct {
	reportService service.ReportService
}

func NewReportController(reportService service.ReportService) *ReportController {
	return &ReportController{
		reportService: reportService,
	}
}

// ExportCheckoutsRequest is a half-open range [from, to).
type ExportCheckoutsRequest struct {
	From time.Time `json:"from" binding:"required"`
	To   time.Time `json:"to" binding:"required"`
}

// ExportCheckouts writes the checkout ledger to xlsx and returns a download link.
// POST /api/v1/admin/reports/checkouts
func (ctrl *ReportController) ExportCheckouts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ExportCheckoutsRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.From.IsZero() || req.To.IsZero() {
		apperrors.RespondWithValidationError(c, map[string]string{"from": "required", "to": "required"})
		return
	}

	report, err := ctrl.reportService.ExportCheckouts(c.Request.Context(), req.From, req.To)
	if err != nil {
		if errors.Is(err, service.ErrInvalidReportRange) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "The range must end after it starts and span at most 93 days")
			return
		}
		log.Error("Checkout report export failed", err, map[string]interface{}{
			"from": req.From,
			"to":   req.To,
		})
		info := apperrors.ParseError(err, "report")
		if info.Code == apperrors.InternalServerError {
			info.Code = apperrors.InternalStorageError
		}
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	log.Info("Checkout report exported", map[string]interface{}{
		"key":  report.Key,
		"rows": report.Rows,
	})
	c.JSON(http.StatusCreated, report)
}
