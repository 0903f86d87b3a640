package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	reportapp "github.com/oilmill/backend/internal/application/report"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/oilmill/backend/internal/infrastructure/export"
	"github.com/oilmill/backend/internal/interfaces/http/dto"
	"github.com/oilmill/backend/internal/interfaces/http/router"
)

// ReportHandler serves the dashboard, cost validation and XLSX exports
type ReportHandler struct {
	BaseHandler
	service        *reportapp.ReportService
	validationDays int
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// SetValidationDays sets the cost validation window used when the request
// names none
func (h *ReportHandler) SetValidationDays(days int) {
	h.validationDays = days
}

// RegisterRoutes mounts /reports
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := router.NewDomainGroup("reports", "/reports")
	g.GET("/dashboard", h.Dashboard)
	g.GET("/cost-validation", h.CostValidation)
	g.GET("/export/batches", h.ExportBatches)
	g.GET("/export/reconciliation", h.ExportReconciliation)
	g.RegisterRoutes(rg)
}

// Dashboard handles GET /reports/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	var filter reportapp.PeriodFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	dashboard, err := h.service.Dashboard(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// CostValidation handles GET /reports/cost-validation?days=N
func (h *ReportHandler) CostValidation(c *gin.Context) {
	days := h.validationDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.Error(c, dto.ErrCodeValidation, "invalid days: must be an integer")
			return
		}
		days = n
	}
	result, err := h.service.CostValidation(c.Request.Context(), days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ExportBatches handles GET /reports/export/batches
func (h *ReportHandler) ExportBatches(c *gin.Context) {
	h.export(c, "batches", h.service.ExportBatches)
}

// ExportReconciliation handles GET /reports/export/reconciliation
func (h *ReportHandler) ExportReconciliation(c *gin.Context) {
	h.export(c, "cost-reconciliation", h.service.ExportReconciliation)
}

type exportFunc func(ctx context.Context, w io.Writer, filter reportapp.PeriodFilter) error

// export renders the workbook into memory first so a failure can still be
// answered with the JSON envelope.
func (h *ReportHandler) export(c *gin.Context, name string, render exportFunc) {
	var filter reportapp.PeriodFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := render(c.Request.Context(), &buf, filter); err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", name, valueobject.Today().Compact())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
