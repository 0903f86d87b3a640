package handler

import (
	"github.com/gin-gonic/gin"
	writeoffapp "github.com/oilmill/backend/internal/application/writeoff"
	"github.com/oilmill/backend/internal/interfaces/http/router"
)

// WriteoffHandler serves material writeoffs
type WriteoffHandler struct {
	BaseHandler
	service *writeoffapp.WriteoffService
}

// NewWriteoffHandler creates a new WriteoffHandler
func NewWriteoffHandler(service *writeoffapp.WriteoffService) *WriteoffHandler {
	return &WriteoffHandler{service: service}
}

// RegisterRoutes mounts /writeoffs
func (h *WriteoffHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := router.NewDomainGroup("writeoffs", "/writeoffs")
	g.GET("/reasons", h.Reasons)
	g.POST("", h.Record)
	g.GET("", h.History)
	g.RegisterRoutes(rg)
}

// Reasons handles GET /writeoffs/reasons
func (h *WriteoffHandler) Reasons(c *gin.Context) {
	reasons, err := h.service.Reasons(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reasons)
}

// Record handles POST /writeoffs
func (h *WriteoffHandler) Record(c *gin.Context) {
	var req writeoffapp.RecordWriteoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.CreatedBy = h.Operator(c)

	writeoff, err := h.service.Record(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, writeoff)
}

// History handles GET /writeoffs
func (h *WriteoffHandler) History(c *gin.Context) {
	var filter writeoffapp.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	var ok bool
	if filter.MaterialID, ok = h.QueryID(c, "material_id"); !ok {
		return
	}

	history, err := h.service.History(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithPage(c, history, len(history.Writeoffs), normalizedLimit(filter.Limit), filter.Offset)
}
