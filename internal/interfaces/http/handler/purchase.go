package handler

import (
	"github.com/gin-gonic/gin"
	purchaseapp "github.com/oilmill/backend/internal/application/purchase"
	"github.com/oilmill/backend/internal/interfaces/http/router"
)

// PurchaseHandler serves purchase recording and history
type PurchaseHandler struct {
	BaseHandler
	service *purchaseapp.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(service *purchaseapp.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

// RegisterRoutes mounts /purchases
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := router.NewDomainGroup("purchases", "/purchases")
	g.POST("", h.Record)
	g.GET("", h.History)
	g.GET("/:id", h.Get)
	g.RegisterRoutes(rg)
}

// Record handles POST /purchases
func (h *PurchaseHandler) Record(c *gin.Context) {
	var req purchaseapp.RecordPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.CreatedBy = h.Operator(c)

	purchase, err := h.service.Record(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, purchase)
}

// Get handles GET /purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	purchase, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// History handles GET /purchases
func (h *PurchaseHandler) History(c *gin.Context) {
	var filter purchaseapp.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	var ok bool
	if filter.MaterialID, ok = h.QueryID(c, "material_id"); !ok {
		return
	}
	if filter.SupplierID, ok = h.QueryID(c, "supplier_id"); !ok {
		return
	}

	history, err := h.service.History(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithPage(c, history, len(history.Purchases), normalizedLimit(filter.Limit), filter.Offset)
}
