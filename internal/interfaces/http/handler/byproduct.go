package handler

import (
	"github.com/gin-gonic/gin"
	byproductapp "github.com/oilmill/backend/internal/application/byproduct"
	"github.com/oilmill/backend/internal/interfaces/http/router"
)

// ByProductHandler serves oil cake and sludge sales
type ByProductHandler struct {
	BaseHandler
	service *byproductapp.ByProductService
}

// NewByProductHandler creates a new ByProductHandler
func NewByProductHandler(service *byproductapp.ByProductService) *ByProductHandler {
	return &ByProductHandler{service: service}
}

// RegisterRoutes mounts /byproducts
func (h *ByProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := router.NewDomainGroup("byproducts", "/byproducts")
	g.GET("/types", h.Types)
	g.GET("/inventory", h.Inventory)
	g.POST("/sales", h.RecordSale)
	g.GET("/sales", h.SalesHistory)
	g.GET("/sales/:id", h.GetSale)
	g.GET("/reconciliation", h.Reconciliation)
	g.RegisterRoutes(rg)
}

// Types handles GET /byproducts/types
func (h *ByProductHandler) Types(c *gin.Context) {
	h.Success(c, h.service.Types())
}

// Inventory handles GET /byproducts/inventory
func (h *ByProductHandler) Inventory(c *gin.Context) {
	var filter byproductapp.InventoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	inventory, err := h.service.Inventory(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inventory)
}

// RecordSale handles POST /byproducts/sales. The sale is spread over the
// oldest lots first and every batch it touches is re-costed.
func (h *ByProductHandler) RecordSale(c *gin.Context) {
	var req byproductapp.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.CreatedBy = h.Operator(c)

	sale, err := h.service.RecordSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// GetSale handles GET /byproducts/sales/:id
func (h *ByProductHandler) GetSale(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	sale, err := h.service.GetSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// SalesHistory handles GET /byproducts/sales
func (h *ByProductHandler) SalesHistory(c *gin.Context) {
	var filter byproductapp.SalesFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	var ok bool
	if filter.BatchID, ok = h.QueryID(c, "batch_id"); !ok {
		return
	}

	history, err := h.service.SalesHistory(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithPage(c, history, len(history.Sales), normalizedLimit(filter.Limit), filter.Offset)
}

// Reconciliation handles GET /byproducts/reconciliation
func (h *ByProductHandler) Reconciliation(c *gin.Context) {
	var filter byproductapp.ReconciliationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	recs, err := h.service.Reconciliation(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, recs)
}
