package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/oilmill/backend/internal/application/inventory"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/oilmill/backend/internal/interfaces/http/router"
)

// InventoryHandler serves the inventory ledger
type InventoryHandler struct {
	BaseHandler
	service *inventoryapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(service *inventoryapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// RegisterRoutes mounts /inventory
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := router.NewDomainGroup("inventory", "/inventory")
	g.GET("/lots", h.ListLots)
	g.GET("/lots/:id", h.GetLot)
	g.GET("/lots/:id/movements", h.ListMovements)
	g.POST("/receipts", h.Receive)
	g.POST("/consumptions", h.Consume)
	g.RegisterRoutes(rg)
}

// ListLots handles GET /inventory/lots
func (h *InventoryHandler) ListLots(c *gin.Context) {
	var filter inventoryapp.LotListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	materialID, ok := h.QueryID(c, "material_id")
	if !ok {
		return
	}
	filter.MaterialID = materialID

	lots, err := h.service.ListLots(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithPage(c, lots, len(lots), normalizedLimit(filter.Limit), filter.Offset)
}

// GetLot handles GET /inventory/lots/:id
func (h *InventoryHandler) GetLot(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	lot, err := h.service.GetLot(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lot)
}

type movementQuery struct {
	From   valueobject.Date `form:"from_date"`
	To     valueobject.Date `form:"to_date"`
	Limit  int              `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int              `form:"offset" binding:"omitempty,min=0"`
}

// ListMovements handles GET /inventory/lots/:id/movements
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var query movementQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}
	filter := shared.Filter{
		Limit:  query.Limit,
		Offset: query.Offset,
		From:   query.From.OrNil(),
		To:     query.To.OrNil(),
	}
	movements, err := h.service.ListMovements(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithPage(c, movements, len(movements), normalizedLimit(query.Limit), query.Offset)
}

// Receive handles POST /inventory/receipts
func (h *InventoryHandler) Receive(c *gin.Context) {
	var req inventoryapp.ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.CreatedBy = h.Operator(c)

	entry, err := h.service.Receive(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Consume handles POST /inventory/consumptions
func (h *InventoryHandler) Consume(c *gin.Context) {
	var req inventoryapp.ConsumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.CreatedBy = h.Operator(c)

	entry, err := h.service.Consume(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// normalizedLimit reports the page size the repositories apply for limit
func normalizedLimit(limit int) int {
	return shared.Filter{Limit: limit}.Normalize(shared.DefaultListLimit).Limit
}
