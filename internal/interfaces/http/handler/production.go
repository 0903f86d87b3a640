package handler

import (
	"github.com/gin-gonic/gin"
	masterdataapp "github.com/oilmill/backend/internal/application/masterdata"
	productionapp "github.com/oilmill/backend/internal/application/production"
	"github.com/oilmill/backend/internal/interfaces/http/router"
)

// ProductionHandler serves batch production, cost estimates and by-product rates
type ProductionHandler struct {
	BaseHandler
	service *productionapp.ProductionService
}

// NewProductionHandler creates a new ProductionHandler
func NewProductionHandler(service *productionapp.ProductionService) *ProductionHandler {
	return &ProductionHandler{service: service}
}

// RegisterRoutes mounts /production
func (h *ProductionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := router.NewDomainGroup("production", "/production")
	g.POST("/batches", h.RecordBatch)
	g.GET("/batches", h.History)
	g.GET("/batches/:id", h.GetBatch)
	g.GET("/batches/:id/time-entries", h.TimeEntries)
	g.GET("/batches/:id/cost-overrides", h.CostOverrides)
	g.POST("/time-costs", h.EstimateTimeCosts)
	g.GET("/seeds", h.AvailableSeeds)
	g.GET("/cost-elements", h.CostElements)
	g.POST("/cost-estimates", h.EstimateCosts)
	g.GET("/rates", h.ListRates)
	g.POST("/rates", h.SetRate)
	g.GET("/rates/:oil_type", h.CurrentRate)
	g.RegisterRoutes(rg)
}

// RecordBatch handles POST /production/batches
func (h *ProductionHandler) RecordBatch(c *gin.Context) {
	var req productionapp.RecordBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.CreatedBy = h.Operator(c)

	batch, err := h.service.RecordBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, batch)
}

// GetBatch handles GET /production/batches/:id
func (h *ProductionHandler) GetBatch(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	batch, err := h.service.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}

// TimeEntries handles GET /production/batches/:id/time-entries
func (h *ProductionHandler) TimeEntries(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	entries, err := h.service.TimeEntries(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// CostOverrides handles GET /production/batches/:id/cost-overrides
func (h *ProductionHandler) CostOverrides(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	overrides, err := h.service.CostOverrides(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overrides)
}

// EstimateTimeCosts handles POST /production/time-costs. Nothing is stored.
func (h *ProductionHandler) EstimateTimeCosts(c *gin.Context) {
	var req productionapp.TimeTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	costs, err := h.service.EstimateTimeCosts(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, costs)
}

// History handles GET /production/batches
func (h *ProductionHandler) History(c *gin.Context) {
	var filter productionapp.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	history, err := h.service.History(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithPage(c, history, len(history.Batches), normalizedLimit(filter.Limit), filter.Offset)
}

// AvailableSeeds handles GET /production/seeds
func (h *ProductionHandler) AvailableSeeds(c *gin.Context) {
	seeds, err := h.service.AvailableSeeds(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seeds)
}

// CostElements handles GET /production/cost-elements
func (h *ProductionHandler) CostElements(c *gin.Context) {
	elements, err := h.service.CostElementsForBatch(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]masterdataapp.CostElementResponse, len(elements))
	for i := range elements {
		out[i] = masterdataapp.ToCostElementResponse(&elements[i])
	}
	h.Success(c, out)
}

// EstimateCosts handles POST /production/cost-estimates. Nothing is stored.
func (h *ProductionHandler) EstimateCosts(c *gin.Context) {
	var req productionapp.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	estimate, err := h.service.EstimateCosts(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, estimate)
}

// ListRates handles GET /production/rates
func (h *ProductionHandler) ListRates(c *gin.Context) {
	rates, err := h.service.ListRates(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rates)
}

// CurrentRate handles GET /production/rates/:oil_type
func (h *ProductionHandler) CurrentRate(c *gin.Context) {
	rate, err := h.service.CurrentRate(c.Request.Context(), c.Param("oil_type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// SetRate handles POST /production/rates
func (h *ProductionHandler) SetRate(c *gin.Context) {
	var req productionapp.SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	rate, err := h.service.SetRate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rate)
}
