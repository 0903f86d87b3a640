package handler

import (
	"github.com/gin-gonic/gin"
	masterdataapp "github.com/oilmill/backend/internal/application/masterdata"
	"github.com/oilmill/backend/internal/interfaces/http/router"
)

// MasterDataHandler serves materials, suppliers and the cost element master
type MasterDataHandler struct {
	BaseHandler
	service *masterdataapp.MasterDataService
}

// NewMasterDataHandler creates a new MasterDataHandler
func NewMasterDataHandler(service *masterdataapp.MasterDataService) *MasterDataHandler {
	return &MasterDataHandler{service: service}
}

// RegisterRoutes mounts /masterdata
func (h *MasterDataHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := router.NewDomainGroup("masterdata", "/masterdata")
	g.GET("/materials", h.ListMaterials)
	g.POST("/materials", h.CreateMaterial)
	g.GET("/materials/:id", h.GetMaterial)
	g.GET("/suppliers", h.ListSuppliers)
	g.POST("/suppliers", h.CreateSupplier)
	g.GET("/cost-elements", h.ListCostElements)
	g.POST("/cost-elements", h.CreateCostElement)
	g.PUT("/cost-elements/:id", h.UpdateCostElement)
	g.RegisterRoutes(rg)
}

// ListMaterials handles GET /masterdata/materials
func (h *MasterDataHandler) ListMaterials(c *gin.Context) {
	var filter masterdataapp.MaterialListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	materials, err := h.service.ListMaterials(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, materials)
}

// GetMaterial handles GET /masterdata/materials/:id
func (h *MasterDataHandler) GetMaterial(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	material, err := h.service.GetMaterial(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, material)
}

// CreateMaterial handles POST /masterdata/materials
func (h *MasterDataHandler) CreateMaterial(c *gin.Context) {
	var req masterdataapp.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	material, err := h.service.CreateMaterial(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, material)
}

// ListSuppliers handles GET /masterdata/suppliers
func (h *MasterDataHandler) ListSuppliers(c *gin.Context) {
	var query struct {
		ActiveOnly bool `form:"active_only"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}
	suppliers, err := h.service.ListSuppliers(c.Request.Context(), query.ActiveOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, suppliers)
}

// CreateSupplier handles POST /masterdata/suppliers
func (h *MasterDataHandler) CreateSupplier(c *gin.Context) {
	var req masterdataapp.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	supplier, err := h.service.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// ListCostElements handles GET /masterdata/cost-elements
func (h *MasterDataHandler) ListCostElements(c *gin.Context) {
	var filter masterdataapp.CostElementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	elements, err := h.service.ListCostElements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, elements)
}

// CreateCostElement handles POST /masterdata/cost-elements
func (h *MasterDataHandler) CreateCostElement(c *gin.Context) {
	var req masterdataapp.CreateCostElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	element, err := h.service.CreateCostElement(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, element)
}

// UpdateCostElement handles PUT /masterdata/cost-elements/:id. The body
// carries the version it was read at; a stale version is a 409.
func (h *MasterDataHandler) UpdateCostElement(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req masterdataapp.UpdateCostElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	element, err := h.service.UpdateCostElement(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, element)
}
