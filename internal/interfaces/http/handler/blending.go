package handler

import (
	"github.com/gin-gonic/gin"
	blendingapp "github.com/oilmill/backend/internal/application/blending"
	"github.com/oilmill/backend/internal/interfaces/http/router"
)

// BlendingHandler serves oil blending
type BlendingHandler struct {
	BaseHandler
	service *blendingapp.BlendingService
}

// NewBlendingHandler creates a new BlendingHandler
func NewBlendingHandler(service *blendingapp.BlendingService) *BlendingHandler {
	return &BlendingHandler{service: service}
}

// RegisterRoutes mounts /blending
func (h *BlendingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := router.NewDomainGroup("blending", "/blending")
	g.GET("/oil-types", h.OilTypes)
	g.GET("/source-lots", h.SourceLots)
	g.POST("/blends", h.CreateBlend)
	g.GET("/blends", h.History)
	g.GET("/blends/:id", h.GetBlend)
	g.RegisterRoutes(rg)
}

// OilTypes handles GET /blending/oil-types
func (h *BlendingHandler) OilTypes(c *gin.Context) {
	types, err := h.service.OilTypes(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, types)
}

// SourceLots handles GET /blending/source-lots?oil_type=
func (h *BlendingHandler) SourceLots(c *gin.Context) {
	lots, err := h.service.SourceLots(c.Request.Context(), c.Query("oil_type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lots)
}

// CreateBlend handles POST /blending/blends
func (h *BlendingHandler) CreateBlend(c *gin.Context) {
	var req blendingapp.CreateBlendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.CreatedBy = h.Operator(c)

	blend, err := h.service.CreateBlend(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, blend)
}

// GetBlend handles GET /blending/blends/:id
func (h *BlendingHandler) GetBlend(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	blend, err := h.service.GetBlend(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, blend)
}

// History handles GET /blending/blends
func (h *BlendingHandler) History(c *gin.Context) {
	var filter blendingapp.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	history, err := h.service.History(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithPage(c, history, len(history.Blends), normalizedLimit(filter.Limit), filter.Offset)
}
