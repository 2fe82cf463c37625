package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/warebit/warebit/internal/wms/service"
)

// BlueprintHandler 容器模板处理器
type BlueprintHandler struct {
	svc      *service.BlueprintService
	loadouts *service.LoadoutService
}

func NewBlueprintHandler(svc *service.BlueprintService, loadouts *service.LoadoutService) *BlueprintHandler {
	return &BlueprintHandler{svc: svc, loadouts: loadouts}
}

// List GET /blueprints
func (h *BlueprintHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"search": c.Query("search"),
	}

	blueprints, total, err := h.svc.List(c.Request.Context(), GetCompanyID(c), page, pageSize, filters)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": blueprints, "pagination": NewPagination(page, pageSize, total)})
}

// Get GET /blueprints/:id
func (h *BlueprintHandler) Get(c *gin.Context) {
	bp, err := h.svc.Get(c.Request.Context(), GetCompanyID(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, bp)
}

// Create POST /blueprints
func (h *BlueprintHandler) Create(c *gin.Context) {
	var req service.CreateBlueprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	bp, err := h.svc.Create(c.Request.Context(), GetCompanyID(c), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, bp)
}

// AddItem POST /blueprints/:id/items
func (h *BlueprintHandler) AddItem(c *gin.Context) {
	var req service.CreateBlueprintItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.svc.AddItem(c.Request.Context(), GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, item)
}

// RemoveItem DELETE /blueprints/:id/items/:itemId
func (h *BlueprintHandler) RemoveItem(c *gin.Context) {
	err := h.svc.RemoveItem(c.Request.Context(), GetCompanyID(c), c.Param("id"), c.Param("itemId"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"deleted": true})
}

// Requirements GET /blueprints/:id/requirements
func (h *BlueprintHandler) Requirements(c *gin.Context) {
	reqs, err := h.svc.Requirements(c.Request.Context(), GetCompanyID(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": reqs})
}

// ResolveLoadoutRequest 解析容器实例请求
type ResolveLoadoutRequest struct {
	LocationID string `json:"location_id" binding:"required"`
}

// ResolveLoadout POST /blueprints/:id/loadouts/resolve
func (h *BlueprintHandler) ResolveLoadout(c *gin.Context) {
	var req ResolveLoadoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	lo, err := h.loadouts.Resolve(c.Request.Context(), GetCompanyID(c), c.Param("id"), req.LocationID, GetUserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, lo)
}

// GetLoadout GET /loadouts/:id
func (h *BlueprintHandler) GetLoadout(c *gin.Context) {
	lo, err := h.loadouts.Get(c.Request.Context(), GetCompanyID(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, lo)
}
