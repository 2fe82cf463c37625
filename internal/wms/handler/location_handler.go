package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/warebit/warebit/internal/wms/service"
)

// LocationHandler 地点处理器
type LocationHandler struct {
	svc *service.LocationService
}

func NewLocationHandler(svc *service.LocationService) *LocationHandler {
	return &LocationHandler{svc: svc}
}

// List GET /locations
func (h *LocationHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"type":   c.Query("type"),
		"search": c.Query("search"),
	}

	locs, total, err := h.svc.List(c.Request.Context(), GetCompanyID(c), page, pageSize, filters)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": locs, "pagination": NewPagination(page, pageSize, total)})
}

// Get GET /locations/:id
func (h *LocationHandler) Get(c *gin.Context) {
	loc, err := h.svc.Get(c.Request.Context(), GetCompanyID(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, loc)
}

// Create POST /locations
func (h *LocationHandler) Create(c *gin.Context) {
	var req service.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	loc, err := h.svc.Create(c.Request.Context(), GetCompanyID(c), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, loc)
}

// Update PUT /locations/:id
func (h *LocationHandler) Update(c *gin.Context) {
	var req service.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	loc, err := h.svc.Update(c.Request.Context(), GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, loc)
}

// ListBins GET /locations/:id/bins
func (h *LocationHandler) ListBins(c *gin.Context) {
	bins, err := h.svc.ListBins(c.Request.Context(), GetCompanyID(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": bins})
}
