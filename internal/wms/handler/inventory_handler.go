package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/warebit/warebit/internal/wms/repository"
	"github.com/warebit/warebit/internal/wms/service"
)

// InventoryHandler 库存台账处理器
type InventoryHandler struct {
	svc *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

func listParams(c *gin.Context) repository.InventoryListParams {
	page, pageSize := GetPagination(c)
	return repository.InventoryListParams{
		CompanyID:     GetCompanyID(c),
		PartID:        c.Query("part_id"),
		LocationID:    c.Query("location_id"),
		LotID:         c.Query("lot_id"),
		OnlyAvailable: c.Query("only_available") == "true",
		Page:          page,
		PageSize:      pageSize,
	}
}

// List GET /inventory
func (h *InventoryHandler) List(c *gin.Context) {
	params := listParams(c)
	items, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": items, "pagination": NewPagination(params.Page, params.PageSize, total)})
}

// Get GET /inventory/:id
func (h *InventoryHandler) Get(c *gin.Context) {
	inv, err := h.svc.Get(c.Request.Context(), GetCompanyID(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, inv)
}

// Export GET /inventory/export
func (h *InventoryHandler) Export(c *gin.Context) {
	f, filename, err := h.svc.Export(c.Request.Context(), listParams(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
