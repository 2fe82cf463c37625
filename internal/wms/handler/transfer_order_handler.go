package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/warebit/warebit/internal/wms/service"
)

// TransferOrderHandler 调拨单处理器
type TransferOrderHandler struct {
	svc        *service.TransferOrderService
	allocation *service.AllocationService
}

func NewTransferOrderHandler(svc *service.TransferOrderService, allocation *service.AllocationService) *TransferOrderHandler {
	return &TransferOrderHandler{svc: svc, allocation: allocation}
}

// List GET /transfer-orders
func (h *TransferOrderHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":           c.Query("status"),
		"priority":         c.Query("priority"),
		"from_location_id": c.Query("from_location_id"),
		"to_location_id":   c.Query("to_location_id"),
		"search":           c.Query("search"),
	}

	orders, total, err := h.svc.List(c.Request.Context(), GetCompanyID(c), page, pageSize, filters)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": orders, "pagination": NewPagination(page, pageSize, total)})
}

// Get GET /transfer-orders/:id
func (h *TransferOrderHandler) Get(c *gin.Context) {
	order, err := h.svc.Get(c.Request.Context(), GetCompanyID(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, order)
}

// Create POST /transfer-orders
func (h *TransferOrderHandler) Create(c *gin.Context) {
	var req service.CreateTransferOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.svc.Create(c.Request.Context(), GetCompanyID(c), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, order)
}

// Update PATCH /transfer-orders/:id
func (h *TransferOrderHandler) Update(c *gin.Context) {
	var req service.UpdateTransferOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.svc.Update(c.Request.Context(), GetCompanyID(c), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, order)
}

// Delete DELETE /transfer-orders/:id
func (h *TransferOrderHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetCompanyID(c), c.Param("id")); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"deleted": true})
}

// ListItems GET /transfer-orders/:id/items
func (h *TransferOrderHandler) ListItems(c *gin.Context) {
	items, err := h.svc.ListItems(c.Request.Context(), GetCompanyID(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// AutoAssignRequest 自动分配请求
type AutoAssignRequest struct {
	BlueprintItemID *string `json:"blueprint_item_id"`
}

// AutoAssign POST /transfer-orders/:id/auto-assign
func (h *TransferOrderHandler) AutoAssign(c *gin.Context) {
	var req AutoAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.allocation.AutoAssignOrder(c.Request.Context(), GetCompanyID(c), c.Param("id"), req.BlueprintItemID); err != nil {
		ServiceError(c, err)
		return
	}

	order, err := h.svc.Get(c.Request.Context(), GetCompanyID(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, order)
}

// ManualAssignRequest 手动分配请求
type ManualAssignRequest struct {
	BlueprintItemID string  `json:"blueprint_item_id" binding:"required"`
	InventoryID     string  `json:"inventory_id" binding:"required"`
	Quantity        float64 `json:"quantity" binding:"required"`
}

// ManualAssign POST /transfer-orders/:id/assign
func (h *TransferOrderHandler) ManualAssign(c *gin.Context) {
	var req ManualAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	applied, err := h.allocation.ManualAssign(c.Request.Context(), GetCompanyID(c), c.Param("id"),
		req.BlueprintItemID, req.InventoryID, req.Quantity)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"applied_quantity": applied})
}
