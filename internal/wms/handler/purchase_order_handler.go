package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/warebit/warebit/internal/wms/service"
)

// PurchaseOrderHandler 采购订单处理器
type PurchaseOrderHandler struct {
	svc *service.PurchaseOrderService
}

func NewPurchaseOrderHandler(svc *service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{svc: svc}
}

// List GET /purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":      c.Query("status"),
		"supplier_id": c.Query("supplier_id"),
		"search":      c.Query("search"),
	}

	orders, total, err := h.svc.List(c.Request.Context(), GetCompanyID(c), page, pageSize, filters)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": orders, "pagination": NewPagination(page, pageSize, total)})
}

// Get GET /purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	order, err := h.svc.Get(c.Request.Context(), GetCompanyID(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, order)
}

// Create POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req service.CreatePurchaseOrderRequest
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

// ReceiveLineRequest 行项收货请求
type ReceiveLineRequest struct {
	Quantity float64 `json:"quantity" binding:"required"`
}

// ReceiveLine POST /purchase-orders/lines/:lineId/receive
func (h *PurchaseOrderHandler) ReceiveLine(c *gin.Context) {
	var req ReceiveLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	line, err := h.svc.ReceiveLine(c.Request.Context(), GetCompanyID(c), c.Param("lineId"), req.Quantity)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, line)
}
