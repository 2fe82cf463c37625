package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/warebit/warebit/internal/shared/storage"
	"github.com/warebit/warebit/internal/wms/service"
)

// ReceivingHandler 收货会话处理器
type ReceivingHandler struct {
	svc   *service.ReceivingService
	store *storage.Client
}

func NewReceivingHandler(svc *service.ReceivingService, store *storage.Client) *ReceivingHandler {
	return &ReceivingHandler{svc: svc, store: store}
}

// List GET /receivings
func (h *ReceivingHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":            c.Query("status"),
		"purchase_order_id": c.Query("purchase_order_id"),
		"search":            c.Query("search"),
	}

	sessions, total, err := h.svc.List(c.Request.Context(), GetCompanyID(c), page, pageSize, filters)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": sessions, "pagination": NewPagination(page, pageSize, total)})
}

// Get GET /receivings/:id
func (h *ReceivingHandler) Get(c *gin.Context) {
	session, err := h.svc.Get(c.Request.Context(), GetCompanyID(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, session)
}

// Create POST /receivings
func (h *ReceivingHandler) Create(c *gin.Context) {
	var req service.CreateReceivingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.svc.Create(c.Request.Context(), GetCompanyID(c), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, session)
}

// AddItem POST /receivings/:id/items
func (h *ReceivingHandler) AddItem(c *gin.Context) {
	var req service.AddItemRequest
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

// Complete POST /receivings/:id/complete
func (h *ReceivingHandler) Complete(c *gin.Context) {
	session, err := h.svc.Complete(c.Request.Context(), GetCompanyID(c), GetUserID(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, session)
}

// UploadAttachment POST /receivings/:id/attachment
// 随货单/面单上传到对象存储并记录key
func (h *ReceivingHandler) UploadAttachment(c *gin.Context) {
	if h.store == nil {
		InternalError(c, "对象存储未配置")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "请上传文件")
		return
	}
	defer file.Close()

	key, err := h.store.Upload(c.Request.Context(), header.Filename,
		header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		InternalError(c, "上传附件失败: "+err.Error())
		return
	}

	if err := h.svc.SetAttachment(c.Request.Context(), GetCompanyID(c), c.Param("id"), key); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"attachment_key": key})
}

// AttachmentURL GET /receivings/:id/attachment
// 生成附件的限时下载链接
func (h *ReceivingHandler) AttachmentURL(c *gin.Context) {
	session, err := h.svc.Get(c.Request.Context(), GetCompanyID(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	if session.AttachmentKey == "" {
		NotFound(c, "该收货会话没有附件")
		return
	}
	if h.store == nil {
		InternalError(c, "对象存储未配置")
		return
	}

	url, err := h.store.PresignedURL(c.Request.Context(), session.AttachmentKey, 15*time.Minute)
	if err != nil {
		InternalError(c, "生成下载链接失败: "+err.Error())
		return
	}
	Success(c, gin.H{"url": url, "expires_in": int(15 * time.Minute / time.Second)})
}
