package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/warebit/warebit/internal/wms/scan"
)

// ScanHandler 扫码解析处理器
type ScanHandler struct{}

func NewScanHandler() *ScanHandler {
	return &ScanHandler{}
}

// DecodeRequest 扫码解析请求
type DecodeRequest struct {
	Raw string `json:"raw" binding:"required"`
}

// Decode POST /scan/decode
func (h *ScanHandler) Decode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	Success(c, scan.Decode(req.Raw))
}
