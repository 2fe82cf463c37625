// Package notify 向外部webhook推送仓储事件，失败只记日志不影响主流程
package notify

import (
	"context"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// 事件类型
const (
	EventShortage           = "inventory.shortage"
	EventReceivingCompleted = "receiving.completed"
)

// Event webhook事件载荷
type Event struct {
	Type        string  `json:"type"`
	CompanyID   string  `json:"company_id"`
	OrderNumber string  `json:"order_number,omitempty"`
	PartID      string  `json:"part_id,omitempty"`
	Quantity    float64 `json:"quantity,omitempty"`
	Message     string  `json:"message,omitempty"`
	OccurredAt  string  `json:"occurred_at"`
}

// Client webhook客户端。零值与nil均可安全调用（未配置webhook时退化为空操作）
type Client struct {
	url  string
	http *resty.Client
}

// NewClient url为空时返回nil，调用侧不需要判空
func NewClient(url string) *Client {
	if url == "" {
		return nil
	}
	return &Client{
		url: url,
		http: resty.New().
			SetTimeout(5 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(500 * time.Millisecond),
	}
}

// Send 推送事件，调用方通常放在goroutine里发后不管
func (c *Client) Send(ctx context.Context, event Event) {
	if c == nil {
		return
	}
	event.OccurredAt = time.Now().Format(time.RFC3339)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(c.url)
	if err != nil {
		log.Printf("[WMS] webhook推送失败 type=%s: %v", event.Type, err)
		return
	}
	if resp.IsError() {
		log.Printf("[WMS] webhook返回异常 type=%s status=%d", event.Type, resp.StatusCode())
	}
}
