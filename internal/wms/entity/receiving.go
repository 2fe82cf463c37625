package entity

import "time"

// Receiving 收货会话，通常挂在采购订单下；完成时一次性过账到库存台账
type Receiving struct {
	ID              string     `json:"id" gorm:"primaryKey;size:32"`
	CompanyID       string     `json:"company_id" gorm:"size:32;not null;index"`
	ReceivingNumber string     `json:"receiving_number" gorm:"size:32;not null"`
	PurchaseOrderID *string    `json:"purchase_order_id" gorm:"size:32;index"`
	PONumber        string     `json:"po_number" gorm:"size:32"` // 无直接关联时按单号回溯PO
	LocationID      string     `json:"location_id" gorm:"size:32;not null"`
	Status          string     `json:"status" gorm:"size:20;default:open;index"` // open/completed
	CompletedAt     *time.Time `json:"completed_at"`
	CompletedBy     *string    `json:"completed_by" gorm:"size:32"`
	AttachmentKey   string     `json:"attachment_key" gorm:"size:256"` // 随货单/面单对象存储key
	Notes           string     `json:"notes" gorm:"type:text"`
	CreatedBy       string     `json:"created_by" gorm:"size:32"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Items []ReceivingItem `json:"items,omitempty" gorm:"foreignKey:ReceivingID"`
}

func (Receiving) TableName() string {
	return "wms_receivings"
}

// 收货会话状态
const (
	ReceivingStatusOpen      = "open"
	ReceivingStatusCompleted = "completed"
)

// ReceivingItem 收货行项
type ReceivingItem struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	CompanyID   string  `json:"company_id" gorm:"size:32;not null;index"`
	ReceivingID string  `json:"receiving_id" gorm:"size:32;not null;index"`
	PartID      string  `json:"part_id" gorm:"size:32;not null"`
	POLineID    *string `json:"po_line_id" gorm:"size:32"`
	LotID       *string `json:"lot_id" gorm:"size:32"`
	LotNumber   string  `json:"lot_number" gorm:"size:64"`

	SerialNumber   string     `json:"serial_number" gorm:"size:64"`
	Quantity       float64    `json:"quantity" gorm:"type:decimal(12,2);not null"`
	Unit           string     `json:"unit" gorm:"size:20;default:ea"`
	ExpirationDate *time.Time `json:"expiration_date"`
	BinID          *string    `json:"bin_id" gorm:"size:32"`
	Notes          string     `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Part *Part `json:"part,omitempty" gorm:"foreignKey:PartID"`
}

func (ReceivingItem) TableName() string {
	return "wms_receiving_items"
}
