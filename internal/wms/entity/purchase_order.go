package entity

import "time"

// PurchaseOrder 采购订单头，状态由行项完成度汇总得出
type PurchaseOrder struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	CompanyID   string     `json:"company_id" gorm:"size:32;not null;uniqueIndex:idx_purchase_orders_company_number"`
	OrderNumber string     `json:"order_number" gorm:"size:32;not null;uniqueIndex:idx_purchase_orders_company_number"`
	SupplierID  *string    `json:"supplier_id" gorm:"size:32;index"`
	Status      string     `json:"status" gorm:"size:20;default:open;index"` // open/partial/received/closed
	OrderDate   *time.Time `json:"order_date"`
	ExpectedAt  *time.Time `json:"expected_at"`
	Notes       string     `json:"notes" gorm:"type:text"`
	CreatedBy   string     `json:"created_by" gorm:"size:32"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Lines []PurchaseOrderLine `json:"lines,omitempty" gorm:"foreignKey:OrderID"`
}

func (PurchaseOrder) TableName() string {
	return "wms_purchase_orders"
}

// 采购订单状态
const (
	POStatusOpen     = "open"
	POStatusPartial  = "partial"
	POStatusReceived = "received"
	POStatusClosed   = "closed"
)

// PurchaseOrderLine 采购订单行项
type PurchaseOrderLine struct {
	ID               string   `json:"id" gorm:"primaryKey;size:32"`
	CompanyID        string   `json:"company_id" gorm:"size:32;not null;index"`
	OrderID          string   `json:"order_id" gorm:"size:32;not null;index"`
	PartID           string   `json:"part_id" gorm:"size:32;not null;index"`
	QuantityOrdered  float64  `json:"quantity_ordered" gorm:"type:decimal(12,2);not null"`
	QuantityReceived float64  `json:"quantity_received" gorm:"type:decimal(12,2);default:0"`
	Unit             string   `json:"unit" gorm:"size:20;default:ea"`
	UnitPrice        *float64 `json:"unit_price" gorm:"type:decimal(12,4)"`
	Status           string   `json:"status" gorm:"size:20;default:pending"` // pending/partial/received
	SortOrder        int      `json:"sort_order" gorm:"default:0"`
	Notes            string   `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Part *Part `json:"part,omitempty" gorm:"foreignKey:PartID"`
}

func (PurchaseOrderLine) TableName() string {
	return "wms_purchase_order_lines"
}

// 采购订单行项状态
const (
	POLineStatusPending  = "pending"
	POLineStatusPartial  = "partial"
	POLineStatusReceived = "received"
)
