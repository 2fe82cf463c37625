package entity

import "time"

// TransferOrder 调拨单：库存在两个地点间的转移指令
type TransferOrder struct {
	ID             string  `json:"id" gorm:"primaryKey;size:32"`
	CompanyID      string  `json:"company_id" gorm:"size:32;not null;uniqueIndex:idx_transfer_orders_company_number"`
	OrderNumber    string  `json:"order_number" gorm:"size:32;not null;uniqueIndex:idx_transfer_orders_company_number"`
	FromLocationID string  `json:"from_location_id" gorm:"size:32;not null;index"`
	ToLocationID   string  `json:"to_location_id" gorm:"size:32;not null;index"`
	Status         string  `json:"status" gorm:"size:20;default:pending;index"`
	Priority       string  `json:"priority" gorm:"size:20;default:normal"` // low/normal/high/urgent
	BlueprintID    *string `json:"blueprint_id" gorm:"size:32"`
	LoadoutID      *string `json:"loadout_id" gorm:"size:32"`
	ShortageCount  int     `json:"shortage_count" gorm:"default:0"` // 最近一次自动分配未满足的行项数
	Notes          string  `json:"notes" gorm:"type:text"`

	// 生命周期审计
	CreatedBy     string     `json:"created_by" gorm:"size:32"`
	ApprovedDate  *time.Time `json:"approved_date"`
	ApprovedBy    *string    `json:"approved_by" gorm:"size:32"`
	ShipDate      *time.Time `json:"ship_date"`
	ShippedBy     *string    `json:"shipped_by" gorm:"size:32"`
	ReceivedDate  *time.Time `json:"received_date"`
	ReceivedBy    *string    `json:"received_by" gorm:"size:32"`
	CompletedDate *time.Time `json:"completed_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []TransferOrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

func (TransferOrder) TableName() string {
	return "wms_transfer_orders"
}

// 调拨单状态
const (
	TOStatusPending   = "pending"
	TOStatusApproved  = "approved"
	TOStatusShipped   = "shipped"
	TOStatusReceived  = "received"
	TOStatusCompleted = "completed"
)

// TOStatusRank 状态在生命周期中的序号，只允许向前推进
var TOStatusRank = map[string]int{
	TOStatusPending:   0,
	TOStatusApproved:  1,
	TOStatusShipped:   2,
	TOStatusReceived:  3,
	TOStatusCompleted: 4,
}

// TransferOrderItem 调拨单行项：一次已提交的库存分配或手工录入行
type TransferOrderItem struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	CompanyID   string  `json:"company_id" gorm:"size:32;not null;index"`
	OrderID     string  `json:"order_id" gorm:"size:32;not null;index"`
	LoadoutID   *string `json:"loadout_id" gorm:"size:32"`
	InventoryID *string `json:"inventory_id" gorm:"size:32"`
	PartID      string  `json:"part_id" gorm:"size:32;not null;index"`
	LotID       *string `json:"lot_id" gorm:"size:32"`
	LotNumber   string  `json:"lot_number" gorm:"size:64"`

	Quantity       float64    `json:"quantity" gorm:"type:decimal(12,2);not null"`
	Unit           string     `json:"unit" gorm:"size:20;default:ea"`
	SerialNumber   string     `json:"serial_number" gorm:"size:64"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Notes          string     `json:"notes" gorm:"type:text"`
	SortOrder      int        `json:"sort_order" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Part *Part `json:"part,omitempty" gorm:"foreignKey:PartID"`
}

func (TransferOrderItem) TableName() string {
	return "wms_transfer_order_items"
}
