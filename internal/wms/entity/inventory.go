package entity

import "time"

// Inventory 库存台账行：公司+物料+批次+地点+货位维度的数量账
// 不变量: quantity_available >= 0 且 quantity_reserved >= 0；
// 可用量的减少必须伴随等量预留量的增加，反之亦然
type Inventory struct {
	ID        string  `json:"id" gorm:"primaryKey;size:32"`
	CompanyID string  `json:"company_id" gorm:"size:32;not null;index:idx_inventory_scope"`
	PartID    string  `json:"part_id" gorm:"size:32;not null;index:idx_inventory_scope"`
	LotID     *string `json:"lot_id" gorm:"size:32;index"`
	SerialID  *string `json:"serial_id" gorm:"size:32"`

	LocationID string  `json:"location_id" gorm:"size:32;not null;index:idx_inventory_scope"`
	BinID      *string `json:"bin_id" gorm:"size:32"`

	QuantityOnHand    float64 `json:"quantity_on_hand" gorm:"type:decimal(12,2);default:0"`
	QuantityAvailable float64 `json:"quantity_available" gorm:"type:decimal(12,2);default:0"`
	QuantityReserved  float64 `json:"quantity_reserved" gorm:"type:decimal(12,2);default:0"`
	QuantityOnOrder   float64 `json:"quantity_on_order" gorm:"type:decimal(12,2);default:0"`

	Unit        string     `json:"unit" gorm:"size:20;default:ea"`
	LastMovedAt *time.Time `json:"last_moved_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Part *Part `json:"part,omitempty" gorm:"foreignKey:PartID"`
	Lot  *Lot  `json:"lot,omitempty" gorm:"foreignKey:LotID"`
}

func (Inventory) TableName() string {
	return "wms_inventory"
}

// Lot 批次，(公司, 物料, 批次号) 唯一，首次收货时惰性创建
type Lot struct {
	ID             string     `json:"id" gorm:"primaryKey;size:32"`
	CompanyID      string     `json:"company_id" gorm:"size:32;not null;uniqueIndex:idx_lots_company_part_number"`
	PartID         string     `json:"part_id" gorm:"size:32;not null;uniqueIndex:idx_lots_company_part_number"`
	LotNumber      string     `json:"lot_number" gorm:"size:64;not null;uniqueIndex:idx_lots_company_part_number"`
	ExpirationDate *time.Time `json:"expiration_date"`
	ReceivedDate   *time.Time `json:"received_date"`
	SupplierID     *string    `json:"supplier_id" gorm:"size:32"`
	LocationID     *string    `json:"location_id" gorm:"size:32"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Lot) TableName() string {
	return "wms_lots"
}

// Serial 序列号，(公司, 物料, 序列号) 唯一
type Serial struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	CompanyID    string    `json:"company_id" gorm:"size:32;not null;uniqueIndex:idx_serials_company_part_number"`
	PartID       string    `json:"part_id" gorm:"size:32;not null;uniqueIndex:idx_serials_company_part_number"`
	SerialNumber string    `json:"serial_number" gorm:"size:64;not null;uniqueIndex:idx_serials_company_part_number"`
	LotID        *string   `json:"lot_id" gorm:"size:32"`
	Status       string    `json:"status" gorm:"size:20;default:in_stock"` // in_stock/reserved/shipped/scrapped
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Serial) TableName() string {
	return "wms_serials"
}

// 序列号状态
const (
	SerialStatusInStock  = "in_stock"
	SerialStatusReserved = "reserved"
	SerialStatusShipped  = "shipped"
	SerialStatusScrapped = "scrapped"
)
