package entity

import "time"

// Part 物料（零件/商品）
type Part struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	CompanyID       string    `json:"company_id" gorm:"size:32;not null;index"`
	PartNumber      string    `json:"part_number" gorm:"size:64;not null;index"`
	Name            string    `json:"name" gorm:"size:200;not null"`
	Description     string    `json:"description" gorm:"size:500"`
	Category        string    `json:"category" gorm:"size:50"`
	Unit            string    `json:"unit" gorm:"size:20;default:ea"`
	GTIN            string    `json:"gtin" gorm:"size:14"`
	IsLotTracked    bool      `json:"is_lot_tracked" gorm:"default:true"`
	IsSerialTracked bool      `json:"is_serial_tracked" gorm:"default:false"`
	IsActive        bool      `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Part) TableName() string {
	return "wms_parts"
}

// Supplier 供应商
type Supplier struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	CompanyID string    `json:"company_id" gorm:"size:32;not null;index"`
	Code      string    `json:"code" gorm:"size:32;not null"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	Contact   string    `json:"contact" gorm:"size:100"`
	Phone     string    `json:"phone" gorm:"size:50"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "wms_suppliers"
}
