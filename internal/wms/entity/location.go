package entity

import "time"

// Location 库位地点（仓库或目的地）
type Location struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	CompanyID string    `json:"company_id" gorm:"size:32;not null;index"`
	Code      string    `json:"code" gorm:"size:32;not null"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	Type      string    `json:"type" gorm:"size:20;default:warehouse"` // warehouse/site/customer
	Address   string    `json:"address" gorm:"size:500"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Location) TableName() string {
	return "wms_locations"
}

// 地点类型
const (
	LocationTypeWarehouse = "warehouse"
	LocationTypeSite      = "site"
	LocationTypeCustomer  = "customer"
)

// Bin 货位（仓库内的存储位）
type Bin struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	CompanyID  string    `json:"company_id" gorm:"size:32;not null;index"`
	LocationID string    `json:"location_id" gorm:"size:32;not null;index"`
	Code       string    `json:"code" gorm:"size:32;not null"`
	Zone       string    `json:"zone" gorm:"size:32"`
	IsActive   bool      `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Bin) TableName() string {
	return "wms_bins"
}
