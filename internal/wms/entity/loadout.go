package entity

import "time"

// ContainerLoadout 容器实例：某模板在某地点的一次物理实例化
// 序列号 = 模板前缀 + 租户内递增的3位后缀
type ContainerLoadout struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	CompanyID    string    `json:"company_id" gorm:"size:32;not null;index"`
	BlueprintID  string    `json:"blueprint_id" gorm:"size:32;not null;index"`
	LocationID   string    `json:"location_id" gorm:"size:32;not null;index"`
	SerialNumber string    `json:"serial_number" gorm:"size:32;not null"`
	SerialSuffix string    `json:"serial_suffix" gorm:"size:8;not null"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedBy    string    `json:"created_by" gorm:"size:32"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Lots []LoadoutLot `json:"lots,omitempty" gorm:"foreignKey:LoadoutID"`
}

func (ContainerLoadout) TableName() string {
	return "wms_container_loadouts"
}

// LoadoutLot 容器投料记录：实际装入容器的批次用量
type LoadoutLot struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	CompanyID    string    `json:"company_id" gorm:"size:32;not null;index"`
	LoadoutID    string    `json:"loadout_id" gorm:"size:32;not null;index"`
	PartID       string    `json:"part_id" gorm:"size:32;not null"`
	LotID        *string   `json:"lot_id" gorm:"size:32"`
	QuantityUsed float64   `json:"quantity_used" gorm:"type:decimal(12,2);not null"`
	OrderNumber  string    `json:"order_number" gorm:"size:32"` // 来源调拨单号，手工投料时为空
	Notes        string    `json:"notes" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
}

func (LoadoutLot) TableName() string {
	return "wms_loadout_lots"
}
