package entity

import "time"

// ContainerBlueprint 容器配载模板（可复用的箱单/套件BOM）
type ContainerBlueprint struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	CompanyID    string    `json:"company_id" gorm:"size:32;not null;index"`
	Name         string    `json:"name" gorm:"size:200;not null"`
	SerialPrefix string    `json:"serial_prefix" gorm:"size:16;not null"`
	Description  string    `json:"description" gorm:"size:500"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedBy    string    `json:"created_by" gorm:"size:32"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Items []BlueprintItem `json:"items,omitempty" gorm:"foreignKey:BlueprintID"`
}

func (ContainerBlueprint) TableName() string {
	return "wms_container_blueprints"
}

// BlueprintItem 模板行项（物料 + 数量规则）
// 需求数量 = 默认数量，缺省回落到最小数量，再回落到1
type BlueprintItem struct {
	ID              string   `json:"id" gorm:"primaryKey;size:32"`
	CompanyID       string   `json:"company_id" gorm:"size:32;not null;index"`
	BlueprintID     string   `json:"blueprint_id" gorm:"size:32;not null;index"`
	PartID          string   `json:"part_id" gorm:"size:32;not null;index"`
	MinQuantity     *float64 `json:"min_quantity" gorm:"type:decimal(12,2)"`
	MaxQuantity     *float64 `json:"max_quantity" gorm:"type:decimal(12,2)"`
	DefaultQuantity *float64 `json:"default_quantity" gorm:"type:decimal(12,2)"`
	SortOrder       int      `json:"sort_order" gorm:"default:0"`
	Notes           string   `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Part *Part `json:"part,omitempty" gorm:"foreignKey:PartID"`
}

func (BlueprintItem) TableName() string {
	return "wms_blueprint_items"
}

// RequiredQuantity 解析行项的需求数量
func (i *BlueprintItem) RequiredQuantity() float64 {
	if i.DefaultQuantity != nil && *i.DefaultQuantity > 0 {
		return *i.DefaultQuantity
	}
	if i.MinQuantity != nil && *i.MinQuantity > 0 {
		return *i.MinQuantity
	}
	return 1
}
