package entity

import "time"

// Company 租户（公司），所有业务数据的根作用域
type Company struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Code      string    `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	Status    string    `json:"status" gorm:"size:20;default:active"` // active/suspended
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Company) TableName() string {
	return "wms_companies"
}
