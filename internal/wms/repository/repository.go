package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// nextSequence 发放租户某业务域的下一个序号。
// upsert自增持行锁保证单调，单据删除后序号不回收
func nextSequence(ctx context.Context, tx *gorm.DB, companyID, scope string) (int64, error) {
	var value int64
	err := tx.WithContext(ctx).Raw(`
		INSERT INTO wms_number_sequences (company_id, scope, value)
		VALUES (?, ?, 1)
		ON CONFLICT (company_id, scope)
		DO UPDATE SET value = wms_number_sequences.value + 1
		RETURNING value`, companyID, scope).Scan(&value).Error
	return value, err
}

// Repositories WMS仓库集合
type Repositories struct {
	Part          *PartRepository
	Location      *LocationRepository
	Blueprint     *BlueprintRepository
	Loadout       *LoadoutRepository
	Inventory     *InventoryRepository
	TransferOrder *TransferOrderRepository
	PurchaseOrder *PurchaseOrderRepository
	Receiving     *ReceivingRepository
}

// NewRepositories 创建WMS仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Part:          NewPartRepository(db),
		Location:      NewLocationRepository(db),
		Blueprint:     NewBlueprintRepository(db),
		Loadout:       NewLoadoutRepository(db),
		Inventory:     NewInventoryRepository(db),
		TransferOrder: NewTransferOrderRepository(db),
		PurchaseOrder: NewPurchaseOrderRepository(db),
		Receiving:     NewReceivingRepository(db),
	}
}
