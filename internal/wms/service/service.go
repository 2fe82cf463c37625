package service

import (
	"github.com/redis/go-redis/v9"
	"github.com/warebit/warebit/internal/shared/notify"
	"github.com/warebit/warebit/internal/wms/repository"
	"gorm.io/gorm"
)

// Services WMS服务集合
type Services struct {
	Part          *PartService
	Location      *LocationService
	Blueprint     *BlueprintService
	Loadout       *LoadoutService
	Allocation    *AllocationService
	TransferOrder *TransferOrderService
	PurchaseOrder *PurchaseOrderService
	Receiving     *ReceivingService
	Inventory     *InventoryService
}

// NewServices 创建WMS服务集合
func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client, notifier *notify.Client) *Services {
	locker := &tenantLocker{rdb: rdb}

	blueprintSvc := NewBlueprintService(repos.Blueprint, db)
	loadoutSvc := NewLoadoutService(repos.Loadout, db, locker)
	allocationSvc := NewAllocationService(repos, db, notifier)
	poSvc := NewPurchaseOrderService(repos.PurchaseOrder, db, locker)

	return &Services{
		Part:          NewPartService(repos.Part),
		Location:      NewLocationService(repos.Location),
		Blueprint:     blueprintSvc,
		Loadout:       loadoutSvc,
		Allocation:    allocationSvc,
		TransferOrder: NewTransferOrderService(repos.TransferOrder, db, locker, loadoutSvc, allocationSvc),
		PurchaseOrder: poSvc,
		Receiving:     NewReceivingService(repos, db, poSvc, notifier),
		Inventory:     NewInventoryService(repos.Inventory),
	}
}
