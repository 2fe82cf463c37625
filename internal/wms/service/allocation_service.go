package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/warebit/warebit/internal/shared/notify"
	"github.com/warebit/warebit/internal/wms/entity"
	"github.com/warebit/warebit/internal/wms/repository"
	"gorm.io/gorm"
)

// AllocationService 库存分配服务：
// 自动分配（先到期先出）与手工指定分配共用同一个赋货原语，
// 两个入口只在数量计算方式和备注文案上有差别
type AllocationService struct {
	repos    *repository.Repositories
	db       *gorm.DB
	notifier *notify.Client
}

func NewAllocationService(repos *repository.Repositories, db *gorm.DB, notifier *notify.Client) *AllocationService {
	return &AllocationService{repos: repos, db: db, notifier: notifier}
}

// shortage 自动分配未满足的需求，属正常可上报状态而非错误
type shortage struct {
	PartID    string
	Remaining float64
}

// AutoAssign 按模板需求自动分配库存到调拨单（先到期先出）。
// alreadyAssigned 为各物料已分配数量，供重复调用时去重；
// targetItemID 非空时只处理该模板行项。
// 在调用方事务内执行；缺货只记录不报错，返回给调用方在事务
// 提交后再上报，避免回滚的事务外泄缺货事件
func (s *AllocationService) AutoAssign(ctx context.Context, tx *gorm.DB, companyID, blueprintID string, order *entity.TransferOrder, targetItemID *string, alreadyAssigned map[string]float64) ([]shortage, error) {
	var items []entity.BlueprintItem
	query := tx.WithContext(ctx).
		Preload("Part").
		Where("company_id = ? AND blueprint_id = ?", companyID, blueprintID)
	if targetItemID != nil && *targetItemID != "" {
		query = query.Where("id = ?", *targetItemID)
	}
	if err := query.Order("sort_order ASC").Find(&items).Error; err != nil {
		return nil, err
	}

	var shortages []shortage
	for _, item := range items {
		if item.Part == nil {
			continue
		}
		required := item.RequiredQuantity()
		if required <= 0 {
			continue
		}

		remaining := required - alreadyAssigned[item.PartID]
		if remaining <= 0 {
			continue
		}

		rows, err := s.repos.Inventory.FindAvailableForPart(ctx, tx, companyID, item.PartID, order.FromLocationID)
		if err != nil {
			return nil, err
		}

		for i := range rows {
			if remaining <= 0 {
				break
			}
			take := remaining
			if rows[i].QuantityAvailable < take {
				take = rows[i].QuantityAvailable
			}
			if take <= 0 {
				continue
			}

			applied, err := s.assign(ctx, tx, order, &item, &rows[i], take,
				fmt.Sprintf("自动分配 %s", order.OrderNumber))
			if err != nil {
				return nil, err
			}
			remaining -= applied
			alreadyAssigned[item.PartID] += applied
		}

		if remaining > 0 {
			shortages = append(shortages, shortage{PartID: item.PartID, Remaining: remaining})
			log.Printf("[WMS] 调拨单 %s 物料 %s 缺货 %.2f，订单部分满足",
				order.OrderNumber, item.PartID, remaining)
		}
	}

	if err := tx.WithContext(ctx).Model(&entity.TransferOrder{}).
		Where("company_id = ? AND id = ?", companyID, order.ID).
		Update("shortage_count", len(shortages)).Error; err != nil {
		return nil, err
	}
	order.ShortageCount = len(shortages)

	return shortages, nil
}

// notifyShortages 事务提交后逐条上报缺货事件
func (s *AllocationService) notifyShortages(companyID, orderNumber string, shortages []shortage) {
	for _, sh := range shortages {
		go s.notifier.Send(context.Background(), notify.Event{
			Type:        notify.EventShortage,
			CompanyID:   companyID,
			OrderNumber: orderNumber,
			PartID:      sh.PartID,
			Quantity:    sh.Remaining,
			Message:     fmt.Sprintf("调拨单 %s 存在缺货，缺 %.2f", orderNumber, sh.Remaining),
		})
	}
}

// AutoAssignOrder 对已有调拨单重新运行自动分配（幂等入口）
func (s *AllocationService) AutoAssignOrder(ctx context.Context, companyID, orderID string, targetItemID *string) error {
	var orderNumber string
	var shortages []shortage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order entity.TransferOrder
		err := tx.Where("company_id = ? AND id = ?", companyID, orderID).First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: 调拨单不存在", ErrNotFound)
			}
			return err
		}
		if order.BlueprintID == nil {
			return fmt.Errorf("%w: 调拨单未关联容器模板，无法自动分配", ErrValidation)
		}

		assigned, err := s.assignedQuantities(ctx, tx, companyID, orderID)
		if err != nil {
			return err
		}
		orderNumber = order.OrderNumber
		shortages, err = s.AutoAssign(ctx, tx, companyID, *order.BlueprintID, &order, targetItemID, assigned)
		return err
	})
	if err != nil {
		return err
	}
	s.notifyShortages(companyID, orderNumber, shortages)
	return nil
}

// ManualAssign 手工指定 (台账行, 数量) 分配，返回实际应用数量。
// 数量被钳制到 min(请求量, 剩余需求, 可用量)
func (s *AllocationService) ManualAssign(ctx context.Context, companyID, orderID, blueprintItemID, inventoryID string, requested float64) (float64, error) {
	if requested <= 0 || requested != float64(int64(requested)) {
		return 0, fmt.Errorf("%w: 分配数量必须为正整数", ErrValidation)
	}

	var applied float64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order entity.TransferOrder
		err := tx.Where("company_id = ? AND id = ?", companyID, orderID).First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: 调拨单不存在", ErrNotFound)
			}
			return err
		}

		var item entity.BlueprintItem
		err = tx.Preload("Part").
			Where("company_id = ? AND id = ?", companyID, blueprintItemID).
			First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: 模板行项不存在", ErrNotFound)
			}
			return err
		}
		if item.Part == nil {
			return fmt.Errorf("%w: 模板行项未关联物料", ErrReference)
		}

		assigned, err := s.assignedQuantities(ctx, tx, companyID, orderID)
		if err != nil {
			return err
		}

		remainingNeeded := item.RequiredQuantity() - assigned[item.PartID]
		if remainingNeeded <= 0 {
			return fmt.Errorf("%w: 该物料需求已满足", ErrConflict)
		}

		inv, err := s.repos.Inventory.LockByID(ctx, tx, companyID, inventoryID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: 库存台账行不存在", ErrNotFound)
			}
			return err
		}
		if inv.QuantityAvailable <= 0 {
			return fmt.Errorf("%w: 该台账行无可用库存", ErrConflict)
		}

		qty := requested
		if remainingNeeded < qty {
			qty = remainingNeeded
		}
		if inv.QuantityAvailable < qty {
			qty = inv.QuantityAvailable
		}
		if qty <= 0 {
			return fmt.Errorf("%w: 可分配数量为0", ErrValidation)
		}

		applied, err = s.assign(ctx, tx, &order, &item, inv, qty,
			fmt.Sprintf("手工分配 %s", order.OrderNumber))
		return err
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// assign 共享赋货原语：
// 台账行可用量减qty、预留量加qty（守恒），订单带容器实例时追加投料记录，
// 最后落一条调拨单行项。qty钳制到可用量，地点必须与订单发货地点一致
func (s *AllocationService) assign(ctx context.Context, tx *gorm.DB, order *entity.TransferOrder, item *entity.BlueprintItem, inv *entity.Inventory, qty float64, note string) (float64, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("%w: 分配数量必须大于0", ErrValidation)
	}
	if inv.QuantityAvailable < qty {
		qty = inv.QuantityAvailable
	}
	if qty <= 0 {
		return 0, fmt.Errorf("%w: 该台账行无可用库存", ErrConflict)
	}
	if order.FromLocationID != "" && inv.LocationID != order.FromLocationID {
		return 0, fmt.Errorf("%w: 库存地点与调拨单发货地点不一致", ErrConflict)
	}

	partID := inv.PartID
	unit := inv.Unit
	if item != nil {
		partID = item.PartID
		if item.Part != nil && item.Part.Unit != "" {
			unit = item.Part.Unit
		}
	}
	if partID == "" {
		return 0, fmt.Errorf("%w: 无法解析分配物料", ErrReference)
	}

	// 守恒：可用量的减少等量转入预留量，不改变在库量
	res := tx.WithContext(ctx).Model(&entity.Inventory{}).
		Where("id = ? AND quantity_available >= ?", inv.ID, qty).
		Updates(map[string]interface{}{
			"quantity_available": gorm.Expr("quantity_available - ?", qty),
			"quantity_reserved":  gorm.Expr("quantity_reserved + ?", qty),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: 可用库存不足", ErrConflict)
	}
	inv.QuantityAvailable -= qty
	inv.QuantityReserved += qty

	if order.LoadoutID != nil {
		usage := &entity.LoadoutLot{
			ID:           uuid.New().String()[:32],
			CompanyID:    order.CompanyID,
			LoadoutID:    *order.LoadoutID,
			PartID:       partID,
			LotID:        inv.LotID,
			QuantityUsed: qty,
			OrderNumber:  order.OrderNumber,
			Notes:        note,
		}
		if err := tx.WithContext(ctx).Create(usage).Error; err != nil {
			return 0, err
		}
	}

	orderItem := &entity.TransferOrderItem{
		ID:          uuid.New().String()[:32],
		CompanyID:   order.CompanyID,
		OrderID:     order.ID,
		LoadoutID:   order.LoadoutID,
		InventoryID: &inv.ID,
		PartID:      partID,
		LotID:       inv.LotID,
		Quantity:    qty,
		Unit:        unit,
		Notes:       note,
	}
	if inv.Lot != nil {
		orderItem.LotNumber = inv.Lot.LotNumber
		orderItem.ExpirationDate = inv.Lot.ExpirationDate
	} else if inv.LotID != nil {
		var lot entity.Lot
		if err := tx.WithContext(ctx).Where("id = ?", *inv.LotID).First(&lot).Error; err == nil {
			orderItem.LotNumber = lot.LotNumber
			orderItem.ExpirationDate = lot.ExpirationDate
		}
	}
	if inv.SerialID != nil {
		var serial entity.Serial
		if err := tx.WithContext(ctx).Where("id = ?", *inv.SerialID).First(&serial).Error; err == nil {
			orderItem.SerialNumber = serial.SerialNumber
		}
	}
	if err := tx.WithContext(ctx).Create(orderItem).Error; err != nil {
		return 0, err
	}

	return qty, nil
}

// assignedQuantities 统计调拨单内各物料已分配数量
func (s *AllocationService) assignedQuantities(ctx context.Context, tx *gorm.DB, companyID, orderID string) (map[string]float64, error) {
	var items []entity.TransferOrderItem
	if err := tx.WithContext(ctx).
		Where("company_id = ? AND order_id = ?", companyID, orderID).
		Find(&items).Error; err != nil {
		return nil, err
	}

	assigned := make(map[string]float64)
	for _, item := range items {
		assigned[item.PartID] += item.Quantity
	}
	return assigned, nil
}
