package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/warebit/warebit/internal/wms/entity"
	"github.com/warebit/warebit/internal/wms/repository"
	"gorm.io/gorm"
)

// PurchaseOrderService 采购订单服务
type PurchaseOrderService struct {
	repo   *repository.PurchaseOrderRepository
	db     *gorm.DB
	locker *tenantLocker
}

func NewPurchaseOrderService(repo *repository.PurchaseOrderRepository, db *gorm.DB, locker *tenantLocker) *PurchaseOrderService {
	return &PurchaseOrderService{repo: repo, db: db, locker: locker}
}

// List 获取采购订单列表
func (s *PurchaseOrderService) List(ctx context.Context, companyID string, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	return s.repo.FindAll(ctx, companyID, page, pageSize, filters)
}

// Get 获取采购订单详情
func (s *PurchaseOrderService) Get(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	order, err := s.repo.FindByID(ctx, companyID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: 采购订单不存在", ErrNotFound)
	}
	return order, err
}

// CreatePurchaseOrderRequest 创建采购订单请求
type CreatePurchaseOrderRequest struct {
	SupplierID *string                          `json:"supplier_id"`
	OrderDate  *time.Time                       `json:"order_date"`
	ExpectedAt *time.Time                       `json:"expected_at"`
	Notes      string                           `json:"notes"`
	Lines      []CreatePurchaseOrderLineRequest `json:"lines" binding:"required,min=1"`
}

// CreatePurchaseOrderLineRequest 创建采购订单行项请求
type CreatePurchaseOrderLineRequest struct {
	PartID          string   `json:"part_id" binding:"required"`
	QuantityOrdered float64  `json:"quantity_ordered" binding:"required,gt=0"`
	Unit            string   `json:"unit"`
	UnitPrice       *float64 `json:"unit_price"`
	Notes           string   `json:"notes"`
}

// Create 创建采购订单，单号 PO{yymm}-{4位序号} 在租户级锁内生成
func (s *PurchaseOrderService) Create(ctx context.Context, companyID, userID string, req *CreatePurchaseOrderRequest) (*entity.PurchaseOrder, error) {
	release, err := s.locker.Acquire(ctx, orderNumberLockKey(companyID))
	if err != nil {
		return nil, err
	}
	defer release()

	var order *entity.PurchaseOrder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.repo.NextOrderNumber(ctx, tx, companyID)
		if err != nil {
			return fmt.Errorf("生成采购订单号失败: %w", err)
		}

		order = &entity.PurchaseOrder{
			ID:          uuid.New().String()[:32],
			CompanyID:   companyID,
			OrderNumber: number,
			SupplierID:  req.SupplierID,
			Status:      entity.POStatusOpen,
			OrderDate:   req.OrderDate,
			ExpectedAt:  req.ExpectedAt,
			Notes:       req.Notes,
			CreatedBy:   userID,
		}

		for i, line := range req.Lines {
			unit := line.Unit
			if unit == "" {
				unit = "ea"
			}
			order.Lines = append(order.Lines, entity.PurchaseOrderLine{
				ID:              uuid.New().String()[:32],
				CompanyID:       companyID,
				OrderID:         order.ID,
				PartID:          line.PartID,
				QuantityOrdered: line.QuantityOrdered,
				Unit:            unit,
				UnitPrice:       line.UnitPrice,
				Status:          entity.POLineStatusPending,
				SortOrder:       i + 1,
				Notes:           line.Notes,
			})
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("创建采购订单失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ReceiveLine 直接对采购订单行项收货（不经收货会话的入口），
// 累加已收数量并触发同一套头状态汇总
func (s *PurchaseOrderService) ReceiveLine(ctx context.Context, companyID, lineID string, qty float64) (*entity.PurchaseOrderLine, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: 收货数量必须大于0", ErrValidation)
	}

	var line *entity.PurchaseOrderLine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		line, err = s.repo.LockLineByID(ctx, tx, companyID, lineID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: 采购订单行项不存在", ErrNotFound)
			}
			return err
		}

		if err := s.applyLineReceipt(ctx, tx, line, qty); err != nil {
			return err
		}
		return s.RollupStatus(ctx, tx, companyID, line.OrderID)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// applyLineReceipt 行项收货累加并推进行项状态
func (s *PurchaseOrderService) applyLineReceipt(ctx context.Context, tx *gorm.DB, line *entity.PurchaseOrderLine, qty float64) error {
	line.QuantityReceived += qty
	if line.QuantityReceived >= line.QuantityOrdered {
		line.Status = entity.POLineStatusReceived
	} else if line.QuantityReceived > 0 {
		line.Status = entity.POLineStatusPartial
	}
	return tx.WithContext(ctx).Save(line).Error
}

// RollupStatus 由行项聚合重算采购订单头状态：
// 全部行项收满为received，任一行项已收大于0为partial，否则维持原状。
// 幂等，可被收货完成与行项收货两个入口重复触发
func (s *PurchaseOrderService) RollupStatus(ctx context.Context, tx *gorm.DB, companyID, orderID string) error {
	var lines []entity.PurchaseOrderLine
	if err := tx.WithContext(ctx).
		Where("company_id = ? AND order_id = ?", companyID, orderID).
		Find(&lines).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	allReceived := true
	anyReceived := false
	for _, line := range lines {
		if line.QuantityReceived < line.QuantityOrdered {
			allReceived = false
		}
		if line.QuantityReceived > 0 {
			anyReceived = true
		}
	}

	var status string
	switch {
	case allReceived:
		status = entity.POStatusReceived
	case anyReceived:
		status = entity.POStatusPartial
	default:
		return nil
	}

	return tx.WithContext(ctx).Model(&entity.PurchaseOrder{}).
		Where("company_id = ? AND id = ?", companyID, orderID).
		Update("status", status).Error
}
