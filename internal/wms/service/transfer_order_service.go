package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/warebit/warebit/internal/wms/entity"
	"github.com/warebit/warebit/internal/wms/repository"
	"gorm.io/gorm"
)

// TransferOrderService 调拨单服务：创建、生命周期流转、删除
type TransferOrderService struct {
	repo       *repository.TransferOrderRepository
	db         *gorm.DB
	locker     *tenantLocker
	loadouts   *LoadoutService
	allocation *AllocationService
}

func NewTransferOrderService(repo *repository.TransferOrderRepository, db *gorm.DB, locker *tenantLocker, loadouts *LoadoutService, allocation *AllocationService) *TransferOrderService {
	return &TransferOrderService{
		repo:       repo,
		db:         db,
		locker:     locker,
		loadouts:   loadouts,
		allocation: allocation,
	}
}

// List 获取调拨单列表
func (s *TransferOrderService) List(ctx context.Context, companyID string, page, pageSize int, filters map[string]string) ([]entity.TransferOrder, int64, error) {
	return s.repo.FindAll(ctx, companyID, page, pageSize, filters)
}

// Get 获取调拨单详情
func (s *TransferOrderService) Get(ctx context.Context, companyID, id string) (*entity.TransferOrder, error) {
	order, err := s.repo.FindByID(ctx, companyID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: 调拨单不存在", ErrNotFound)
	}
	return order, err
}

// CreateTransferOrderRequest 创建调拨单请求
type CreateTransferOrderRequest struct {
	FromLocationID string  `json:"from_location_id" binding:"required"`
	ToLocationID   string  `json:"to_location_id" binding:"required"`
	Priority       string  `json:"priority"`
	BlueprintID    *string `json:"blueprint_id"`
	Notes          string  `json:"notes"`
}

// Create 创建调拨单。
// 单号生成在租户级咨询锁内完成；指定模板时，容器实例解析与
// 自动分配和订单插入同属一个事务，任一步失败整体回滚
func (s *TransferOrderService) Create(ctx context.Context, companyID, userID string, req *CreateTransferOrderRequest) (*entity.TransferOrder, error) {
	if req.FromLocationID == req.ToLocationID {
		return nil, fmt.Errorf("%w: 发货地点与收货地点不能相同", ErrValidation)
	}

	release, err := s.locker.Acquire(ctx, orderNumberLockKey(companyID))
	if err != nil {
		return nil, err
	}
	defer release()

	priority := req.Priority
	if priority == "" {
		priority = "normal"
	}

	var order *entity.TransferOrder
	var shortages []shortage
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.repo.NextOrderNumber(ctx, tx, companyID)
		if err != nil {
			return fmt.Errorf("生成调拨单号失败: %w", err)
		}

		order = &entity.TransferOrder{
			ID:             uuid.New().String()[:32],
			CompanyID:      companyID,
			OrderNumber:    number,
			FromLocationID: req.FromLocationID,
			ToLocationID:   req.ToLocationID,
			Status:         entity.TOStatusPending,
			Priority:       priority,
			BlueprintID:    req.BlueprintID,
			Notes:          req.Notes,
			CreatedBy:      userID,
		}

		if req.BlueprintID != nil && *req.BlueprintID != "" {
			loadoutID, err := s.loadouts.ResolveOrCreate(ctx, tx, companyID, *req.BlueprintID, req.FromLocationID, userID)
			if err != nil {
				return err
			}
			order.LoadoutID = &loadoutID
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("创建调拨单失败: %w", err)
		}

		if order.BlueprintID != nil {
			shortages, err = s.allocation.AutoAssign(ctx, tx, companyID, *order.BlueprintID, order, nil, map[string]float64{})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[WMS] 创建调拨单 %s (%s -> %s)", order.OrderNumber, order.FromLocationID, order.ToLocationID)
	s.allocation.notifyShortages(companyID, order.OrderNumber, shortages)
	return s.Get(ctx, companyID, order.ID)
}

// UpdateTransferOrderRequest 调拨单字段更新请求（可变列白名单）
type UpdateTransferOrderRequest struct {
	Status       *string `json:"status"`
	Priority     *string `json:"priority"`
	ToLocationID *string `json:"to_location_id"`
	Notes        *string `json:"notes"`
}

// Update 更新调拨单并执行生命周期流转。
// 状态值必须属于封闭集合且只允许沿生命周期向前推进；
// 写入status时按目标状态盖章对应的操作人/时间对
func (s *TransferOrderService) Update(ctx context.Context, companyID, userID, id string, req *UpdateTransferOrderRequest) (*entity.TransferOrder, error) {
	order, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: 调拨单不存在", ErrNotFound)
		}
		return nil, err
	}

	if req.Priority != nil {
		order.Priority = *req.Priority
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}
	if req.ToLocationID != nil {
		if *req.ToLocationID == order.FromLocationID {
			return nil, fmt.Errorf("%w: 收货地点不能与发货地点相同", ErrValidation)
		}
		order.ToLocationID = *req.ToLocationID
	}

	if req.Status != nil && *req.Status != order.Status {
		if err := s.applyTransition(order, *req.Status, userID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("更新调拨单失败: %w", err)
	}
	return order, nil
}

// applyTransition 校验并盖章一次状态流转
func (s *TransferOrderService) applyTransition(order *entity.TransferOrder, target, userID string) error {
	targetRank, ok := entity.TOStatusRank[target]
	if !ok {
		return fmt.Errorf("%w: 非法的调拨单状态 %q", ErrValidation, target)
	}
	if targetRank < entity.TOStatusRank[order.Status] {
		return fmt.Errorf("%w: 状态不允许从 %s 回退到 %s", ErrConflict, order.Status, target)
	}

	now := time.Now()
	switch target {
	case entity.TOStatusApproved:
		order.ApprovedDate = &now
		order.ApprovedBy = &userID
	case entity.TOStatusShipped:
		order.ShipDate = &now
		order.ShippedBy = &userID
	case entity.TOStatusReceived:
		order.ReceivedDate = &now
		order.ReceivedBy = &userID
	case entity.TOStatusCompleted:
		order.CompletedDate = &now
	}
	order.Status = target
	return nil
}

// Delete 硬删除调拨单及其行项
func (s *TransferOrderService) Delete(ctx context.Context, companyID, id string) error {
	err := s.repo.Delete(ctx, companyID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: 调拨单不存在", ErrNotFound)
	}
	return err
}

// ListItems 获取调拨单行项
func (s *TransferOrderService) ListItems(ctx context.Context, companyID, orderID string) ([]entity.TransferOrderItem, error) {
	return s.repo.ListItems(ctx, companyID, orderID)
}
