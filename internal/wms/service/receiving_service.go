package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/warebit/warebit/internal/shared/notify"
	"github.com/warebit/warebit/internal/wms/entity"
	"github.com/warebit/warebit/internal/wms/repository"
	"gorm.io/gorm"
)

// ReceivingService 收货会话服务。
// 会话开放期间只是草稿，行项可随意增删；完成收货才一次性过账：
// 惰性创建批次/序列号、累加库存台账、回写采购订单行项与头状态
type ReceivingService struct {
	repos    *repository.Repositories
	db       *gorm.DB
	poSvc    *PurchaseOrderService
	notifier *notify.Client
}

func NewReceivingService(repos *repository.Repositories, db *gorm.DB, poSvc *PurchaseOrderService, notifier *notify.Client) *ReceivingService {
	return &ReceivingService{repos: repos, db: db, poSvc: poSvc, notifier: notifier}
}

// List 获取收货会话列表
func (s *ReceivingService) List(ctx context.Context, companyID string, page, pageSize int, filters map[string]string) ([]entity.Receiving, int64, error) {
	return s.repos.Receiving.FindAll(ctx, companyID, page, pageSize, filters)
}

// Get 获取收货会话详情
func (s *ReceivingService) Get(ctx context.Context, companyID, id string) (*entity.Receiving, error) {
	session, err := s.repos.Receiving.FindByID(ctx, companyID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: 收货会话不存在", ErrNotFound)
	}
	return session, err
}

// CreateReceivingRequest 创建收货会话请求
type CreateReceivingRequest struct {
	PurchaseOrderID *string `json:"purchase_order_id"`
	PONumber        string  `json:"po_number"`
	LocationID      string  `json:"location_id" binding:"required"`
	Notes           string  `json:"notes"`
}

// Create 创建收货会话。只给了PO单号没给ID时按单号回溯采购订单
func (s *ReceivingService) Create(ctx context.Context, companyID, userID string, req *CreateReceivingRequest) (*entity.Receiving, error) {
	poID := req.PurchaseOrderID
	poNumber := req.PONumber

	if poID != nil {
		po, err := s.repos.PurchaseOrder.FindByID(ctx, companyID, *poID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: 采购订单不存在", ErrReference)
			}
			return nil, err
		}
		poNumber = po.OrderNumber
	} else if poNumber != "" {
		po, err := s.repos.PurchaseOrder.FindByNumber(ctx, companyID, poNumber)
		if err == nil {
			poID = &po.ID
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		// 没找到也允许建会话，PO单号留作事后对账
	}

	number, err := s.repos.Receiving.NextReceivingNumber(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("生成收货单号失败: %w", err)
	}

	session := &entity.Receiving{
		ID:              uuid.New().String()[:32],
		CompanyID:       companyID,
		ReceivingNumber: number,
		PurchaseOrderID: poID,
		PONumber:        poNumber,
		LocationID:      req.LocationID,
		Status:          entity.ReceivingStatusOpen,
		Notes:           req.Notes,
		CreatedBy:       userID,
	}
	if err := s.repos.Receiving.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("创建收货会话失败: %w", err)
	}
	return session, nil
}

// AddItemRequest 追加收货行项请求
type AddItemRequest struct {
	PartID         string     `json:"part_id" binding:"required"`
	POLineID       *string    `json:"po_line_id"`
	LotNumber      string     `json:"lot_number"`
	SerialNumber   string     `json:"serial_number"`
	Quantity       float64    `json:"quantity" binding:"required,gt=0"`
	Unit           string     `json:"unit"`
	ExpirationDate *time.Time `json:"expiration_date"`
	BinID          *string    `json:"bin_id"`
	Notes          string     `json:"notes"`
}

// AddItem 向开放的收货会话追加行项
func (s *ReceivingService) AddItem(ctx context.Context, companyID, receivingID string, req *AddItemRequest) (*entity.ReceivingItem, error) {
	session, err := s.repos.Receiving.FindByID(ctx, companyID, receivingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: 收货会话不存在", ErrNotFound)
		}
		return nil, err
	}
	if session.Status == entity.ReceivingStatusCompleted {
		return nil, fmt.Errorf("%w: 收货会话已完成，不能追加行项", ErrConflict)
	}

	if _, err := s.repos.Part.FindByID(ctx, companyID, req.PartID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: 物料不存在", ErrReference)
		}
		return nil, err
	}

	unit := req.Unit
	if unit == "" {
		unit = "ea"
	}
	item := &entity.ReceivingItem{
		ID:             uuid.New().String()[:32],
		CompanyID:      companyID,
		ReceivingID:    receivingID,
		PartID:         req.PartID,
		POLineID:       req.POLineID,
		LotNumber:      req.LotNumber,
		SerialNumber:   req.SerialNumber,
		Quantity:       req.Quantity,
		Unit:           unit,
		ExpirationDate: req.ExpirationDate,
		BinID:          req.BinID,
		Notes:          req.Notes,
	}
	if err := s.repos.Receiving.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("追加收货行项失败: %w", err)
	}
	return item, nil
}

// SetAttachment 记录随货单对象存储key
func (s *ReceivingService) SetAttachment(ctx context.Context, companyID, receivingID, key string) error {
	session, err := s.repos.Receiving.FindByID(ctx, companyID, receivingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: 收货会话不存在", ErrNotFound)
		}
		return err
	}
	session.AttachmentKey = key
	return s.repos.Receiving.Update(ctx, session)
}

// Complete 完成收货，整个过账在单一事务里执行：
//  1. 行锁会话，已完成直接冲突（幂等防护）
//  2. 逐行项惰性创建批次/序列号并累加台账
//  3. 回写采购订单行项已收数量并汇总头状态
//
// 任一行项失败整单回滚，不存在完成一半的收货
func (s *ReceivingService) Complete(ctx context.Context, companyID, userID, receivingID string) (*entity.Receiving, error) {
	var session *entity.Receiving
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = s.repos.Receiving.LockByID(ctx, tx, companyID, receivingID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: 收货会话不存在", ErrNotFound)
			}
			return err
		}
		if session.Status == entity.ReceivingStatusCompleted {
			return fmt.Errorf("%w: 收货会话已完成", ErrConflict)
		}

		items, err := s.repos.Receiving.ListItems(ctx, tx, companyID, receivingID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: 收货会话没有行项", ErrValidation)
		}

		// 同一会话内重复批次号只解析一次，避免行锁自等待
		lotCache := make(map[string]*entity.Lot)
		touchedPOs := make(map[string]bool)

		for i := range items {
			item := &items[i]
			if item.Quantity <= 0 {
				return fmt.Errorf("%w: 收货行项数量必须大于0", ErrValidation)
			}

			lot, err := s.resolveLot(ctx, tx, companyID, session, item, lotCache)
			if err != nil {
				return err
			}
			item.LotID = &lot.ID
			item.LotNumber = lot.LotNumber

			var serialID *string
			if item.SerialNumber != "" {
				serial, err := s.resolveSerial(ctx, tx, companyID, item, lot.ID)
				if err != nil {
					return err
				}
				serialID = &serial.ID
			}

			if err := s.postToInventory(ctx, tx, companyID, session, item, lot.ID, serialID); err != nil {
				return err
			}
			if err := tx.WithContext(ctx).Save(item).Error; err != nil {
				return err
			}

			if item.POLineID != nil {
				line, err := s.repos.PurchaseOrder.LockLineByID(ctx, tx, companyID, *item.POLineID)
				if err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return fmt.Errorf("%w: 采购订单行项不存在", ErrReference)
					}
					return err
				}
				if err := s.poSvc.applyLineReceipt(ctx, tx, line, item.Quantity); err != nil {
					return err
				}
				touchedPOs[line.OrderID] = true
			}
		}

		now := time.Now()
		session.Status = entity.ReceivingStatusCompleted
		session.CompletedAt = &now
		session.CompletedBy = &userID
		if err := tx.WithContext(ctx).Save(session).Error; err != nil {
			return err
		}

		for orderID := range touchedPOs {
			if err := s.poSvc.RollupStatus(ctx, tx, companyID, orderID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[WMS] 收货会话 %s 完成过账，操作人 %s", session.ReceivingNumber, userID)
	go s.notifier.Send(context.Background(), notify.Event{
		Type:        notify.EventReceivingCompleted,
		CompanyID:   companyID,
		OrderNumber: session.ReceivingNumber,
		Message:     fmt.Sprintf("收货单 %s 已完成", session.ReceivingNumber),
	})

	return s.Get(ctx, companyID, receivingID)
}

// resolveLot 批次存在则复用，否则惰性创建。
// 未填批次号时合成 {时间戳}{物料ID前8位} 保证批次跟踪不中断
func (s *ReceivingService) resolveLot(ctx context.Context, tx *gorm.DB, companyID string, session *entity.Receiving, item *entity.ReceivingItem, cache map[string]*entity.Lot) (*entity.Lot, error) {
	lotNumber := item.LotNumber
	if lotNumber == "" {
		part := item.PartID
		if len(part) > 8 {
			part = part[:8]
		}
		lotNumber = time.Now().Format("20060102150405") + part
	}

	cacheKey := item.PartID + "/" + lotNumber
	if lot, ok := cache[cacheKey]; ok {
		return lot, nil
	}

	lot, err := s.repos.Inventory.LockLotByNumber(ctx, tx, companyID, item.PartID, lotNumber)
	if err == nil {
		// 已有批次补齐到期日
		if lot.ExpirationDate == nil && item.ExpirationDate != nil {
			lot.ExpirationDate = item.ExpirationDate
			if err := tx.WithContext(ctx).Save(lot).Error; err != nil {
				return nil, err
			}
		}
		cache[cacheKey] = lot
		return lot, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	lot = &entity.Lot{
		ID:             uuid.New().String()[:32],
		CompanyID:      companyID,
		PartID:         item.PartID,
		LotNumber:      lotNumber,
		ExpirationDate: item.ExpirationDate,
		ReceivedDate:   &now,
		LocationID:     &session.LocationID,
	}
	if err := tx.WithContext(ctx).Create(lot).Error; err != nil {
		return nil, fmt.Errorf("创建批次失败: %w", err)
	}
	cache[cacheKey] = lot
	return lot, nil
}

// resolveSerial 序列号存在即复用并置为在库，否则创建
func (s *ReceivingService) resolveSerial(ctx context.Context, tx *gorm.DB, companyID string, item *entity.ReceivingItem, lotID string) (*entity.Serial, error) {
	serial, err := s.repos.Inventory.LockSerialByNumber(ctx, tx, companyID, item.PartID, item.SerialNumber)
	if err == nil {
		serial.LotID = &lotID
		serial.Status = entity.SerialStatusInStock
		if err := tx.WithContext(ctx).Save(serial).Error; err != nil {
			return nil, err
		}
		return serial, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	serial = &entity.Serial{
		ID:           uuid.New().String()[:32],
		CompanyID:    companyID,
		PartID:       item.PartID,
		SerialNumber: item.SerialNumber,
		LotID:        &lotID,
		Status:       entity.SerialStatusInStock,
	}
	if err := tx.WithContext(ctx).Create(serial).Error; err != nil {
		return nil, fmt.Errorf("创建序列号失败: %w", err)
	}
	return serial, nil
}

// postToInventory 向台账过账：同维度行已存在则累加在库量与可用量，否则新建行
func (s *ReceivingService) postToInventory(ctx context.Context, tx *gorm.DB, companyID string, session *entity.Receiving, item *entity.ReceivingItem, lotID string, serialID *string) error {
	now := time.Now()
	inv, err := s.repos.Inventory.LockForReceipt(ctx, tx, companyID, item.PartID, lotID, session.LocationID)
	if err == nil {
		inv.QuantityOnHand += item.Quantity
		inv.QuantityAvailable += item.Quantity
		inv.LastMovedAt = &now
		if item.BinID != nil {
			inv.BinID = item.BinID
		}
		return tx.WithContext(ctx).Save(inv).Error
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	inv = &entity.Inventory{
		ID:                uuid.New().String()[:32],
		CompanyID:         companyID,
		PartID:            item.PartID,
		LotID:             &lotID,
		SerialID:          serialID,
		LocationID:        session.LocationID,
		BinID:             item.BinID,
		QuantityOnHand:    item.Quantity,
		QuantityAvailable: item.Quantity,
		QuantityReserved:  0,
		QuantityOnOrder:   0,
		Unit:              item.Unit,
		LastMovedAt:       &now,
	}
	if err := tx.WithContext(ctx).Create(inv).Error; err != nil {
		return fmt.Errorf("库存过账失败: %w", err)
	}
	return nil
}
