package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/warebit/warebit/internal/wms/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseOrderRepository 采购订单仓库
type PurchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

// FindAll 查询采购订单列表
func (r *PurchaseOrderRepository) FindAll(ctx context.Context, companyID string, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	var orders []entity.PurchaseOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PurchaseOrder{}).Where("company_id = ?", companyID)

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("order_number ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Lines").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&orders).Error
	return orders, total, err
}

// FindByID 根据ID查找采购订单（含行项）
func (r *PurchaseOrderRepository) FindByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	var order entity.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Lines.Part").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumber 根据单号查找采购订单
func (r *PurchaseOrderRepository) FindByNumber(ctx context.Context, companyID, orderNumber string) (*entity.PurchaseOrder, error) {
	var order entity.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("company_id = ? AND order_number = ?", companyID, orderNumber).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Create 创建采购订单
func (r *PurchaseOrderRepository) Create(ctx context.Context, order *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindLineByID 查找采购订单行项
func (r *PurchaseOrderRepository) FindLineByID(ctx context.Context, companyID, lineID string) (*entity.PurchaseOrderLine, error) {
	var line entity.PurchaseOrderLine
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, lineID).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

// LockLineByID 加锁读取采购订单行项（收货累加前）
func (r *PurchaseOrderRepository) LockLineByID(ctx context.Context, tx *gorm.DB, companyID, lineID string) (*entity.PurchaseOrderLine, error) {
	var line entity.PurchaseOrderLine
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND id = ?", companyID, lineID).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

// NextOrderNumber 生成下一个采购订单号 PO{yymm}-{4位序号}。
// 序号跨月连续递增，单据删除后单号不复用
func (r *PurchaseOrderRepository) NextOrderNumber(ctx context.Context, tx *gorm.DB, companyID string) (string, error) {
	seq, err := nextSequence(ctx, tx, companyID, entity.SequencePurchaseOrder)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PO%s-%04d", time.Now().Format("0601"), seq), nil
}
