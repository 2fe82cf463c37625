package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/warebit/warebit/internal/wms/entity"
	"gorm.io/gorm"
)

// TransferOrderRepository 调拨单仓库
type TransferOrderRepository struct {
	db *gorm.DB
}

func NewTransferOrderRepository(db *gorm.DB) *TransferOrderRepository {
	return &TransferOrderRepository{db: db}
}

// FindAll 查询调拨单列表
func (r *TransferOrderRepository) FindAll(ctx context.Context, companyID string, page, pageSize int, filters map[string]string) ([]entity.TransferOrder, int64, error) {
	var orders []entity.TransferOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.TransferOrder{}).Where("company_id = ?", companyID)

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if from := filters["from_location_id"]; from != "" {
		query = query.Where("from_location_id = ?", from)
	}
	if to := filters["to_location_id"]; to != "" {
		query = query.Where("to_location_id = ?", to)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("order_number ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&orders).Error
	return orders, total, err
}

// FindByID 根据ID查找调拨单（含行项）
func (r *TransferOrderRepository) FindByID(ctx context.Context, companyID, id string) (*entity.TransferOrder, error) {
	var order entity.TransferOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Preload("Items.Part").
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

// Create 创建调拨单
func (r *TransferOrderRepository) Create(ctx context.Context, order *entity.TransferOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Update 更新调拨单
func (r *TransferOrderRepository) Update(ctx context.Context, order *entity.TransferOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// Delete 删除调拨单及其行项（管理员级硬删除）
func (r *TransferOrderRepository) Delete(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ? AND order_id = ?", companyID, id).
			Delete(&entity.TransferOrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("company_id = ? AND id = ?", companyID, id).
			Delete(&entity.TransferOrder{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListItems 查询调拨单行项
func (r *TransferOrderRepository) ListItems(ctx context.Context, companyID, orderID string) ([]entity.TransferOrderItem, error) {
	var items []entity.TransferOrderItem
	err := r.db.WithContext(ctx).
		Preload("Part").
		Where("company_id = ? AND order_id = ?", companyID, orderID).
		Order("sort_order ASC, created_at ASC").
		Find(&items).Error
	return items, err
}

// NextOrderNumber 生成下一个调拨单号 TO-{4位序号}。
// 序号来自租户级序列表，单据删除后单号不复用
func (r *TransferOrderRepository) NextOrderNumber(ctx context.Context, tx *gorm.DB, companyID string) (string, error) {
	seq, err := nextSequence(ctx, tx, companyID, entity.SequenceTransferOrder)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TO-%04d", seq), nil
}
