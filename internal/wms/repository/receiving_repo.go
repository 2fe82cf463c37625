package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/warebit/warebit/internal/wms/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReceivingRepository 收货会话仓库
type ReceivingRepository struct {
	db *gorm.DB
}

func NewReceivingRepository(db *gorm.DB) *ReceivingRepository {
	return &ReceivingRepository{db: db}
}

// FindAll 查询收货会话列表
func (r *ReceivingRepository) FindAll(ctx context.Context, companyID string, page, pageSize int, filters map[string]string) ([]entity.Receiving, int64, error) {
	var sessions []entity.Receiving
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Receiving{}).Where("company_id = ?", companyID)

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if poID := filters["purchase_order_id"]; poID != "" {
		query = query.Where("purchase_order_id = ?", poID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("receiving_number ILIKE ? OR po_number ILIKE ?", "%"+search+"%", "%"+search+"%")
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
		Find(&sessions).Error
	return sessions, total, err
}

// FindByID 根据ID查找收货会话（含行项）
func (r *ReceivingRepository) FindByID(ctx context.Context, companyID, id string) (*entity.Receiving, error) {
	var session entity.Receiving
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Part").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// LockByID 加锁读取收货会话（完成收货的幂等防护）
func (r *ReceivingRepository) LockByID(ctx context.Context, tx *gorm.DB, companyID, id string) (*entity.Receiving, error) {
	var session entity.Receiving
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Create 创建收货会话
func (r *ReceivingRepository) Create(ctx context.Context, session *entity.Receiving) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// Update 更新收货会话
func (r *ReceivingRepository) Update(ctx context.Context, session *entity.Receiving) error {
	return r.db.WithContext(ctx).Save(session).Error
}

// AddItem 追加收货行项
func (r *ReceivingRepository) AddItem(ctx context.Context, item *entity.ReceivingItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// ListItems 查询收货行项
func (r *ReceivingRepository) ListItems(ctx context.Context, tx *gorm.DB, companyID, receivingID string) ([]entity.ReceivingItem, error) {
	var items []entity.ReceivingItem
	err := tx.WithContext(ctx).
		Where("company_id = ? AND receiving_id = ?", companyID, receivingID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// NextReceivingNumber 生成下一个收货单号 RCV-{4位序号}。
// 序号来自租户级序列表，会话删除后单号不复用
func (r *ReceivingRepository) NextReceivingNumber(ctx context.Context, companyID string) (string, error) {
	seq, err := nextSequence(ctx, r.db, companyID, entity.SequenceReceiving)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("RCV-%04d", seq), nil
}
