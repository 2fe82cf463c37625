package repository

import (
	"context"
	"errors"

	"github.com/warebit/warebit/internal/wms/entity"
	"gorm.io/gorm"
)

// LoadoutRepository 容器实例仓库
type LoadoutRepository struct {
	db *gorm.DB
}

func NewLoadoutRepository(db *gorm.DB) *LoadoutRepository {
	return &LoadoutRepository{db: db}
}

// FindActive 查找某模板在某地点最新的活动实例。
// 在调用方事务内执行，find-or-create两步共用同一快照
func (r *LoadoutRepository) FindActive(ctx context.Context, tx *gorm.DB, companyID, blueprintID, locationID string) (*entity.ContainerLoadout, error) {
	var lo entity.ContainerLoadout
	err := tx.WithContext(ctx).
		Where("company_id = ? AND blueprint_id = ? AND location_id = ? AND is_active = true",
			companyID, blueprintID, locationID).
		Order("created_at DESC").
		First(&lo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lo, nil
}

// FindLatest 查找租户最近创建的实例（用于序列号后缀递增）
func (r *LoadoutRepository) FindLatest(ctx context.Context, tx *gorm.DB, companyID string) (*entity.ContainerLoadout, error) {
	var lo entity.ContainerLoadout
	err := tx.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		First(&lo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lo, nil
}

// FindByID 根据ID查找实例（含投料记录）
func (r *LoadoutRepository) FindByID(ctx context.Context, companyID, id string) (*entity.ContainerLoadout, error) {
	var lo entity.ContainerLoadout
	err := r.db.WithContext(ctx).
		Preload("Lots").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&lo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lo, nil
}

// Create 在调用方事务内创建实例
func (r *LoadoutRepository) Create(ctx context.Context, tx *gorm.DB, lo *entity.ContainerLoadout) error {
	return tx.WithContext(ctx).Create(lo).Error
}
