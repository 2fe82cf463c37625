package repository

import (
	"context"
	"errors"

	"github.com/warebit/warebit/internal/wms/entity"
	"gorm.io/gorm"
)

// BlueprintRepository 容器模板仓库
type BlueprintRepository struct {
	db *gorm.DB
}

func NewBlueprintRepository(db *gorm.DB) *BlueprintRepository {
	return &BlueprintRepository{db: db}
}

// FindAll 查询模板列表
func (r *BlueprintRepository) FindAll(ctx context.Context, companyID string, page, pageSize int, filters map[string]string) ([]entity.ContainerBlueprint, int64, error) {
	var items []entity.ContainerBlueprint
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ContainerBlueprint{}).Where("company_id = ?", companyID)

	if active := filters["is_active"]; active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	if search := filters["search"]; search != "" {
		query = query.Where("name ILIKE ? OR serial_prefix ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Items.Part").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// FindByID 根据ID查找模板（含行项和物料）
func (r *BlueprintRepository) FindByID(ctx context.Context, companyID, id string) (*entity.ContainerBlueprint, error) {
	var bp entity.ContainerBlueprint
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Items.Part").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&bp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bp, nil
}

// Create 创建模板
func (r *BlueprintRepository) Create(ctx context.Context, bp *entity.ContainerBlueprint) error {
	return r.db.WithContext(ctx).Create(bp).Error
}

// Update 更新模板
func (r *BlueprintRepository) Update(ctx context.Context, bp *entity.ContainerBlueprint) error {
	return r.db.WithContext(ctx).Save(bp).Error
}

// ListItems 查询模板行项（含物料）
func (r *BlueprintRepository) ListItems(ctx context.Context, companyID, blueprintID string) ([]entity.BlueprintItem, error) {
	var items []entity.BlueprintItem
	err := r.db.WithContext(ctx).
		Preload("Part").
		Where("company_id = ? AND blueprint_id = ?", companyID, blueprintID).
		Order("sort_order ASC").
		Find(&items).Error
	return items, err
}

// FindItemByID 查找模板行项
func (r *BlueprintRepository) FindItemByID(ctx context.Context, companyID, itemID string) (*entity.BlueprintItem, error) {
	var item entity.BlueprintItem
	err := r.db.WithContext(ctx).
		Preload("Part").
		Where("company_id = ? AND id = ?", companyID, itemID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// AddItem 追加模板行项
func (r *BlueprintRepository) AddItem(ctx context.Context, item *entity.BlueprintItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// DeleteItem 删除模板行项
func (r *BlueprintRepository) DeleteItem(ctx context.Context, companyID, itemID string) error {
	res := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, itemID).
		Delete(&entity.BlueprintItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
