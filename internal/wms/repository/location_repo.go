package repository

import (
	"context"
	"errors"

	"github.com/warebit/warebit/internal/wms/entity"
	"gorm.io/gorm"
)

// LocationRepository 地点仓库
type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// FindAll 查询地点列表
func (r *LocationRepository) FindAll(ctx context.Context, companyID string, page, pageSize int, filters map[string]string) ([]entity.Location, int64, error) {
	var items []entity.Location
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Location{}).Where("company_id = ?", companyID)

	if locType := filters["type"]; locType != "" {
		query = query.Where("type = ?", locType)
	}
	if active := filters["is_active"]; active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	if search := filters["search"]; search != "" {
		query = query.Where("code ILIKE ? OR name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("code ASC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

// FindByID 根据ID查找地点
func (r *LocationRepository) FindByID(ctx context.Context, companyID, id string) (*entity.Location, error) {
	var loc entity.Location
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&loc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// Create 创建地点
func (r *LocationRepository) Create(ctx context.Context, loc *entity.Location) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

// Update 更新地点
func (r *LocationRepository) Update(ctx context.Context, loc *entity.Location) error {
	return r.db.WithContext(ctx).Save(loc).Error
}

// ListBins 查询地点下的货位
func (r *LocationRepository) ListBins(ctx context.Context, companyID, locationID string) ([]entity.Bin, error) {
	var bins []entity.Bin
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND location_id = ?", companyID, locationID).
		Order("code ASC").
		Find(&bins).Error
	return bins, err
}
