package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/warebit/warebit/internal/wms/entity"
	"github.com/warebit/warebit/internal/wms/repository"
)

// LocationService 地点主数据服务
type LocationService struct {
	repo *repository.LocationRepository
}

func NewLocationService(repo *repository.LocationRepository) *LocationService {
	return &LocationService{repo: repo}
}

// List 获取地点列表
func (s *LocationService) List(ctx context.Context, companyID string, page, pageSize int, filters map[string]string) ([]entity.Location, int64, error) {
	return s.repo.FindAll(ctx, companyID, page, pageSize, filters)
}

// Get 获取地点详情
func (s *LocationService) Get(ctx context.Context, companyID, id string) (*entity.Location, error) {
	loc, err := s.repo.FindByID(ctx, companyID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: 地点不存在", ErrNotFound)
	}
	return loc, err
}

// CreateLocationRequest 创建地点请求
type CreateLocationRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Type    string `json:"type"`
	Address string `json:"address"`
}

// Create 创建地点
func (s *LocationService) Create(ctx context.Context, companyID string, req *CreateLocationRequest) (*entity.Location, error) {
	locType := req.Type
	switch locType {
	case "":
		locType = entity.LocationTypeWarehouse
	case entity.LocationTypeWarehouse, entity.LocationTypeSite, entity.LocationTypeCustomer:
	default:
		return nil, fmt.Errorf("%w: 无效的地点类型 %s", ErrValidation, locType)
	}

	loc := &entity.Location{
		ID:        uuid.New().String()[:32],
		CompanyID: companyID,
		Code:      req.Code,
		Name:      req.Name,
		Type:      locType,
		Address:   req.Address,
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, loc); err != nil {
		return nil, fmt.Errorf("创建地点失败: %w", err)
	}
	return loc, nil
}

// UpdateLocationRequest 更新地点请求
type UpdateLocationRequest struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"is_active"`
}

// Update 更新地点
func (s *LocationService) Update(ctx context.Context, companyID, id string, req *UpdateLocationRequest) (*entity.Location, error) {
	loc, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		loc.Name = *req.Name
	}
	if req.Address != nil {
		loc.Address = *req.Address
	}
	if req.IsActive != nil {
		loc.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, loc); err != nil {
		return nil, fmt.Errorf("更新地点失败: %w", err)
	}
	return loc, nil
}

// ListBins 获取地点下的货位
func (s *LocationService) ListBins(ctx context.Context, companyID, locationID string) ([]entity.Bin, error) {
	if _, err := s.Get(ctx, companyID, locationID); err != nil {
		return nil, err
	}
	return s.repo.ListBins(ctx, companyID, locationID)
}
