package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/warebit/warebit/internal/wms/entity"
	"github.com/warebit/warebit/internal/wms/repository"
)

// PartService 物料主数据服务
type PartService struct {
	repo *repository.PartRepository
}

func NewPartService(repo *repository.PartRepository) *PartService {
	return &PartService{repo: repo}
}

// List 获取物料列表
func (s *PartService) List(ctx context.Context, companyID string, page, pageSize int, filters map[string]string) ([]entity.Part, int64, error) {
	return s.repo.FindAll(ctx, companyID, page, pageSize, filters)
}

// Get 获取物料详情
func (s *PartService) Get(ctx context.Context, companyID, id string) (*entity.Part, error) {
	part, err := s.repo.FindByID(ctx, companyID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: 物料不存在", ErrNotFound)
	}
	return part, err
}

// CreatePartRequest 创建物料请求
type CreatePartRequest struct {
	PartNumber      string `json:"part_number" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Unit            string `json:"unit"`
	GTIN            string `json:"gtin"`
	IsLotTracked    *bool  `json:"is_lot_tracked"`
	IsSerialTracked *bool  `json:"is_serial_tracked"`
}

// Create 创建物料
func (s *PartService) Create(ctx context.Context, companyID string, req *CreatePartRequest) (*entity.Part, error) {
	unit := req.Unit
	if unit == "" {
		unit = "ea"
	}
	part := &entity.Part{
		ID:           uuid.New().String()[:32],
		CompanyID:    companyID,
		PartNumber:   req.PartNumber,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Unit:         unit,
		GTIN:         req.GTIN,
		IsLotTracked: true,
		IsActive:     true,
	}
	if req.IsLotTracked != nil {
		part.IsLotTracked = *req.IsLotTracked
	}
	if req.IsSerialTracked != nil {
		part.IsSerialTracked = *req.IsSerialTracked
	}
	if err := s.repo.Create(ctx, part); err != nil {
		return nil, fmt.Errorf("创建物料失败: %w", err)
	}
	return part, nil
}

// UpdatePartRequest 更新物料请求（指针字段表示部分更新）
type UpdatePartRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	Category        *string `json:"category"`
	Unit            *string `json:"unit"`
	GTIN            *string `json:"gtin"`
	IsLotTracked    *bool   `json:"is_lot_tracked"`
	IsSerialTracked *bool   `json:"is_serial_tracked"`
	IsActive        *bool   `json:"is_active"`
}

// Update 更新物料
func (s *PartService) Update(ctx context.Context, companyID, id string, req *UpdatePartRequest) (*entity.Part, error) {
	part, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		part.Name = *req.Name
	}
	if req.Description != nil {
		part.Description = *req.Description
	}
	if req.Category != nil {
		part.Category = *req.Category
	}
	if req.Unit != nil {
		part.Unit = *req.Unit
	}
	if req.GTIN != nil {
		part.GTIN = *req.GTIN
	}
	if req.IsLotTracked != nil {
		part.IsLotTracked = *req.IsLotTracked
	}
	if req.IsSerialTracked != nil {
		part.IsSerialTracked = *req.IsSerialTracked
	}
	if req.IsActive != nil {
		part.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, part); err != nil {
		return nil, fmt.Errorf("更新物料失败: %w", err)
	}
	return part, nil
}
