package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/warebit/warebit/internal/wms/entity"
	"github.com/warebit/warebit/internal/wms/repository"
	"gorm.io/gorm"
)

// BlueprintService 容器模板服务
type BlueprintService struct {
	repo *repository.BlueprintRepository
	db   *gorm.DB
}

func NewBlueprintService(repo *repository.BlueprintRepository, db *gorm.DB) *BlueprintService {
	return &BlueprintService{repo: repo, db: db}
}

// List 获取模板列表
func (s *BlueprintService) List(ctx context.Context, companyID string, page, pageSize int, filters map[string]string) ([]entity.ContainerBlueprint, int64, error) {
	return s.repo.FindAll(ctx, companyID, page, pageSize, filters)
}

// Get 获取模板详情
func (s *BlueprintService) Get(ctx context.Context, companyID, id string) (*entity.ContainerBlueprint, error) {
	bp, err := s.repo.FindByID(ctx, companyID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: 容器模板不存在", ErrNotFound)
	}
	return bp, err
}

// CreateBlueprintRequest 创建模板请求
type CreateBlueprintRequest struct {
	Name         string                       `json:"name" binding:"required"`
	SerialPrefix string                       `json:"serial_prefix" binding:"required"`
	Description  string                       `json:"description"`
	Items        []CreateBlueprintItemRequest `json:"items"`
}

// CreateBlueprintItemRequest 创建模板行项请求
type CreateBlueprintItemRequest struct {
	PartID          string   `json:"part_id" binding:"required"`
	MinQuantity     *float64 `json:"min_quantity"`
	MaxQuantity     *float64 `json:"max_quantity"`
	DefaultQuantity *float64 `json:"default_quantity"`
	Notes           string   `json:"notes"`
}

// Create 创建模板
func (s *BlueprintService) Create(ctx context.Context, companyID, userID string, req *CreateBlueprintRequest) (*entity.ContainerBlueprint, error) {
	bp := &entity.ContainerBlueprint{
		ID:           uuid.New().String()[:32],
		CompanyID:    companyID,
		Name:         req.Name,
		SerialPrefix: req.SerialPrefix,
		Description:  req.Description,
		IsActive:     true,
		CreatedBy:    userID,
	}

	for i, item := range req.Items {
		bp.Items = append(bp.Items, entity.BlueprintItem{
			ID:              uuid.New().String()[:32],
			CompanyID:       companyID,
			BlueprintID:     bp.ID,
			PartID:          item.PartID,
			MinQuantity:     item.MinQuantity,
			MaxQuantity:     item.MaxQuantity,
			DefaultQuantity: item.DefaultQuantity,
			Notes:           item.Notes,
			SortOrder:       i + 1,
		})
	}

	if err := s.repo.Create(ctx, bp); err != nil {
		return nil, fmt.Errorf("创建容器模板失败: %w", err)
	}
	return bp, nil
}

// AddItem 追加模板行项
func (s *BlueprintService) AddItem(ctx context.Context, companyID, blueprintID string, req *CreateBlueprintItemRequest) (*entity.BlueprintItem, error) {
	bp, err := s.repo.FindByID(ctx, companyID, blueprintID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: 容器模板不存在", ErrNotFound)
		}
		return nil, err
	}

	item := &entity.BlueprintItem{
		ID:              uuid.New().String()[:32],
		CompanyID:       companyID,
		BlueprintID:     bp.ID,
		PartID:          req.PartID,
		MinQuantity:     req.MinQuantity,
		MaxQuantity:     req.MaxQuantity,
		DefaultQuantity: req.DefaultQuantity,
		Notes:           req.Notes,
		SortOrder:       len(bp.Items) + 1,
	}

	if err := s.repo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("%w: 追加模板行项失败", ErrReference)
	}
	return item, nil
}

// RemoveItem 删除模板行项
func (s *BlueprintService) RemoveItem(ctx context.Context, companyID, blueprintID, itemID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item entity.BlueprintItem
		err := tx.Where("company_id = ? AND id = ? AND blueprint_id = ?", companyID, itemID, blueprintID).
			First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: 模板行项不存在", ErrNotFound)
			}
			return err
		}
		return tx.Delete(&item).Error
	})
}

// Requirement 模板行项的解析后需求
type Requirement struct {
	Item             entity.BlueprintItem `json:"item"`
	Part             *entity.Part         `json:"part"`
	RequiredQuantity float64              `json:"required_quantity"`
}

// Requirements 将模板展开为 (物料, 需求数量) 列表，纯读取
func (s *BlueprintService) Requirements(ctx context.Context, companyID, blueprintID string) ([]Requirement, error) {
	items, err := s.repo.ListItems(ctx, companyID, blueprintID)
	if err != nil {
		return nil, err
	}

	reqs := make([]Requirement, 0, len(items))
	for _, item := range items {
		reqs = append(reqs, Requirement{
			Item:             item,
			Part:             item.Part,
			RequiredQuantity: item.RequiredQuantity(),
		})
	}
	return reqs, nil
}
