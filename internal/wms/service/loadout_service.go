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

// LoadoutService 容器实例服务
type LoadoutService struct {
	repo   *repository.LoadoutRepository
	db     *gorm.DB
	locker *tenantLocker
}

func NewLoadoutService(repo *repository.LoadoutRepository, db *gorm.DB, locker *tenantLocker) *LoadoutService {
	return &LoadoutService{repo: repo, db: db, locker: locker}
}

// Resolve 独立事务入口，供控制器直接解析或创建实例
func (s *LoadoutService) Resolve(ctx context.Context, companyID, blueprintID, locationID, actor string) (*entity.ContainerLoadout, error) {
	var id string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = s.ResolveOrCreate(ctx, tx, companyID, blueprintID, locationID, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, companyID, id)
}

// Get 获取实例详情
func (s *LoadoutService) Get(ctx context.Context, companyID, id string) (*entity.ContainerLoadout, error) {
	lo, err := s.repo.FindByID(ctx, companyID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: 容器实例不存在", ErrNotFound)
	}
	return lo, err
}

// ResolveOrCreate 解析或创建容器实例：
// 同一 (租户, 模板, 地点) 已有活动实例则直接复用（最新者优先），
// 否则按租户最近后缀+1生成序列号并新建。
// find-or-create 在租户级咨询锁内执行，消除读后写竞态
func (s *LoadoutService) ResolveOrCreate(ctx context.Context, tx *gorm.DB, companyID, blueprintID, locationID, actor string) (string, error) {
	release, err := s.locker.Acquire(ctx, loadoutLockKey(companyID))
	if err != nil {
		return "", err
	}
	defer release()

	return s.resolveOrCreate(ctx, tx, companyID, blueprintID, locationID, actor)
}

func (s *LoadoutService) resolveOrCreate(ctx context.Context, tx *gorm.DB, companyID, blueprintID, locationID, actor string) (string, error) {
	existing, err := s.repo.FindActive(ctx, tx, companyID, blueprintID, locationID)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	// 读取模板前缀；模板越权或缺失表现为引用错误
	var bp entity.ContainerBlueprint
	if err := tx.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, blueprintID).
		First(&bp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: 容器模板不存在", ErrReference)
		}
		return "", err
	}

	suffix, err := s.nextSerialSuffix(ctx, tx, companyID)
	if err != nil {
		return "", err
	}

	lo := &entity.ContainerLoadout{
		ID:           uuid.New().String()[:32],
		CompanyID:    companyID,
		BlueprintID:  blueprintID,
		LocationID:   locationID,
		SerialNumber: fmt.Sprintf("%s-%s", bp.SerialPrefix, suffix),
		SerialSuffix: suffix,
		IsActive:     true,
		CreatedBy:    actor,
	}

	if err := s.repo.Create(ctx, tx, lo); err != nil {
		// 地点/模板外键越界由插入约束兜底
		return "", fmt.Errorf("%w: 创建容器实例失败: %v", ErrReference, err)
	}
	return lo.ID, nil
}

// nextSerialSuffix 取租户最近实例的后缀+1，3位补零，缺省"001"
func (s *LoadoutService) nextSerialSuffix(ctx context.Context, tx *gorm.DB, companyID string) (string, error) {
	latest, err := s.repo.FindLatest(ctx, tx, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "001", nil
		}
		return "", err
	}

	var seq int
	fmt.Sscanf(latest.SerialSuffix, "%d", &seq)
	return fmt.Sprintf("%03d", seq+1), nil
}
