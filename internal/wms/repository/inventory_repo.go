package repository

import (
	"context"
	"errors"

	"github.com/warebit/warebit/internal/wms/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository 库存台账仓库
// 发生在事务中的读改写一律接收显式的tx句柄并加行锁，
// 防止并发完成收货/分配时重复读到同一可用量
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// InventoryListParams 台账查询参数
type InventoryListParams struct {
	CompanyID     string
	PartID        string
	LocationID    string
	LotID         string
	OnlyAvailable bool
	Page          int
	PageSize      int
}

// List 查询台账列表
func (r *InventoryRepository) List(ctx context.Context, params InventoryListParams) ([]entity.Inventory, int64, error) {
	var items []entity.Inventory
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Inventory{}).
		Where("company_id = ?", params.CompanyID)

	if params.PartID != "" {
		query = query.Where("part_id = ?", params.PartID)
	}
	if params.LocationID != "" {
		query = query.Where("location_id = ?", params.LocationID)
	}
	if params.LotID != "" {
		query = query.Where("lot_id = ?", params.LotID)
	}
	if params.OnlyAvailable {
		query = query.Where("quantity_available > 0")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := params.Page, params.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	err := query.
		Preload("Part").
		Preload("Lot").
		Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// FindByID 根据ID查找台账行
func (r *InventoryRepository) FindByID(ctx context.Context, companyID, id string) (*entity.Inventory, error) {
	var inv entity.Inventory
	err := r.db.WithContext(ctx).
		Preload("Lot").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindAvailableForPart 查询某物料在某地点的可分配台账行，先到期先出：
// 按批次到期日升序，无到期日的批次视为永不过期排在最后；行级锁定到事务结束
func (r *InventoryRepository) FindAvailableForPart(ctx context.Context, tx *gorm.DB, companyID, partID, locationID string) ([]entity.Inventory, error) {
	var rows []entity.Inventory
	err := tx.WithContext(ctx).
		Model(&entity.Inventory{}).
		Joins("LEFT JOIN wms_lots ON wms_lots.id = wms_inventory.lot_id").
		Where("wms_inventory.company_id = ? AND wms_inventory.part_id = ? AND wms_inventory.location_id = ? AND wms_inventory.quantity_available > 0",
			companyID, partID, locationID).
		Order("wms_lots.expiration_date ASC NULLS LAST, wms_inventory.created_at ASC").
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "wms_inventory"}}).
		Find(&rows).Error
	return rows, err
}

// LockByID 加锁读取台账行
func (r *InventoryRepository) LockByID(ctx context.Context, tx *gorm.DB, companyID, id string) (*entity.Inventory, error) {
	var inv entity.Inventory
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// LockForReceipt 加锁查找收货目标台账行（公司+物料+批次+地点维度）
func (r *InventoryRepository) LockForReceipt(ctx context.Context, tx *gorm.DB, companyID, partID, lotID, locationID string) (*entity.Inventory, error) {
	var inv entity.Inventory
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND part_id = ? AND lot_id = ? AND location_id = ?",
			companyID, partID, lotID, locationID).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// LockLotByNumber 加锁查找批次（惰性创建前的存在性判定）
func (r *InventoryRepository) LockLotByNumber(ctx context.Context, tx *gorm.DB, companyID, partID, lotNumber string) (*entity.Lot, error) {
	var lot entity.Lot
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND part_id = ? AND lot_number = ?", companyID, partID, lotNumber).
		First(&lot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// LockSerialByNumber 加锁查找序列号
func (r *InventoryRepository) LockSerialByNumber(ctx context.Context, tx *gorm.DB, companyID, partID, serialNumber string) (*entity.Serial, error) {
	var serial entity.Serial
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND part_id = ? AND serial_number = ?", companyID, partID, serialNumber).
		First(&serial).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &serial, nil
}

// FindLotByID 根据ID查找批次
func (r *InventoryRepository) FindLotByID(ctx context.Context, companyID, id string) (*entity.Lot, error) {
	var lot entity.Lot
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&lot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}
