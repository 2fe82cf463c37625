package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/warebit/warebit/internal/wms/entity"
	"github.com/warebit/warebit/internal/wms/repository"
	"github.com/xuri/excelize/v2"
)

// InventoryService 库存台账查询与导出
type InventoryService struct {
	repo *repository.InventoryRepository
}

func NewInventoryService(repo *repository.InventoryRepository) *InventoryService {
	return &InventoryService{repo: repo}
}

// List 查询台账列表
func (s *InventoryService) List(ctx context.Context, params repository.InventoryListParams) ([]entity.Inventory, int64, error) {
	return s.repo.List(ctx, params)
}

// Get 获取台账行详情
func (s *InventoryService) Get(ctx context.Context, companyID, id string) (*entity.Inventory, error) {
	inv, err := s.repo.FindByID(ctx, companyID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: 库存记录不存在", ErrNotFound)
	}
	return inv, err
}

var inventoryExportHeaders = []string{
	"物料编号", "物料名称", "批次号", "到期日", "地点", "在库", "可用", "预留", "在途", "单位",
}

// Export 导出台账为xlsx
func (s *InventoryService) Export(ctx context.Context, params repository.InventoryListParams) (*excelize.File, string, error) {
	params.Page = 1
	params.PageSize = 10000
	rows, _, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, "", fmt.Errorf("查询台账失败: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Inventory"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range inventoryExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, inv := range rows {
		row := rowIdx + 2
		if inv.Part != nil {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), inv.Part.PartNumber)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), inv.Part.Name)
		}
		if inv.Lot != nil {
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), inv.Lot.LotNumber)
			if inv.Lot.ExpirationDate != nil {
				f.SetCellValue(sheet, fmt.Sprintf("D%d", row), inv.Lot.ExpirationDate.Format("2006-01-02"))
			}
		}
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), inv.LocationID)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), inv.QuantityOnHand)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), inv.QuantityAvailable)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), inv.QuantityReserved)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), inv.QuantityOnOrder)
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), inv.Unit)
	}

	filename := fmt.Sprintf("inventory_%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}
