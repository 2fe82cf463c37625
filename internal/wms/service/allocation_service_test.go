package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/warebit/warebit/internal/shared/notify"
	"github.com/warebit/warebit/internal/wms/entity"
	"github.com/warebit/warebit/internal/wms/repository"
	"github.com/warebit/warebit/internal/wms/testutil"
	"gorm.io/gorm"
)

const testCompany = "test-company-001"

type allocEnv struct {
	db   *gorm.DB
	svcs *Services
}

func setupAllocTest(t *testing.T) *allocEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svcs := NewServices(repos, db, nil, nil)

	testutil.SeedCompany(t, db, testCompany, "Test Co")
	testutil.SeedLocation(t, db, testCompany, "loc-wh", "WH1", entity.LocationTypeWarehouse)
	testutil.SeedLocation(t, db, testCompany, "loc-site", "SITE1", entity.LocationTypeSite)
	testutil.SeedPart(t, db, testCompany, "part-p", "P-100")

	return &allocEnv{db: db, svcs: svcs}
}

// seedBlueprint 建一个需求10个part-p的模板
func (e *allocEnv) seedBlueprint(t *testing.T) *entity.ContainerBlueprint {
	t.Helper()
	ten := 10.0
	bp := &entity.ContainerBlueprint{
		ID:           "bp-kit",
		CompanyID:    testCompany,
		Name:         "Field Kit",
		SerialPrefix: "KIT",
		IsActive:     true,
		Items: []entity.BlueprintItem{
			{
				ID:              "bpi-p",
				CompanyID:       testCompany,
				BlueprintID:     "bp-kit",
				PartID:          "part-p",
				DefaultQuantity: &ten,
			},
		},
	}
	if err := e.db.Create(bp).Error; err != nil {
		t.Fatalf("seed blueprint: %v", err)
	}
	return bp
}

// seedLotInventory 建批次和对应台账行
func (e *allocEnv) seedLotInventory(t *testing.T, lotID, lotNumber string, exp *time.Time, locationID string, available float64) {
	t.Helper()
	lot := &entity.Lot{
		ID:             lotID,
		CompanyID:      testCompany,
		PartID:         "part-p",
		LotNumber:      lotNumber,
		ExpirationDate: exp,
	}
	if err := e.db.Create(lot).Error; err != nil {
		t.Fatalf("seed lot: %v", err)
	}
	inv := &entity.Inventory{
		ID:                "inv-" + lotID,
		CompanyID:         testCompany,
		PartID:            "part-p",
		LotID:             &lot.ID,
		LocationID:        locationID,
		QuantityOnHand:    available,
		QuantityAvailable: available,
		Unit:              "ea",
	}
	if err := e.db.Create(inv).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
}

func (e *allocEnv) inventory(t *testing.T, id string) *entity.Inventory {
	t.Helper()
	var inv entity.Inventory
	if err := e.db.Where("id = ?", id).First(&inv).Error; err != nil {
		t.Fatalf("load inventory %s: %v", id, err)
	}
	return &inv
}

func TestAutoAssignFEFO(t *testing.T) {
	env := setupAllocTest(t)
	ctx := context.Background()
	bp := env.seedBlueprint(t)

	expA := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expB := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	env.seedLotInventory(t, "lot-a", "LOT-A", &expA, "loc-wh", 4)
	env.seedLotInventory(t, "lot-b", "LOT-B", &expB, "loc-wh", 10)

	order, err := env.svcs.TransferOrder.Create(ctx, testCompany, "user-1", &CreateTransferOrderRequest{
		FromLocationID: "loc-wh",
		ToLocationID:   "loc-site",
		BlueprintID:    &bp.ID,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// 先到期的LOT-A吃满4，剩余6从LOT-B取
	items, err := env.svcs.TransferOrder.ListItems(ctx, testCompany, order.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 order items, got %d", len(items))
	}
	if items[0].LotNumber != "LOT-A" || items[0].Quantity != 4 {
		t.Errorf("Expected first item LOT-A qty 4, got %s qty %.1f", items[0].LotNumber, items[0].Quantity)
	}
	if items[1].LotNumber != "LOT-B" || items[1].Quantity != 6 {
		t.Errorf("Expected second item LOT-B qty 6, got %s qty %.1f", items[1].LotNumber, items[1].Quantity)
	}

	invA := env.inventory(t, "inv-lot-a")
	if invA.QuantityAvailable != 0 || invA.QuantityReserved != 4 {
		t.Errorf("Expected lot A 0/4, got %.1f/%.1f", invA.QuantityAvailable, invA.QuantityReserved)
	}
	invB := env.inventory(t, "inv-lot-b")
	if invB.QuantityAvailable != 4 || invB.QuantityReserved != 6 {
		t.Errorf("Expected lot B 4/6, got %.1f/%.1f", invB.QuantityAvailable, invB.QuantityReserved)
	}

	if order.ShortageCount != 0 {
		t.Errorf("Expected no shortage, got %d", order.ShortageCount)
	}

	// 守恒：在库量不因预留变化
	if invA.QuantityOnHand != 4 || invB.QuantityOnHand != 10 {
		t.Errorf("On-hand quantities must not change on reservation: %.1f, %.1f",
			invA.QuantityOnHand, invB.QuantityOnHand)
	}
}

func TestAutoAssignNullExpirationSortsLast(t *testing.T) {
	env := setupAllocTest(t)
	ctx := context.Background()
	bp := env.seedBlueprint(t)

	exp := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	env.seedLotInventory(t, "lot-never", "LOT-NEVER", nil, "loc-wh", 10)
	env.seedLotInventory(t, "lot-dated", "LOT-DATED", &exp, "loc-wh", 6)

	order, err := env.svcs.TransferOrder.Create(ctx, testCompany, "user-1", &CreateTransferOrderRequest{
		FromLocationID: "loc-wh",
		ToLocationID:   "loc-site",
		BlueprintID:    &bp.ID,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	items, _ := env.svcs.TransferOrder.ListItems(ctx, testCompany, order.ID)
	if len(items) != 2 {
		t.Fatalf("Expected 2 order items, got %d", len(items))
	}
	if items[0].LotNumber != "LOT-DATED" || items[0].Quantity != 6 {
		t.Errorf("Expected dated lot exhausted first, got %s qty %.1f", items[0].LotNumber, items[0].Quantity)
	}
	if items[1].LotNumber != "LOT-NEVER" || items[1].Quantity != 4 {
		t.Errorf("Expected null-expiry lot used last, got %s qty %.1f", items[1].LotNumber, items[1].Quantity)
	}
}

func TestAutoAssignShortageIsNotAnError(t *testing.T) {
	env := setupAllocTest(t)
	ctx := context.Background()
	bp := env.seedBlueprint(t)

	expA := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	env.seedLotInventory(t, "lot-a", "LOT-A", &expA, "loc-wh", 3)

	order, err := env.svcs.TransferOrder.Create(ctx, testCompany, "user-1", &CreateTransferOrderRequest{
		FromLocationID: "loc-wh",
		ToLocationID:   "loc-site",
		BlueprintID:    &bp.ID,
	})
	if err != nil {
		t.Fatalf("Shortage must not fail order creation: %v", err)
	}
	if order.ShortageCount != 1 {
		t.Errorf("Expected shortage_count 1, got %d", order.ShortageCount)
	}

	items, _ := env.svcs.TransferOrder.ListItems(ctx, testCompany, order.ID)
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Errorf("Expected partial fulfillment of 3, got %+v", items)
	}
}

func TestAutoAssignRepeatedCallDoesNotDoubleCount(t *testing.T) {
	env := setupAllocTest(t)
	ctx := context.Background()
	bp := env.seedBlueprint(t)

	expA := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	env.seedLotInventory(t, "lot-a", "LOT-A", &expA, "loc-wh", 20)

	order, err := env.svcs.TransferOrder.Create(ctx, testCompany, "user-1", &CreateTransferOrderRequest{
		FromLocationID: "loc-wh",
		ToLocationID:   "loc-site",
		BlueprintID:    &bp.ID,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := env.svcs.Allocation.AutoAssignOrder(ctx, testCompany, order.ID, nil); err != nil {
		t.Fatalf("re-run auto assign: %v", err)
	}

	items, _ := env.svcs.TransferOrder.ListItems(ctx, testCompany, order.ID)
	var total float64
	for _, item := range items {
		total += item.Quantity
	}
	if total != 10 {
		t.Errorf("Expected total assigned to stay at requirement 10, got %.1f", total)
	}
}

func TestShortageWebhookSentAfterCommit(t *testing.T) {
	db := testutil.SetupTestDB(t)

	events := make(chan notify.Event, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev notify.Event
		json.NewDecoder(r.Body).Decode(&ev)
		events <- ev
	}))
	defer srv.Close()

	svcs := NewServices(repository.NewRepositories(db), db, nil, notify.NewClient(srv.URL))
	env := &allocEnv{db: db, svcs: svcs}

	testutil.SeedCompany(t, db, testCompany, "Test Co")
	testutil.SeedLocation(t, db, testCompany, "loc-wh", "WH1", entity.LocationTypeWarehouse)
	testutil.SeedLocation(t, db, testCompany, "loc-site", "SITE1", entity.LocationTypeSite)
	testutil.SeedPart(t, db, testCompany, "part-p", "P-100")
	bp := env.seedBlueprint(t)

	expA := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	env.seedLotInventory(t, "lot-a", "LOT-A", &expA, "loc-wh", 3)

	ctx := context.Background()
	order, err := env.svcs.TransferOrder.Create(ctx, testCompany, "user-1", &CreateTransferOrderRequest{
		FromLocationID: "loc-wh",
		ToLocationID:   "loc-site",
		BlueprintID:    &bp.ID,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// 事件在事务提交之后才发出，此刻订单必须已可读
	select {
	case ev := <-events:
		if ev.Type != notify.EventShortage {
			t.Errorf("Expected shortage event, got %s", ev.Type)
		}
		if ev.OrderNumber != order.OrderNumber {
			t.Errorf("Expected event for %s, got %s", order.OrderNumber, ev.OrderNumber)
		}
		if ev.Quantity != 7 {
			t.Errorf("Expected shortage of 7, got %.1f", ev.Quantity)
		}
		if _, err := env.svcs.TransferOrder.Get(ctx, testCompany, order.ID); err != nil {
			t.Errorf("Order must be committed before the event fires: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Expected a shortage webhook, got none")
	}
}

func TestManualAssignClampsToRemainingNeed(t *testing.T) {
	env := setupAllocTest(t)
	ctx := context.Background()
	bp := env.seedBlueprint(t)

	expA := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expB := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	env.seedLotInventory(t, "lot-a", "LOT-A", &expA, "loc-wh", 4)
	env.seedLotInventory(t, "lot-b", "LOT-B", &expB, "loc-wh", 10)

	order, err := env.svcs.TransferOrder.Create(ctx, testCompany, "user-1", &CreateTransferOrderRequest{
		FromLocationID: "loc-wh",
		ToLocationID:   "loc-site",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	env.db.Model(&entity.TransferOrder{}).Where("id = ?", order.ID).Update("blueprint_id", bp.ID)

	applied, err := env.svcs.Allocation.ManualAssign(ctx, testCompany, order.ID, "bpi-p", "inv-lot-a", 4)
	if err != nil {
		t.Fatalf("first manual assign: %v", err)
	}
	if applied != 4 {
		t.Fatalf("Expected applied 4, got %.1f", applied)
	}

	// 剩余需求6，请求8被钳制
	applied, err = env.svcs.Allocation.ManualAssign(ctx, testCompany, order.ID, "bpi-p", "inv-lot-b", 8)
	if err != nil {
		t.Fatalf("second manual assign: %v", err)
	}
	if applied != 6 {
		t.Errorf("Expected applied clamped to 6, got %.1f", applied)
	}

	// 需求已满足
	_, err = env.svcs.Allocation.ManualAssign(ctx, testCompany, order.ID, "bpi-p", "inv-lot-b", 1)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Expected conflict when requirement satisfied, got %v", err)
	}
}

func TestManualAssignRejectsNonInteger(t *testing.T) {
	env := setupAllocTest(t)
	ctx := context.Background()

	_, err := env.svcs.Allocation.ManualAssign(ctx, testCompany, "any", "any", "any", 2.5)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for 2.5, got %v", err)
	}
	_, err = env.svcs.Allocation.ManualAssign(ctx, testCompany, "any", "any", "any", -1)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for -1, got %v", err)
	}
}

func TestManualAssignLocationMismatch(t *testing.T) {
	env := setupAllocTest(t)
	ctx := context.Background()
	bp := env.seedBlueprint(t)

	// 库存在loc-site，订单发货地点是loc-wh
	expA := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	env.seedLotInventory(t, "lot-a", "LOT-A", &expA, "loc-site", 4)

	order, err := env.svcs.TransferOrder.Create(ctx, testCompany, "user-1", &CreateTransferOrderRequest{
		FromLocationID: "loc-wh",
		ToLocationID:   "loc-site",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	env.db.Model(&entity.TransferOrder{}).Where("id = ?", order.ID).Update("blueprint_id", bp.ID)

	_, err = env.svcs.Allocation.ManualAssign(ctx, testCompany, order.ID, "bpi-p", "inv-lot-a", 2)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Expected location-mismatch conflict, got %v", err)
	}

	// 无副作用
	inv := env.inventory(t, "inv-lot-a")
	if inv.QuantityAvailable != 4 || inv.QuantityReserved != 0 {
		t.Errorf("Expected inventory untouched after mismatch, got %.1f/%.1f",
			inv.QuantityAvailable, inv.QuantityReserved)
	}
	items, _ := env.svcs.TransferOrder.ListItems(ctx, testCompany, order.ID)
	if len(items) != 0 {
		t.Errorf("Expected no order items after mismatch, got %d", len(items))
	}
}

func TestAutoAssignCapturesSerialNumber(t *testing.T) {
	env := setupAllocTest(t)
	ctx := context.Background()
	bp := env.seedBlueprint(t)

	expA := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	env.seedLotInventory(t, "lot-a", "LOT-A", &expA, "loc-wh", 10)

	serial := &entity.Serial{
		ID:           "ser-1",
		CompanyID:    testCompany,
		PartID:       "part-p",
		SerialNumber: "SN-ALLOC-9",
		Status:       entity.SerialStatusInStock,
	}
	if err := env.db.Create(serial).Error; err != nil {
		t.Fatalf("seed serial: %v", err)
	}
	if err := env.db.Model(&entity.Inventory{}).
		Where("id = ?", "inv-lot-a").
		Update("serial_id", serial.ID).Error; err != nil {
		t.Fatalf("attach serial to inventory: %v", err)
	}

	order, err := env.svcs.TransferOrder.Create(ctx, testCompany, "user-1", &CreateTransferOrderRequest{
		FromLocationID: "loc-wh",
		ToLocationID:   "loc-site",
		BlueprintID:    &bp.ID,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	items, _ := env.svcs.TransferOrder.ListItems(ctx, testCompany, order.ID)
	if len(items) != 1 {
		t.Fatalf("Expected 1 order item, got %d", len(items))
	}
	if items[0].SerialNumber != "SN-ALLOC-9" {
		t.Errorf("Expected serial carried onto order line, got %q", items[0].SerialNumber)
	}
	if items[0].LotNumber != "LOT-A" {
		t.Errorf("Expected lot still captured alongside serial, got %q", items[0].LotNumber)
	}
}

func TestAutoAssignCreatesLoadoutUsage(t *testing.T) {
	env := setupAllocTest(t)
	ctx := context.Background()
	bp := env.seedBlueprint(t)

	expA := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	env.seedLotInventory(t, "lot-a", "LOT-A", &expA, "loc-wh", 10)

	order, err := env.svcs.TransferOrder.Create(ctx, testCompany, "user-1", &CreateTransferOrderRequest{
		FromLocationID: "loc-wh",
		ToLocationID:   "loc-site",
		BlueprintID:    &bp.ID,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.LoadoutID == nil {
		t.Fatal("Expected loadout resolved at creation")
	}

	lo, err := env.svcs.Loadout.Get(ctx, testCompany, *order.LoadoutID)
	if err != nil {
		t.Fatalf("get loadout: %v", err)
	}
	if lo.SerialNumber != "KIT-001" {
		t.Errorf("Expected serial KIT-001, got %s", lo.SerialNumber)
	}

	var usages []entity.LoadoutLot
	env.db.Where("loadout_id = ?", lo.ID).Find(&usages)
	if len(usages) != 1 || usages[0].QuantityUsed != 10 {
		t.Errorf("Expected one loadout usage of 10, got %+v", usages)
	}
	if usages[0].OrderNumber != order.OrderNumber {
		t.Errorf("Expected usage tagged with order number %s, got %s", order.OrderNumber, usages[0].OrderNumber)
	}
}
