package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/warebit/warebit/internal/wms/entity"
	"github.com/warebit/warebit/internal/wms/repository"
	"github.com/warebit/warebit/internal/wms/testutil"
	"gorm.io/gorm"
)

func setupReceivingTest(t *testing.T) (*gorm.DB, *Services) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svcs := NewServices(repository.NewRepositories(db), db, nil, nil)

	testutil.SeedCompany(t, db, testCompany, "Test Co")
	testutil.SeedLocation(t, db, testCompany, "loc-wh", "WH1", entity.LocationTypeWarehouse)
	testutil.SeedPart(t, db, testCompany, "part-p", "P-100")
	return db, svcs
}

func findInventory(t *testing.T, db *gorm.DB, partID string) *entity.Inventory {
	t.Helper()
	var inv entity.Inventory
	if err := db.Where("company_id = ? AND part_id = ?", testCompany, partID).First(&inv).Error; err != nil {
		t.Fatalf("load inventory for %s: %v", partID, err)
	}
	return &inv
}

func TestCompleteReceivingPostsInventory(t *testing.T) {
	db, svcs := setupReceivingTest(t)
	ctx := context.Background()

	session, err := svcs.Receiving.Create(ctx, testCompany, "user-1", &CreateReceivingRequest{
		LocationID: "loc-wh",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.ReceivingNumber != "RCV-0001" {
		t.Errorf("Expected RCV-0001, got %s", session.ReceivingNumber)
	}

	exp := time.Date(2027, 5, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svcs.Receiving.AddItem(ctx, testCompany, session.ID, &AddItemRequest{
		PartID:         "part-p",
		LotNumber:      "L1",
		Quantity:       5,
		ExpirationDate: &exp,
	}); err != nil {
		t.Fatalf("add item: %v", err)
	}

	done, err := svcs.Receiving.Complete(ctx, testCompany, "user-2", session.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != entity.ReceivingStatusCompleted {
		t.Errorf("Expected completed status, got %s", done.Status)
	}
	if done.CompletedAt == nil || done.CompletedBy == nil || *done.CompletedBy != "user-2" {
		t.Errorf("Expected completion stamp by user-2, got %+v", done)
	}

	var lot entity.Lot
	if err := db.Where("company_id = ? AND part_id = ? AND lot_number = ?",
		testCompany, "part-p", "L1").First(&lot).Error; err != nil {
		t.Fatalf("Expected lot L1 created: %v", err)
	}
	if lot.ExpirationDate == nil || !lot.ExpirationDate.Equal(exp) {
		t.Errorf("Expected expiration carried onto lot, got %v", lot.ExpirationDate)
	}

	inv := findInventory(t, db, "part-p")
	if inv.QuantityOnHand != 5 || inv.QuantityAvailable != 5 {
		t.Errorf("Expected on_hand=5 available=5, got %.1f/%.1f", inv.QuantityOnHand, inv.QuantityAvailable)
	}
	if inv.LotID == nil || *inv.LotID != lot.ID {
		t.Errorf("Expected inventory keyed to lot %s", lot.ID)
	}
	if inv.LocationID != "loc-wh" {
		t.Errorf("Expected inventory at session location, got %s", inv.LocationID)
	}
}

func TestCompleteReceivingIsIdempotent(t *testing.T) {
	db, svcs := setupReceivingTest(t)
	ctx := context.Background()

	session, _ := svcs.Receiving.Create(ctx, testCompany, "user-1", &CreateReceivingRequest{LocationID: "loc-wh"})
	svcs.Receiving.AddItem(ctx, testCompany, session.ID, &AddItemRequest{
		PartID: "part-p", LotNumber: "L1", Quantity: 5,
	})

	if _, err := svcs.Receiving.Complete(ctx, testCompany, "user-1", session.ID); err != nil {
		t.Fatalf("first complete: %v", err)
	}

	// 二次完成必须拒绝且不重复过账
	if _, err := svcs.Receiving.Complete(ctx, testCompany, "user-1", session.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("Expected conflict on second complete, got %v", err)
	}

	inv := findInventory(t, db, "part-p")
	if inv.QuantityOnHand != 5 {
		t.Errorf("Expected inventory unchanged at 5, got %.1f", inv.QuantityOnHand)
	}
}

func TestCompleteReceivingEmptySession(t *testing.T) {
	_, svcs := setupReceivingTest(t)
	ctx := context.Background()

	session, _ := svcs.Receiving.Create(ctx, testCompany, "user-1", &CreateReceivingRequest{LocationID: "loc-wh"})
	if _, err := svcs.Receiving.Complete(ctx, testCompany, "user-1", session.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for empty session, got %v", err)
	}
}

func TestCompleteReceivingMergesExistingInventory(t *testing.T) {
	db, svcs := setupReceivingTest(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		session, _ := svcs.Receiving.Create(ctx, testCompany, "user-1", &CreateReceivingRequest{LocationID: "loc-wh"})
		svcs.Receiving.AddItem(ctx, testCompany, session.ID, &AddItemRequest{
			PartID: "part-p", LotNumber: "L1", Quantity: 3,
		})
		if _, err := svcs.Receiving.Complete(ctx, testCompany, "user-1", session.ID); err != nil {
			t.Fatalf("complete pass %d: %v", i, err)
		}
	}

	// 同批次同地点复用同一台账行
	var count int64
	db.Model(&entity.Inventory{}).Where("company_id = ? AND part_id = ?", testCompany, "part-p").Count(&count)
	if count != 1 {
		t.Fatalf("Expected single inventory row, got %d", count)
	}
	inv := findInventory(t, db, "part-p")
	if inv.QuantityOnHand != 6 || inv.QuantityAvailable != 6 {
		t.Errorf("Expected merged quantities 6/6, got %.1f/%.1f", inv.QuantityOnHand, inv.QuantityAvailable)
	}

	var lotCount int64
	db.Model(&entity.Lot{}).Where("company_id = ? AND lot_number = ?", testCompany, "L1").Count(&lotCount)
	if lotCount != 1 {
		t.Errorf("Expected lot L1 reused, got %d rows", lotCount)
	}
}

func TestCompleteReceivingSynthesizesLotNumber(t *testing.T) {
	db, svcs := setupReceivingTest(t)
	ctx := context.Background()

	session, _ := svcs.Receiving.Create(ctx, testCompany, "user-1", &CreateReceivingRequest{LocationID: "loc-wh"})
	svcs.Receiving.AddItem(ctx, testCompany, session.ID, &AddItemRequest{
		PartID: "part-p", Quantity: 2,
	})
	if _, err := svcs.Receiving.Complete(ctx, testCompany, "user-1", session.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	var lot entity.Lot
	if err := db.Where("company_id = ? AND part_id = ?", testCompany, "part-p").First(&lot).Error; err != nil {
		t.Fatalf("Expected synthesized lot: %v", err)
	}
	if lot.LotNumber == "" {
		t.Error("Expected non-empty synthesized lot number")
	}
}

func TestCompleteReceivingTracksSerials(t *testing.T) {
	db, svcs := setupReceivingTest(t)
	ctx := context.Background()

	session, _ := svcs.Receiving.Create(ctx, testCompany, "user-1", &CreateReceivingRequest{LocationID: "loc-wh"})
	svcs.Receiving.AddItem(ctx, testCompany, session.ID, &AddItemRequest{
		PartID: "part-p", LotNumber: "L1", SerialNumber: "SN-001", Quantity: 1,
	})
	if _, err := svcs.Receiving.Complete(ctx, testCompany, "user-1", session.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	var serial entity.Serial
	if err := db.Where("company_id = ? AND serial_number = ?", testCompany, "SN-001").First(&serial).Error; err != nil {
		t.Fatalf("Expected serial created: %v", err)
	}
	if serial.Status != entity.SerialStatusInStock {
		t.Errorf("Expected serial in stock, got %s", serial.Status)
	}
}

func TestCompleteReceivingRollsUpPurchaseOrder(t *testing.T) {
	db, svcs := setupReceivingTest(t)
	ctx := context.Background()

	po, err := svcs.PurchaseOrder.Create(ctx, testCompany, "buyer", &CreatePurchaseOrderRequest{
		Lines: []CreatePurchaseOrderLineRequest{
			{PartID: "part-p", QuantityOrdered: 5},
		},
	})
	if err != nil {
		t.Fatalf("create po: %v", err)
	}
	lineID := po.Lines[0].ID

	session, _ := svcs.Receiving.Create(ctx, testCompany, "user-1", &CreateReceivingRequest{
		PurchaseOrderID: &po.ID,
		LocationID:      "loc-wh",
	})
	if session.PONumber != po.OrderNumber {
		t.Errorf("Expected session tagged with %s, got %s", po.OrderNumber, session.PONumber)
	}

	svcs.Receiving.AddItem(ctx, testCompany, session.ID, &AddItemRequest{
		PartID: "part-p", POLineID: &lineID, LotNumber: "L1", Quantity: 5,
	})
	if _, err := svcs.Receiving.Complete(ctx, testCompany, "user-1", session.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	var line entity.PurchaseOrderLine
	db.Where("id = ?", lineID).First(&line)
	if line.QuantityReceived != 5 || line.Status != entity.POLineStatusReceived {
		t.Errorf("Expected line fully received, got qty %.1f status %s", line.QuantityReceived, line.Status)
	}

	refreshed, _ := svcs.PurchaseOrder.Get(ctx, testCompany, po.ID)
	if refreshed.Status != entity.POStatusReceived {
		t.Errorf("Expected PO header received, got %s", refreshed.Status)
	}
}

func TestCompleteReceivingPartialPurchaseOrder(t *testing.T) {
	db, svcs := setupReceivingTest(t)
	ctx := context.Background()

	testutil.SeedPart(t, db, testCompany, "part-q", "Q-200")

	po, err := svcs.PurchaseOrder.Create(ctx, testCompany, "buyer", &CreatePurchaseOrderRequest{
		Lines: []CreatePurchaseOrderLineRequest{
			{PartID: "part-p", QuantityOrdered: 10},
			{PartID: "part-q", QuantityOrdered: 4},
		},
	})
	if err != nil {
		t.Fatalf("create po: %v", err)
	}
	lineID := po.Lines[0].ID

	session, _ := svcs.Receiving.Create(ctx, testCompany, "user-1", &CreateReceivingRequest{
		PurchaseOrderID: &po.ID,
		LocationID:      "loc-wh",
	})
	svcs.Receiving.AddItem(ctx, testCompany, session.ID, &AddItemRequest{
		PartID: "part-p", POLineID: &lineID, LotNumber: "L1", Quantity: 4,
	})
	if _, err := svcs.Receiving.Complete(ctx, testCompany, "user-1", session.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	var line entity.PurchaseOrderLine
	db.Where("id = ?", lineID).First(&line)
	if line.Status != entity.POLineStatusPartial {
		t.Errorf("Expected partial line, got %s", line.Status)
	}

	refreshed, _ := svcs.PurchaseOrder.Get(ctx, testCompany, po.ID)
	if refreshed.Status != entity.POStatusPartial {
		t.Errorf("Expected PO header partial, got %s", refreshed.Status)
	}
}

func TestCreateReceivingUnknownPOReference(t *testing.T) {
	_, svcs := setupReceivingTest(t)
	ctx := context.Background()

	missing := "no-such-po"
	_, err := svcs.Receiving.Create(ctx, testCompany, "user-1", &CreateReceivingRequest{
		PurchaseOrderID: &missing,
		LocationID:      "loc-wh",
	})
	if !errors.Is(err, ErrReference) {
		t.Errorf("Expected reference error for unknown PO id, got %v", err)
	}

	// 只给单号则允许事后对账
	session, err := svcs.Receiving.Create(ctx, testCompany, "user-1", &CreateReceivingRequest{
		PONumber:   "PO-UNKNOWN",
		LocationID: "loc-wh",
	})
	if err != nil {
		t.Fatalf("create with loose po number: %v", err)
	}
	if session.PurchaseOrderID != nil {
		t.Error("Expected no PO linkage for unknown number")
	}
	if session.PONumber != "PO-UNKNOWN" {
		t.Errorf("Expected number kept for reconciliation, got %s", session.PONumber)
	}
}

func TestReceiveLineDirectEntry(t *testing.T) {
	_, svcs := setupReceivingTest(t)
	ctx := context.Background()

	po, err := svcs.PurchaseOrder.Create(ctx, testCompany, "buyer", &CreatePurchaseOrderRequest{
		Lines: []CreatePurchaseOrderLineRequest{
			{PartID: "part-p", QuantityOrdered: 6},
		},
	})
	if err != nil {
		t.Fatalf("create po: %v", err)
	}
	lineID := po.Lines[0].ID

	line, err := svcs.PurchaseOrder.ReceiveLine(ctx, testCompany, lineID, 2)
	if err != nil {
		t.Fatalf("receive line: %v", err)
	}
	if line.QuantityReceived != 2 || line.Status != entity.POLineStatusPartial {
		t.Errorf("Expected 2 received partial, got %.1f %s", line.QuantityReceived, line.Status)
	}

	line, err = svcs.PurchaseOrder.ReceiveLine(ctx, testCompany, lineID, 4)
	if err != nil {
		t.Fatalf("receive remainder: %v", err)
	}
	if line.Status != entity.POLineStatusReceived {
		t.Errorf("Expected received after cumulative 6, got %s", line.Status)
	}

	if _, err := svcs.PurchaseOrder.ReceiveLine(ctx, testCompany, lineID, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for zero quantity, got %v", err)
	}
}

func TestAddItemAfterCompletionRejected(t *testing.T) {
	_, svcs := setupReceivingTest(t)
	ctx := context.Background()

	session, _ := svcs.Receiving.Create(ctx, testCompany, "user-1", &CreateReceivingRequest{LocationID: "loc-wh"})
	svcs.Receiving.AddItem(ctx, testCompany, session.ID, &AddItemRequest{
		PartID: "part-p", LotNumber: "L1", Quantity: 1,
	})
	if _, err := svcs.Receiving.Complete(ctx, testCompany, "user-1", session.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	_, err := svcs.Receiving.AddItem(ctx, testCompany, session.ID, &AddItemRequest{
		PartID: "part-p", LotNumber: "L2", Quantity: 1,
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Expected conflict adding to completed session, got %v", err)
	}
}
