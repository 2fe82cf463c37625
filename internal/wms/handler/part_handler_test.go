package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/warebit/warebit/internal/wms/repository"
	"github.com/warebit/warebit/internal/wms/service"
	"github.com/warebit/warebit/internal/wms/testutil"
	"gorm.io/gorm"
)

func setupPartRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svcs := service.NewServices(repository.NewRepositories(db), db, nil, nil)
	h := NewPartHandler(svcs.Part)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	parts := api.Group("/parts")
	{
		parts.GET("", h.List)
		parts.GET("/:id", h.Get)
		parts.POST("", h.Create)
		parts.PUT("/:id", h.Update)
	}

	testutil.SeedCompany(t, db, "test-company-001", "Test Co")
	return r, db
}

func TestPartCreateAndGet(t *testing.T) {
	r, _ := setupPartRouter(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(r, "POST", "/api/v1/parts", map[string]interface{}{
		"part_number": "P-100",
		"name":        "Sensor Module",
		"gtin":        "00312345678906",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	partID := data["id"].(string)
	if data["part_number"] != "P-100" {
		t.Errorf("Expected part_number P-100, got %v", data["part_number"])
	}
	// 批次跟踪缺省开启
	if data["is_lot_tracked"] != true {
		t.Errorf("Expected lot tracking on by default, got %v", data["is_lot_tracked"])
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/parts/"+partID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	resp = testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["name"] != "Sensor Module" {
		t.Errorf("Unexpected part payload: %v", resp["data"])
	}
}

func TestPartCreateValidation(t *testing.T) {
	r, _ := setupPartRouter(t)

	w := testutil.DoRequest(r, "POST", "/api/v1/parts", map[string]interface{}{
		"name": "Missing Number",
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing part_number, got %d", w.Code)
	}
}

func TestPartListRequiresToken(t *testing.T) {
	r, _ := setupPartRouter(t)

	w := testutil.DoRequest(r, "GET", "/api/v1/parts", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	// 缺company_id声明的令牌同样拒绝
	w = testutil.DoRequest(r, "GET", "/api/v1/parts", nil,
		testutil.GenerateTestToken("u1", "No Scope", "", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for token without company scope, got %d", w.Code)
	}
}

func TestPartTenantIsolation(t *testing.T) {
	r, db := setupPartRouter(t)
	testutil.SeedCompany(t, db, "other-co", "Other Co")
	testutil.SeedPart(t, db, "other-co", "part-foreign", "F-1")

	token := testutil.DefaultTestToken()
	w := testutil.DoRequest(r, "GET", "/api/v1/parts/part-foreign", nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 across tenants, got %d", w.Code)
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/parts", nil, token)
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 0 {
		t.Errorf("Expected empty list for own tenant, got %d items", len(items))
	}
}
