package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/warebit/warebit/internal/wms/repository"
	"github.com/warebit/warebit/internal/wms/service"
	"github.com/warebit/warebit/internal/wms/testutil"
)

func setupReceivingRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svcs := service.NewServices(repository.NewRepositories(db), db, nil, nil)
	h := NewReceivingHandler(svcs.Receiving, nil)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	receivings := api.Group("/receivings")
	{
		receivings.POST("", h.Create)
		receivings.GET("/:id", h.Get)
		receivings.GET("/:id/attachment", h.AttachmentURL)
	}

	testutil.SeedCompany(t, db, "test-company-001", "Test Co")
	testutil.SeedLocation(t, db, "test-company-001", "loc-wh", "WH1", "warehouse")
	return r
}

func TestReceivingAttachmentURL(t *testing.T) {
	r := setupReceivingRouter(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(r, "POST", "/api/v1/receivings", map[string]interface{}{
		"location_id": "loc-wh",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	id := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	// 没有附件的会话
	w = testutil.DoRequest(r, "GET", "/api/v1/receivings/"+id+"/attachment", nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for session without attachment, got %d", w.Code)
	}

	// 不存在的会话
	w = testutil.DoRequest(r, "GET", "/api/v1/receivings/no-such-id/attachment", nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", w.Code)
	}
}
