package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/mantispro/satinalma/internal/procure/repository"
	"github.com/mantispro/satinalma/internal/procure/service"
	"github.com/mantispro/satinalma/internal/procure/testutil"
)

func setupRequestTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svc := service.NewServices(db, repos, nil, zap.NewNop())
	h := NewHandlers(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/requests", h.Request.Create)
	api.GET("/requests/:id", h.Request.Get)
	api.POST("/requests/:id/approve", h.Request.Approve)
	api.POST("/requests/:id/reject", h.Request.Reject)

	return db, router
}

func TestRequestCreateAndApprove(t *testing.T) {
	db, router := setupRequestTest(t)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"title":       "Office workstation batch",
		"description": "Q3 hardware refresh",
		"items": []map[string]interface{}{
			{"product_name": "Workstation", "quantity": 12, "unit": "pcs"},
		},
	}
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/requests", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["status"] != string(entity.RequestStatusPending) {
		t.Fatalf("expected pending, got %v", data["status"])
	}
	number := data["request_number"].(string)
	if want := fmt.Sprintf("REQ-%d-001", time.Now().Year()); number != want {
		t.Fatalf("request number = %s, want %s", number, want)
	}
	if data["tracking_id"] != number {
		t.Fatalf("tracking id %v should equal request number %s", data["tracking_id"], number)
	}
	requestID := data["id"].(string)

	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/requests/"+requestID+"/approve", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var stored entity.Request
	db.First(&stored, "id = ?", requestID)
	if stored.Status != entity.RequestStatusApproved {
		t.Fatalf("stored status = %s, want approved", stored.Status)
	}
	if stored.ApprovedBy == nil || stored.ApprovedAt == nil {
		t.Fatal("approval audit fields not set")
	}
}

func TestRequestApproveWithoutItemsFails(t *testing.T) {
	db, router := setupRequestTest(t)
	token := testutil.DefaultTestToken()

	request := testutil.SeedRequest(t, db, "REQ-2025-009", entity.RequestStatusPending, 0)

	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/requests/"+request.ID+"/approve", nil, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["error_code"] != service.CodePreconditionFailed {
		t.Fatalf("error_code = %v, want precondition_failed", data["error_code"])
	}
	if data["entity_id"] != request.ID {
		t.Fatalf("entity_id = %v, want %s", data["entity_id"], request.ID)
	}

	var stored entity.Request
	db.First(&stored, "id = ?", request.ID)
	if stored.Status != entity.RequestStatusPending {
		t.Fatalf("status mutated to %s on a failed approve", stored.Status)
	}
}

func TestRequestEndpointsRequireToken(t *testing.T) {
	_, router := setupRequestTest(t)

	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/requests", map[string]interface{}{
		"title": "no token",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
