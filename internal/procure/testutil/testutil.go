package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mantispro/satinalma/internal/middleware"
	"github.com/mantispro/satinalma/internal/procure/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_satinalma"
	JWTSecret  = "satinalma-test-jwt-secret"
)

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB opens a connection against an isolated, per-test schema that
// is dropped on cleanup. Tests skip when postgres is unreachable.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "postgres")
	dbname := getEnv("DB_NAME", "satinalma")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("postgres not available, skipping: %v", err)
	}
	if err := setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName)).Error; err != nil {
		t.Skipf("postgres not available, skipping: %v", err)
	}
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// search_path in the DSN so every pooled connection uses the schema.
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.DocumentSequence{},
		&entity.Company{},
		&entity.Request{},
		&entity.RequestItem{},
		&entity.RFQ{},
		&entity.RFQItem{},
		&entity.Quote{},
		&entity.QuoteItem{},
		&entity.PurchaseOrder{},
		&entity.PurchaseOrderItem{},
		&entity.Shipment{},
		&entity.ShipmentItem{},
		&entity.Invoice{},
		&entity.Payment{},
		&entity.ProformaInvoice{},
		&entity.ProformaInvoiceItem{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router.
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group guarded by the test JWT middleware.
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken mints a valid token for the test secret.
func GenerateTestToken(userID, name, email string, roles []string) string {
	if roles == nil {
		roles = []string{}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"uid":   userID,
		"name":  name,
		"email": email,
		"roles": roles,
		"iss":   "satinalma",
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
		"jti":   fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for an admin test user.
func DefaultTestToken() string {
	return GenerateTestToken(
		"test-user-001",
		"Test Admin",
		"admin@test.com",
		[]string{"procurement_admin"},
	)
}

// DoRequest executes an HTTP request against the test router.
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map.
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// NewID returns an id in the entity key format.
func NewID() string {
	return uuid.New().String()[:32]
}

// SeedCompany creates a supplier in the directory.
func SeedCompany(t *testing.T, db *gorm.DB, code, name string) *entity.Company {
	t.Helper()
	company := &entity.Company{
		ID:         NewID(),
		Code:       code,
		Name:       name,
		IsSupplier: true,
		Status:     "active",
	}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("Failed to seed company: %v", err)
	}
	return company
}

// SeedRequest creates a request with the given status and itemCount line
// items. The request number doubles as its tracking id.
func SeedRequest(t *testing.T, db *gorm.DB, number string, status entity.RequestStatus, itemCount int) *entity.Request {
	t.Helper()
	request := &entity.Request{
		ID:            NewID(),
		RequestNumber: number,
		Title:         "Test request " + number,
		Status:        status,
		TrackingID:    number,
		TrackingPhase: entity.TrackingPhaseRequest,
		RequestedBy:   "test-user-001",
	}
	for i := 0; i < itemCount; i++ {
		request.Items = append(request.Items, entity.RequestItem{
			ID:          NewID(),
			RequestID:   request.ID,
			ProductName: fmt.Sprintf("Widget %d", i+1),
			Quantity:    10,
			Unit:        "pcs",
			SortOrder:   i,
		})
	}
	if err := db.Create(request).Error; err != nil {
		t.Fatalf("Failed to seed request: %v", err)
	}
	return request
}

// SeedRFQ creates an RFQ linked to a request.
func SeedRFQ(t *testing.T, db *gorm.DB, number string, requestID *string, status entity.RFQStatus) *entity.RFQ {
	t.Helper()
	rfq := &entity.RFQ{
		ID:        NewID(),
		RFQNumber: number,
		RequestID: requestID,
		Title:     "Test RFQ " + number,
		Status:    status,
		CreatedBy: "test-user-001",
	}
	if err := db.Create(rfq).Error; err != nil {
		t.Fatalf("Failed to seed rfq: %v", err)
	}
	return rfq
}

// SeedQuote creates a quote with one line at the given unit price.
func SeedQuote(t *testing.T, db *gorm.DB, number, rfqID, supplierID string, status entity.QuoteStatus, quantity, unitPrice float64) *entity.Quote {
	t.Helper()
	lineTotal := quantity * unitPrice
	quote := &entity.Quote{
		ID:          NewID(),
		QuoteNumber: number,
		RFQID:       rfqID,
		SupplierID:  supplierID,
		Status:      status,
		TotalAmount: lineTotal,
		Currency:    "USD",
		ReceivedBy:  "test-user-001",
		Items: []entity.QuoteItem{{
			ID:          NewID(),
			ProductName: "Widget 1",
			Quantity:    quantity,
			Unit:        "pcs",
			UnitPrice:   unitPrice,
			TotalPrice:  lineTotal,
			Currency:    "USD",
		}},
	}
	quote.Items[0].QuoteID = quote.ID
	if err := db.Create(quote).Error; err != nil {
		t.Fatalf("Failed to seed quote: %v", err)
	}
	return quote
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
