package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"lanka-invoice-api/internal/adapters/storage"
	"lanka-invoice-api/internal/database"
	"lanka-invoice-api/internal/middleware"
	"lanka-invoice-api/internal/repositories/sqlite"
	"lanka-invoice-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const testBaseURL = "https://invoices.example.lk"

type testServer struct {
	router   *gin.Engine
	auth     *middleware.AuthService
	services *services.ServiceContainer
	handlers *Handlers
	tenantID string
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tempDir, err := os.MkdirTemp("", "handlers_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dbConfig := database.DefaultConnectionConfig()
	dbConfig.DatabasePath = filepath.Join(tempDir, "test.db")
	dbConfig.Logger = testLogger()

	cm := database.NewConnectionManager(dbConfig)
	if err := cm.Connect(context.Background()); err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to open database: %v", err)
	}

	t.Cleanup(func() {
		cm.Close()
		os.RemoveAll(tempDir)
	})

	repos := sqlite.NewSQLiteRepositoryManager(cm.GetDB(), nil, testLogger())
	container, err := services.NewServiceContainer(repos, &services.ServiceConfig{
		TrackingSecret: "test-secret",
		PublicBaseURL:  testBaseURL,
		Archive:        storage.NewMemoryStore(),
	}, testLogger())
	if err != nil {
		t.Fatalf("NewServiceContainer() failed: %v", err)
	}

	auth := middleware.NewAuthService(&middleware.AuthConfig{JWTSecret: "jwt-test-secret"}, testLogger())
	routerConfig := &RouterConfig{
		Handlers:    NewHandlers(container, testLogger()),
		AuthService: auth,
		Logger:      testLogger(),
	}

	router := gin.New()
	SetupMiddleware(router, routerConfig)
	SetupRoutes(router, routerConfig)

	return &testServer{
		router:   router,
		auth:     auth,
		services: container,
		handlers: routerConfig.Handlers,
		tenantID: uuid.New().String(),
	}
}

func (s *testServer) token(t *testing.T, tenantID string, roles ...middleware.UserRole) string {
	t.Helper()

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}

	token, err := s.auth.GenerateToken(tenantID, "user-1", "user@example.lk", names)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	return token
}

// do performs a request as an admin of the server's tenant
func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return s.doAs(t, s.token(t, s.tenantID, middleware.RoleAdmin), method, path, body)
}

func (s *testServer) doAs(t *testing.T, token, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	if body == nil {
		return s.send(token, method, path, nil)
	}

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	return s.send(token, method, path, data)
}

// doRaw sends body bytes as they are, e.g. truncated JSON
func (s *testServer) doRaw(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	return s.send(s.token(t, s.tenantID, middleware.RoleAdmin), method, path, body)
}

func (s *testServer) send(token, method, path string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func tenantBody() map[string]interface{} {
	return map[string]interface{}{
		"name":             "Ceylon Spice Traders",
		"business_address": "12 Galle Road, Colombo 03",
		"contact_email":    "accounts@ceylonspice.lk",
		"tin":              "114512345",
		"tax_settings": map[string]interface{}{
			"regime":           "vat",
			"vat_number":       "114512345-7000",
			"sscl_applicable":  true,
			"default_vat_rate": "0.15",
		},
	}
}

func clientBody() map[string]interface{} {
	return map[string]interface{}{
		"name":              "Kandy Hotels PLC",
		"email":             "finance@kandyhotels.lk",
		"registration_type": "vat",
		"tin":               "987654321",
		"vat_number":        "987654321-7000",
	}
}

// lineItems totals 105,000 before tax: 100,000 standard rated and 5,000 zero-rated
func lineItems() []map[string]interface{} {
	return []map[string]interface{}{
		{"description": "Cinnamon sticks 1kg", "quantity": "10", "unit_price": "10000"},
		{"description": "Export freight", "quantity": "1", "unit_price": "5000", "tax_category": "zero-rated"},
	}
}

// seedInvoice registers the tenant and a client and drafts an invoice,
// returning the invoice ID
func (s *testServer) seedInvoice(t *testing.T) string {
	t.Helper()

	expectStatus(t, s.do(t, http.MethodPost, "/api/v1/tenants", tenantBody()), http.StatusCreated)

	w := s.do(t, http.MethodPost, "/api/v1/clients", clientBody())
	expectStatus(t, w, http.StatusCreated)
	var client struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &client)

	w = s.do(t, http.MethodPost, "/api/v1/invoices", map[string]interface{}{
		"client_id":      client.ID,
		"invoice_type":   "tax_invoice",
		"issue_date":     "2024-06-15",
		"date_of_supply": "2024-06-14",
		"line_items":     lineItems(),
	})
	expectStatus(t, w, http.StatusCreated)

	var invoice struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &invoice)
	return invoice.ID
}
