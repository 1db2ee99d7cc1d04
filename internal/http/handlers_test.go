package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"kasir/internal/checkout"
	"kasir/internal/domain"
	"kasir/internal/events"
	"kasir/internal/repository"
	"kasir/internal/service"
)

func setupServer(t *testing.T) (*Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	typesRepo := repository.NewMemoryCustomerTypes(store)
	usersRepo := repository.NewMemoryUsers(store)
	txnsRepo := repository.NewMemoryTransactions(store)
	tx := repository.NewMemoryTx(store)

	logger := zerolog.Nop()
	auth := service.NewAuthService(usersRepo, "test-secret", time.Hour)
	productsSvc := service.NewProductService(store)
	typesSvc := service.NewCustomerTypeService(typesRepo)
	txnsSvc := service.NewTransactionService(store, typesRepo, txnsRepo, tx, events.Nop{}, logger)
	reportsSvc := service.NewReportService(txnsRepo, store)
	seedSvc := service.NewSeedService(typesRepo, auth)

	s := NewServer(logger, auth, productsSvc, typesSvc, txnsSvc, reportsSvc, seedSvc, checkout.NewManager())

	// seed defaults and log in as admin
	w := doJSON(t, s, http.MethodPost, "/api/v1/init", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("init code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"username": "admin", "password": "admin123",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login code %v: %s", w.Code, w.Body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, w, &resp)
	return s, resp.Token
}

func doJSON(t *testing.T, s *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body)
	}
}

func createProduct(t *testing.T, s *Server, token, name, sku string, stock int64) domain.Product {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/v1/products", map[string]any{
		"name": name, "sku": sku,
		"price_regular": "10000", "price_sales": "9000", "price_bengkel": "8500",
		"stock": stock, "min_stock": 2,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create product %v: %s", w.Code, w.Body)
	}
	var p domain.Product
	decode(t, w, &p)
	return p
}

func TestAuthFlow(t *testing.T) {
	s, _ := setupServer(t)

	// protected route without token
	w := doJSON(t, s, http.MethodGet, "/api/v1/products", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", w.Code)
	}

	// register a cashier, log in and hit /me
	w = doJSON(t, s, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"username": "budi", "password": "rahasia",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register %v: %s", w.Code, w.Body)
	}
	w = doJSON(t, s, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"username": "budi", "password": "rahasia",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login %v", w.Code)
	}
	var resp struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	decode(t, w, &resp)
	if resp.User.Role != domain.RoleKasir {
		t.Fatalf("expected kasir role, got %s", resp.User.Role)
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/auth/me", nil, resp.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("me %v", w.Code)
	}

	// wrong password
	w = doJSON(t, s, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"username": "budi", "password": "salah",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", w.Code)
	}
}

func TestProductFlow(t *testing.T) {
	s, token := setupServer(t)

	p := createProduct(t, s, token, "Oli Mesin", "OLI-1", 5)

	w := doJSON(t, s, http.MethodGet, "/api/v1/products/"+p.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("get %v", w.Code)
	}

	w = doJSON(t, s, http.MethodPut, "/api/v1/products/"+p.ID, map[string]any{
		"price_sales": "8800", "stock": 9,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update %v: %s", w.Code, w.Body)
	}
	var updated domain.Product
	decode(t, w, &updated)
	if updated.Stock != 9 || updated.Name != "Oli Mesin" {
		t.Fatalf("partial update wrong: %+v", updated)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/products?q=oli", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("list %v", w.Code)
	}

	w = doJSON(t, s, http.MethodDelete, "/api/v1/products/"+p.ID, nil, token)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/products/"+p.ID, nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %v", w.Code)
	}
}

func TestTransactionFlow(t *testing.T) {
	s, token := setupServer(t)
	p := createProduct(t, s, token, "Oli Mesin", "OLI-1", 5)

	// direct submission at the sales tier: 9000*2 with 5% discount
	w := doJSON(t, s, http.MethodPost, "/api/v1/transactions", map[string]any{
		"customer_type":  "sales",
		"items":          []map[string]any{{"product_id": p.ID, "quantity": 2}},
		"payment_method": "tunai",
		"payment_amount": "20000",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create transaction %v: %s", w.Code, w.Body)
	}
	var txn domain.Transaction
	decode(t, w, &txn)
	if txn.TransactionNumber == "" || txn.CashierName != "admin" {
		t.Fatalf("bad transaction: %+v", txn)
	}

	// insufficient payment is rejected
	w = doJSON(t, s, http.MethodPost, "/api/v1/transactions", map[string]any{
		"customer_type":  "regular",
		"items":          []map[string]any{{"product_id": p.ID, "quantity": 1}},
		"payment_method": "tunai",
		"payment_amount": "500",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v: %s", w.Code, w.Body)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/transactions?limit=10", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("list %v", w.Code)
	}
	var list []domain.Transaction
	decode(t, w, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(list))
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/transactions/"+txn.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("get %v", w.Code)
	}
}

func TestCheckoutSessionFlow(t *testing.T) {
	s, token := setupServer(t)
	p := createProduct(t, s, token, "Oli Mesin", "OLI-1", 5)

	w := doJSON(t, s, http.MethodPost, "/api/v1/sessions", nil, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("open session %v: %s", w.Code, w.Body)
	}
	var view checkout.View
	decode(t, w, &view)
	base := "/api/v1/sessions/" + view.ID

	// empty cart cannot be submitted
	w = doJSON(t, s, http.MethodPost, base+"/submit", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on empty submit, got %v", w.Code)
	}

	w = doJSON(t, s, http.MethodPost, base+"/items", map[string]any{
		"product_id": p.ID, "quantity": 2,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("add item %v: %s", w.Code, w.Body)
	}

	w = doJSON(t, s, http.MethodPut, base+"/customer-type", map[string]any{
		"customer_type": "bengkel",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("set customer type %v", w.Code)
	}

	w = doJSON(t, s, http.MethodPut, base+"/payment", map[string]any{
		"method": "tunai", "amount": "20000",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("set payment %v", w.Code)
	}
	decode(t, w, &view)
	if !view.Decision.Allowed {
		t.Fatalf("expected checkout allowed: %+v", view.Decision)
	}

	w = doJSON(t, s, http.MethodPost, base+"/submit", nil, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit %v: %s", w.Code, w.Body)
	}
	var txn domain.Transaction
	decode(t, w, &txn)
	if txn.CustomerType != "bengkel" {
		t.Fatalf("wrong customer type: %s", txn.CustomerType)
	}

	// cart reset after success
	w = doJSON(t, s, http.MethodGet, base, nil, token)
	decode(t, w, &view)
	if len(view.Lines) != 0 || view.CustomerType != "regular" {
		t.Fatalf("session not reset: %+v", view)
	}

	// stock was decremented by the submission
	w = doJSON(t, s, http.MethodGet, "/api/v1/products/"+p.ID, nil, token)
	var after domain.Product
	decode(t, w, &after)
	if after.Stock != 3 {
		t.Fatalf("stock not decremented: %d", after.Stock)
	}

	w = doJSON(t, s, http.MethodDelete, base, nil, token)
	if w.Code != http.StatusNoContent {
		t.Fatalf("close %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, base, nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after close, got %v", w.Code)
	}
}

func TestReportsAndDashboard(t *testing.T) {
	s, token := setupServer(t)
	p := createProduct(t, s, token, "Oli Mesin", "OLI-1", 5)

	w := doJSON(t, s, http.MethodPost, "/api/v1/transactions", map[string]any{
		"customer_type":  "regular",
		"items":          []map[string]any{{"product_id": p.ID, "quantity": 1}},
		"payment_method": "tunai",
		"payment_amount": "10000",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create transaction %v: %s", w.Code, w.Body)
	}

	today := time.Now().UTC().Format("2006-01-02")
	w = doJSON(t, s, http.MethodGet, "/api/v1/reports/daily?date="+today, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("daily report %v: %s", w.Code, w.Body)
	}
	var report domain.ReportSummary
	decode(t, w, &report)
	if report.TotalTransactions != 1 {
		t.Fatalf("wrong report: %+v", report)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/reports/daily?date=bad", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %v", w.Code)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/dashboard/stats", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard %v", w.Code)
	}
	var stats domain.DashboardStats
	decode(t, w, &stats)
	if stats.TodayTransactions != 1 || stats.TotalProducts != 1 {
		t.Fatalf("wrong stats: %+v", stats)
	}
}

func TestInitIdempotent(t *testing.T) {
	s, _ := setupServer(t)
	// setup already seeded once
	w := doJSON(t, s, http.MethodPost, "/api/v1/init", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("init %v", w.Code)
	}
	var resp struct {
		Seeded bool `json:"seeded"`
	}
	decode(t, w, &resp)
	if resp.Seeded {
		t.Fatalf("expected second init to be a no-op")
	}
}
