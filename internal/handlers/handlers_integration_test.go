package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backoffice/internal/handlers"
	"backoffice/internal/middleware"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/services"
	"backoffice/pkg/upload"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

// setupApp wires the full application against an in-memory SQLite
// database, mirroring main.go without the broker and cache.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Customer{}, &models.Product{}, &models.Order{}, &models.OrderItem{}, &models.OrderCounter{}))

	customerRepo := repositories.NewGORMCustomerRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	authService := services.NewAuthService(customerRepo, "test_jwt_secret")
	catalogService := services.NewCatalogService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, nil)
	customerService := services.NewCustomerService(customerRepo, orderRepo)

	uploads, err := upload.NewStorage(t.TempDir())
	require.NoError(t, err)

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(catalogService, uploads)
	orderHandler := handlers.NewOrderHandler(orderService)
	customerHandler := handlers.NewCustomerHandler(customerService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterPublicRoutes(apiV1)
	protected := apiV1.Group("", middleware.AuthRequired(authService))
	orderHandler.RegisterRoutes(protected)
	staff := protected.Group("", middleware.StaffOnly())
	orderHandler.RegisterStaffRoutes(staff)
	customerHandler.RegisterRoutes(staff)
	productHandler.RegisterStaffRoutes(staff)

	return &testEnv{app: app, db: db}
}

// seedAccount inserts an account directly and returns a login token for it.
func (env *testEnv) seedAccount(t *testing.T, name, email, role string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	customer := &models.Customer{
		ID:       uuid.New().String(),
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	require.NoError(t, env.db.Create(customer).Error)

	body := env.request(t, http.MethodPost, "/api/v1/auth/login",
		map[string]any{"email": email, "password": "password123"}, "", http.StatusOK)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (env *testEnv) seedProduct(t *testing.T, title string, price *float64) models.Product {
	t.Helper()
	product := models.Product{ID: uuid.New().String(), Title: title, Price: price}
	require.NoError(t, env.db.Create(&product).Error)
	return product
}

// request performs an authenticated JSON request and decodes the response
// body after asserting the status code.
func (env *testEnv) request(t *testing.T, method, url string, payload any, token string, wantStatus int) map[string]any {
	t.Helper()

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, url, reqBody)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "unexpected status for %s %s: %s", method, url, raw)

	var body map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return body
}

func floatPtr(v float64) *float64 { return &v }

func TestOrderCreationLifecycle(t *testing.T) {
	env := setupApp(t)
	buyerToken := env.seedAccount(t, "Buyer One", "buyer@example.com", models.RoleCustomer)
	otherToken := env.seedAccount(t, "Buyer Two", "other@example.com", models.RoleCustomer)
	staffToken := env.seedAccount(t, "Back Office", "staff@example.com", models.RoleStaff)

	stand := env.seedProduct(t, "Laptop Stand", floatPtr(10))
	keyboard := env.seedProduct(t, "Keyboard", floatPtr(25))
	retired := env.seedProduct(t, "Retired Gadget", nil)

	orderReq := map[string]any{
		"address": "12 Baker Street",
		"payment": "card",
		"phone":   "+1234567890",
		"email":   "buyer@example.com",
		"items":   []string{stand.ID, keyboard.ID},
		"total":   34,
	}

	// Claimed total disagrees with the catalog by one unit.
	body := env.request(t, http.MethodPost, "/api/v1/orders", orderReq, buyerToken, http.StatusBadRequest)
	assert.Contains(t, body["message"], "total")

	// Correct total persists the recomputed amount and the first order
	// number in sequence.
	orderReq["total"] = 35
	body = env.request(t, http.MethodPost, "/api/v1/orders", orderReq, buyerToken, http.StatusCreated)
	assert.Equal(t, float64(35), body["totalAmount"])
	assert.Equal(t, float64(1), body["orderNumber"])
	assert.Equal(t, "created", body["status"])

	// Unsellable products always reject, whatever the claimed total.
	badReq := map[string]any{
		"address": "12 Baker Street",
		"payment": "card",
		"phone":   "+1234567890",
		"email":   "buyer@example.com",
		"items":   []string{retired.ID},
		"total":   0,
	}
	body = env.request(t, http.MethodPost, "/api/v1/orders", badReq, buyerToken, http.StatusBadRequest)
	assert.Contains(t, body["message"], retired.ID)

	// Bad phone short-circuits before any write.
	orderReq["phone"] = "123"
	env.request(t, http.MethodPost, "/api/v1/orders", orderReq, buyerToken, http.StatusBadRequest)

	// The owner and staff can read the order; another customer gets 404,
	// not 403.
	env.request(t, http.MethodGet, "/api/v1/orders/1", nil, buyerToken, http.StatusOK)
	env.request(t, http.MethodGet, "/api/v1/orders/1", nil, staffToken, http.StatusOK)
	env.request(t, http.MethodGet, "/api/v1/orders/1", nil, otherToken, http.StatusNotFound)

	// Customer aggregates follow the order history.
	var owner models.Customer
	require.NoError(t, env.db.First(&owner, "email = ?", "buyer@example.com").Error)
	assert.Equal(t, 35.0, owner.TotalAmount)
	assert.Equal(t, 1, owner.OrderCount)
	require.NotNil(t, owner.LastOrderID)

	// Status transitions: staff only, closed set.
	env.request(t, http.MethodPatch, "/api/v1/orders/1/status",
		map[string]any{"status": "completed"}, staffToken, http.StatusOK)
	env.request(t, http.MethodPatch, "/api/v1/orders/1/status",
		map[string]any{"status": "shipped"}, staffToken, http.StatusBadRequest)
	env.request(t, http.MethodPatch, "/api/v1/orders/1/status",
		map[string]any{"status": "completed"}, buyerToken, http.StatusForbidden)
	env.request(t, http.MethodPatch, "/api/v1/orders/999/status",
		map[string]any{"status": "completed"}, staffToken, http.StatusNotFound)
}

func createOrder(t *testing.T, env *testEnv, token string, items []string, total float64) {
	t.Helper()
	env.request(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"address": "1 Elm Avenue",
		"payment": "card",
		"phone":   "+1234567890",
		"email":   "buyer@example.com",
		"items":   items,
		"total":   total,
	}, token, http.StatusCreated)
}

func TestOrderListingSearchAndCount(t *testing.T) {
	env := setupApp(t)
	buyerToken := env.seedAccount(t, "Buyer One", "buyer@example.com", models.RoleCustomer)
	staffToken := env.seedAccount(t, "Back Office", "staff@example.com", models.RoleStaff)

	literal := env.seedProduct(t, "a.b*c", floatPtr(5))
	decoy := env.seedProduct(t, "aXbYYc", floatPtr(5))
	mug := env.seedProduct(t, "Coffee Mug", floatPtr(8))

	createOrder(t, env, buyerToken, []string{literal.ID}, 5)              // order 1
	createOrder(t, env, buyerToken, []string{decoy.ID}, 5)               // order 2
	createOrder(t, env, buyerToken, []string{mug.ID, mug.ID}, 16)        // order 3
	createOrder(t, env, buyerToken, []string{mug.ID, literal.ID}, 13)    // order 4

	// Metacharacters match literally: "a.b*c" must not match "aXbYYc".
	body := env.request(t, http.MethodGet, "/api/v1/orders?search=a.b%2Ac", nil, staffToken, http.StatusOK)
	orders := body["orders"].([]any)
	require.Len(t, orders, 2)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["totalOrders"])

	// A numeric term also matches the public order number exactly.
	body = env.request(t, http.MethodGet, "/api/v1/orders?search=2", nil, staffToken, http.StatusOK)
	orders = body["orders"].([]any)
	require.Len(t, orders, 1)
	first := orders[0].(map[string]any)
	assert.Equal(t, float64(2), first["orderNumber"])

	// An order flattens to one row per item but is reported once, with
	// its full item list restored.
	body = env.request(t, http.MethodGet, "/api/v1/orders?search=Coffee", nil, staffToken, http.StatusOK)
	orders = body["orders"].([]any)
	require.Len(t, orders, 2)
	pagination = body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["totalOrders"])
	for _, o := range orders {
		if o.(map[string]any)["orderNumber"] == float64(3) {
			assert.Len(t, o.(map[string]any)["items"], 2)
		}
	}

	// The count branch sees the same filtered set as the page windows:
	// the totals agree with walking every page.
	var collected []float64
	for page := 1; ; page++ {
		body = env.request(t, http.MethodGet,
			fmt.Sprintf("/api/v1/orders?limit=1&page=%d&search=Coffee", page), nil, staffToken, http.StatusOK)
		pageOrders := body["orders"].([]any)
		if len(pageOrders) == 0 {
			break
		}
		for _, o := range pageOrders {
			collected = append(collected, o.(map[string]any)["orderNumber"].(float64))
		}
	}
	assert.Len(t, collected, 2)

	// An order with no items is dropped by the flattening join.
	require.NoError(t, env.db.Create(&models.Order{
		ID:          uuid.New().String(),
		OrderNumber: 99,
		Status:      models.StatusCreated,
		CustomerID:  orderCustomerID(t, env),
	}).Error)
	body = env.request(t, http.MethodGet, "/api/v1/orders", nil, staffToken, http.StatusOK)
	pagination = body["pagination"].(map[string]any)
	assert.Equal(t, float64(4), pagination["totalOrders"])

	// Listing is staff-only; customers use /orders/my.
	env.request(t, http.MethodGet, "/api/v1/orders", nil, buyerToken, http.StatusForbidden)
	body = env.request(t, http.MethodGet, "/api/v1/orders/my", nil, buyerToken, http.StatusOK)
	pagination = body["pagination"].(map[string]any)
	assert.Equal(t, float64(4), pagination["totalOrders"])
}

func orderCustomerID(t *testing.T, env *testEnv) string {
	t.Helper()
	var customer models.Customer
	require.NoError(t, env.db.First(&customer, "email = ?", "buyer@example.com").Error)
	return customer.ID
}

func TestOrderListingFiltersAndSort(t *testing.T) {
	env := setupApp(t)
	buyerToken := env.seedAccount(t, "Buyer One", "buyer@example.com", models.RoleCustomer)
	staffToken := env.seedAccount(t, "Back Office", "staff@example.com", models.RoleStaff)

	cheap := env.seedProduct(t, "Cheap Thing", floatPtr(5))
	dear := env.seedProduct(t, "Dear Thing", floatPtr(100))

	createOrder(t, env, buyerToken, []string{cheap.ID}, 5)
	createOrder(t, env, buyerToken, []string{dear.ID}, 100)
	createOrder(t, env, buyerToken, []string{cheap.ID, dear.ID}, 105)

	// Inclusive amount interval.
	body := env.request(t, http.MethodGet,
		"/api/v1/orders?totalAmountFrom=5&totalAmountTo=100", nil, staffToken, http.StatusOK)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["totalOrders"])

	// Sort ascending by amount.
	body = env.request(t, http.MethodGet,
		"/api/v1/orders?sortField=totalAmount&sortDirection=asc", nil, staffToken, http.StatusOK)
	orders := body["orders"].([]any)
	require.Len(t, orders, 3)
	assert.Equal(t, float64(5), orders[0].(map[string]any)["totalAmount"])
	assert.Equal(t, float64(105), orders[2].(map[string]any)["totalAmount"])

	// Status equality composes with the rest by AND.
	env.request(t, http.MethodPatch, "/api/v1/orders/1/status",
		map[string]any{"status": "cancelled"}, staffToken, http.StatusOK)
	body = env.request(t, http.MethodGet,
		"/api/v1/orders?status=cancelled&totalAmountTo=100", nil, staffToken, http.StatusOK)
	pagination = body["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["totalOrders"])

	// Malformed status is rejected, not ignored.
	env.request(t, http.MethodGet, "/api/v1/orders?status=refunded", nil, staffToken, http.StatusBadRequest)

	// Identical queries return identical pagination summaries.
	first := env.request(t, http.MethodGet, "/api/v1/orders?limit=2", nil, staffToken, http.StatusOK)
	second := env.request(t, http.MethodGet, "/api/v1/orders?limit=2", nil, staffToken, http.StatusOK)
	assert.Equal(t, first["pagination"], second["pagination"])

	// The limit ceiling holds however large the request.
	body = env.request(t, http.MethodGet, "/api/v1/orders?limit=999", nil, staffToken, http.StatusOK)
	pagination = body["pagination"].(map[string]any)
	assert.Equal(t, float64(10), pagination["pageSize"])
	assert.Equal(t, float64(1), pagination["totalPages"])
}

func TestCustomerListing(t *testing.T) {
	env := setupApp(t)
	staffToken := env.seedAccount(t, "Back Office", "staff@example.com", models.RoleStaff)
	buyerToken := env.seedAccount(t, "Greta Garbo", "greta@example.com", models.RoleCustomer)
	env.seedAccount(t, "Humphrey Bogart", "bogart@example.com", models.RoleCustomer)

	// Pin registration instants around the day boundary.
	boundary := time.Date(2023, 1, 1, 23, 59, 59, 998_000_000, time.UTC)
	after := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, env.db.Model(&models.Customer{}).
		Where("email = ?", "greta@example.com").Update("created_at", boundary).Error)
	require.NoError(t, env.db.Model(&models.Customer{}).
		Where("email = ?", "bogart@example.com").Update("created_at", after).Error)

	// An upper date bound includes the whole named day.
	body := env.request(t, http.MethodGet,
		"/api/v1/customers?registrationDateTo=2023-01-01", nil, staffToken, http.StatusOK)
	customers := body["customers"].([]any)
	require.Len(t, customers, 1)
	assert.Equal(t, "Greta Garbo", customers[0].(map[string]any)["name"])

	// Name search is a literal, case-insensitive substring match.
	body = env.request(t, http.MethodGet, "/api/v1/customers?search=garbo", nil, staffToken, http.StatusOK)
	customers = body["customers"].([]any)
	require.Len(t, customers, 1)

	// Address search reaches customers through their last order.
	widget := env.seedProduct(t, "Widget", floatPtr(5))
	env.request(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"address": "99 Harbour View",
		"payment": "cash",
		"phone":   "+1234567890",
		"email":   "greta@example.com",
		"items":   []string{widget.ID},
		"total":   5,
	}, buyerToken, http.StatusCreated)

	body = env.request(t, http.MethodGet, "/api/v1/customers?search=harbour", nil, staffToken, http.StatusOK)
	customers = body["customers"].([]any)
	require.Len(t, customers, 1)
	entry := customers[0].(map[string]any)
	assert.Equal(t, "Greta Garbo", entry["name"])
	assert.Equal(t, float64(1), entry["orderCount"])

	// Aggregate range filters.
	body = env.request(t, http.MethodGet, "/api/v1/customers?orderCountFrom=1", nil, staffToken, http.StatusOK)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["totalCustomers"])

	// Malformed range input names the field.
	body = env.request(t, http.MethodGet,
		"/api/v1/customers?totalAmountFrom=plenty", nil, staffToken, http.StatusBadRequest)
	assert.Contains(t, body["message"], "totalAmountFrom")

	// The back office is closed to customers, and to anonymous callers.
	env.request(t, http.MethodGet, "/api/v1/customers", nil, buyerToken, http.StatusForbidden)
	env.request(t, http.MethodGet, "/api/v1/customers", nil, "", http.StatusUnauthorized)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := setupApp(t)

	payload := map[string]any{
		"name":     "Pat Smith",
		"email":    "pat@example.com",
		"password": "password123",
	}
	env.request(t, http.MethodPost, "/api/v1/auth/register", payload, "", http.StatusCreated)

	body := env.request(t, http.MethodPost, "/api/v1/auth/register", payload, "", http.StatusConflict)
	assert.Contains(t, body["message"], "already registered")
}

func TestProductCatalog(t *testing.T) {
	env := setupApp(t)
	staffToken := env.seedAccount(t, "Back Office", "staff@example.com", models.RoleStaff)

	body := env.request(t, http.MethodPost, "/api/v1/products", map[string]any{
		"title": "Espresso Machine",
		"price": 250,
	}, staffToken, http.StatusCreated)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)

	// Public read, no token required.
	body = env.request(t, http.MethodGet, "/api/v1/products/"+id, nil, "", http.StatusOK)
	assert.Equal(t, "Espresso Machine", body["title"])

	// A null price marks the product unsellable but keeps it listed.
	env.request(t, http.MethodPut, "/api/v1/products/"+id, map[string]any{
		"title": "Espresso Machine",
		"price": nil,
	}, staffToken, http.StatusOK)
	body = env.request(t, http.MethodGet, "/api/v1/products/"+id, nil, "", http.StatusOK)
	assert.Nil(t, body["price"])

	env.request(t, http.MethodDelete, "/api/v1/products/"+id, nil, staffToken, http.StatusOK)
	env.request(t, http.MethodGet, "/api/v1/products/"+id, nil, "", http.StatusNotFound)
}
