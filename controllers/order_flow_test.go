package controllers_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swarajkedari36/Order-buddy/config"
	"github.com/swarajkedari36/Order-buddy/models"
	"github.com/swarajkedari36/Order-buddy/routes"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")
	os.Unsetenv("MAIL_FUNCTION_URL")

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Order{},
		&models.OrderActivity{},
		&models.ReminderLog{},
	))
	config.DB = db

	return routes.SetupRouter()
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func registerUser(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/auth/register", "", gin.H{
		"email":        email,
		"name":         "Test Owner",
		"password":     "supersecret",
		"businessName": "Order Buddy Test Co",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	token, ok := body["token"].(string)
	require.True(t, ok)
	return token
}

func createOrderViaAPI(t *testing.T, router *gin.Engine, token string, payload gin.H) map[string]interface{} {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/api/orders", token, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody(t, w)
}

func TestAuthRequired(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderLifecycleFlow(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "owner@example.com")

	// A customer the orders will roll up into.
	w := doRequest(t, router, http.MethodPost, "/api/customers", token, gin.H{
		"name": "Meera Stores",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	customerID := decodeBody(t, w)["id"].(string)

	order := createOrderViaAPI(t, router, token, gin.H{
		"customerName":   "Meera Stores",
		"orderAmount":    1000,
		"taxRate":        10,
		"discountAmount": 50,
	})
	assert.Equal(t, 1050.0, order["totalAmount"])
	assert.Equal(t, "pending", order["status"])
	orderID := order["id"].(string)
	require.True(t, strings.HasPrefix(order["orderId"].(string), "ORD-"))

	// Rollup moved with the creation.
	w = doRequest(t, router, http.MethodGet, "/api/customers/"+customerID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	customer := decodeBody(t, w)
	assert.Equal(t, 1.0, customer["totalOrders"])
	assert.Equal(t, 1000.0, customer["totalSpent"])

	// The creation was audited.
	w = doRequest(t, router, http.MethodGet, "/api/orders/"+orderID+"/activities", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var activities []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &activities))
	require.Len(t, activities, 1)
	assert.Equal(t, "created", activities[0]["activityType"])

	// Completing the order stamps completed_at.
	w = doRequest(t, router, http.MethodPut, "/api/orders/"+orderID, token, gin.H{
		"status": "completed",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeBody(t, w)
	assert.NotNil(t, updated["completedAt"])

	w = doRequest(t, router, http.MethodGet, "/api/orders/"+orderID+"/activities", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &activities))
	assert.Len(t, activities, 2)

	// Changing the amount adjusts the rollup by exactly the delta.
	w = doRequest(t, router, http.MethodPut, "/api/orders/"+orderID, token, gin.H{
		"orderAmount": 1600,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/customers/"+customerID, token, nil)
	customer = decodeBody(t, w)
	assert.Equal(t, 1.0, customer["totalOrders"])
	assert.Equal(t, 1600.0, customer["totalSpent"])

	// Deleting restores the rollup to its pre-insert value.
	w = doRequest(t, router, http.MethodDelete, "/api/orders/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/customers/"+customerID, token, nil)
	customer = decodeBody(t, w)
	assert.Equal(t, 0.0, customer["totalOrders"])
	assert.Equal(t, 0.0, customer["totalSpent"])

	w = doRequest(t, router, http.MethodGet, "/api/orders/"+orderID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrderValidation(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "owner@example.com")

	cases := []struct {
		name    string
		payload gin.H
	}{
		{"missing customer name", gin.H{"orderAmount": 100}},
		{"non-positive amount", gin.H{"customerName": "Meera", "orderAmount": 0}},
		{"negative amount", gin.H{"customerName": "Meera", "orderAmount": -5}},
		{"bad status", gin.H{"customerName": "Meera", "orderAmount": 100, "status": "archived"}},
		{"bad email", gin.H{"customerName": "Meera", "orderAmount": 100, "customerEmail": "not-an-email"}},
	}
	for _, tc := range cases {
		w := doRequest(t, router, http.MethodPost, "/api/orders", token, tc.payload)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.name)
	}
}

func TestCreateOrderEmailWarning(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "owner@example.com")

	// MAIL_FUNCTION_URL is unset, so the confirmation email fails; the
	// order must still be created, with a warning.
	w := doRequest(t, router, http.MethodPost, "/api/orders", token, gin.H{
		"customerName":  "Meera Stores",
		"customerEmail": "meera@example.com",
		"orderAmount":   100,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Contains(t, body, "warning")
	assert.Contains(t, body, "order")
}

func TestBulkStatusUpdateScopedToSelectionAndOwner(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "owner@example.com")
	otherToken := registerUser(t, router, "other@example.com")

	var ids []string
	for i := 0; i < 4; i++ {
		order := createOrderViaAPI(t, router, token, gin.H{
			"customerName": fmt.Sprintf("Customer %d", i),
			"orderAmount":  100,
		})
		ids = append(ids, order["id"].(string))
	}
	foreign := createOrderViaAPI(t, router, otherToken, gin.H{
		"customerName": "Foreign",
		"orderAmount":  100,
	})

	// Three of this owner's ids plus one belonging to another owner.
	w := doRequest(t, router, http.MethodPost, "/api/orders/bulk", token, gin.H{
		"action":   "set-status",
		"orderIds": []string{ids[0], ids[1], ids[2], foreign["id"].(string)},
		"status":   "shipped",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 3.0, decodeBody(t, w)["updated"])

	for i, id := range ids {
		w = doRequest(t, router, http.MethodGet, "/api/orders/"+id, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		status := decodeBody(t, w)["status"]
		if i < 3 {
			assert.Equal(t, "shipped", status)
		} else {
			assert.Equal(t, "pending", status)
		}
	}

	// The other owner's order is untouched.
	w = doRequest(t, router, http.MethodGet, "/api/orders/"+foreign["id"].(string), otherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", decodeBody(t, w)["status"])
}

func TestBulkArchiveStampsCompletedAt(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "owner@example.com")

	order := createOrderViaAPI(t, router, token, gin.H{
		"customerName": "Meera",
		"orderAmount":  100,
	})

	w := doRequest(t, router, http.MethodPost, "/api/orders/bulk", token, gin.H{
		"action":   "archive",
		"orderIds": []string{order["id"].(string)},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, router, http.MethodGet, "/api/orders/"+order["id"].(string), token, nil)
	body := decodeBody(t, w)
	assert.Equal(t, "completed", body["status"])
	assert.NotNil(t, body["completedAt"])
}

func TestBulkDeleteReversesRollups(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "owner@example.com")

	w := doRequest(t, router, http.MethodPost, "/api/customers", token, gin.H{"name": "Meera Stores"})
	require.Equal(t, http.StatusCreated, w.Code)
	customerID := decodeBody(t, w)["id"].(string)

	first := createOrderViaAPI(t, router, token, gin.H{"customerName": "Meera Stores", "orderAmount": 100})
	second := createOrderViaAPI(t, router, token, gin.H{"customerName": "Meera Stores", "orderAmount": 200})

	w = doRequest(t, router, http.MethodPost, "/api/orders/bulk", token, gin.H{
		"action":   "delete",
		"orderIds": []string{first["id"].(string), second["id"].(string)},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2.0, decodeBody(t, w)["deleted"])

	w = doRequest(t, router, http.MethodGet, "/api/customers/"+customerID, token, nil)
	customer := decodeBody(t, w)
	assert.Equal(t, 0.0, customer["totalOrders"])
	assert.Equal(t, 0.0, customer["totalSpent"])
}

func TestExportEndpoint(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "owner@example.com")

	createOrderViaAPI(t, router, token, gin.H{"customerName": "Meera", "orderAmount": 100})
	createOrderViaAPI(t, router, token, gin.H{"customerName": "Asha", "orderAmount": 200})

	w := doRequest(t, router, http.MethodPost, "/api/orders/export", token, gin.H{
		"columns": []string{"order_id", "customer_name", "total_amount"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders-")

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"order_id", "customer_name", "total_amount"}, records[0])

	// An empty column selection produces no export.
	w = doRequest(t, router, http.MethodPost, "/api/orders/export", token, gin.H{
		"columns": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyticsEndpoint(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "owner@example.com")

	createOrderViaAPI(t, router, token, gin.H{"customerName": "Meera", "orderAmount": 300})

	w := doRequest(t, router, http.MethodGet, "/api/analytics?window=7", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, 300.0, body["totalRevenue"])
	assert.Equal(t, 1.0, body["totalOrders"])
	daily, ok := body["dailySeries"].([]interface{})
	require.True(t, ok)
	assert.Len(t, daily, 7)

	w = doRequest(t, router, http.MethodGet, "/api/analytics?window=14", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrdersAreOwnerScoped(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "owner@example.com")
	otherToken := registerUser(t, router, "other@example.com")

	order := createOrderViaAPI(t, router, token, gin.H{"customerName": "Meera", "orderAmount": 100})

	w := doRequest(t, router, http.MethodGet, "/api/orders/"+order["id"].(string), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/orders", otherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	assert.Empty(t, orders)
}
