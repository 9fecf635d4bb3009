package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"cafe-pos/internal/bus"
	"cafe-pos/internal/catalog"
	"cafe-pos/internal/engine"
	"cafe-pos/internal/models"
	"cafe-pos/internal/reporting"
	"cafe-pos/internal/store/storetest"
	"cafe-pos/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	mem    *storetest.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := storetest.NewMemory()
	hub := bus.NewHub()
	t.Cleanup(hub.Close)

	orderEngine := engine.New(mem, hub)
	catalogService := catalog.New(mem, hub)
	reportingService := reporting.New(mem, 3)
	realtime := ws.NewServer(hub)

	router := gin.New()
	handler := NewHandler(orderEngine, catalogService, reportingService, mem, hub, realtime, "Test Cafe", "4000")
	handler.SetupRoutes(router)

	return &testServer{router: router, mem: mem}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) seedCatalog(t *testing.T) (tableID, productID int64) {
	t.Helper()
	ctx := context.Background()
	table, err := s.mem.InsertTable(ctx, "Table 1")
	require.NoError(t, err)
	category, err := s.mem.InsertCategory(ctx, "Drinks", "#3B82F6")
	require.NoError(t, err)
	product, err := s.mem.InsertProduct(ctx, "Tea", 10.00, category.ID, "#FFFFFF")
	require.NoError(t, err)
	return table.ID, product.ID
}

func TestCreateOrder(t *testing.T) {
	srv := newTestServer(t)
	tableID, productID := srv.seedCatalog(t)

	w := srv.do(t, http.MethodPost, "/api/orders", gin.H{
		"tableId": tableID, "productId": productID, "quantity": 2,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotZero(t, resp["id"])

	table, _ := srv.mem.GetTable(context.Background(), tableID)
	assert.Equal(t, models.TableStatusOccupied, table.Status)
	assert.Equal(t, 20.00, table.Total)
}

func TestCreateOrder_UnknownProductIs404(t *testing.T) {
	srv := newTestServer(t)
	tableID, _ := srv.seedCatalog(t)

	w := srv.do(t, http.MethodPost, "/api/orders", gin.H{
		"tableId": tableID, "productId": 999, "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrder_MissingFieldsIs400(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/orders", gin.H{"tableId": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrder_ZeroQuantityDeletes(t *testing.T) {
	srv := newTestServer(t)
	tableID, productID := srv.seedCatalog(t)

	created := srv.do(t, http.MethodPost, "/api/orders", gin.H{
		"tableId": tableID, "productId": productID, "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, created.Code)
	var createdResp struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createdResp))

	w := srv.do(t, http.MethodPut, "/api/orders/"+strconv.FormatInt(createdResp.ID, 10), gin.H{"quantity": 0})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["deleted"])

	table, _ := srv.mem.GetTable(context.Background(), tableID)
	assert.Equal(t, models.TableStatusEmpty, table.Status)
}

func TestTransfer_InvalidTargetsAreRejected(t *testing.T) {
	srv := newTestServer(t)
	srv.seedCatalog(t)

	// Same table.
	w := srv.do(t, http.MethodPost, "/api/orders/transfer", gin.H{
		"fromTableId": 1, "toTableId": 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Empty source.
	w = srv.do(t, http.MethodPost, "/api/orders/transfer", gin.H{
		"fromTableId": 1, "toTableId": 2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettle_RejectsUnknownPaymentType(t *testing.T) {
	srv := newTestServer(t)
	srv.seedCatalog(t)

	w := srv.do(t, http.MethodPost, "/api/payments", gin.H{
		"tableId": 1, "paymentType": "Barter",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettle_HappyPath(t *testing.T) {
	srv := newTestServer(t)
	tableID, productID := srv.seedCatalog(t)

	created := srv.do(t, http.MethodPost, "/api/orders", gin.H{
		"tableId": tableID, "productId": productID, "quantity": 3,
	})
	require.Equal(t, http.StatusCreated, created.Code)

	w := srv.do(t, http.MethodPost, "/api/payments", gin.H{
		"tableId": tableID, "paymentType": "Cash",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, srv.mem.Payments, 1)
	assert.Equal(t, 30.00, srv.mem.Payments[0].Amount)
}

func TestSortCategories_MalformedPayloadIs400(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/api/categories/sort",
		bytes.NewBufferString(`{"sortedIds": ["a", "b"]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSortCategories_DuplicateIDsIs400(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPut, "/api/categories/sort", gin.H{
		"sortedIds": []int64{2, 2},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTable_OccupiedIs400(t *testing.T) {
	srv := newTestServer(t)
	tableID, productID := srv.seedCatalog(t)

	created := srv.do(t, http.MethodPost, "/api/orders", gin.H{
		"tableId": tableID, "productId": productID, "quantity": 1,
	})
	require.Equal(t, http.StatusCreated, created.Code)

	w := srv.do(t, http.MethodDelete, "/api/tables/1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTable_IgnoresClientStatus(t *testing.T) {
	srv := newTestServer(t)
	srv.seedCatalog(t)

	w := srv.do(t, http.MethodPut, "/api/tables/1", gin.H{
		"name": "Window Table", "status": "occupied", "total": 999,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	table, _ := srv.mem.GetTable(context.Background(), 1)
	assert.Equal(t, "Window Table", table.Name)
	assert.Equal(t, models.TableStatusEmpty, table.Status)
	assert.Equal(t, 0.00, table.Total)
}

func TestPaymentHistory_BadDateIs400(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/payments?date=not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	srv.mem.Users = append(srv.mem.Users, models.User{
		ID: 1, Username: "admin", Password: "admin", Role: models.RoleAdmin,
	})

	w := srv.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"username": "admin", "password": "admin",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"password":"admin"`)

	w = srv.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"username": "admin", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestReceipt_UnknownTableIs404(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/receipt/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
