package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront/config"
	"github.com/ikkim/shopfront/internal/app/controller"
	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/ikkim/shopfront/internal/app/service"
	"github.com/ikkim/shopfront/internal/gateway"
	"github.com/ikkim/shopfront/internal/middleware"
	"github.com/ikkim/shopfront/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

type fixedCatalog struct{}

func (fixedCatalog) GetProduct(_ context.Context, id string) (*model.Product, error) {
	if id != "p-1" {
		return nil, gateway.ErrNotFound
	}
	return &model.Product{ID: "p-1", Name: "Ring", Price: 20}, nil
}

func (fixedCatalog) ListProducts(context.Context, gateway.ProductQuery) ([]model.Product, error) {
	return []model.Product{{ID: "p-1", Name: "Ring", Price: 20}}, nil
}

func setupRouterTest(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}},
	}
	catalog := service.NewCatalog(fixedCatalog{}, nil, time.Minute)

	r := NewRouter(
		controller.NewCartController(nil),
		controller.NewCheckoutController(nil, nil, nil),
		controller.NewOrderController(nil),
		controller.NewAddressController(nil),
		controller.NewProductController(catalog),
		controller.NewSessionController(nil, nil),
		controller.NewWebSocketController(nil, nil),
		controller.NewReportController(nil),
		middleware.NewAuthMiddleware(testSecret, nil),
		func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) },
		cfg,
	)
	return r.Setup()
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := util.GenerateToken("u1", "u1@example.com", role, "", testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter_Health(t *testing.T) {
	router := setupRouterTest(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	router := setupRouterTest(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/cart"},
		{http.MethodPost, "/api/v1/checkout"},
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/addresses"},
		{http.MethodGet, "/api/v1/products"},
		{http.MethodPost, "/api/v1/session/logout"},
		{http.MethodGet, "/api/v1/ws/cart"},
		{http.MethodPost, "/api/v1/admin/reports/checkouts"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_RoleGates(t *testing.T) {
	router := setupRouterTest(t)

	tests := []struct {
		name string
		role string
		path string
		verb string
	}{
		{"User on seller orders", middleware.RoleUser, "/api/v1/seller/orders", http.MethodGet},
		{"Seller on reports", middleware.RoleSeller, "/api/v1/admin/reports/checkouts", http.MethodPost},
		{"User on reports", middleware.RoleUser, "/api/v1/admin/reports/checkouts", http.MethodPost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.verb, tt.path, nil)
			req.Header.Set("Authorization", bearer(t, tt.role))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestRouter_Products(t *testing.T) {
	router := setupRouterTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", bearer(t, middleware.RoleUser))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
}

func TestRouter_CORS(t *testing.T) {
	router := setupRouterTest(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
