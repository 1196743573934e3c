package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aptechmall/ordercore/internal/constants"
	handlershared "github.com/aptechmall/ordercore/internal/http/handlers/shared"
	"github.com/aptechmall/ordercore/internal/identity"
	"github.com/aptechmall/ordercore/internal/models"
	"github.com/aptechmall/ordercore/internal/provider"
	"github.com/aptechmall/ordercore/internal/repository"
	"github.com/aptechmall/ordercore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type cartResponse struct {
	StatusCode int `json:"status_code"`
	Data       struct {
		TotalItems    int    `json:"total_items"`
		TotalQuantity int    `json:"total_quantity"`
		TotalAmount   string `json:"total_amount"`
		Items         []struct {
			ID          uint   `json:"id"`
			ProductName string `json:"product_name"`
			Quantity    int    `json:"quantity"`
			Marketplace string `json:"marketplace"`
			Subtotal    string `json:"subtotal"`
		} `json:"items"`
		Fields map[string]string `json:"fields"`
	} `json:"data"`
}

func setupCartHandlerTest(t *testing.T) (*Handler, identity.Principal) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_cart_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	previous := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = previous })

	user := models.User{Username: "cartuser", Email: "cartuser@example.com", PasswordHash: "hash", FullName: "Cart User", Role: constants.RoleCustomer, Status: constants.UserStatusActive}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	cartRepo := repository.NewCartRepository(db)
	h := &Handler{Container: &provider.Container{
		CartRepo:    cartRepo,
		CartService: service.NewCartService(cartRepo, nil),
	}}
	return h, identity.Principal{UserID: user.ID, Role: identity.RoleCustomer, Status: identity.StatusActive}
}

func serveCart(t *testing.T, handler gin.HandlerFunc, principal identity.Principal, method, body string, params gin.Params) cartResponse {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == "" {
		c.Request = httptest.NewRequest(method, "/api/v1/cart", nil)
	} else {
		c.Request = httptest.NewRequest(method, "/api/v1/cart/items", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
	}
	c.Params = params
	handlershared.SetPrincipal(c, principal, nil)
	handler(c)

	var resp cartResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func TestCartHandlersRoundTrip(t *testing.T) {
	h, principal := setupCartHandlerTest(t)

	resp := serveCart(t, h.GetCart, principal, http.MethodGet, "", nil)
	if resp.StatusCode != 0 || resp.Data.TotalItems != 0 || resp.Data.TotalAmount != "0.00" {
		t.Fatalf("empty cart unexpected: %+v", resp)
	}

	resp = serveCart(t, h.AddCartItem, principal, http.MethodPost, `{"product_id":"A1","product_name":"Lamp","price":"19.90","quantity":1,"marketplace":"ALIBABA1688"}`, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("add item want 0 got %d", resp.StatusCode)
	}
	resp = serveCart(t, h.AddCartItem, principal, http.MethodPost, `{"product_id":"A1","product_name":"Lamp","price":"19.90","quantity":1,"marketplace":"ALIEXPRESS"}`, nil)
	if resp.Data.TotalItems != 2 || resp.Data.TotalAmount != "39.80" {
		t.Fatalf("same product on another marketplace should be a new line: %+v", resp.Data)
	}

	itemID := resp.Data.Items[0].ID
	params := gin.Params{{Key: "id", Value: fmt.Sprintf("%d", itemID)}}
	resp = serveCart(t, h.UpdateCartItem, principal, http.MethodPut, `{"quantity":3}`, params)
	if resp.StatusCode != 0 || resp.Data.TotalQuantity != 4 {
		t.Fatalf("update quantity unexpected: %+v", resp)
	}

	resp = serveCart(t, h.UpdateCartItem, principal, http.MethodPut, `{"quantity":0}`, params)
	if resp.StatusCode != 0 || resp.Data.TotalItems != 1 {
		t.Fatalf("zero quantity should remove the line: %+v", resp)
	}

	resp = serveCart(t, h.RemoveCartItem, principal, http.MethodDelete, "", params)
	if resp.StatusCode != 404 {
		t.Fatalf("removing a missing line want 404 got %d", resp.StatusCode)
	}

	resp = serveCart(t, h.ClearCart, principal, http.MethodDelete, "", nil)
	if resp.StatusCode != 0 || resp.Data.TotalItems != 0 {
		t.Fatalf("clear cart unexpected: %+v", resp)
	}
	resp = serveCart(t, h.ClearCart, principal, http.MethodDelete, "", nil)
	if resp.StatusCode != 0 {
		t.Fatalf("clearing an empty cart should succeed, got %d", resp.StatusCode)
	}
}

func TestAddCartItemValidation(t *testing.T) {
	h, principal := setupCartHandlerTest(t)

	cases := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "unknown marketplace", body: `{"product_id":"A1","product_name":"Lamp","price":"1.00","quantity":1,"marketplace":"EBAY"}`, wantCode: 400},
		{name: "zero quantity", body: `{"product_id":"A1","product_name":"Lamp","price":"1.00","quantity":0,"marketplace":"ALIEXPRESS"}`, wantCode: 400},
		{name: "missing product", body: `{"product_name":"Lamp","price":"1.00","quantity":1,"marketplace":"ALIEXPRESS"}`, wantCode: 400},
		{name: "negative price", body: `{"product_id":"A1","product_name":"Lamp","price":"-1.00","quantity":1,"marketplace":"ALIEXPRESS"}`, wantCode: 400},
		{name: "malformed json", body: `{"product_id":`, wantCode: 400},
		{name: "quantity over max", body: `{"product_id":"A1","product_name":"Lamp","price":"1.00","quantity":10000,"marketplace":"ALIEXPRESS"}`, wantCode: 400},
		{name: "quantity overflows int", body: `{"product_id":"A1","product_name":"Lamp","price":"1.00","quantity":9223372036854775807,"marketplace":"ALIEXPRESS"}`, wantCode: 400},
		{name: "three decimal price", body: `{"product_id":"A1","product_name":"Lamp","price":"10.999","quantity":1,"marketplace":"ALIEXPRESS"}`, wantCode: 400},
		{name: "price over column", body: `{"product_id":"A1","product_name":"Lamp","price":"1000000000","quantity":1,"marketplace":"ALIEXPRESS"}`, wantCode: 400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := serveCart(t, h.AddCartItem, principal, http.MethodPost, tc.body, nil)
			if resp.StatusCode != tc.wantCode {
				t.Fatalf("status_code want %d got %d", tc.wantCode, resp.StatusCode)
			}
		})
	}
}
