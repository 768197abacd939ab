package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"genwear/internal/domain"
	ordersvc "genwear/internal/service/order"
)

const createOrderBody = `{
	"items": [
		{"productId": "p1", "name": "Classic Tee", "priceCents": 2499, "quantity": 2, "size": "M"}
	],
	"totalCents": 4998,
	"shippingAddress": {
		"fullName": "Ada Wong",
		"email": "ada@example.com",
		"street": "1 Market St",
		"city": "Springfield",
		"postalCode": "90210",
		"country": "US"
	},
	"paymentMethod": "card"
}`

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)
	env.orders.created = &domain.Order{ID: "o1", OrderNumber: "GW-1001", CustomerID: "c1"}

	w := env.do(http.MethodPost, "/v1/orders", "good-token", createOrderBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		OrderID     string `json:"orderId"`
		OrderNumber string `json:"orderNumber"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OrderID != "o1" || resp.OrderNumber != "GW-1001" {
		t.Fatalf("unexpected confirmation %+v", resp)
	}
	if env.orders.lastCreate.TotalCents != 4998 {
		t.Fatalf("service saw wrong total %d", env.orders.lastCreate.TotalCents)
	}
}

func TestCreateOrderRejectsTotalMismatch(t *testing.T) {
	env := newTestEnv(t)
	env.orders.created = &domain.Order{ID: "o1", OrderNumber: "GW-1001"}

	body := strings.Replace(createOrderBody, `"totalCents": 4998`, `"totalCents": 100`, 1)
	w := env.do(http.MethodPost, "/v1/orders", "good-token", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for total mismatch, got %d: %s", w.Code, w.Body.String())
	}
	if env.orders.lastCreate.TotalCents != 0 {
		t.Fatalf("invalid request must not reach the service")
	}
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	env := newTestEnv(t)
	body := strings.Replace(createOrderBody,
		`"items": [
		{"productId": "p1", "name": "Classic Tee", "priceCents": 2499, "quantity": 2, "size": "M"}
	]`, `"items": []`, 1)
	w := env.do(http.MethodPost, "/v1/orders", "good-token", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty items, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateOrderUnknownCustomer(t *testing.T) {
	env := newTestEnv(t)
	env.orders.createErr = ordersvc.ErrCustomerNotFound
	w := env.do(http.MethodPost, "/v1/orders", "good-token", createOrderBody)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListOrders(t *testing.T) {
	env := newTestEnv(t)
	env.orders.orders["o1"] = &domain.Order{ID: "o1", OrderNumber: "GW-1001", CustomerID: "c1"}
	env.orders.orders["o2"] = &domain.Order{ID: "o2", OrderNumber: "GW-1002", CustomerID: "someone-else"}

	w := env.do(http.MethodGet, "/v1/orders", "good-token", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Orders []domain.Order `json:"orders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Orders) != 1 || resp.Orders[0].OrderNumber != "GW-1001" {
		t.Fatalf("expected only the caller's order, got %+v", resp.Orders)
	}
}

func TestGetOrderScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	env.orders.orders["o1"] = &domain.Order{ID: "o1", CustomerID: "someone-else"}

	w := env.do(http.MethodGet, "/v1/orders/o1", "good-token", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign orders must read as 404, got %d", w.Code)
	}
}

func TestUpdateOrderStatusErrors(t *testing.T) {
	env := newTestEnv(t)
	env.orders.orders["o1"] = &domain.Order{ID: "o1", CustomerID: "c1", Status: domain.StatusShipped}

	env.orders.statusErr = ordersvc.ErrInvalidStatus
	if w := env.do(http.MethodPatch, "/v1/orders/o1/status", "admin-secret", `{"status":"REFUNDED"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid status, got %d", w.Code)
	}

	env.orders.statusErr = ordersvc.ErrBackwardTransition
	if w := env.do(http.MethodPatch, "/v1/orders/o1/status", "admin-secret", `{"status":"PENDING"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for backward transition, got %d", w.Code)
	}

	env.orders.statusErr = nil
	if w := env.do(http.MethodPatch, "/v1/orders/missing/status", "admin-secret", `{"status":"PAID"}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown order, got %d", w.Code)
	}

	if w := env.do(http.MethodPatch, "/v1/orders/o1/status", "admin-secret", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing status, got %d", w.Code)
	}
}
