package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appaccount "github.com/minimart/minimart/internal/application/account"
	appcart "github.com/minimart/minimart/internal/application/cart"
	appcatalog "github.com/minimart/minimart/internal/application/catalog"
	appshipping "github.com/minimart/minimart/internal/application/shipping"
	"github.com/minimart/minimart/internal/application/workflow"
	"github.com/minimart/minimart/internal/domain/address"
	dompayment "github.com/minimart/minimart/internal/domain/payment"
	domshipping "github.com/minimart/minimart/internal/domain/shipping"
	"github.com/minimart/minimart/internal/infrastructure/adminlog"
	"github.com/minimart/minimart/internal/infrastructure/id"
	"github.com/minimart/minimart/internal/infrastructure/memory"
)

type stubGateway struct {
	ok bool
}

func (g *stubGateway) Process(_ context.Context, _ *dompayment.Payment) (bool, error) {
	return g.ok, nil
}

type stubCourier struct{}

func (stubCourier) CreateShipment(_ context.Context, _ *domshipping.Shipment) (string, error) {
	return "trk-1", nil
}

func (stubCourier) TrackShipment(_ context.Context, _ string) (domshipping.Status, error) {
	return domshipping.StatusInTransit, nil
}

type testEnv struct {
	router    *gin.Engine
	gateway   *stubGateway
	ledger    *memory.StockLedger
	shipments *memory.ShipmentRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	ids := id.NewUUIDGenerator()

	accountRepo := memory.NewAccountRepository()
	catalogRepo := memory.NewCatalogRepository()
	cartRepo := memory.NewCartRepository()
	orderRepo := memory.NewOrderRepository()
	loyaltyRepo := memory.NewLoyaltyRepository()
	shipmentRepo := memory.NewShipmentRepository()
	ledger := memory.NewStockLedger(logger)
	gateway := &stubGateway{ok: true}

	catalogSvc := appcatalog.NewService(catalogRepo, ids)
	wf := workflow.NewService(workflow.Deps{
		Orders:     orderRepo,
		Products:   catalogSvc,
		Ledger:     ledger,
		Processor:  dompayment.NewProcessor(gateway),
		Loyalty:    loyaltyRepo,
		IDs:        ids,
		PointsRate: decimal.NewFromInt(1),
	})

	h := NewHandler(Deps{
		Workflow: wf,
		Accounts: appaccount.NewService(appaccount.Deps{
			Accounts: accountRepo,
			Loyalty:  loyaltyRepo,
			Audit:    adminlog.New(logger),
			IDs:      ids,
		}),
		Catalog:   catalogSvc,
		Carts:     appcart.NewService(cartRepo, catalogSvc),
		Shipments: appshipping.NewService(shipmentRepo, stubCourier{}),
		Ledger:    ledger,
		Logger:    logger,
	})
	return &testEnv{
		router:    h.Router(),
		gateway:   gateway,
		ledger:    ledger,
		shipments: shipmentRepo,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func (e *testEnv) registerAccount(t *testing.T, name, email, role string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/accounts", gin.H{
		"name":  name,
		"email": email,
		"role":  role,
		"address": gin.H{
			"street":  "Rua A 1",
			"city":    "Lisbon",
			"country": "PT",
		},
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register account: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode(t, rec)["account_id"].(string)
}

func (e *testEnv) createProduct(t *testing.T, adminID, name, price string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/products", gin.H{
		"name":  name,
		"price": price,
		"kind":  "physical",
	}, map[string]string{headerAdminID: adminID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode(t, rec)["product_id"].(string)
}

func (e *testEnv) setStock(t *testing.T, adminID, productID string, qty int) {
	t.Helper()
	rec := e.do(t, http.MethodPut, "/admin/stock", gin.H{
		"warehouse_id": "wh-1",
		"product_id":   productID,
		"quantity":     qty,
	}, map[string]string{headerAdminID: adminID})
	if rec.Code != http.StatusOK {
		t.Fatalf("set stock: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	adminID := env.registerAccount(t, "Ops", "ops@example.com", "admin")
	clientID := env.registerAccount(t, "Dana", "dana@example.com", "")
	productID := env.createProduct(t, adminID, "pencil", "3.50")
	env.setStock(t, adminID, productID, 5)

	rec := env.do(t, http.MethodPost, "/orders", gin.H{"client_id": clientID}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	orderID := decode(t, rec)["order_id"].(string)

	rec = env.do(t, http.MethodPost, "/orders/"+orderID+"/items", gin.H{
		"product_id": productID,
		"quantity":   2,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if total := decode(t, rec)["total"]; total != "7" {
		t.Fatalf("expected total 7, got %v", total)
	}

	rec = env.do(t, http.MethodPost, "/orders/"+orderID+"/checkout", gin.H{"warehouse_id": "wh-1"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("checkout: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if awaiting := decode(t, rec)["awaiting_payment"]; awaiting != true {
		t.Fatalf("expected awaiting_payment true, got %v", awaiting)
	}

	rec = env.do(t, http.MethodPost, "/orders/"+orderID+"/payment", gin.H{
		"type":   "card",
		"amount": "7",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pay: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	payBody := decode(t, rec)
	if payBody["order_status"] != "processing" || payBody["payment_status"] != "completed" {
		t.Fatalf("unexpected pay response: %v", payBody)
	}

	rec = env.do(t, http.MethodGet, "/orders/"+orderID, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get order: expected 200, got %d", rec.Code)
	}
	if status := decode(t, rec)["status"]; status != "processing" {
		t.Fatalf("expected processing, got %v", status)
	}

	rec = env.do(t, http.MethodGet, "/accounts/"+clientID+"/loyalty", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("loyalty: expected 200, got %d", rec.Code)
	}
	if points := decode(t, rec)["points"]; points != float64(7) {
		t.Fatalf("expected 7 points, got %v", points)
	}

	t.Run("advance to delivered", func(t *testing.T) {
		for _, next := range []string{"in_delivery", "delivered"} {
			rec := env.do(t, http.MethodPost, "/orders/"+orderID+"/advance", gin.H{"next": next}, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("advance to %s: expected 200, got %d: %s", next, rec.Code, rec.Body.String())
			}
		}
	})

	t.Run("cancel delivered -> 409", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/orders/"+orderID+"/cancel", nil, nil)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestErrorMapping(t *testing.T) {
	env := newTestEnv(t)
	adminID := env.registerAccount(t, "Ops", "ops@example.com", "admin")
	clientID := env.registerAccount(t, "Dana", "dana@example.com", "")
	productID := env.createProduct(t, adminID, "pencil", "3.50")

	newOrderWithItem := func(t *testing.T, qty int) string {
		t.Helper()
		rec := env.do(t, http.MethodPost, "/orders", gin.H{"client_id": clientID}, nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create order: %d", rec.Code)
		}
		orderID := decode(t, rec)["order_id"].(string)
		rec = env.do(t, http.MethodPost, "/orders/"+orderID+"/items", gin.H{
			"product_id": productID,
			"quantity":   qty,
		}, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("add item: %d", rec.Code)
		}
		return orderID
	}

	t.Run("insufficient stock -> 409", func(t *testing.T) {
		env.setStock(t, adminID, productID, 1)
		orderID := newOrderWithItem(t, 5)
		rec := env.do(t, http.MethodPost, "/orders/"+orderID+"/checkout", gin.H{"warehouse_id": "wh-1"}, nil)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("declined payment -> 402", func(t *testing.T) {
		env.setStock(t, adminID, productID, 10)
		orderID := newOrderWithItem(t, 2)
		rec := env.do(t, http.MethodPost, "/orders/"+orderID+"/checkout", gin.H{"warehouse_id": "wh-1"}, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("checkout: %d", rec.Code)
		}
		env.gateway.ok = false
		defer func() { env.gateway.ok = true }()
		rec = env.do(t, http.MethodPost, "/orders/"+orderID+"/payment", gin.H{"type": "card", "amount": "7"}, nil)
		if rec.Code != http.StatusPaymentRequired {
			t.Fatalf("expected 402, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("pay without checkout -> 409", func(t *testing.T) {
		orderID := newOrderWithItem(t, 1)
		rec := env.do(t, http.MethodPost, "/orders/"+orderID+"/payment", gin.H{"type": "card", "amount": "3.50"}, nil)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("amount mismatch -> 400", func(t *testing.T) {
		env.setStock(t, adminID, productID, 10)
		orderID := newOrderWithItem(t, 2)
		rec := env.do(t, http.MethodPost, "/orders/"+orderID+"/checkout", gin.H{"warehouse_id": "wh-1"}, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("checkout: %d", rec.Code)
		}
		rec = env.do(t, http.MethodPost, "/orders/"+orderID+"/payment", gin.H{"type": "card", "amount": "6.99"}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown order -> 404", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/orders/o-404", nil, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("missing client_id -> 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/orders", gin.H{}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown payment type -> 400", func(t *testing.T) {
		orderID := newOrderWithItem(t, 1)
		rec := env.do(t, http.MethodPost, "/orders/"+orderID+"/payment", gin.H{"type": "crypto", "amount": "3.50"}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestAdminGate(t *testing.T) {
	env := newTestEnv(t)
	clientID := env.registerAccount(t, "Dana", "dana@example.com", "")

	body := gin.H{"warehouse_id": "wh-1", "product_id": "p-1", "quantity": 5}

	t.Run("missing header -> 403", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/admin/stock", body, nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("client caller -> 403", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/admin/stock", body, map[string]string{headerAdminID: clientID})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown caller -> 404", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/admin/stock", body, map[string]string{headerAdminID: "acc-404"})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestCartEndpoints(t *testing.T) {
	env := newTestEnv(t)
	adminID := env.registerAccount(t, "Ops", "ops@example.com", "admin")
	clientID := env.registerAccount(t, "Dana", "dana@example.com", "")
	productID := env.createProduct(t, adminID, "pencil", "3.50")

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/carts/%s/items", clientID), gin.H{
		"product_id": productID,
		"quantity":   2,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cart add: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/carts/%s/total", clientID), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cart total: expected 200, got %d", rec.Code)
	}
	if total := decode(t, rec)["total"]; total != "7" {
		t.Fatalf("expected total 7, got %v", total)
	}

	t.Run("promo out of range -> 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, fmt.Sprintf("/carts/%s/promo", clientID), gin.H{
			"code":        "MEGA",
			"percent_off": "150",
			"expires_at":  "2099-01-01T00:00:00Z",
		}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("valid promo discounts total", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, fmt.Sprintf("/carts/%s/promo", clientID), gin.H{
			"code":        "TEN",
			"percent_off": "10",
			"expires_at":  "2099-01-01T00:00:00Z",
		}, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("apply promo: expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		rec = env.do(t, http.MethodGet, fmt.Sprintf("/carts/%s/total", clientID), nil, nil)
		if total := decode(t, rec)["total"]; total != "6.3" {
			t.Fatalf("expected discounted total 6.3, got %v", total)
		}
	})
}

func TestShipmentEndpoints(t *testing.T) {
	env := newTestEnv(t)

	s := domshipping.New("shp-1", "o-1", address.Address{City: "Lisbon", Country: "PT"})
	if err := s.MarkShipped("trk-1"); err != nil {
		t.Fatalf("mark shipped: %v", err)
	}
	if err := env.shipments.Save(context.Background(), s); err != nil {
		t.Fatalf("save shipment: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/shipments/shp-1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get shipment: expected 200, got %d", rec.Code)
	}
	if got := decode(t, rec)["status"]; got != "shipped" {
		t.Fatalf("expected shipped, got %v", got)
	}

	rec = env.do(t, http.MethodGet, "/orders/o-1/shipment", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("order shipment: expected 200, got %d", rec.Code)
	}

	t.Run("track advances via courier", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/shipments/shp-1/track", nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("track: expected 200, got %d", rec.Code)
		}
		if got := decode(t, rec)["status"]; got != "in_transit" {
			t.Fatalf("expected in_transit, got %v", got)
		}
	})

	t.Run("unknown shipment -> 404", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/shipments/shp-404", nil, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
