package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"commerce/internal/domain"
	"commerce/internal/http/handlers"
	"commerce/internal/repos"
	"commerce/internal/services"
)

// stubVerifier accepts a single fixed bearer and resolves it to one
// identity, standing in for the auth service.
type stubVerifier struct{ identity *domain.Identity }

func (v stubVerifier) Validate(bearer string) (*domain.Identity, error) {
	if bearer != "Bearer good-token" {
		return nil, domain.Unauthenticatedf("invalid token")
	}
	return v.identity, nil
}

// inprocGateway routes the coordinator's product calls to a product
// service sharing the test database, standing in for the HTTP client.
type inprocGateway struct{ products *services.ProductService }

func (g inprocGateway) GetByIDs(_ context.Context, _ string, ids []string) ([]domain.Product, error) {
	return g.products.FindByIDs(ids)
}

func (g inprocGateway) BatchDecreaseStock(_ context.Context, _ string, items []domain.StockUpdate) error {
	return g.products.BatchDecreaseStock(items)
}

func orderApp(t *testing.T) (*fiber.App, *services.ProductService) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	orderRepo := repos.NewOrderRepo(db)
	productSvc := services.NewProductService(repos.NewProductRepo(db))
	h := &handlers.OrderHandler{
		Cart:   services.NewCartService(orderRepo),
		Orders: services.NewOrderService(orderRepo, inprocGateway{products: productSvc}),
	}
	verifier := stubVerifier{identity: &domain.Identity{ID: "cust-1", Username: "dana"}}

	app := fiber.New()
	api := app.Group("/api/orders", handlers.RequireUser(verifier))
	api.Post("/create", h.AddToCart)
	api.Get("/clear-cart", h.ClearCart)
	api.Delete("/cart/product/:productId", h.RemoveProduct)
	api.Get("/by-customer-id/:customerId", h.ByCustomer)
	api.Post("/:id/checkout", h.Checkout)
	api.Get("/:id", h.Get)
	api.Get("/", h.List)
	return app, productSvc
}

func deleteReq(t *testing.T, app *fiber.App, path, bearer string) int {
	t.Helper()
	req := httptest.NewRequest("DELETE", path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp.StatusCode
}

func seedCatalog(t *testing.T, products *services.ProductService, name string, price float64, stock int) string {
	t.Helper()
	p, err := products.Create(services.ProductCreateInput{Name: name, Price: price, Stock: stock})
	if err != nil {
		t.Fatal(err)
	}
	return p.ID
}

func TestOrderAPI_RequiresBearer(t *testing.T) {
	app, _ := orderApp(t)

	code, _ := getJSON(t, app, "/api/orders/", "")
	if code != 401 {
		t.Fatalf("missing bearer: want 401, got %d", code)
	}
	code, _ = getJSON(t, app, "/api/orders/", "Bearer forged")
	if code != 401 {
		t.Fatalf("bad bearer: want 401, got %d", code)
	}
}

func TestOrderAPI_CartToCheckoutFlow(t *testing.T) {
	app, products := orderApp(t)
	pid := seedCatalog(t, products, "Widget", 9.99, 5)
	bearer := "Bearer good-token"

	code, body := postJSON(t, app, "/api/orders/create",
		`{"productId":"`+pid+`","quantity":2}`, bearer)
	if code != 200 {
		t.Fatalf("add to cart: want 200, got %d (%s)", code, body)
	}

	code, body = getJSON(t, app, "/api/orders/by-customer-id/cust-1", bearer)
	if code != 200 {
		t.Fatalf("get cart: want 200, got %d (%s)", code, body)
	}
	var cart []domain.Order
	if err := json.Unmarshal(body, &cart); err != nil {
		t.Fatal(err)
	}
	if len(cart) != 1 || len(cart[0].Items) != 1 || cart[0].Items[0].Quantity != 2 {
		t.Fatalf("bad cart: %s", body)
	}
	oid := cart[0].ID

	code, body = postJSON(t, app, "/api/orders/"+oid+"/checkout", "", bearer)
	if code != 200 {
		t.Fatalf("checkout: want 200, got %d (%s)", code, body)
	}
	var resp services.CheckoutResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.OrderID != oid || resp.Status != domain.StatusPaid {
		t.Fatalf("bad checkout response: %s", body)
	}

	p, err := products.Find(pid)
	if err != nil {
		t.Fatal(err)
	}
	if p.Stock != 3 {
		t.Fatalf("want stock 3 after checkout, got %d", p.Stock)
	}

	// Paid orders are out of checkout's reach.
	code, _ = postJSON(t, app, "/api/orders/"+oid+"/checkout", "", bearer)
	if code != 409 {
		t.Fatalf("second checkout: want 409, got %d", code)
	}
}

func TestOrderAPI_CheckoutShortStockIs400(t *testing.T) {
	app, products := orderApp(t)
	pid := seedCatalog(t, products, "Widget", 9.99, 1)
	bearer := "Bearer good-token"

	postJSON(t, app, "/api/orders/create", `{"productId":"`+pid+`","quantity":3}`, bearer)
	code, body := getJSON(t, app, "/api/orders/by-customer-id/cust-1", bearer)
	if code != 200 {
		t.Fatalf("get cart: want 200, got %d", code)
	}
	var cart []domain.Order
	if err := json.Unmarshal(body, &cart); err != nil {
		t.Fatal(err)
	}

	code, body = postJSON(t, app, "/api/orders/"+cart[0].ID+"/checkout", "", bearer)
	if code != 400 {
		t.Fatalf("want 400, got %d (%s)", code, body)
	}

	p, err := products.Find(pid)
	if err != nil {
		t.Fatal(err)
	}
	if p.Stock != 1 {
		t.Fatalf("stock must be untouched, got %d", p.Stock)
	}
}

func TestOrderAPI_RemoveAndClear(t *testing.T) {
	app, products := orderApp(t)
	pa := seedCatalog(t, products, "Alpha", 5, 9)
	pb := seedCatalog(t, products, "Beta", 5, 9)
	bearer := "Bearer good-token"

	postJSON(t, app, "/api/orders/create", `{"productId":"`+pa+`","quantity":1}`, bearer)
	postJSON(t, app, "/api/orders/create", `{"productId":"`+pb+`","quantity":1}`, bearer)

	if code := deleteReq(t, app, "/api/orders/cart/product/"+pa, bearer); code != 200 {
		t.Fatalf("remove: want 200, got %d", code)
	}
	if code := deleteReq(t, app, "/api/orders/cart/product/"+pa, bearer); code != 404 {
		t.Fatalf("remove twice: want 404, got %d", code)
	}

	if code, _ := getJSON(t, app, "/api/orders/clear-cart", bearer); code != 200 {
		t.Fatalf("clear: want 200, got %d", code)
	}
	code, body := getJSON(t, app, "/api/orders/by-customer-id/cust-1", bearer)
	if code != 200 {
		t.Fatalf("get cart: want 200, got %d", code)
	}
	var cart []domain.Order
	if err := json.Unmarshal(body, &cart); err != nil {
		t.Fatal(err)
	}
	if len(cart) != 0 {
		t.Fatalf("want empty cart, got %s", body)
	}
}
