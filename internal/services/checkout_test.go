package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"commerce/internal/domain"
	"commerce/internal/repos"
	"commerce/internal/services"
)

// checkoutDB holds both stores in one in-memory database; the coordinator
// still only reaches products through the gateway.
func checkoutDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	PRAGMA foreign_keys = ON;
	CREATE TABLE products(id TEXT PRIMARY KEY, name TEXT NOT NULL,
	  price NUMERIC NOT NULL CHECK (price >= 0),
	  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	CREATE TABLE orders(id TEXT PRIMARY KEY, customer_id TEXT NOT NULL, status TEXT NOT NULL,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	CREATE TABLE order_items(id TEXT PRIMARY KEY,
	  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	  product_id TEXT NOT NULL, quantity INTEGER NOT NULL CHECK (quantity >= 1),
	  UNIQUE(order_id, product_id));
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

// localGateway satisfies the product gateway by calling the product
// service in-process, standing in for the HTTP client.
type localGateway struct{ products *services.ProductService }

func (g localGateway) GetByIDs(_ context.Context, _ string, ids []string) ([]domain.Product, error) {
	return g.products.FindByIDs(ids)
}

func (g localGateway) BatchDecreaseStock(_ context.Context, _ string, items []domain.StockUpdate) error {
	return g.products.BatchDecreaseStock(items)
}

// failingGateway simulates the reserve call breaking mid-protocol.
type failingGateway struct{ localGateway }

func (g failingGateway) BatchDecreaseStock(context.Context, string, []domain.StockUpdate) error {
	return errors.New("product service unavailable")
}

func checkoutFixture(t *testing.T, db *sqlx.DB) (*services.OrderService, *services.CartService, *services.ProductService) {
	t.Helper()
	orderRepo := repos.NewOrderRepo(db)
	productSvc := services.NewProductService(repos.NewProductRepo(db))
	orderSvc := services.NewOrderService(orderRepo, localGateway{products: productSvc})
	return orderSvc, services.NewCartService(orderRepo), productSvc
}

func orderStatus(t *testing.T, db *sqlx.DB, orderID string) string {
	t.Helper()
	var s string
	if err := db.Get(&s, `SELECT status FROM orders WHERE id=?`, orderID); err != nil {
		t.Fatal(err)
	}
	return s
}

func cartOrderID(t *testing.T, cart *services.CartService, customerID string) string {
	t.Helper()
	orders, err := cart.GetCart(customerID)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 {
		t.Fatalf("want one cart order, got %d", len(orders))
	}
	return orders[0].ID
}

func TestCheckout_Succeeds(t *testing.T) {
	db := checkoutDB(t)
	orderSvc, cart, _ := checkoutFixture(t, db)
	seedProduct(t, db, "pa", "Alpha", 10, 5)

	if err := cart.AddToCart("cust-1", "pa", 2); err != nil {
		t.Fatal(err)
	}
	oid := cartOrderID(t, cart, "cust-1")

	resp, err := orderSvc.Checkout(context.Background(), oid, "Bearer test")
	if err != nil {
		t.Fatal(err)
	}
	if resp.OrderID != oid || resp.CustomerID != "cust-1" || resp.Status != domain.StatusPaid {
		t.Fatalf("bad checkout response: %+v", resp)
	}
	if got := orderStatus(t, db, oid); got != "PAID" {
		t.Fatalf("want PAID, got %s", got)
	}
	if got := stockOf(t, db, "pa"); got != 3 {
		t.Fatalf("want stock 3 after reservation, got %d", got)
	}
}

func TestCheckout_InsufficientStockFailsWholeOrder(t *testing.T) {
	db := checkoutDB(t)
	orderSvc, cart, _ := checkoutFixture(t, db)
	seedProduct(t, db, "pa", "Alpha", 10, 5)
	seedProduct(t, db, "pb", "Beta", 10, 1)

	if err := cart.AddToCart("cust-1", "pa", 3); err != nil {
		t.Fatal(err)
	}
	if err := cart.AddToCart("cust-1", "pb", 2); err != nil {
		t.Fatal(err)
	}
	oid := cartOrderID(t, cart, "cust-1")

	_, err := orderSvc.Checkout(context.Background(), oid, "Bearer test")
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Beta") || !strings.Contains(err.Error(), "insufficient stock") {
		t.Fatalf("combined error should name the short product: %v", err)
	}
	// Validation failed before the reserve call: nothing moved.
	if got := stockOf(t, db, "pa"); got != 5 {
		t.Fatalf("pa stock must be untouched, got %d", got)
	}
	if got := stockOf(t, db, "pb"); got != 1 {
		t.Fatalf("pb stock must be untouched, got %d", got)
	}
	if got := orderStatus(t, db, oid); got != "CREATED" {
		t.Fatalf("order must stay CREATED, got %s", got)
	}
}

func TestCheckout_MissingProductReported(t *testing.T) {
	db := checkoutDB(t)
	orderSvc, cart, _ := checkoutFixture(t, db)

	if err := cart.AddToCart("cust-1", "ghost", 1); err != nil {
		t.Fatal(err)
	}
	oid := cartOrderID(t, cart, "cust-1")

	_, err := orderSvc.Checkout(context.Background(), oid, "Bearer test")
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("error should name the unknown product id: %v", err)
	}
	if got := orderStatus(t, db, oid); got != "CREATED" {
		t.Fatalf("order must stay CREATED, got %s", got)
	}
}

func TestCheckout_OnlyCreatedOrdersTransition(t *testing.T) {
	db := checkoutDB(t)
	orderSvc, cart, _ := checkoutFixture(t, db)
	seedProduct(t, db, "pa", "Alpha", 10, 5)

	if err := cart.AddToCart("cust-1", "pa", 1); err != nil {
		t.Fatal(err)
	}
	oid := cartOrderID(t, cart, "cust-1")

	if _, err := orderSvc.Checkout(context.Background(), oid, "Bearer test"); err != nil {
		t.Fatal(err)
	}

	// Second attempt hits the PAID order and must be rejected without
	// touching stock again.
	_, err := orderSvc.Checkout(context.Background(), oid, "Bearer test")
	if !domain.IsKind(err, domain.KindStateConflict) {
		t.Fatalf("want state-conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "PAID") {
		t.Fatalf("error should name the current status: %v", err)
	}
	if got := stockOf(t, db, "pa"); got != 4 {
		t.Fatalf("stock decremented twice: got %d", got)
	}
	if got := orderStatus(t, db, oid); got != "PAID" {
		t.Fatalf("status must remain PAID, got %s", got)
	}
}

func TestCheckout_OrderNotFound(t *testing.T) {
	db := checkoutDB(t)
	orderSvc, _, _ := checkoutFixture(t, db)

	_, err := orderSvc.Checkout(context.Background(), "no-such-order", "Bearer test")
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("want not-found, got %v", err)
	}
}

func TestCheckout_ReserveFailureLeavesOrderCreated(t *testing.T) {
	db := checkoutDB(t)
	orderRepo := repos.NewOrderRepo(db)
	productSvc := services.NewProductService(repos.NewProductRepo(db))
	cart := services.NewCartService(orderRepo)
	orderSvc := services.NewOrderService(orderRepo, failingGateway{localGateway{products: productSvc}})
	seedProduct(t, db, "pa", "Alpha", 10, 5)

	if err := cart.AddToCart("cust-1", "pa", 2); err != nil {
		t.Fatal(err)
	}
	oid := cartOrderID(t, cart, "cust-1")

	_, err := orderSvc.Checkout(context.Background(), oid, "Bearer test")
	if err == nil {
		t.Fatal("want reserve failure to surface")
	}
	if got := orderStatus(t, db, oid); got != "CREATED" {
		t.Fatalf("order must stay CREATED after reserve failure, got %s", got)
	}
}
