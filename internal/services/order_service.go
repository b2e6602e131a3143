package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"commerce/internal/domain"
	"commerce/internal/observability"
	"commerce/internal/repos"
)

// ProductGateway is the slice of the product service the checkout
// coordinator consumes: one batched lookup and one batched, all-or-nothing
// stock decrement. The bearer credential is forwarded on every call.
type ProductGateway interface {
	GetByIDs(ctx context.Context, bearer string, ids []string) ([]domain.Product, error)
	BatchDecreaseStock(ctx context.Context, bearer string, items []domain.StockUpdate) error
}

type OrderService struct {
	Orders   *repos.OrderRepo
	Products ProductGateway
}

func NewOrderService(orders *repos.OrderRepo, products ProductGateway) *OrderService {
	return &OrderService{Orders: orders, Products: products}
}

// CheckoutResponse is the projection returned on success; item detail is
// available through the order lookup endpoints.
type CheckoutResponse struct {
	OrderID    string             `json:"orderId"`
	CustomerID string             `json:"customerId"`
	Status     domain.OrderStatus `json:"status"`
}

// Checkout drives the CREATED -> PAID transition. The protocol is exactly
// two cross-service calls regardless of cart size: one batched product
// lookup to validate every line, then one batched stock decrement to
// reserve. Validation failures abort before any stock has moved; a reserve
// failure (a concurrent checkout taking the stock between the two calls)
// leaves the order CREATED for the caller to retry or abandon. The two
// calls are not mutually atomic and no lock is held between them; the
// product store's own guarded decrement is what keeps stock from going
// negative under races.
func (s *OrderService) Checkout(ctx context.Context, orderID, bearer string) (CheckoutResponse, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "orders.checkout",
		attribute.String("order.id", orderID))

	resp, result, err := s.checkout(ctx, orderID, bearer)
	observability.CheckoutTotal.WithLabelValues(result).Inc()
	observability.CheckoutDuration.Observe(time.Since(start).Seconds())
	observability.EndSpan(span, err)
	return resp, err
}

func (s *OrderService) checkout(ctx context.Context, orderID, bearer string) (CheckoutResponse, string, error) {
	order, err := s.Orders.Get(orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return CheckoutResponse{}, "not_found", domain.NotFoundf("order not found with id: %s", orderID)
	} else if err != nil {
		return CheckoutResponse{}, "error", err
	}
	if order.Status != domain.StatusCreated {
		return CheckoutResponse{}, "state_conflict",
			domain.StateConflictf("order cannot be checked out. current status: %s", order.Status)
	}

	if err := s.validateAvailability(ctx, bearer, order); err != nil {
		return CheckoutResponse{}, "validation", err
	}
	if err := s.reserveStock(ctx, bearer, order); err != nil {
		return CheckoutResponse{}, "reserve_failed", err
	}

	// Commit. A failure here strands the decremented stock with no paid
	// order; there is no compensation path (see DESIGN.md).
	_, span := observability.StartSpan(ctx, "orders.checkout.commit")
	err = s.Orders.UpdateStatus(order.ID, domain.StatusPaid)
	observability.EndSpan(span, err)
	if err != nil {
		return CheckoutResponse{}, "error", fmt.Errorf("commit order %s after stock reservation: %w", order.ID, err)
	}

	return CheckoutResponse{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Status:     domain.StatusPaid,
	}, "ok", nil
}

// validateAvailability issues the single batched lookup and checks every
// order line against it, accumulating all problems so the caller sees the
// whole picture in one response. Nothing has been mutated yet when this
// fails.
func (s *OrderService) validateAvailability(ctx context.Context, bearer string, order *domain.Order) error {
	ctx, span := observability.StartSpan(ctx, "orders.checkout.validate",
		attribute.Int("order.items", len(order.Items)))

	ids := make([]string, 0, len(order.Items))
	seen := make(map[string]bool, len(order.Items))
	for _, it := range order.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}

	products, err := s.Products.GetByIDs(ctx, bearer, ids)
	if err != nil {
		observability.EndSpan(span, err)
		return fmt.Errorf("load products for order %s: %w", order.ID, err)
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var errs []string
	for _, it := range order.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			errs = append(errs, fmt.Sprintf("product not found for id: %s", it.ProductID))
			continue
		}
		if p.Stock < it.Quantity {
			errs = append(errs, fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)",
				p.Name, it.Quantity, p.Stock))
		}
	}
	if len(errs) > 0 {
		err := domain.Validationf("validation failed: %s", strings.Join(errs, "; "))
		observability.EndSpan(span, err)
		return err
	}
	observability.EndSpan(span, nil)
	return nil
}

// reserveStock issues the single batched decrement. The product store
// re-validates under its own transaction, so a cart that passed validation
// can still be rejected here when a concurrent checkout drained the stock.
func (s *OrderService) reserveStock(ctx context.Context, bearer string, order *domain.Order) error {
	ctx, span := observability.StartSpan(ctx, "orders.checkout.reserve")

	updates := make([]domain.StockUpdate, 0, len(order.Items))
	for _, it := range order.Items {
		updates = append(updates, domain.StockUpdate{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	err := s.Products.BatchDecreaseStock(ctx, bearer, updates)
	observability.EndSpan(span, err)
	if err != nil {
		return fmt.Errorf("reserve stock for order %s: %w", order.ID, err)
	}
	return nil
}

func (s *OrderService) Find(orderID string) (*domain.Order, error) {
	o, err := s.Orders.Get(orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("order not found with id: %s", orderID)
	}
	return o, err
}

func (s *OrderService) ListAll() ([]domain.Order, error) {
	return s.Orders.ListAll()
}
