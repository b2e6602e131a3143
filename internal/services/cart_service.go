package services

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"commerce/internal/domain"
	"commerce/internal/repos"
)

// CartService mutates the customer's cart, which is their single
// CREATED-status order. The one-cart-per-customer invariant is held by
// construction: every mutation looks up the existing CREATED order first
// and only builds a new one when none exists.
type CartService struct {
	Orders *repos.OrderRepo
}

func NewCartService(orders *repos.OrderRepo) *CartService {
	return &CartService{Orders: orders}
}

// AddToCart puts productID in the cart with exactly quantity units. A
// product already in the cart has its quantity replaced, not incremented:
// adding q1 then q2 leaves one line with q2. Availability is not checked
// here; stock is only consulted at checkout.
func (s *CartService) AddToCart(customerID, productID string, quantity int) error {
	if quantity <= 0 {
		return domain.Validationf("quantity must be positive")
	}

	cart, err := s.Orders.FindCartByCustomer(customerID)
	if errors.Is(err, sql.ErrNoRows) {
		cart = &domain.Order{
			ID:         uuid.NewString(),
			CustomerID: customerID,
			Status:     domain.StatusCreated,
		}
	} else if err != nil {
		return err
	}

	if item := cart.ItemFor(productID); item != nil {
		item.Quantity = quantity
	} else {
		cart.Items = append(cart.Items, domain.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   cart.ID,
			ProductID: productID,
			Quantity:  quantity,
		})
	}
	return s.Orders.Save(cart)
}

// RemoveProduct deletes the cart line for productID. When the last line
// goes, the order row goes with it; an empty cart never persists.
func (s *CartService) RemoveProduct(customerID, productID string) error {
	cart, err := s.Orders.FindCartByCustomer(customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("cart is empty")
	} else if err != nil {
		return err
	}

	if cart.ItemFor(productID) == nil {
		return domain.NotFoundf("product not found in cart")
	}
	return s.Orders.RemoveItem(cart.ID, productID)
}

// Clear drops the whole cart, items and order row both.
func (s *CartService) Clear(customerID string) error {
	cart, err := s.Orders.FindCartByCustomer(customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("no cart found for customer: %s", customerID)
	} else if err != nil {
		return err
	}
	return s.Orders.Delete(cart.ID)
}

// GetCart returns the customer's CREATED orders; by construction the slice
// has at most one element.
func (s *CartService) GetCart(customerID string) ([]domain.Order, error) {
	return s.Orders.ListByCustomerAndStatus(customerID, domain.StatusCreated)
}
