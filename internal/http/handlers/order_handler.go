package handlers

import (
	"github.com/gofiber/fiber/v2"

	"commerce/internal/domain"
	applog "commerce/internal/log"
	"commerce/internal/services"
	"commerce/internal/validate"
)

type OrderHandler struct {
	Cart   *services.CartService
	Orders *services.OrderService
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// AddToCart upserts a line into the caller's cart; the acting customer is
// the verified identity, never a field of the request.
func (h *OrderHandler) AddToCart(c *fiber.Ctx) error {
	identity := CurrentIdentity(c)
	var in addToCartRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, "cart.add", domain.Validationf("malformed request body"))
	}
	if _, ok := validate.ID(in.ProductID); !ok {
		return writeError(c, "cart.add", domain.Validationf("invalid product id"))
	}
	if err := h.Cart.AddToCart(identity.ID, in.ProductID, in.Quantity); err != nil {
		return writeError(c, "cart.add", err)
	}
	applog.Audit(c, "cart.add", map[string]any{
		"customer_id": identity.ID, "product_id": in.ProductID, "quantity": in.Quantity,
	})
	return c.SendStatus(fiber.StatusOK)
}

func (h *OrderHandler) RemoveProduct(c *fiber.Ctx) error {
	identity := CurrentIdentity(c)
	productID, ok := validate.ID(c.Params("productId"))
	if !ok {
		return writeError(c, "cart.remove", domain.Validationf("invalid product id"))
	}
	if err := h.Cart.RemoveProduct(identity.ID, productID); err != nil {
		return writeError(c, "cart.remove", err)
	}
	applog.Audit(c, "cart.remove", map[string]any{"customer_id": identity.ID, "product_id": productID})
	return c.SendStatus(fiber.StatusOK)
}

func (h *OrderHandler) ClearCart(c *fiber.Ctx) error {
	identity := CurrentIdentity(c)
	if err := h.Cart.Clear(identity.ID); err != nil {
		return writeError(c, "cart.clear", err)
	}
	applog.Audit(c, "cart.clear", map[string]any{"customer_id": identity.ID})
	return c.SendStatus(fiber.StatusOK)
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.Orders.ListAll()
	if err != nil {
		return writeError(c, "order.list", err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return writeError(c, "order.get", domain.Validationf("invalid order id"))
	}
	o, err := h.Orders.Find(id)
	if err != nil {
		return writeError(c, "order.get", err)
	}
	return c.JSON(o)
}

// ByCustomer returns the customer's CREATED orders, i.e. their cart.
func (h *OrderHandler) ByCustomer(c *fiber.Ctx) error {
	customerID, ok := validate.ID(c.Params("customerId"))
	if !ok {
		return writeError(c, "order.by_customer", domain.Validationf("invalid customer id"))
	}
	orders, err := h.Cart.GetCart(customerID)
	if err != nil {
		return writeError(c, "order.by_customer", err)
	}
	return c.JSON(orders)
}

// Checkout forwards the caller's bearer so the downstream product calls
// run under the same identity.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return writeError(c, "order.checkout", domain.Validationf("invalid order id"))
	}
	resp, err := h.Orders.Checkout(c.UserContext(), id, c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return writeError(c, "order.checkout", err)
	}
	applog.Audit(c, "order.checkout", map[string]any{
		"order_id": resp.OrderID, "customer_id": resp.CustomerID, "status": resp.Status,
	})
	return c.JSON(resp)
}
