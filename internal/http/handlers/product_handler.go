package handlers

import (
	"github.com/gofiber/fiber/v2"

	"commerce/internal/domain"
	applog "commerce/internal/log"
	"commerce/internal/services"
	"commerce/internal/validate"
)

type ProductHandler struct {
	Products *services.ProductService
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductCreateInput
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, "product.create", domain.Validationf("malformed request body"))
	}
	p, err := h.Products.Create(in)
	if err != nil {
		return writeError(c, "product.create", err)
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": p.ID, "name": p.Name})
	return c.JSON(p)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return writeError(c, "product.get", domain.Validationf("invalid product id"))
	}
	p, err := h.Products.Find(id)
	if err != nil {
		return writeError(c, "product.get", err)
	}
	return c.JSON(p)
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	ps, err := h.Products.List()
	if err != nil {
		return writeError(c, "product.list", err)
	}
	return c.JSON(ps)
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

// ByIDs is the batched lookup checkout validation rides on.
func (h *ProductHandler) ByIDs(c *fiber.Ctx) error {
	var in idsRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, "product.by_ids", domain.Validationf("malformed request body"))
	}
	ps, err := h.Products.FindByIDs(in.IDs)
	if err != nil {
		return writeError(c, "product.by_ids", err)
	}
	return c.JSON(ps)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in services.ProductUpdateInput
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, "product.update", domain.Validationf("malformed request body"))
	}
	p, err := h.Products.Update(in)
	if err != nil {
		return writeError(c, "product.update", err)
	}
	applog.Audit(c, "product.update", map[string]any{"product_id": p.ID})
	return c.JSON(p)
}

func (h *ProductHandler) DecreaseStock(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return writeError(c, "product.stock.decrease", domain.Validationf("invalid product id"))
	}
	qty, ok := validate.Quantity(c.Query("quantity"))
	if !ok {
		return writeError(c, "product.stock.decrease", domain.Validationf("quantity must be positive"))
	}
	p, err := h.Products.DecreaseStock(id, qty)
	if err != nil {
		return writeError(c, "product.stock.decrease", err)
	}
	applog.Audit(c, "product.stock.decrease", map[string]any{"product_id": id, "quantity": qty, "stock": p.Stock})
	return c.JSON(p)
}

func (h *ProductHandler) IncreaseStock(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return writeError(c, "product.stock.increase", domain.Validationf("invalid product id"))
	}
	qty, ok := validate.Quantity(c.Query("quantity"))
	if !ok {
		return writeError(c, "product.stock.increase", domain.Validationf("quantity must be positive"))
	}
	p, err := h.Products.IncreaseStock(id, qty)
	if err != nil {
		return writeError(c, "product.stock.increase", err)
	}
	applog.Audit(c, "product.stock.increase", map[string]any{"product_id": id, "quantity": qty, "stock": p.Stock})
	return c.JSON(p)
}

type batchRequest struct {
	Items []domain.StockUpdate `json:"items"`
}

// BatchDecrease applies a set of decrements as one all-or-nothing unit;
// this is checkout's reserve call.
func (h *ProductHandler) BatchDecrease(c *fiber.Ctx) error {
	var in batchRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, "product.stock.batch_decrease", domain.Validationf("malformed request body"))
	}
	if err := h.Products.BatchDecreaseStock(in.Items); err != nil {
		return writeError(c, "product.stock.batch_decrease", err)
	}
	applog.Audit(c, "product.stock.batch_decrease", map[string]any{"items": len(in.Items)})
	return c.SendStatus(fiber.StatusOK)
}
