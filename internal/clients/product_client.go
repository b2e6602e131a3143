package clients

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"commerce/internal/domain"
)

// ProductClient is the order service's gateway to the product service. It
// implements services.ProductGateway. Cancellation rides the Agent's
// request timeout; ctx is accepted for tracing continuity.
type ProductClient struct {
	BaseURL string
}

func NewProductClient(baseURL string) *ProductClient { return &ProductClient{BaseURL: baseURL} }

type idsPayload struct {
	IDs []string `json:"ids"`
}

type batchPayload struct {
	Items []domain.StockUpdate `json:"items"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// GetByIDs performs the single batched product lookup of checkout Step 1.
func (c *ProductClient) GetByIDs(_ context.Context, bearer string, ids []string) ([]domain.Product, error) {
	agent := fiber.Post(c.BaseURL + "/api/products/by-ids")
	agent.Set(fiber.HeaderAuthorization, bearer)
	agent.Timeout(callTimeout)
	agent.JSON(idsPayload{IDs: ids})

	// Status first, decode second: error responses carry an {"error": ...}
	// object, not a product array.
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("product service call: %w", errs[0])
	}
	if code != fiber.StatusOK {
		return nil, remoteError(code, body)
	}
	var products []domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decode product service response: %w", err)
	}
	return products, nil
}

// BatchDecreaseStock performs the single batched decrement of checkout
// Step 2. The product service applies it all-or-nothing; any rejection
// comes back as one combined error.
func (c *ProductClient) BatchDecreaseStock(_ context.Context, bearer string, items []domain.StockUpdate) error {
	agent := fiber.Post(c.BaseURL + "/api/products/batch/decrease-stock")
	agent.Set(fiber.HeaderAuthorization, bearer)
	agent.Timeout(callTimeout)
	agent.JSON(batchPayload{Items: items})

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("product service call: %w", errs[0])
	}
	if code != fiber.StatusOK {
		return remoteError(code, body)
	}
	return nil
}

// remoteError rebuilds a domain error from the product service's JSON
// error body so the coordinator keeps its kind taxonomy across the wire.
func remoteError(code int, body []byte) error {
	var ep errorPayload
	if err := json.Unmarshal(body, &ep); err == nil && ep.Error != "" {
		switch code {
		case fiber.StatusBadRequest:
			return domain.Validationf("%s", ep.Error)
		case fiber.StatusNotFound:
			return domain.NotFoundf("%s", ep.Error)
		case fiber.StatusUnauthorized:
			return domain.Unauthenticatedf("%s", ep.Error)
		}
		return fmt.Errorf("product service returned status %d: %s", code, ep.Error)
	}
	return fmt.Errorf("product service returned status %d", code)
}
