package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"commerce/internal/domain"
	"commerce/internal/observability"
	"commerce/internal/repos"
)

// ProductService is the inventory store: product CRUD plus the stock
// mutation operations the checkout coordinator reserves against.
type ProductService struct {
	Products *repos.ProductRepo
}

func NewProductService(products *repos.ProductRepo) *ProductService {
	return &ProductService{Products: products}
}

type ProductCreateInput struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

func (s *ProductService) Create(in ProductCreateInput) (domain.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Product{}, domain.Validationf("product name is required")
	}
	if in.Price < 0 {
		return domain.Product{}, domain.Validationf("price must not be negative")
	}
	if in.Stock < 0 {
		return domain.Product{}, domain.Validationf("stock must not be negative")
	}
	exists, err := s.Products.ExistsByName(in.Name)
	if err != nil {
		return domain.Product{}, err
	}
	if exists {
		return domain.Product{}, domain.Conflictf("product with this name already exists")
	}
	p := domain.Product{ID: uuid.NewString(), Name: in.Name, Price: in.Price, Stock: in.Stock}
	if err := s.Products.Create(&p); err != nil {
		return domain.Product{}, err
	}
	return s.Products.Get(p.ID)
}

func (s *ProductService) Find(id string) (domain.Product, error) {
	p, err := s.Products.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.NotFoundf("product not found with id: %s", id)
	}
	return p, err
}

// FindByIDs is the batch lookup behind checkout validation. Ids without a
// product row are omitted; the caller detects the hole.
func (s *ProductService) FindByIDs(ids []string) ([]domain.Product, error) {
	return s.Products.GetByIDs(ids)
}

func (s *ProductService) List() ([]domain.Product, error) {
	return s.Products.List()
}

type ProductUpdateInput struct {
	ID    string   `json:"id"`
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
	Stock *int     `json:"stock"`
}

func (s *ProductService) Update(in ProductUpdateInput) (domain.Product, error) {
	p, err := s.Find(in.ID)
	if err != nil {
		return domain.Product{}, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return domain.Product{}, domain.Validationf("price must not be negative")
		}
		p.Price = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return domain.Product{}, domain.Validationf("stock must not be negative")
		}
		p.Stock = *in.Stock
	}
	if err := s.Products.Update(&p); err != nil {
		return domain.Product{}, err
	}
	return s.Products.Get(p.ID)
}

func (s *ProductService) DecreaseStock(id string, quantity int) (domain.Product, error) {
	if quantity <= 0 {
		return domain.Product{}, domain.Validationf("quantity must be positive")
	}
	p, err := s.Find(id)
	if err != nil {
		observability.StockRejections.WithLabelValues("not_found").Inc()
		return domain.Product{}, err
	}
	if p.Stock < quantity {
		observability.StockRejections.WithLabelValues("insufficient").Inc()
		return domain.Product{}, domain.Validationf("available stock: %d, requested: %d", p.Stock, quantity)
	}
	ok, err := s.Products.AdjustStock(id, -quantity, quantity)
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		// A concurrent decrement won the row between our read and write.
		observability.StockRejections.WithLabelValues("conflict").Inc()
		return domain.Product{}, domain.Validationf("insufficient stock for product %s", id)
	}
	return s.Products.Get(id)
}

// IncreaseStock rejects when current stock is below the requested quantity,
// the same guard DecreaseStock uses. Restocking an item whose stock is lower
// than the delivery size therefore fails; callers that need unconditional
// restock go through Update.
func (s *ProductService) IncreaseStock(id string, quantity int) (domain.Product, error) {
	if quantity <= 0 {
		return domain.Product{}, domain.Validationf("quantity must be positive")
	}
	p, err := s.Find(id)
	if err != nil {
		return domain.Product{}, err
	}
	if p.Stock < quantity {
		return domain.Product{}, domain.Validationf("available stock: %d, requested: %d", p.Stock, quantity)
	}
	ok, err := s.Products.AdjustStock(id, quantity, quantity)
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		// A concurrent decrement dropped stock below the guard between our
		// read and write.
		observability.StockRejections.WithLabelValues("conflict").Inc()
		return domain.Product{}, domain.Validationf("available stock changed for product %s", id)
	}
	return s.Products.Get(id)
}

// BatchDecreaseStock applies every (productId, quantity) pair or none of
// them. All lines are validated against one batched fetch before any row is
// touched; the mutations then run inside a single transaction whose
// per-row stock guards catch decrements that raced past validation.
func (s *ProductService) BatchDecreaseStock(items []domain.StockUpdate) error {
	if len(items) == 0 {
		return domain.Validationf("no stock updates provided")
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	products, err := s.Products.GetByIDs(ids)
	if err != nil {
		return err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var errs []string
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			errs = append(errs, fmt.Sprintf("product not found for id: %s", it.ProductID))
			continue
		}
		if it.Quantity <= 0 {
			errs = append(errs, fmt.Sprintf("invalid quantity %d for product %s", it.Quantity, it.ProductID))
			continue
		}
		if p.Stock < it.Quantity {
			errs = append(errs, fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
				it.ProductID, p.Stock, it.Quantity))
		}
	}
	if len(errs) > 0 {
		observability.StockRejections.WithLabelValues("insufficient").Inc()
		return domain.Validationf("batch stock decrease failed: %s", strings.Join(errs, "; "))
	}

	tx, err := s.Products.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range items {
		ok, err := s.Products.AdjustStockTx(tx, it.ProductID, -it.Quantity, it.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			observability.StockRejections.WithLabelValues("conflict").Inc()
			return domain.Validationf("batch stock decrease failed: insufficient stock for product %s", it.ProductID)
		}
	}
	return tx.Commit()
}
