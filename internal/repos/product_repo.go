package repos

import (
	"github.com/jmoiron/sqlx"

	"commerce/internal/domain"
)

type ProductRepo struct{ DB *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productColumns = `id, name, price, stock, created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) Create(p *domain.Product) error {
	_, err := r.DB.Exec(`
		INSERT INTO products(id,name,price,stock) VALUES(?,?,?,?)
	`, p.ID, p.Name, p.Price, p.Stock)
	return err
}

func (r *ProductRepo) ExistsByName(name string) (bool, error) {
	var n int
	if err := r.DB.Get(&n, `SELECT COUNT(*) FROM products WHERE LOWER(name)=LOWER(?)`, name); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.DB.Get(&p, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	return p, err
}

func (r *ProductRepo) List() ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.DB.Select(&out, `SELECT `+productColumns+` FROM products ORDER BY name`)
	return out, err
}

// GetByIDs returns the products matching ids in one query. Ids with no
// matching row are simply absent from the result.
func (r *ProductRepo) GetByIDs(ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	out := []domain.Product{}
	err = r.DB.Select(&out, r.DB.Rebind(query), args...)
	return out, err
}

func (r *ProductRepo) Update(p *domain.Product) error {
	_, err := r.DB.Exec(`
		UPDATE products SET name=?, price=?, stock=?, updated_at=CURRENT_TIMESTAMP WHERE id=?
	`, p.Name, p.Price, p.Stock, p.ID)
	return err
}

// AdjustStock applies a signed stock delta guarded by the current value:
// the row is only touched when stock >= guard, which makes a racing
// decrement on the same product lose cleanly instead of going negative.
// Returns false when the guard rejected the update.
func (r *ProductRepo) AdjustStock(id string, delta, guard int) (bool, error) {
	res, err := r.DB.Exec(`
		UPDATE products SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, delta, id, guard)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AdjustStockTx is AdjustStock inside a caller-owned transaction, used by
// the all-or-nothing batch decrement.
func (r *ProductRepo) AdjustStockTx(tx *sqlx.Tx, id string, delta, guard int) (bool, error) {
	res, err := tx.Exec(`
		UPDATE products SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, delta, id, guard)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ProductRepo) Begin() (*sqlx.Tx, error) { return r.DB.Beginx() }
