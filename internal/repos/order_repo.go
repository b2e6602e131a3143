package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"commerce/internal/domain"
)

type OrderRepo struct{ DB *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{DB: db} }

const orderColumns = `id, customer_id, status, created_at, COALESCE(updated_at,'') AS updated_at`

func (r *OrderRepo) items(orderID string) ([]domain.OrderItem, error) {
	out := []domain.OrderItem{}
	err := r.DB.Select(&out, `
		SELECT id, order_id, product_id, quantity
		FROM order_items WHERE order_id = ? ORDER BY rowid
	`, orderID)
	return out, err
}

func (r *OrderRepo) load(o *domain.Order) error {
	items, err := r.items(o.ID)
	if err != nil {
		return err
	}
	o.Items = items
	return nil
}

// FindCartByCustomer returns the customer's CREATED order with its items.
// sql.ErrNoRows means the customer has no cart.
func (r *OrderRepo) FindCartByCustomer(customerID string) (*domain.Order, error) {
	var o domain.Order
	err := r.DB.Get(&o, `
		SELECT `+orderColumns+` FROM orders
		WHERE customer_id = ? AND status = ?
		ORDER BY created_at LIMIT 1
	`, customerID, domain.StatusCreated)
	if err != nil {
		return nil, err
	}
	if err := r.load(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) Get(id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.DB.Get(&o, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id); err != nil {
		return nil, err
	}
	if err := r.load(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) ListAll() ([]domain.Order, error) {
	orders := []domain.Order{}
	if err := r.DB.Select(&orders, `SELECT `+orderColumns+` FROM orders ORDER BY created_at`); err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.load(&orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *OrderRepo) ListByCustomerAndStatus(customerID string, status domain.OrderStatus) ([]domain.Order, error) {
	orders := []domain.Order{}
	err := r.DB.Select(&orders, `
		SELECT `+orderColumns+` FROM orders
		WHERE customer_id = ? AND status = ? ORDER BY created_at
	`, customerID, status)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.load(&orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// Save upserts the order row and all of its items in one transaction,
// mirroring a cascading save of the aggregate.
func (r *OrderRepo) Save(o *domain.Order) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO orders(id, customer_id, status)
		VALUES(?,?,?)
		ON CONFLICT(id) DO UPDATE SET status=excluded.status, updated_at=CURRENT_TIMESTAMP
	`, o.ID, o.CustomerID, o.Status); err != nil {
		return err
	}
	for _, it := range o.Items {
		if _, err := tx.Exec(`
			INSERT INTO order_items(id, order_id, product_id, quantity)
			VALUES(?,?,?,?)
			ON CONFLICT(order_id, product_id) DO UPDATE SET quantity=excluded.quantity
		`, it.ID, o.ID, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RemoveItem deletes the cart line and, when it was the last one, the
// order row. One transaction, so an insert landing mid-sequence cannot be
// cascaded away with the order.
func (r *OrderRepo) RemoveItem(orderID, productID string) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM order_items WHERE order_id = ? AND product_id = ?`, orderID, productID); err != nil {
		return err
	}
	var n int
	if err := tx.Get(&n, `SELECT COUNT(*) FROM order_items WHERE order_id = ?`, orderID); err != nil {
		return err
	}
	if n == 0 {
		if _, err := tx.Exec(`DELETE FROM orders WHERE id = ?`, orderID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes the order row; order_items cascade.
func (r *OrderRepo) Delete(orderID string) error {
	_, err := r.DB.Exec(`DELETE FROM orders WHERE id = ?`, orderID)
	return err
}

func (r *OrderRepo) UpdateStatus(orderID string, status domain.OrderStatus) error {
	res, err := r.DB.Exec(`
		UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
