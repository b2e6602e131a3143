package domain

// OrderStatus is the order lifecycle enum. CREATED doubles as the cart: the
// single CREATED order a customer has is their active cart.
type OrderStatus string

const (
	StatusCreated    OrderStatus = "CREATED"
	StatusPaid       OrderStatus = "PAID"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
	StatusFailed     OrderStatus = "FAILED"
)

type Product struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Price     float64 `db:"price" json:"price"`
	Stock     int     `db:"stock" json:"stock"`
	CreatedAt string  `db:"created_at" json:"createdAt,omitempty"`
	UpdatedAt string  `db:"updated_at" json:"updatedAt,omitempty"`
}

type Order struct {
	ID         string      `db:"id" json:"id"`
	CustomerID string      `db:"customer_id" json:"customerId"`
	Status     OrderStatus `db:"status" json:"status"`
	CreatedAt  string      `db:"created_at" json:"createdAt,omitempty"`
	UpdatedAt  string      `db:"updated_at" json:"updatedAt,omitempty"`
	Items      []OrderItem `db:"-" json:"items"`
}

// ItemFor returns the order line holding productID, or nil.
func (o *Order) ItemFor(productID string) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return &o.Items[i]
		}
	}
	return nil
}

type OrderItem struct {
	ID        string `db:"id" json:"id"`
	OrderID   string `db:"order_id" json:"-"`
	ProductID string `db:"product_id" json:"productId"`
	Quantity  int    `db:"quantity" json:"quantity"`
}

// StockUpdate is one line of a batched stock mutation.
type StockUpdate struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
