package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// OpenDB opens the sqlite store for a service and bootstraps the schema.
// Every service gets the full schema; each binary only touches its own
// tables, and an empty unused table costs nothing.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users (auth service)
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(LOWER(username));
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email    ON users(LOWER(email));

-- Products (product service). Stock lives on the product row; the
-- CHECK keeps stock from ever going negative even if a guard is missed.
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_products_name_nocase ON products(LOWER(name));

-- Orders (order service). A CREATED order is the customer's cart.
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'CREATED',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_orders_customer_status ON orders(customer_id, status);

CREATE TABLE IF NOT EXISTS order_items(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  UNIQUE(order_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
`
	_, err := db.Exec(schema)
	return err
}

// SeedProducts inserts demo catalog rows if the table is empty.
func SeedProducts(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	log.Println("[seed] inserting demo products")
	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO products(id,name,price,stock) VALUES
	  ('prod-keyboard','Mechanical Keyboard',89.99,25),
	  ('prod-mouse','Wireless Mouse',39.50,40),
	  ('prod-monitor','27in Monitor',249.00,10)`)
	return tx.Commit()
}

// SeedUsers ensures a couple of demo accounts exist (idempotent).
func SeedUsers(db *sqlx.DB) error {
	type u struct{ ID, Username, Email, First, Last, Raw string }
	users := []u{
		{"u-alice", "alice", "alice@commerce.test", "Alice", "Nguyen", "Passw0rd!"},
		{"u-bob", "bob", "bob@commerce.test", "Bob", "Marsh", "Passw0rd!"},
	}
	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()
	for _, x := range users {
		h, err := bcrypt.GenerateFromPassword([]byte(x.Raw), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO users(id,username,email,first_name,last_name,password_hash)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT(username) DO NOTHING
		`, x.ID, x.Username, x.Email, x.First, x.Last, string(h)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
