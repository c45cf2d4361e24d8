package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite takes one writer at a time; a single pooled connection also
	// keeps :memory: databases coherent across goroutines.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline catalog if DB is empty
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates all tables and indexes. Exported so tests can bootstrap
// an in-memory database with the exact production schema, partial unique
// index included.
func EnsureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories (garment kinds: tees, hoodies, ...)
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Colors
CREATE TABLE IF NOT EXISTS colors(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  hex TEXT NOT NULL CHECK (hex LIKE '#%' AND LENGTH(hex) = 7)
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_colors_name_nocase ON colors(LOWER(name));

-- Garments: the purchasable variant (category x color x size) carrying stock
CREATE TABLE IF NOT EXISTS garments(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  color_id TEXT NOT NULL REFERENCES colors(id) ON DELETE CASCADE,
  size TEXT NOT NULL CHECK (size IN ('XS','S','M','L','XL','XXL')),
  count INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
  price INTEGER NOT NULL DEFAULT 0 CHECK (price >= 0),
  UNIQUE(category_id, color_id, size)
);
CREATE INDEX IF NOT EXISTS idx_garments_category ON garments(category_id);

-- Products: designs priced on top of a garment
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT,
  price INTEGER NOT NULL CHECK (price >= 0),
  embroidery INTEGER NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

CREATE TABLE IF NOT EXISTS product_garments(
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  garment_id TEXT NOT NULL REFERENCES garments(id) ON DELETE CASCADE,
  PRIMARY KEY (product_id, garment_id)
);

-- Carts: one per user, consumed into an order at checkout
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  user_id TEXT UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS cart_items(
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  garment_id TEXT NOT NULL REFERENCES garments(id) ON DELETE RESTRICT,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  created_at TEXT,
  updated_at TEXT,
  UNIQUE(cart_id, product_id, garment_id)
);

-- Orders: never deleted; cancellation is a status transition
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id),
  address TEXT NOT NULL,
  phone TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'WP'
    CHECK (status IN ('WP','PD','IW','DR','ID','DV','CN')),
  total_sum INTEGER NOT NULL DEFAULT 0 CHECK (total_sum >= 0),
  payment_id TEXT,
  payment_status TEXT NOT NULL DEFAULT 'pending'
    CHECK (payment_status IN ('pending','succeeded','canceled')),
  confirmation_url TEXT,
  tracking_code TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_payment ON orders(payment_id);
-- At most one order awaiting payment per user
CREATE UNIQUE INDEX IF NOT EXISTS unique_user_waiting_payment
  ON orders(user_id) WHERE status = 'WP';

CREATE TABLE IF NOT EXISTS order_items(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id),
  garment_id TEXT NOT NULL REFERENCES garments(id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  price INTEGER NOT NULL CHECK (price >= 0)
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);

-- Constructor products: user-submitted custom designs awaiting moderation
CREATE TABLE IF NOT EXISTS constructor_products(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  garment_id TEXT NOT NULL REFERENCES garments(id) ON DELETE CASCADE,
  status TEXT NOT NULL DEFAULT 'IM' CHECK (status IN ('IM','AC','RJ')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_constructor_user ON constructor_products(user_id);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','STAFF','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo catalog")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  ('tshirts','T-Shirts'),
	  ('hoodies','Hoodies'),
	  ('sweatshirts','Sweatshirts')`)

	tx.MustExec(`INSERT INTO colors(id,name,hex) VALUES
	  ('black','Black','#000000'),
	  ('white','White','#ffffff'),
	  ('forest','Forest Green','#008000')`)

	tx.MustExec(`INSERT INTO garments(id,category_id,color_id,size,count,price) VALUES
	  ('tee-black-m','tshirts','black','M',10,50),
	  ('tee-black-l','tshirts','black','L',6,50),
	  ('tee-white-m','tshirts','white','M',0,50),
	  ('hoodie-forest-l','hoodies','forest','L',4,120),
	  ('hoodie-black-xl','hoodies','black','XL',2,120)`)

	tx.MustExec(`INSERT INTO products(id,title,description,price,embroidery,active) VALUES
	  ('fern-crest','Fern Crest','Minimal fern print on the chest',100,0,1),
	  ('fox-stitch','Fox Stitch','Embroidered fox, left sleeve',150,1,1),
	  ('plain','Plain','No print, garment only',0,0,1)`)

	tx.MustExec(`INSERT INTO product_garments(product_id,garment_id) VALUES
	  ('fern-crest','tee-black-m'),
	  ('fern-crest','tee-black-l'),
	  ('fern-crest','tee-white-m'),
	  ('fox-stitch','hoodie-forest-l'),
	  ('fox-stitch','hoodie-black-xl'),
	  ('plain','tee-black-m'),
	  ('plain','tee-white-m')`)

	return tx.Commit()
}

// seedUsers ensures demo users exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-alice", "alice@stitchline.test", "Alice", "USER", "Passw0rd!"),
		mk("u-bob", "bob@stitchline.test", "Bob", "USER", "Passw0rd!"),
		mk("u-staff", "staff@stitchline.test", "Staff", "STAFF", "Passw0rd!"),
		mk("u-admin", "admin@stitchline.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
