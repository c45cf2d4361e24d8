package repos

import (
	"time"

	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// CartLine is a cart item joined with the prices that make up its total.
type CartLine struct {
	ID           string `db:"id"`
	ProductID    string `db:"product_id"`
	ProductTitle string `db:"title"`
	ProductPrice int    `db:"product_price"`
	GarmentID    string `db:"garment_id"`
	GarmentPrice int    `db:"garment_price"`
	GarmentCount int    `db:"garment_count"`
	Quantity     int    `db:"quantity"`
}

func (l CartLine) UnitPrice() int  { return l.ProductPrice + l.GarmentPrice }
func (l CartLine) TotalPrice() int { return l.UnitPrice() * l.Quantity }

// EnsureCart returns the user's cart id, creating the cart on first use.
// One cart per user; the cart id doubles as the user id.
func (r *CartRepo) EnsureCart(userID string) (string, error) {
	var cartID string
	if err := r.db.Get(&cartID, `SELECT id FROM carts WHERE user_id = ?`, userID); err == nil {
		return cartID, nil
	}
	_, err := r.db.Exec(`INSERT INTO carts(id,user_id,updated_at) VALUES(?,?,?)`,
		userID, userID, time.Now().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return userID, nil
}

// EnsureCartTx is EnsureCart inside an open transaction (checkout path, which
// must not touch the pool while its tx is live).
func (r *CartRepo) EnsureCartTx(tx *sqlx.Tx, userID string) (string, error) {
	var cartID string
	if err := tx.Get(&cartID, `SELECT id FROM carts WHERE user_id = ?`, userID); err == nil {
		return cartID, nil
	}
	_, err := tx.Exec(`INSERT INTO carts(id,user_id,updated_at) VALUES(?,?,?)`,
		userID, userID, time.Now().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return userID, nil
}

// AddItem inserts a line for (product, garment) or bumps its quantity by one.
// Returns the resulting quantity.
func (r *CartRepo) AddItem(cartID, itemID, productID, garmentID string) (int, error) {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(id,cart_id,product_id,garment_id,quantity,created_at)
		VALUES(?,?,?,?,1,CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,product_id,garment_id) DO UPDATE
		SET quantity = quantity + 1, updated_at = CURRENT_TIMESTAMP
	`, itemID, cartID, productID, garmentID)
	if err != nil {
		return 0, err
	}
	var qty int
	err = r.db.Get(&qty, `
		SELECT quantity FROM cart_items
		WHERE cart_id = ? AND product_id = ? AND garment_id = ?
	`, cartID, productID, garmentID)
	return qty, err
}

const cartLinesQuery = `
  SELECT ci.id, ci.product_id, p.title, p.price AS product_price,
         ci.garment_id, g.price AS garment_price, g.count AS garment_count,
         ci.quantity
  FROM cart_items ci
  JOIN products p ON p.id = ci.product_id
  JOIN garments g ON g.id = ci.garment_id
  WHERE ci.cart_id = ?
  ORDER BY ci.created_at, ci.id`

func (r *CartRepo) Lines(cartID string) ([]CartLine, error) {
	lines := []CartLine{}
	err := r.db.Select(&lines, cartLinesQuery, cartID)
	return lines, err
}

// LinesTx reads the cart inside the checkout transaction so the quantities
// the stock check sees are the quantities the order snapshots.
func (r *CartRepo) LinesTx(tx *sqlx.Tx, cartID string) ([]CartLine, error) {
	lines := []CartLine{}
	err := tx.Select(&lines, cartLinesQuery, cartID)
	return lines, err
}

// Item fetches one cart line by id, scoped to a cart.
func (r *CartRepo) Item(cartID, itemID string) (CartLine, error) {
	var l CartLine
	err := r.db.Get(&l, `
	  SELECT ci.id, ci.product_id, p.title, p.price AS product_price,
	         ci.garment_id, g.price AS garment_price, g.count AS garment_count,
	         ci.quantity
	  FROM cart_items ci
	  JOIN products p ON p.id = ci.product_id
	  JOIN garments g ON g.id = ci.garment_id
	  WHERE ci.cart_id = ? AND ci.id = ?
	`, cartID, itemID)
	return l, err
}

func (r *CartRepo) SetQuantity(cartID, itemID string, qty int) error {
	_, err := r.db.Exec(`
		UPDATE cart_items SET quantity = ?, updated_at = CURRENT_TIMESTAMP
		WHERE cart_id = ? AND id = ?
	`, qty, cartID, itemID)
	return err
}

func (r *CartRepo) DeleteItem(cartID, itemID string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ? AND id = ?`, cartID, itemID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ClearTx empties the cart inside the checkout transaction: the cart is
// consumed into the order it produced.
func (r *CartRepo) ClearTx(tx *sqlx.Tx, cartID string) error {
	_, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	return err
}
