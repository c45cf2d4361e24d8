package repos

import (
	"github.com/jmoiron/sqlx"

	"stitchline/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `
  id, user_id, address, phone, status, total_sum,
  COALESCE(payment_id,'') AS payment_id, payment_status,
  COALESCE(confirmation_url,'') AS confirmation_url,
  COALESCE(tracking_code,'') AS tracking_code,
  created_at, COALESCE(updated_at,'') AS updated_at`

// ---------- Checkout transaction pieces ----------

// HasWaitingPaymentTx reports whether the user already has an order awaiting
// payment. The partial unique index is the hard guarantee; this pre-check
// inside the same transaction turns the constraint violation into a friendly
// validation error.
func (r *OrderRepo) HasWaitingPaymentTx(tx *sqlx.Tx, userID string) (bool, error) {
	var n int
	err := tx.Get(&n, `
	  SELECT COUNT(*) FROM orders WHERE user_id = ? AND status = ?
	`, userID, domain.StatusWaitingPayment)
	return n > 0, err
}

// CreateTx inserts a new order header in waiting_payment state.
func (r *OrderRepo) CreateTx(tx *sqlx.Tx, orderID, userID, address, phone string) error {
	_, err := tx.Exec(`
	  INSERT INTO orders(id, user_id, address, phone, status, payment_status, created_at, updated_at)
	  VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, orderID, userID, address, phone, domain.StatusWaitingPayment, domain.PaymentPending)
	return err
}

func (r *OrderRepo) InsertItemTx(tx *sqlx.Tx, it domain.OrderItem) error {
	_, err := tx.Exec(`
	  INSERT INTO order_items(id, order_id, product_id, garment_id, quantity, price)
	  VALUES(?, ?, ?, ?, ?, ?)
	`, it.ID, it.OrderID, it.ProductID, it.GarmentID, it.Quantity, it.Price)
	return err
}

// SetPaymentTx stores the provider intent and the order total produced by the
// placement transaction.
func (r *OrderRepo) SetPaymentTx(tx *sqlx.Tx, orderID string, totalSum int, paymentID, paymentStatus, confirmationURL string) error {
	_, err := tx.Exec(`
	  UPDATE orders
	  SET total_sum = ?, payment_id = ?, payment_status = ?, confirmation_url = ?,
	      updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, totalSum, paymentID, paymentStatus, confirmationURL, orderID)
	return err
}

// ---------- Reads ----------

func (r *OrderRepo) Get(orderID string) (domain.Order, []domain.OrderItem, error) {
	var o domain.Order
	if err := r.db.Get(&o, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, orderID); err != nil {
		return domain.Order{}, nil, err
	}
	items, err := r.Items(orderID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	return o, items, nil
}

func (r *OrderRepo) Items(orderID string) ([]domain.OrderItem, error) {
	items := []domain.OrderItem{}
	err := r.db.Select(&items, `
	  SELECT id, order_id, product_id, garment_id, quantity, price
	  FROM order_items WHERE order_id = ?
	  ORDER BY id
	`, orderID)
	return items, err
}

func (r *OrderRepo) ItemsTx(tx *sqlx.Tx, orderID string) ([]domain.OrderItem, error) {
	items := []domain.OrderItem{}
	err := tx.Select(&items, `
	  SELECT id, order_id, product_id, garment_id, quantity, price
	  FROM order_items WHERE order_id = ?
	  ORDER BY id
	`, orderID)
	return items, err
}

func (r *OrderRepo) ListByUser(userID string, limit, offset int) ([]domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	out := []domain.Order{}
	err := r.db.Select(&out, `
	  SELECT `+orderColumns+` FROM orders
	  WHERE user_id = ?
	  ORDER BY datetime(created_at) DESC, id
	  LIMIT ? OFFSET ?
	`, userID, limit, offset)
	return out, err
}

// ListAll returns the most recent orders across all users (staff view).
func (r *OrderRepo) ListAll(limit, offset int) ([]domain.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	out := []domain.Order{}
	err := r.db.Select(&out, `
	  SELECT `+orderColumns+` FROM orders
	  ORDER BY datetime(created_at) DESC, id
	  LIMIT ? OFFSET ?
	`, limit, offset)
	return out, err
}

// GetTx loads an order inside a transaction (cancel and webhook paths).
func (r *OrderRepo) GetTx(tx *sqlx.Tx, orderID string) (domain.Order, error) {
	var o domain.Order
	err := tx.Get(&o, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, orderID)
	return o, err
}

// ByPaymentIDTx resolves the order a webhook delivery refers to.
func (r *OrderRepo) ByPaymentIDTx(tx *sqlx.Tx, paymentID string) (domain.Order, error) {
	var o domain.Order
	err := tx.Get(&o, `SELECT `+orderColumns+` FROM orders WHERE payment_id = ?`, paymentID)
	return o, err
}

// AnyItemEmbroideredTx reports whether any ordered product carries an
// embroidery step (decides paid vs in_work after payment succeeds).
func (r *OrderRepo) AnyItemEmbroideredTx(tx *sqlx.Tx, orderID string) (bool, error) {
	var n int
	err := tx.Get(&n, `
	  SELECT COUNT(*) FROM order_items oi
	  JOIN products p ON p.id = oi.product_id
	  WHERE oi.order_id = ? AND p.embroidery = 1
	`, orderID)
	return n > 0, err
}

// ---------- Status transitions ----------

func (r *OrderRepo) SetStatusTx(tx *sqlx.Tx, orderID, status, paymentStatus string) error {
	_, err := tx.Exec(`
	  UPDATE orders SET status = ?, payment_status = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, status, paymentStatus, orderID)
	return err
}

// UpdateStatus moves an order through the fulfillment lifecycle (staff page).
// Optionally records a tracking code.
func (r *OrderRepo) UpdateStatus(orderID, status, trackingCode string) error {
	if trackingCode != "" {
		_, err := r.db.Exec(`
		  UPDATE orders SET status = ?, tracking_code = ?, updated_at = CURRENT_TIMESTAMP
		  WHERE id = ?
		`, status, trackingCode, orderID)
		return err
	}
	_, err := r.db.Exec(`
	  UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, orderID)
	return err
}
