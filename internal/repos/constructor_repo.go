package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Constructor products: user-submitted custom designs that staff accept or
// reject before they can be sold.

const (
	ConstructorInModeration = "IM"
	ConstructorAccepted     = "AC"
	ConstructorRejected     = "RJ"
)

type ConstructorRepo struct{ db *sqlx.DB }

func NewConstructorRepo(db *sqlx.DB) *ConstructorRepo { return &ConstructorRepo{db: db} }

type ConstructorRow struct {
	ID        string `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"-"`
	GarmentID string `db:"garment_id" json:"garment_id"`
	Status    string `db:"status" json:"status"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

func (r *ConstructorRepo) Create(id, userID, garmentID string) error {
	_, err := r.db.Exec(`
	  INSERT INTO constructor_products(id,user_id,garment_id,status)
	  VALUES(?,?,?,?)
	`, id, userID, garmentID, ConstructorInModeration)
	return err
}

func (r *ConstructorRepo) ListByUser(userID string) ([]ConstructorRow, error) {
	out := []ConstructorRow{}
	err := r.db.Select(&out, `
	  SELECT id,user_id,garment_id,status,created_at
	  FROM constructor_products WHERE user_id = ?
	  ORDER BY datetime(created_at) DESC, id
	`, userID)
	return out, err
}

// ListPending returns submissions still awaiting moderation (staff queue).
func (r *ConstructorRepo) ListPending() ([]ConstructorRow, error) {
	out := []ConstructorRow{}
	err := r.db.Select(&out, `
	  SELECT id,user_id,garment_id,status,created_at
	  FROM constructor_products WHERE status = ?
	  ORDER BY datetime(created_at), id
	`, ConstructorInModeration)
	return out, err
}

// Moderate moves a pending submission to accepted or rejected. Decisions are
// final: a row that already left moderation is not updated.
func (r *ConstructorRepo) Moderate(id, status string) error {
	if status != ConstructorAccepted && status != ConstructorRejected {
		return fmt.Errorf("invalid moderation status %q", status)
	}
	res, err := r.db.Exec(`
	  UPDATE constructor_products SET status = ?
	  WHERE id = ? AND status = ?
	`, status, id, ConstructorInModeration)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("constructor product %s is not awaiting moderation", id)
	}
	return nil
}
