package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"stitchline/internal/domain"
)

type GarmentRepo struct{ db *sqlx.DB }

func NewGarmentRepo(db *sqlx.DB) *GarmentRepo { return &GarmentRepo{db: db} }

// List returns garments filtered by any of category/color/size.
func (r *GarmentRepo) List(categoryID, colorID, size string) ([]domain.Garment, error) {
	where := `1=1`
	args := []any{}
	if categoryID != "" {
		where += ` AND category_id = ?`
		args = append(args, categoryID)
	}
	if colorID != "" {
		where += ` AND color_id = ?`
		args = append(args, colorID)
	}
	if size != "" {
		where += ` AND size = ?`
		args = append(args, size)
	}

	var out []domain.Garment
	err := r.db.Select(&out, `
	  SELECT id, category_id, color_id, size, count, price
	  FROM garments
	  WHERE `+where+`
	  ORDER BY category_id, color_id, size
	`, args...)
	return out, err
}

func (r *GarmentRepo) Get(id string) (domain.Garment, error) {
	var g domain.Garment
	err := r.db.Get(&g, `
	  SELECT id, category_id, color_id, size, count, price
	  FROM garments WHERE id = ?
	`, id)
	return g, err
}

// Count returns current stock for a garment.
func (r *GarmentRepo) Count(id string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT count FROM garments WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// DecrementTx atomically subtracts "by" units inside tx if enough stock
// exists. The conditional WHERE plays the role of a row lock: two competing
// transactions cannot both pass the check and drive count negative.
func (r *GarmentRepo) DecrementTx(tx *sqlx.Tx, garmentID string, by int) error {
	res, err := tx.Exec(`
		UPDATE garments
		SET count = count - ?
		WHERE id = ? AND count >= ?
	`, by, garmentID, by)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("insufficient stock for garment %s", garmentID)
	}
	return nil
}

// RestockTx adds "by" units back inside tx (order cancellation path).
func (r *GarmentRepo) RestockTx(tx *sqlx.Tx, garmentID string, by int) error {
	res, err := tx.Exec(`UPDATE garments SET count = count + ? WHERE id = ?`, by, garmentID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("unknown garment %s", garmentID)
	}
	return nil
}

// SetCount sets absolute stock for a garment (staff restock page).
func (r *GarmentRepo) SetCount(garmentID string, count int) error {
	res, err := r.db.Exec(`UPDATE garments SET count = ? WHERE id = ?`, count, garmentID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("unknown garment %s", garmentID)
	}
	return nil
}

// BelongsToProduct reports whether a garment is offered for a product.
func (r *GarmentRepo) BelongsToProduct(productID, garmentID string) (bool, error) {
	var n int
	err := r.db.Get(&n, `
	  SELECT COUNT(*) FROM product_garments
	  WHERE product_id = ? AND garment_id = ?
	`, productID, garmentID)
	return n > 0, err
}
