package repos

import (
	"github.com/jmoiron/sqlx"

	"stitchline/internal/domain"
)

type CatalogRepo struct{ db *sqlx.DB }

func NewCatalogRepo(db *sqlx.DB) *CatalogRepo { return &CatalogRepo{db: db} }

func (r *CatalogRepo) Categories() ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.Select(&out, `
	  SELECT id, name, created_at FROM categories ORDER BY name
	`)
	return out, err
}

func (r *CatalogRepo) Colors() ([]domain.Color, error) {
	var out []domain.Color
	err := r.db.Select(&out, `SELECT id, name, hex FROM colors ORDER BY name`)
	return out, err
}

func (r *CatalogRepo) Products(limit, offset int) ([]domain.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT id, title, COALESCE(description,'') AS description, price, embroidery, active, created_at
	  FROM products
	  WHERE active = 1
	  ORDER BY created_at DESC
	  LIMIT ? OFFSET ?
	`, limit, offset)
	return out, err
}

func (r *CatalogRepo) Product(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
	  SELECT id, title, COALESCE(description,'') AS description, price, embroidery, active, created_at
	  FROM products WHERE id = ?
	`, id)
	return p, err
}

// ProductGarments lists the garment variants offered for a product.
func (r *CatalogRepo) ProductGarments(productID string) ([]domain.Garment, error) {
	var out []domain.Garment
	err := r.db.Select(&out, `
	  SELECT g.id, g.category_id, g.color_id, g.size, g.count, g.price
	  FROM product_garments pg
	  JOIN garments g ON g.id = pg.garment_id
	  WHERE pg.product_id = ?
	  ORDER BY g.category_id, g.color_id, g.size
	`, productID)
	return out, err
}
