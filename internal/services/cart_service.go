package services

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"stitchline/internal/domain"
	"stitchline/internal/repos"
)

type CartService struct {
	Carts    *repos.CartRepo
	Catalog  *repos.CatalogRepo
	Garments *repos.GarmentRepo
}

func NewCartService(carts *repos.CartRepo, catalog *repos.CatalogRepo, garments *repos.GarmentRepo) *CartService {
	return &CartService{Carts: carts, Catalog: catalog, Garments: garments}
}

type AddResult struct {
	Quantity   int `json:"quantity"`
	TotalPrice int `json:"total_price"`
}

// Add puts one unit of (product, garment) into the user's cart. Stock is not
// reserved here; it is only validated at checkout.
func (s *CartService) Add(userID, productID, garmentID string) (AddResult, error) {
	errs := map[string]string{}

	p, err := s.Catalog.Product(productID)
	if err != nil || !p.Active {
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return AddResult{}, err
		}
		errs["product_id"] = "product not found"
	}
	g, err := s.Garments.Get(garmentID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return AddResult{}, err
		}
		errs["garment_id"] = "garment not found"
	}
	if len(errs) > 0 {
		return AddResult{}, &domain.ValidationError{Fields: errs}
	}

	ok, err := s.Garments.BelongsToProduct(productID, garmentID)
	if err != nil {
		return AddResult{}, err
	}
	if !ok {
		return AddResult{}, domain.FormError("this garment is not offered for this product")
	}

	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return AddResult{}, err
	}
	qty, err := s.Carts.AddItem(cartID, uuid.NewString(), productID, garmentID)
	if err != nil {
		return AddResult{}, err
	}
	return AddResult{Quantity: qty, TotalPrice: (p.Price + g.Price) * qty}, nil
}

type CartLineView struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	ProductTitle string `json:"product_title"`
	GarmentID    string `json:"garment_id"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int    `json:"unit_price"`
	TotalPrice   int    `json:"total_price"`
	InStock      bool   `json:"in_stock"` // false when stock fell below quantity
}

type CartView struct {
	Items []CartLineView `json:"items"`
	Total int            `json:"total"`
}

func (s *CartService) View(userID string) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return CartView{}, err
	}
	lines, err := s.Carts.Lines(cartID)
	if err != nil {
		return CartView{}, err
	}

	cv := CartView{Items: make([]CartLineView, 0, len(lines))}
	for _, l := range lines {
		cv.Items = append(cv.Items, CartLineView{
			ID:           l.ID,
			ProductID:    l.ProductID,
			ProductTitle: l.ProductTitle,
			GarmentID:    l.GarmentID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice(),
			TotalPrice:   l.TotalPrice(),
			InStock:      l.GarmentCount >= l.Quantity,
		})
		cv.Total += l.TotalPrice()
	}
	return cv, nil
}

// UpdateQuantity sets a line's quantity, bounded by current garment stock.
func (s *CartService) UpdateQuantity(userID, itemID string, qty int) error {
	if qty < 1 {
		return domain.FieldError("quantity", "invalid quantity")
	}
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return err
	}
	line, err := s.Carts.Item(cartID, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if line.GarmentCount < qty {
		return domain.FormError("not enough stock")
	}
	return s.Carts.SetQuantity(cartID, itemID, qty)
}

func (s *CartService) Remove(userID, itemID string) error {
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return err
	}
	ok, err := s.Carts.DeleteItem(cartID, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}
