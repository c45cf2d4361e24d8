package services

import (
	"database/sql"
	"errors"

	"stitchline/internal/domain"
	"stitchline/internal/repos"
)

type CatalogService struct {
	Catalog *repos.CatalogRepo
	Stock   *repos.GarmentRepo
}

func NewCatalogService(catalog *repos.CatalogRepo, garments *repos.GarmentRepo) *CatalogService {
	return &CatalogService{Catalog: catalog, Stock: garments}
}

func (s *CatalogService) Categories() ([]domain.Category, error) { return s.Catalog.Categories() }
func (s *CatalogService) Colors() ([]domain.Color, error)        { return s.Catalog.Colors() }

func (s *CatalogService) Garments(categoryID, colorID, size string) ([]domain.Garment, error) {
	return s.Stock.List(categoryID, colorID, size)
}

func (s *CatalogService) Products(limit, offset int) ([]domain.Product, error) {
	return s.Catalog.Products(limit, offset)
}

type ProductDetail struct {
	domain.Product
	Garments []domain.Garment `json:"garments"`
}

func (s *CatalogService) Product(id string) (ProductDetail, error) {
	p, err := s.Catalog.Product(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProductDetail{}, domain.ErrNotFound
		}
		return ProductDetail{}, err
	}
	if !p.Active {
		return ProductDetail{}, domain.ErrNotFound
	}
	garments, err := s.Catalog.ProductGarments(id)
	if err != nil {
		return ProductDetail{}, err
	}
	return ProductDetail{Product: p, Garments: garments}, nil
}
