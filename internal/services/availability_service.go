package services

import (
	"database/sql"
	"errors"

	"stitchline/internal/repos"
)

type AvailabilityService struct {
	Garments *repos.GarmentRepo
}

func NewAvailabilityService(garments *repos.GarmentRepo) *AvailabilityService {
	return &AvailabilityService{Garments: garments}
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Count  int    `json:"count,omitempty"`
}

// Check converts a garment's count to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *AvailabilityService) Check(garmentID string) (Availability, error) {
	count, err := s.Garments.Count(garmentID)
	if err != nil {
		// An unknown garment reads as out of stock.
		if errors.Is(err, sql.ErrNoRows) {
			return Availability{Status: "OUT_OF_STOCK"}, nil
		}
		return Availability{}, err
	}

	status := "OUT_OF_STOCK"
	switch {
	case count >= 5:
		status = "IN_STOCK"
	case count > 0:
		status = "LOW_STOCK"
	}
	return Availability{Status: status, Count: count}, nil
}
