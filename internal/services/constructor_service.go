package services

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"stitchline/internal/domain"
	"stitchline/internal/repos"
)

// ConstructorService handles user-submitted custom designs and their staff
// moderation queue.
type ConstructorService struct {
	Constructor *repos.ConstructorRepo
	Garments    *repos.GarmentRepo
}

func NewConstructorService(constructor *repos.ConstructorRepo, garments *repos.GarmentRepo) *ConstructorService {
	return &ConstructorService{Constructor: constructor, Garments: garments}
}

func (s *ConstructorService) Submit(userID, garmentID string) (string, error) {
	if _, err := s.Garments.Get(garmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.FieldError("garment_id", "garment not found")
		}
		return "", err
	}
	id := uuid.NewString()
	if err := s.Constructor.Create(id, userID, garmentID); err != nil {
		return "", err
	}
	return id, nil
}

func (s *ConstructorService) Mine(userID string) ([]repos.ConstructorRow, error) {
	return s.Constructor.ListByUser(userID)
}

func (s *ConstructorService) Pending() ([]repos.ConstructorRow, error) {
	return s.Constructor.ListPending()
}

func (s *ConstructorService) Moderate(id string, accept bool) error {
	status := repos.ConstructorRejected
	if accept {
		status = repos.ConstructorAccepted
	}
	return s.Constructor.Moderate(id, status)
}
