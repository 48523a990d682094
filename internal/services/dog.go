package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dogwalk-backend/internal/models"
	"dogwalk-backend/internal/repository"

	"github.com/google/uuid"
)

// DogService handles dog registration. Dogs are create-only: there is no
// edit or delete flow.
type DogService struct {
	profiles ProfileStore
	dogs     DogStore
}

// NewDogService creates a new dog service
func NewDogService(profiles ProfileStore, dogs DogStore) *DogService {
	return &DogService{profiles: profiles, dogs: dogs}
}

// Create registers a dog for an owner.
func (s *DogService) Create(ctx context.Context, ownerID, name, breed string, size models.DogSize, notes, imageURL *string) (*models.Dog, error) {
	profile, err := s.profiles.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("profile %s: %w", ownerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.Role != models.RoleOwner {
		return nil, fmt.Errorf("only owners can register dogs: %w", ErrForbidden)
	}

	name = strings.TrimSpace(name)
	breed = strings.TrimSpace(breed)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if breed == "" {
		return nil, fmt.Errorf("%w: breed is required", ErrValidation)
	}
	if !size.Valid() {
		return nil, fmt.Errorf("%w: size must be one of S, M, L", ErrValidation)
	}

	dog := &models.Dog{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		Breed:     breed,
		Size:      size,
		Notes:     notes,
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}
	if err := s.dogs.Create(ctx, dog); err != nil {
		return nil, fmt.Errorf("failed to create dog: %w", err)
	}
	return dog, nil
}

// ListByOwner returns the caller's dogs, newest first.
func (s *DogService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Dog, error) {
	dogs, err := s.dogs.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dogs: %w", err)
	}
	return dogs, nil
}
