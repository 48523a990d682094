package repository

import (
	"context"
	"errors"
	"fmt"

	"dogwalk-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DogRepository handles database operations for dogs
type DogRepository struct {
	db *pgxpool.Pool
}

// NewDogRepository creates a new dog repository
func NewDogRepository(db *pgxpool.Pool) *DogRepository {
	return &DogRepository{db: db}
}

// Create creates a new dog
func (r *DogRepository) Create(ctx context.Context, dog *models.Dog) error {
	query := `
		INSERT INTO dogs (id, owner_id, name, breed, size, notes, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		dog.ID, dog.OwnerID, dog.Name, dog.Breed, dog.Size, dog.Notes, dog.ImageURL, dog.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dog: %w", err)
	}
	return nil
}

// GetByID retrieves a dog by ID
func (r *DogRepository) GetByID(ctx context.Context, id string) (*models.Dog, error) {
	query := `
		SELECT id, owner_id, name, breed, size, notes, image_url, created_at
		FROM dogs
		WHERE id = $1
	`
	var dog models.Dog
	err := r.db.QueryRow(ctx, query, id).Scan(
		&dog.ID, &dog.OwnerID, &dog.Name, &dog.Breed, &dog.Size,
		&dog.Notes, &dog.ImageURL, &dog.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("dog %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get dog: %w", err)
	}
	return &dog, nil
}

// ListByOwner retrieves all dogs belonging to one owner, newest first
func (r *DogRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Dog, error) {
	query := `
		SELECT id, owner_id, name, breed, size, notes, image_url, created_at
		FROM dogs
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dogs: %w", err)
	}
	defer rows.Close()

	dogs := make([]*models.Dog, 0)
	for rows.Next() {
		var dog models.Dog
		err := rows.Scan(
			&dog.ID, &dog.OwnerID, &dog.Name, &dog.Breed, &dog.Size,
			&dog.Notes, &dog.ImageURL, &dog.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dog: %w", err)
		}
		dogs = append(dogs, &dog)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dogs: %w", err)
	}

	return dogs, nil
}
