package repository

import (
	"context"
	"errors"
	"fmt"

	"dogwalk-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RequestRepository handles database operations for walk requests
type RequestRepository struct {
	db *pgxpool.Pool
}

// NewRequestRepository creates a new walk request repository
func NewRequestRepository(db *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `
	r.id, r.owner_id, r.dog_id, r.scheduled_at, r.duration, r.reward, r.region, r.status, r.created_at,
	d.id, d.owner_id, d.name, d.breed, d.size, d.notes, d.image_url, d.created_at,
	p.id, p.nickname, p.role, p.region_code, p.trust_score, p.created_at
`

func scanRequest(row pgx.Row) (*models.WalkRequest, error) {
	var req models.WalkRequest
	var dog models.Dog
	var owner models.Profile
	err := row.Scan(
		&req.ID, &req.OwnerID, &req.DogID, &req.ScheduledAt, &req.Duration,
		&req.Reward, &req.Region, &req.Status, &req.CreatedAt,
		&dog.ID, &dog.OwnerID, &dog.Name, &dog.Breed, &dog.Size, &dog.Notes, &dog.ImageURL, &dog.CreatedAt,
		&owner.ID, &owner.Nickname, &owner.Role, &owner.RegionCode, &owner.TrustScore, &owner.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.Dog = &dog
	req.Owner = &owner
	return &req, nil
}

// Create creates a new walk request
func (r *RequestRepository) Create(ctx context.Context, req *models.WalkRequest) error {
	query := `
		INSERT INTO walk_requests (id, owner_id, dog_id, scheduled_at, duration, reward, region, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		req.ID, req.OwnerID, req.DogID, req.ScheduledAt, req.Duration,
		req.Reward, req.Region, req.Status, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create walk request: %w", err)
	}
	return nil
}

// GetByID retrieves a walk request by ID with its dog and owner joined
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.WalkRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM walk_requests r
		JOIN dogs d ON d.id = r.dog_id
		JOIN profiles p ON p.id = r.owner_id
		WHERE r.id = $1
	`
	req, err := scanRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("walk request %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get walk request: %w", err)
	}
	return req, nil
}

// List retrieves walk requests newest first with dog and owner joined.
// When onlyOpen is true, only OPEN requests are returned (the logged-out
// catalog view).
func (r *RequestRepository) List(ctx context.Context, onlyOpen bool) ([]*models.WalkRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM walk_requests r
		JOIN dogs d ON d.id = r.dog_id
		JOIN profiles p ON p.id = r.owner_id
	`
	if onlyOpen {
		query += ` WHERE r.status = 'OPEN'`
	}
	query += ` ORDER BY r.created_at DESC, r.id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list walk requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ListCompletedForUser retrieves COMPLETED requests where the user was the
// owner or the accepted walker, newest first.
func (r *RequestRepository) ListCompletedForUser(ctx context.Context, userID string) ([]*models.WalkRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM walk_requests r
		JOIN dogs d ON d.id = r.dog_id
		JOIN profiles p ON p.id = r.owner_id
		WHERE r.status = 'COMPLETED'
		  AND (r.owner_id = $1 OR EXISTS (
			SELECT 1 FROM applications a
			WHERE a.request_id = r.id AND a.walker_id = $1 AND a.status = 'ACCEPTED'
		  ))
		ORDER BY r.created_at DESC, r.id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]*models.WalkRequest, error) {
	requests := make([]*models.WalkRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan walk request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating walk requests: %w", err)
	}
	return requests, nil
}

// Complete moves a MATCHED request to COMPLETED. The status guard in the
// WHERE clause makes the transition a no-op race loser rather than a
// back-transition.
func (r *RequestRepository) Complete(ctx context.Context, id string) error {
	query := `UPDATE walk_requests SET status = 'COMPLETED' WHERE id = $1 AND status = 'MATCHED'`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to complete walk request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("walk request %s is not matched: %w", id, ErrConflict)
	}
	return nil
}
