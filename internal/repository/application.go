package repository

import (
	"context"
	"errors"
	"fmt"

	"dogwalk-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationRepository handles database operations for applications
type ApplicationRepository struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create creates a new application. The (request_id, walker_id) uniqueness
// constraint turns a repeat application into ErrDuplicate.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications (id, request_id, walker_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, app.ID, app.RequestID, app.WalkerID, app.Status, app.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("already applied to request %s: %w", app.RequestID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	query := `
		SELECT id, request_id, walker_id, status, created_at
		FROM applications
		WHERE id = $1
	`
	var app models.Application
	err := r.db.QueryRow(ctx, query, id).Scan(
		&app.ID, &app.RequestID, &app.WalkerID, &app.Status, &app.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("application %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &app, nil
}

// ListByRequest retrieves applications for a request with the applicant's
// profile joined, newest first.
func (r *ApplicationRepository) ListByRequest(ctx context.Context, requestID string) ([]*models.Application, error) {
	query := `
		SELECT a.id, a.request_id, a.walker_id, a.status, a.created_at,
		       p.id, p.nickname, p.role, p.region_code, p.trust_score, p.created_at
		FROM applications a
		JOIN profiles p ON p.id = a.walker_id
		WHERE a.request_id = $1
		ORDER BY a.created_at DESC, a.id
	`
	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*models.Application, 0)
	for rows.Next() {
		var app models.Application
		var walker models.Profile
		err := rows.Scan(
			&app.ID, &app.RequestID, &app.WalkerID, &app.Status, &app.CreatedAt,
			&walker.ID, &walker.Nickname, &walker.Role, &walker.RegionCode,
			&walker.TrustScore, &walker.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		app.Walker = &walker
		apps = append(apps, &app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}

	return apps, nil
}

// Accept performs the match in a single transaction: the chosen application
// becomes ACCEPTED, every sibling becomes REJECTED and the request becomes
// MATCHED. The request row is locked for the duration, so a concurrent
// accept on the same request serializes behind the lock and fails the
// status guard.
func (r *ApplicationRepository) Accept(ctx context.Context, requestID, applicationID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin accept transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status models.WalkStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM walk_requests WHERE id = $1 FOR UPDATE`, requestID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("walk request %s: %w", requestID, ErrNotFound)
		}
		return fmt.Errorf("failed to lock walk request: %w", err)
	}
	if status != models.WalkOpen {
		return fmt.Errorf("walk request %s is not open: %w", requestID, ErrConflict)
	}

	result, err := tx.Exec(ctx,
		`UPDATE applications SET status = 'ACCEPTED' WHERE id = $1 AND request_id = $2 AND status = 'PENDING'`,
		applicationID, requestID,
	)
	if err != nil {
		return fmt.Errorf("failed to accept application: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("application %s is not pending on request %s: %w", applicationID, requestID, ErrConflict)
	}

	_, err = tx.Exec(ctx,
		`UPDATE applications SET status = 'REJECTED' WHERE request_id = $1 AND id <> $2`,
		requestID, applicationID,
	)
	if err != nil {
		return fmt.Errorf("failed to reject sibling applications: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE walk_requests SET status = 'MATCHED' WHERE id = $1`, requestID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark request matched: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit accept transaction: %w", err)
	}
	return nil
}

// GetAcceptedWalkerID returns the walker whose application was accepted for
// the request, or ErrNotFound if no application is accepted.
func (r *ApplicationRepository) GetAcceptedWalkerID(ctx context.Context, requestID string) (string, error) {
	query := `SELECT walker_id FROM applications WHERE request_id = $1 AND status = 'ACCEPTED'`
	var walkerID string
	err := r.db.QueryRow(ctx, query, requestID).Scan(&walkerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("no accepted application for request %s: %w", requestID, ErrNotFound)
		}
		return "", fmt.Errorf("failed to get accepted walker: %w", err)
	}
	return walkerID, nil
}
