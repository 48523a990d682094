package repository

import (
	"context"
	"errors"
	"fmt"

	"dogwalk-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles database operations for user profiles
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Upsert creates or replaces a profile row
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, nickname, role, region_code, trust_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET nickname = EXCLUDED.nickname, region_code = EXCLUDED.region_code
	`
	_, err := r.db.Exec(ctx, query,
		profile.ID, profile.Nickname, profile.Role, profile.RegionCode,
		profile.TrustScore, profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, nickname, role, region_code, trust_score, created_at
		FROM profiles
		WHERE id = $1
	`
	var profile models.Profile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID, &profile.Nickname, &profile.Role, &profile.RegionCode,
		&profile.TrustScore, &profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// UpdateSelf updates the fields a user may edit on their own profile.
// Role and trust score are immutable through this path.
func (r *ProfileRepository) UpdateSelf(ctx context.Context, id, nickname, regionCode string) error {
	query := `UPDATE profiles SET nickname = $1, region_code = $2 WHERE id = $3`
	result, err := r.db.Exec(ctx, query, nickname, regionCode, id)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	return nil
}
