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

// minLeadTime is the minimum gap between creation and the scheduled walk.
const minLeadTime = time.Hour

// validDurations is the fixed set of walk lengths in minutes.
var validDurations = map[int]bool{30: true, 60: true, 90: true, 120: true}

// WalkService owns the request lifecycle: create, apply, accept, complete.
// All role and state checks live here, enforced against stored profiles
// rather than trusted from the client.
type WalkService struct {
	profiles     ProfileStore
	dogs         DogStore
	requests     RequestStore
	applications ApplicationStore
}

// NewWalkService creates a new walk service
func NewWalkService(profiles ProfileStore, dogs DogStore, requests RequestStore, applications ApplicationStore) *WalkService {
	return &WalkService{
		profiles:     profiles,
		dogs:         dogs,
		requests:     requests,
		applications: applications,
	}
}

// CreateRequest posts a new walk request in the OPEN state. Only an OWNER
// may create, only with their own dog, at least an hour ahead.
func (s *WalkService) CreateRequest(ctx context.Context, ownerID, dogID string, scheduledAt time.Time, duration, reward int, region string) (*models.WalkRequest, error) {
	profile, err := s.loadProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if profile.Role != models.RoleOwner {
		return nil, fmt.Errorf("only owners can create walk requests: %w", ErrForbidden)
	}

	region = strings.TrimSpace(region)
	if dogID == "" {
		return nil, fmt.Errorf("%w: dog_id is required", ErrValidation)
	}
	if region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrValidation)
	}
	if !validDurations[duration] {
		return nil, fmt.Errorf("%w: duration must be one of 30, 60, 90, 120", ErrValidation)
	}
	if reward <= 0 {
		return nil, fmt.Errorf("%w: reward must be positive", ErrValidation)
	}
	if time.Until(scheduledAt) < minLeadTime {
		return nil, fmt.Errorf("%w: scheduled_at must be at least one hour in the future", ErrValidation)
	}

	dog, err := s.dogs.GetByID(ctx, dogID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("dog %s: %w", dogID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load dog: %w", err)
	}
	if dog.OwnerID != ownerID {
		return nil, fmt.Errorf("dog %s does not belong to caller: %w", dogID, ErrForbidden)
	}

	req := &models.WalkRequest{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		DogID:       dogID,
		ScheduledAt: scheduledAt,
		Duration:    duration,
		Reward:      reward,
		Region:      region,
		Status:      models.WalkOpen,
		CreatedAt:   time.Now(),
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create walk request: %w", err)
	}
	req.Dog = dog
	req.Owner = profile
	return req, nil
}

// Apply lets a walker express interest in an OPEN request. Owners cannot
// apply, and nobody can apply to their own request or twice to the same one.
func (s *WalkService) Apply(ctx context.Context, walkerID, requestID string) (*models.Application, error) {
	profile, err := s.loadProfile(ctx, walkerID)
	if err != nil {
		return nil, err
	}
	if profile.Role != models.RoleWalker {
		return nil, fmt.Errorf("only walkers can apply: %w", ErrForbidden)
	}

	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.WalkOpen {
		return nil, ErrRequestNotOpen
	}
	if req.OwnerID == walkerID {
		return nil, fmt.Errorf("cannot apply to own request: %w", ErrForbidden)
	}

	app := &models.Application{
		ID:        uuid.New().String(),
		RequestID: requestID,
		WalkerID:  walkerID,
		Status:    models.ApplicationPending,
		CreatedAt: time.Now(),
	}
	if err := s.applications.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	app.Walker = profile
	return app, nil
}

// Accept matches a request to one applicant. The store performs the
// accept-one/reject-rest/mark-matched sequence in a single transaction, so
// a concurrent accept on the same request loses cleanly.
func (s *WalkService) Accept(ctx context.Context, callerID, applicationID string) error {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("application %s: %w", applicationID, ErrNotFound)
		}
		return fmt.Errorf("failed to load application: %w", err)
	}

	req, err := s.loadRequest(ctx, app.RequestID)
	if err != nil {
		return err
	}
	if req.OwnerID != callerID {
		return fmt.Errorf("only the request owner can accept: %w", ErrForbidden)
	}
	if req.Status != models.WalkOpen {
		return ErrRequestNotOpen
	}

	if err := s.applications.Accept(ctx, app.RequestID, applicationID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrRequestNotOpen
		}
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to accept application: %w", err)
	}
	return nil
}

// Complete lets the matched walker mark a MATCHED request done. COMPLETED
// is terminal: no transition leaves it.
func (s *WalkService) Complete(ctx context.Context, callerID, requestID string) error {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != models.WalkMatched {
		return ErrRequestNotMatched
	}

	walkerID, err := s.applications.GetAcceptedWalkerID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRequestNotMatched
		}
		return fmt.Errorf("failed to load accepted walker: %w", err)
	}
	if walkerID != callerID {
		return fmt.Errorf("only the matched walker can complete: %w", ErrForbidden)
	}

	if err := s.requests.Complete(ctx, requestID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrRequestNotMatched
		}
		return fmt.Errorf("failed to complete walk request: %w", err)
	}
	return nil
}

// ListRequests returns the catalog, newest first. Unauthenticated callers
// see the public OPEN-only view.
func (s *WalkService) ListRequests(ctx context.Context, authenticated bool) ([]*models.WalkRequest, error) {
	return s.requests.List(ctx, !authenticated)
}

// GetRequest returns one request with its dog and owner joined. Without a
// session only OPEN requests are visible, matching the public list view.
func (s *WalkService) GetRequest(ctx context.Context, requestID string, authenticated bool) (*models.WalkRequest, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !authenticated && req.Status != models.WalkOpen {
		return nil, ErrNotFound
	}
	return req, nil
}

// ListApplications returns the applications on a request. The request owner
// sees all of them; a walker sees only their own.
func (s *WalkService) ListApplications(ctx context.Context, callerID, requestID string) ([]*models.Application, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	apps, err := s.applications.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	if req.OwnerID == callerID {
		return apps, nil
	}

	own := make([]*models.Application, 0)
	for _, app := range apps {
		if app.WalkerID == callerID {
			own = append(own, app)
		}
	}
	return own, nil
}

// History returns the caller's COMPLETED requests, as owner or as the
// matched walker.
func (s *WalkService) History(ctx context.Context, userID string) ([]*models.WalkRequest, error) {
	return s.requests.ListCompletedForUser(ctx, userID)
}

func (s *WalkService) loadProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

func (s *WalkService) loadRequest(ctx context.Context, requestID string) (*models.WalkRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("walk request %s: %w", requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load walk request: %w", err)
	}
	return req, nil
}
