package services

import (
	"context"

	"dogwalk-backend/internal/models"
)

// Store interfaces implemented by the pgx repositories. Services depend on
// these so business rules can be exercised against in-memory fakes.

// AccountStore persists identity records.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	ConfirmEmail(ctx context.Context, id string) error
}

// ProfileStore persists user profiles.
type ProfileStore interface {
	Upsert(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	UpdateSelf(ctx context.Context, id, nickname, regionCode string) error
}

// DogStore persists dogs.
type DogStore interface {
	Create(ctx context.Context, dog *models.Dog) error
	GetByID(ctx context.Context, id string) (*models.Dog, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Dog, error)
}

// RequestStore persists walk requests.
type RequestStore interface {
	Create(ctx context.Context, req *models.WalkRequest) error
	GetByID(ctx context.Context, id string) (*models.WalkRequest, error)
	List(ctx context.Context, onlyOpen bool) ([]*models.WalkRequest, error)
	ListCompletedForUser(ctx context.Context, userID string) ([]*models.WalkRequest, error)
	Complete(ctx context.Context, id string) error
}

// ApplicationStore persists applications. Accept is atomic: accept one,
// reject siblings, mark the request matched.
type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	ListByRequest(ctx context.Context, requestID string) ([]*models.Application, error)
	Accept(ctx context.Context, requestID, applicationID string) error
	GetAcceptedWalkerID(ctx context.Context, requestID string) (string, error)
}

// ChatStore persists chat messages.
type ChatStore interface {
	Create(ctx context.Context, msg *models.ChatMessage) error
	ListByRequest(ctx context.Context, requestID string) ([]*models.ChatMessage, error)
}
