package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dogwalk-backend/internal/models"
	"dogwalk-backend/internal/repository"
)

// In-memory stores backing the service tests. They mirror the behaviour of
// the pgx repositories, including the sentinel errors and result ordering.

type memAccounts struct {
	byID    map[string]models.Account
	byEmail map[string]string
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[string]models.Account{}, byEmail: map[string]string{}}
}

func (m *memAccounts) Create(ctx context.Context, account *models.Account) error {
	if _, ok := m.byEmail[account.Email]; ok {
		return fmt.Errorf("email already registered: %w", repository.ErrDuplicate)
	}
	m.byID[account.ID] = *account
	m.byEmail[account.Email] = account.ID
	return nil
}

func (m *memAccounts) GetByID(ctx context.Context, id string) (*models.Account, error) {
	account, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, repository.ErrNotFound)
	}
	return &account, nil
}

func (m *memAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("account for %s: %w", email, repository.ErrNotFound)
	}
	return m.GetByID(ctx, id)
}

func (m *memAccounts) ConfirmEmail(ctx context.Context, id string) error {
	account, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("account %s: %w", id, repository.ErrNotFound)
	}
	account.EmailConfirmed = true
	m.byID[id] = account
	return nil
}

type memProfiles struct {
	byID map[string]models.Profile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{byID: map[string]models.Profile{}}
}

func (m *memProfiles) Upsert(ctx context.Context, profile *models.Profile) error {
	if existing, ok := m.byID[profile.ID]; ok {
		existing.Nickname = profile.Nickname
		existing.RegionCode = profile.RegionCode
		m.byID[profile.ID] = existing
		return nil
	}
	m.byID[profile.ID] = *profile
	return nil
}

func (m *memProfiles) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	profile, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, repository.ErrNotFound)
	}
	return &profile, nil
}

func (m *memProfiles) UpdateSelf(ctx context.Context, id, nickname, regionCode string) error {
	profile, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("profile %s: %w", id, repository.ErrNotFound)
	}
	profile.Nickname = nickname
	profile.RegionCode = regionCode
	m.byID[id] = profile
	return nil
}

type memDogs struct {
	byID map[string]models.Dog
}

func newMemDogs() *memDogs {
	return &memDogs{byID: map[string]models.Dog{}}
}

func (m *memDogs) Create(ctx context.Context, dog *models.Dog) error {
	m.byID[dog.ID] = *dog
	return nil
}

func (m *memDogs) GetByID(ctx context.Context, id string) (*models.Dog, error) {
	dog, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("dog %s: %w", id, repository.ErrNotFound)
	}
	return &dog, nil
}

func (m *memDogs) ListByOwner(ctx context.Context, ownerID string) ([]*models.Dog, error) {
	out := make([]*models.Dog, 0)
	for _, dog := range m.byID {
		if dog.OwnerID == ownerID {
			d := dog
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type memRequests struct {
	byID map[string]models.WalkRequest
	apps *memApplications
}

func newMemRequests(apps *memApplications) *memRequests {
	return &memRequests{byID: map[string]models.WalkRequest{}, apps: apps}
}

func (m *memRequests) Create(ctx context.Context, req *models.WalkRequest) error {
	stored := *req
	stored.Dog = nil
	stored.Owner = nil
	m.byID[req.ID] = stored
	return nil
}

func (m *memRequests) GetByID(ctx context.Context, id string) (*models.WalkRequest, error) {
	req, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("walk request %s: %w", id, repository.ErrNotFound)
	}
	return &req, nil
}

func (m *memRequests) List(ctx context.Context, onlyOpen bool) ([]*models.WalkRequest, error) {
	out := make([]*models.WalkRequest, 0)
	for _, req := range m.byID {
		if onlyOpen && req.Status != models.WalkOpen {
			continue
		}
		r := req
		out = append(out, &r)
	}
	sortRequests(out)
	return out, nil
}

func (m *memRequests) ListCompletedForUser(ctx context.Context, userID string) ([]*models.WalkRequest, error) {
	out := make([]*models.WalkRequest, 0)
	for _, req := range m.byID {
		if req.Status != models.WalkCompleted {
			continue
		}
		walkerID, _ := m.apps.GetAcceptedWalkerID(ctx, req.ID)
		if req.OwnerID != userID && walkerID != userID {
			continue
		}
		r := req
		out = append(out, &r)
	}
	sortRequests(out)
	return out, nil
}

func (m *memRequests) Complete(ctx context.Context, id string) error {
	req, ok := m.byID[id]
	if !ok || req.Status != models.WalkMatched {
		return fmt.Errorf("walk request %s is not matched: %w", id, repository.ErrConflict)
	}
	req.Status = models.WalkCompleted
	m.byID[id] = req
	return nil
}

func sortRequests(out []*models.WalkRequest) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
}

type memApplications struct {
	mu       sync.Mutex
	byID     map[string]models.Application
	requests *memRequests
}

func newMemApplications() *memApplications {
	return &memApplications{byID: map[string]models.Application{}}
}

func (m *memApplications) Create(ctx context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.RequestID == app.RequestID && existing.WalkerID == app.WalkerID {
			return fmt.Errorf("already applied to request %s: %w", app.RequestID, repository.ErrDuplicate)
		}
	}
	stored := *app
	stored.Walker = nil
	m.byID[app.ID] = stored
	return nil
}

func (m *memApplications) GetByID(ctx context.Context, id string) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", id, repository.ErrNotFound)
	}
	return &app, nil
}

func (m *memApplications) ListByRequest(ctx context.Context, requestID string) ([]*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Application, 0)
	for _, app := range m.byID {
		if app.RequestID == requestID {
			a := app
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memApplications) Accept(ctx context.Context, requestID, applicationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests.byID[requestID]
	if !ok {
		return fmt.Errorf("walk request %s: %w", requestID, repository.ErrNotFound)
	}
	if req.Status != models.WalkOpen {
		return fmt.Errorf("walk request %s is not open: %w", requestID, repository.ErrConflict)
	}

	chosen, ok := m.byID[applicationID]
	if !ok || chosen.RequestID != requestID || chosen.Status != models.ApplicationPending {
		return fmt.Errorf("application %s is not pending on request %s: %w", applicationID, requestID, repository.ErrConflict)
	}

	for id, app := range m.byID {
		if app.RequestID != requestID {
			continue
		}
		if id == applicationID {
			app.Status = models.ApplicationAccepted
		} else {
			app.Status = models.ApplicationRejected
		}
		m.byID[id] = app
	}

	req.Status = models.WalkMatched
	m.requests.byID[requestID] = req
	return nil
}

func (m *memApplications) GetAcceptedWalkerID(ctx context.Context, requestID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.byID {
		if app.RequestID == requestID && app.Status == models.ApplicationAccepted {
			return app.WalkerID, nil
		}
	}
	return "", fmt.Errorf("no accepted application for request %s: %w", requestID, repository.ErrNotFound)
}

type memChats struct {
	messages []models.ChatMessage
}

func newMemChats() *memChats {
	return &memChats{}
}

func (m *memChats) Create(ctx context.Context, msg *models.ChatMessage) error {
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memChats) ListByRequest(ctx context.Context, requestID string) ([]*models.ChatMessage, error) {
	out := make([]*models.ChatMessage, 0)
	for _, msg := range m.messages {
		if msg.RequestID == requestID {
			mm := msg
			out = append(out, &mm)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
