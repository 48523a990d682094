package models

import "time"

// Role is the account role chosen at signup.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleWalker Role = "WALKER"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleWalker
}

// DogSize is the coarse size class of a dog.
type DogSize string

const (
	SizeSmall  DogSize = "S"
	SizeMedium DogSize = "M"
	SizeLarge  DogSize = "L"
)

// Valid reports whether the size is one of the known values.
func (s DogSize) Valid() bool {
	return s == SizeSmall || s == SizeMedium || s == SizeLarge
}

// WalkStatus is the lifecycle state of a walk request.
// Transitions are linear: OPEN -> MATCHED -> COMPLETED.
type WalkStatus string

const (
	WalkOpen      WalkStatus = "OPEN"
	WalkMatched   WalkStatus = "MATCHED"
	WalkCompleted WalkStatus = "COMPLETED"
)

// ApplicationStatus is the state of a walker's application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// DefaultTrustScore is assigned to freshly created or recovered profiles.
const DefaultTrustScore = 36.5

// Account is an identity record. The password hash never leaves the server.
type Account struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
}

// Profile is the public projection of a user: what other users see in
// request and application listings.
type Profile struct {
	ID         string    `json:"id"`
	Nickname   string    `json:"nickname"`
	Role       Role      `json:"role"`
	RegionCode string    `json:"region_code"`
	TrustScore float64   `json:"trust_score"`
	CreatedAt  time.Time `json:"created_at"`
}

// Dog belongs to exactly one owner. Dogs are immutable after creation;
// there is no edit or delete flow.
type Dog struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Breed     string    `json:"breed"`
	Size      DogSize   `json:"size"`
	Notes     *string   `json:"notes,omitempty"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// WalkRequest is a postable unit of work: one dog, one time slot, one reward.
// Dog and Owner are denormalized joins filled in by list queries.
type WalkRequest struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	DogID       string     `json:"dog_id"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Duration    int        `json:"duration"`
	Reward      int        `json:"reward"`
	Region      string     `json:"region"`
	Status      WalkStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`

	Dog   *Dog     `json:"dog,omitempty"`
	Owner *Profile `json:"owner,omitempty"`
}

// Application is a walker's expressed interest in one walk request.
// At most one application exists per (request, walker) pair.
type Application struct {
	ID        string            `json:"id"`
	RequestID string            `json:"request_id"`
	WalkerID  string            `json:"walker_id"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`

	Walker *Profile `json:"walker,omitempty"`
}

// ChatMessage is immutable once created and scoped to one walk request.
type ChatMessage struct {
	ID             string    `json:"id"`
	RequestID      string    `json:"request_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	SenderNickname string    `json:"sender_nickname,omitempty"`
}
