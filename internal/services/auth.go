package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dogwalk-backend/internal/models"
	"dogwalk-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionTokenTTL = 7 * 24 * time.Hour
	confirmTokenTTL = 24 * time.Hour

	purposeSession = "session"
	purposeConfirm = "confirm"

	minPasswordLen = 8
	minNicknameLen = 2
)

// AuthService handles identity: signup, login, email confirmation, token
// validation and profile resolution.
type AuthService struct {
	accounts       AccountStore
	profiles       ProfileStore
	jwtSecret      string
	requireConfirm bool
}

// NewAuthService creates a new auth service
func NewAuthService(accounts AccountStore, profiles ProfileStore, jwtSecret string, requireConfirm bool) *AuthService {
	return &AuthService{
		accounts:       accounts,
		profiles:       profiles,
		jwtSecret:      jwtSecret,
		requireConfirm: requireConfirm,
	}
}

// SignUpResult is what a successful registration produces. SessionToken is
// empty when email confirmation is required; ConfirmToken is empty when it
// is not.
type SignUpResult struct {
	Account      *models.Account
	Profile      *models.Profile
	SessionToken string
	ConfirmToken string
}

// SignUp registers a new account with its profile.
func (s *AuthService) SignUp(ctx context.Context, email, password, nickname string, role models.Role) (*SignUpResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	nickname = strings.TrimSpace(nickname)

	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	if len([]rune(nickname)) < minNicknameLen {
		return nil, fmt.Errorf("%w: nickname must be at least %d characters", ErrValidation, minNicknameLen)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be OWNER or WALKER", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	account := &models.Account{
		ID:             uuid.New().String(),
		Email:          email,
		PasswordHash:   string(hash),
		EmailConfirmed: !s.requireConfirm,
		CreatedAt:      now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	profile := &models.Profile{
		ID:         account.ID,
		Nickname:   nickname,
		Role:       role,
		RegionCode: "unset",
		TrustScore: models.DefaultTrustScore,
		CreatedAt:  now,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	result := &SignUpResult{Account: account, Profile: profile}
	if s.requireConfirm {
		token, err := s.generateToken(account.ID, purposeConfirm, confirmTokenTTL)
		if err != nil {
			return nil, err
		}
		result.ConfirmToken = token
	} else {
		token, err := s.generateToken(account.ID, purposeSession, sessionTokenTTL)
		if err != nil {
			return nil, err
		}
		result.SessionToken = token
	}
	return result, nil
}

// Login verifies credentials and returns a session token with the profile.
// Bad credentials and an unconfirmed email are distinct failures.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Profile, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !account.EmailConfirmed {
		return "", nil, ErrEmailNotConfirmed
	}

	token, err := s.generateToken(account.ID, purposeSession, sessionTokenTTL)
	if err != nil {
		return "", nil, err
	}

	profile, err := s.ResolveProfile(ctx, account.ID)
	if err != nil {
		return "", nil, err
	}

	return token, profile, nil
}

// ConfirmEmail validates a confirmation token and flips the flag.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	userID, err := s.validateToken(token, purposeConfirm)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, "invalid confirmation token")
	}
	if err := s.accounts.ConfirmEmail(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	return nil
}

// ResolveProfile loads the profile for an authenticated account. An account
// without a profile row (interrupted signup) gets a synthesized default
// profile persisted before it is returned.
func (s *AuthService) ResolveProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	nickname := account.Email
	if at := strings.Index(nickname, "@"); at > 0 {
		nickname = nickname[:at]
	}
	if len([]rune(nickname)) < minNicknameLen {
		nickname = "산책인"
	}
	profile = &models.Profile{
		ID:         account.ID,
		Nickname:   nickname,
		Role:       models.RoleOwner,
		RegionCode: "unset",
		TrustScore: models.DefaultTrustScore,
		CreatedAt:  time.Now(),
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to recover profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile applies a self-edit of nickname and region.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, nickname, regionCode string) (*models.Profile, error) {
	nickname = strings.TrimSpace(nickname)
	regionCode = strings.TrimSpace(regionCode)

	if len([]rune(nickname)) < minNicknameLen {
		return nil, fmt.Errorf("%w: nickname must be at least %d characters", ErrValidation, minNicknameLen)
	}
	if regionCode == "" {
		return nil, fmt.Errorf("%w: region_code is required", ErrValidation)
	}

	if err := s.profiles.UpdateSelf(ctx, userID, nickname, regionCode); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.profiles.GetByID(ctx, userID)
}

// ValidateSession validates a session JWT and returns the user ID.
func (s *AuthService) ValidateSession(tokenString string) (string, error) {
	return s.validateToken(tokenString, purposeSession)
}

func (s *AuthService) generateToken(userID, purpose string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"purpose": purpose,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (s *AuthService) validateToken(tokenString, purpose string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	if p, _ := claims["purpose"].(string); p != purpose {
		return "", fmt.Errorf("unexpected token purpose")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}
	return userID, nil
}
