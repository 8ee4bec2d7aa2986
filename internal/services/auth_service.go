package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trolley/internal/models"
	"trolley/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Actor is the authenticated identity threaded explicitly into every
// state-machine operation. The core never reads ambient session state.
type Actor struct {
	ProfileID    string
	Role         models.UserRole
	RestaurantID string // set for restaurant admins
	DriverID     string // set for drivers
	DriverZone   models.Zone
}

var ErrInvalidToken = errors.New("invalid or unknown token")

type AuthService interface {
	ValidateToken(ctx context.Context, token string) (*Actor, error)
	IssueToken(ctx context.Context, profileID string) (string, error)
}

type authService struct {
	profileRepo repository.ProfileRepository
	driverRepo  repository.DriverRepository
}

func NewAuthService(profileRepo repository.ProfileRepository, driverRepo repository.DriverRepository) AuthService {
	return &authService{profileRepo: profileRepo, driverRepo: driverRepo}
}

// ValidateToken resolves a "profileID.secret" bearer token into an Actor.
func (s *authService) ValidateToken(ctx context.Context, token string) (*Actor, error) {
	profileID, secret, ok := strings.Cut(token, ".")
	if !ok || profileID == "" || secret == "" {
		return nil, ErrInvalidToken
	}

	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if len(profile.TokenHash) == 0 {
		return nil, ErrInvalidToken
	}
	if err := bcrypt.CompareHashAndPassword(profile.TokenHash, []byte(secret)); err != nil {
		return nil, ErrInvalidToken
	}

	actor := &Actor{
		ProfileID: profile.ID,
		Role:      profile.Role,
	}
	if profile.RestaurantID != nil {
		actor.RestaurantID = *profile.RestaurantID
	}
	if profile.Role == models.RoleDriver {
		driver, err := s.driverRepo.GetByProfileID(ctx, profile.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidToken
			}
			return nil, err
		}
		actor.DriverID = driver.ID
		actor.DriverZone = driver.Zone
	}
	return actor, nil
}

// IssueToken generates a fresh secret for the profile and stores its bcrypt
// hash. The returned token is shown once and never stored in clear.
func (s *authService) IssueToken(ctx context.Context, profileID string) (string, error) {
	secret := strings.ReplaceAll(uuid.NewString(), "-", "")
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	if err := s.profileRepo.SetTokenHash(ctx, profileID, hash); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.%s", profileID, secret), nil
}
