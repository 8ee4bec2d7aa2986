package services

import (
	"context"
	"testing"

	"trolley/internal/models"
	"trolley/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfileRepo struct {
	profiles map[string]*models.Profile
}

func newFakeProfileRepo(profiles ...*models.Profile) *fakeProfileRepo {
	m := make(map[string]*models.Profile)
	for _, profile := range profiles {
		m[profile.ID] = profile
	}
	return &fakeProfileRepo{profiles: m}
}

func (r *fakeProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	r.profiles[profile.ID] = profile
	return nil
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	profile, ok := r.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return profile, nil
}

func (r *fakeProfileRepo) SetTokenHash(ctx context.Context, id string, hash []byte) error {
	profile, ok := r.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	profile.TokenHash = hash
	return nil
}

func TestIssueAndValidateToken(t *testing.T) {
	ctx := context.Background()
	profiles := newFakeProfileRepo(&models.Profile{
		ID:           "profile-rest",
		Role:         models.RoleRestaurantAdmin,
		RestaurantID: strPtr(testRestaurantID),
	})
	auth := NewAuthService(profiles, newFakeDriverRepo())

	token, err := auth.IssueToken(ctx, "profile-rest")
	require.NoError(t, err)

	actor, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "profile-rest", actor.ProfileID)
	assert.Equal(t, models.RoleRestaurantAdmin, actor.Role)
	assert.Equal(t, testRestaurantID, actor.RestaurantID)
}

func TestValidateTokenResolvesDriver(t *testing.T) {
	ctx := context.Background()
	profiles := newFakeProfileRepo(&models.Profile{ID: "profile-driver", Role: models.RoleDriver})
	drivers := newFakeDriverRepo(&models.Driver{
		ID:        testDriverID,
		ProfileID: "profile-driver",
		Zone:      models.ZoneManzini,
		IsActive:  true,
	})
	auth := NewAuthService(profiles, drivers)

	token, err := auth.IssueToken(ctx, "profile-driver")
	require.NoError(t, err)

	actor, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, testDriverID, actor.DriverID)
	assert.Equal(t, models.ZoneManzini, actor.DriverZone)
}

func TestValidateTokenRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	profiles := newFakeProfileRepo(&models.Profile{ID: "profile-rest", Role: models.RoleRestaurantAdmin})
	auth := NewAuthService(profiles, newFakeDriverRepo())

	token, err := auth.IssueToken(ctx, "profile-rest")
	require.NoError(t, err)

	for name, bad := range map[string]string{
		"empty":           "",
		"no separator":    "profilerest",
		"unknown profile": "ghost.secret",
		"wrong secret":    "profile-rest.not-the-secret",
		"truncated":       token[:len(token)-4],
	} {
		t.Run(name, func(t *testing.T) {
			_, err := auth.ValidateToken(ctx, bad)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidateTokenBeforeIssue(t *testing.T) {
	profiles := newFakeProfileRepo(&models.Profile{ID: "profile-rest", Role: models.RoleRestaurantAdmin})
	auth := NewAuthService(profiles, newFakeDriverRepo())

	_, err := auth.ValidateToken(context.Background(), "profile-rest.anything")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
