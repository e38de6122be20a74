package service_test

import (
	"context"
	"testing"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/service"
	"github.com/FreakyLetsFail/uni-swipe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_GetCurrentCreatesMissingProfile(t *testing.T) {
	s := setupServices(t)
	ctx, userID := newUserContext()

	profile, err := s.profiles.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, userID, profile.ID)
	assert.Equal(t, domain.DefaultSearchRadius, profile.Radius)

	var count int64
	require.NoError(t, s.db.Model(&domain.Profile{}).Where("id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	again, err := s.profiles.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
}

func TestProfileService_GetCurrentReturnsStoredProfile(t *testing.T) {
	s := setupServices(t)
	stored := testutil.CreateTestProfile(t, s.db, "stored@example.org")

	profile, err := s.profiles.GetCurrent(userContext(stored.ID))
	require.NoError(t, err)
	assert.Equal(t, "stored@example.org", profile.Email)
}

func TestProfileService_UpdateCurrent(t *testing.T) {
	s := setupServices(t)
	ctx, userID := newUserContext()

	updated, err := s.profiles.UpdateCurrent(ctx, &domain.UpdateProfileRequest{
		FullName:          "  Lena Schmidt ",
		PreferredLocation: "Berlin",
		Radius:            120,
		DegreeType:        "master",
		Bio:               "Mag Mathe",
	})
	require.NoError(t, err)
	assert.Equal(t, "Lena Schmidt", updated.FullName)
	assert.Equal(t, "master", updated.DegreeType)

	var stored domain.Profile
	require.NoError(t, s.db.First(&stored, "id = ?", userID).Error)
	assert.Equal(t, 120, stored.Radius)
	require.NotNil(t, stored.DegreeType)
	assert.Equal(t, domain.DegreeMaster, *stored.DegreeType)

	// Clearing the degree type removes the filter
	updated, err = s.profiles.UpdateCurrent(ctx, &domain.UpdateProfileRequest{Radius: 50})
	require.NoError(t, err)
	assert.Empty(t, updated.DegreeType)
}

func TestProfileService_RequiresUser(t *testing.T) {
	s := setupServices(t)
	_, err := s.profiles.GetCurrent(context.Background())
	assert.ErrorIs(t, err, service.ErrUserContextRequired)
}
