package service_test

import (
	"testing"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/service"
	"github.com/FreakyLetsFail/uni-swipe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteService_ToggleRoundTrip(t *testing.T) {
	s := setupServices(t)
	subject := testutil.CreateTestSubject(t, s.db, "Informatik", "Bachelor")
	ctx, _ := newUserContext()

	resp, err := s.favorites.Toggle(ctx, subject.ID)
	require.NoError(t, err)
	assert.True(t, resp.Favorite)

	list, err := s.favorites.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{subject.ID}, list.SubjectIDs)

	resp, err = s.favorites.Toggle(ctx, subject.ID)
	require.NoError(t, err)
	assert.False(t, resp.Favorite)

	list, err = s.favorites.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list.SubjectIDs)
	assert.NotNil(t, list.SubjectIDs)
}

func TestFavoriteService_ToggleStoresMissingProfile(t *testing.T) {
	s := setupServices(t)
	subject := testutil.CreateTestSubject(t, s.db, "Physik", "Bachelor")
	ctx, userID := newUserContext()

	_, err := s.favorites.Toggle(ctx, subject.ID)
	require.NoError(t, err)

	var profile domain.Profile
	require.NoError(t, s.db.First(&profile, "id = ?", userID).Error)
}

func TestFavoriteService_ToggleUnknownSubject(t *testing.T) {
	s := setupServices(t)
	ctx, _ := newUserContext()

	_, err := s.favorites.Toggle(ctx, 42)
	assert.ErrorIs(t, err, service.ErrSubjectNotFound)
}

func TestFavoriteService_TogglesAreIsolatedPerUser(t *testing.T) {
	s := setupServices(t)
	subject := testutil.CreateTestSubject(t, s.db, "Informatik", "Bachelor")
	alice, _ := newUserContext()
	bob, _ := newUserContext()

	_, err := s.favorites.Toggle(alice, subject.ID)
	require.NoError(t, err)

	list, err := s.favorites.List(bob)
	require.NoError(t, err)
	assert.Empty(t, list.SubjectIDs)
}

func TestFavoriteService_Replace(t *testing.T) {
	s := setupServices(t)
	a := testutil.CreateTestSubject(t, s.db, "Informatik", "Bachelor")
	b := testutil.CreateTestSubject(t, s.db, "Physik", "Bachelor")
	ctx, userID := newUserContext()

	require.NoError(t, s.favorites.Replace(ctx, userID, []int64{a.ID, b.ID, a.ID}))
	list, err := s.favorites.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{a.ID, b.ID}, list.SubjectIDs)

	err = s.favorites.Replace(ctx, userID, []int64{a.ID, 9999})
	assert.ErrorIs(t, err, service.ErrSubjectNotFound)
}
