package profile

import (
	"context"
	"testing"
	"time"

	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/gdugdh24/partnerfinder/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newTestUseCase() *ProfileUseCase {
	uc := NewProfileUseCase(memory.NewStore().Profiles())
	uc.now = func() time.Time { return time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC) }
	return uc
}

func TestCreateAndGetProfile(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase()

	created, err := uc.CreateProfile(ctx, "anna", &CreateProfileRequest{
		DisplayName: "Anna",
		BirthDate:   ptr(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)),
		Interests:   []string{"Yoga", "Yoga", "Go"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Yoga", "Go"}, created.Interests)
	assert.True(t, created.IsVisible)

	_, err = uc.CreateProfile(ctx, "anna", &CreateProfileRequest{DisplayName: "Anna"})
	assert.ErrorIs(t, err, domain.ErrProfileAlreadyExists)

	me, err := uc.GetMyProfile(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, 26, me.Age)
	assert.False(t, me.IsComplete)
}

func TestGetProfileByUserID_DecoratesForViewer(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase()

	_, err := uc.CreateProfile(ctx, "anna", &CreateProfileRequest{
		DisplayName: "Anna", Latitude: ptr(48.8566), Longitude: ptr(2.3522), Interests: []string{"Yoga", "Go"},
	})
	require.NoError(t, err)
	_, err = uc.CreateProfile(ctx, "boris", &CreateProfileRequest{
		DisplayName: "Boris", Latitude: ptr(45.75), Longitude: ptr(4.85), Interests: []string{"Go"},
	})
	require.NoError(t, err)

	resp, err := uc.GetProfileByUserID(ctx, "boris", "anna")
	require.NoError(t, err)
	require.NotNil(t, resp.DistanceKm)
	assert.InDelta(t, 392, *resp.DistanceKm, 10)
	assert.Equal(t, []string{"Go"}, resp.CommonInterests)

	_, err = uc.GetProfileByUserID(ctx, "ghost", "anna")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestGetProfileByUserID_HiddenProfile(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase()

	_, err := uc.CreateProfile(ctx, "anna", &CreateProfileRequest{DisplayName: "Anna"})
	require.NoError(t, err)
	_, err = uc.CreateProfile(ctx, "boris", &CreateProfileRequest{DisplayName: "Boris"})
	require.NoError(t, err)
	_, err = uc.UpdateProfile(ctx, "boris", &UpdateProfileRequest{IsVisible: ptr(false)})
	require.NoError(t, err)

	_, err = uc.GetProfileByUserID(ctx, "boris", "anna")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	own, err := uc.GetProfileByUserID(ctx, "boris", "boris")
	require.NoError(t, err)
	assert.False(t, own.IsVisible)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase()

	_, err := uc.CreateProfile(ctx, "anna", &CreateProfileRequest{DisplayName: "Anna"})
	require.NoError(t, err)

	updated, err := uc.UpdateProfile(ctx, "anna", &UpdateProfileRequest{
		Bio:       ptr("climber"),
		Interests: &[]string{"Climbing"},
		IsVisible: ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "climber", updated.Bio)
	assert.False(t, updated.IsVisible)
	assert.Equal(t, "Anna", updated.DisplayName)

	_, err = uc.UpdateProfile(ctx, "ghost", &UpdateProfileRequest{})
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}
