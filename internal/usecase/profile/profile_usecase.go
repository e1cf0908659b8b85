package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/gdugdh24/partnerfinder/internal/geo"
	"github.com/gdugdh24/partnerfinder/internal/repository"
	"github.com/samber/lo"
)

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	now         func() time.Time
}

func NewProfileUseCase(profileRepo repository.ProfileRepository) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		now:         time.Now,
	}
}

// CreateProfileRequest represents profile creation request
type CreateProfileRequest struct {
	DisplayName string     `json:"display_name" binding:"required,min=2,max=100"`
	PhotoURL    string     `json:"photo_url" binding:"omitempty,url"`
	Bio         string     `json:"bio" binding:"omitempty,max=500"`
	Location    string     `json:"location" binding:"omitempty,max=100"`
	Phone       string     `json:"phone" binding:"omitempty,e164"`
	BirthDate   *time.Time `json:"birth_date"`
	Latitude    *float64   `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64   `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Interests   []string   `json:"interests" binding:"omitempty,max=20,dive,min=1,max=50"`
	Expertise   *string    `json:"expertise" binding:"omitempty,max=50"`
	Gender      string     `json:"gender" binding:"omitempty,max=30"`
}

// UpdateProfileRequest represents profile update request
type UpdateProfileRequest struct {
	DisplayName *string    `json:"display_name" binding:"omitempty,min=2,max=100"`
	PhotoURL    *string    `json:"photo_url" binding:"omitempty,url"`
	Bio         *string    `json:"bio" binding:"omitempty,max=500"`
	Location    *string    `json:"location" binding:"omitempty,max=100"`
	Phone       *string    `json:"phone" binding:"omitempty,e164"`
	BirthDate   *time.Time `json:"birth_date"`
	Latitude    *float64   `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64   `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Interests   *[]string  `json:"interests" binding:"omitempty,max=20"`
	Expertise   *string    `json:"expertise" binding:"omitempty,max=50"`
	Gender      *string    `json:"gender" binding:"omitempty,max=30"`
	IsVisible   *bool      `json:"is_visible"`
}

// ProfileResponse represents profile response with additional info
type ProfileResponse struct {
	*domain.Profile
	Age             int      `json:"age,omitempty"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	CommonInterests []string `json:"common_interests,omitempty"`
	IsComplete      bool     `json:"is_complete"`
}

// GetMyProfile returns current user's profile
func (uc *ProfileUseCase) GetMyProfile(ctx context.Context, userID string) (*ProfileResponse, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{
		Profile:    profile,
		Age:        profile.Age(uc.now()),
		IsComplete: profile.IsComplete(),
	}, nil
}

// GetProfileByUserID returns another user's profile as seen by viewerID.
// Hidden profiles are reported as not found to everyone but their owner.
func (uc *ProfileUseCase) GetProfileByUserID(ctx context.Context, targetUserID, viewerID string) (*ProfileResponse, error) {
	profile, err := uc.profileRepo.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	if !profile.IsVisible && targetUserID != viewerID {
		return nil, domain.ErrProfileNotFound
	}

	response := &ProfileResponse{
		Profile:    profile,
		Age:        profile.Age(uc.now()),
		IsComplete: profile.IsComplete(),
	}

	viewer, err := uc.profileRepo.GetByID(ctx, viewerID)
	if err == nil {
		if d, ok := geo.DistanceBetween(viewer, profile); ok {
			response.DistanceKm = &d
		}
		response.CommonInterests = lo.Uniq(lo.Intersect(profile.Interests, viewer.Interests))
	}

	return response, nil
}

// CreateProfile creates the profile of userID (onboarding). The profile is
// active and visible from the start; verification is granted elsewhere.
func (uc *ProfileUseCase) CreateProfile(ctx context.Context, userID string, req *CreateProfileRequest) (*domain.Profile, error) {
	profile := &domain.Profile{
		ID:          userID,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Bio:         req.Bio,
		Location:    req.Location,
		Phone:       req.Phone,
		BirthDate:   req.BirthDate,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Interests:   lo.Uniq(req.Interests),
		Expertise:   req.Expertise,
		Gender:      req.Gender,
		IsActive:    true,
		IsVisible:   true,
	}

	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		if err == domain.ErrProfileAlreadyExists {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

// UpdateProfile updates user profile
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*domain.Profile, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Update fields if provided
	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.PhotoURL != nil {
		profile.PhotoURL = *req.PhotoURL
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Location != nil {
		profile.Location = *req.Location
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.BirthDate != nil {
		profile.BirthDate = req.BirthDate
	}
	if req.Latitude != nil {
		profile.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		profile.Longitude = req.Longitude
	}
	if req.Interests != nil {
		profile.Interests = lo.Uniq(*req.Interests)
	}
	if req.Expertise != nil {
		profile.Expertise = req.Expertise
	}
	if req.Gender != nil {
		profile.Gender = *req.Gender
	}
	if req.IsVisible != nil {
		profile.IsVisible = *req.IsVisible
	}

	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}
