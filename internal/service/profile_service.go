package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/mapper"
	"github.com/FreakyLetsFail/uni-swipe/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProfileService struct {
	profileRepo *repository.ProfileRepository
	logger      *zap.Logger
}

func NewProfileService(profileRepo *repository.ProfileRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, logger: logger}
}

// load returns the stored profile or nil when the user has none
func (s *ProfileService) load(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

// ensure returns the profile of userID, creating an empty one first if missing
func (s *ProfileService) ensure(ctx context.Context, userID uuid.UUID, email string) (*domain.Profile, error) {
	profile, err := s.load(ctx, userID)
	if err != nil || profile != nil {
		return profile, err
	}

	profile = &domain.Profile{ID: userID, Email: email, Radius: domain.DefaultSearchRadius}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	s.logger.Info("Created missing profile", zap.String("user_id", userID.String()))

	// Re-read so a concurrently created row wins
	profile, err = s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

// GetCurrent returns the caller's profile, creating it lazily
func (s *ProfileService) GetCurrent(ctx context.Context) (*domain.ProfileDTO, error) {
	userCtx, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.ensure(ctx, userCtx.UserID, userCtx.Email)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToProfileDTO(profile)
	return &dto, nil
}

func (s *ProfileService) UpdateCurrent(ctx context.Context, req *domain.UpdateProfileRequest) (*domain.ProfileDTO, error) {
	userCtx, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.ensure(ctx, userCtx.UserID, userCtx.Email)
	if err != nil {
		return nil, err
	}

	profile.FullName = strings.TrimSpace(req.FullName)
	profile.PreferredLocation = strings.TrimSpace(req.PreferredLocation)
	profile.Radius = req.Radius
	profile.DegreeType = degreeCategory(req.DegreeType)
	profile.Bio = req.Bio
	profile.UpdatedAt = time.Now().UTC()

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("Profile updated", zap.String("user_id", profile.ID.String()))
	dto := mapper.ToProfileDTO(profile)
	return &dto, nil
}

// CreateForUser stores the profile of a freshly registered user
func (s *ProfileService) CreateForUser(ctx context.Context, profile *domain.Profile) error {
	if profile.Radius == 0 {
		profile.Radius = domain.DefaultSearchRadius
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func degreeCategory(value string) *domain.DegreeCategory {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	c := domain.DegreeCategory(value)
	return &c
}
