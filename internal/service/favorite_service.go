package service

import (
	"context"
	"fmt"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FavoriteService struct {
	profiles     *ProfileService
	favoriteRepo *repository.FavoriteRepository
	subjectRepo  *repository.SubjectRepository
	logger       *zap.Logger
}

func NewFavoriteService(
	profiles *ProfileService,
	favoriteRepo *repository.FavoriteRepository,
	subjectRepo *repository.SubjectRepository,
	logger *zap.Logger,
) *FavoriteService {
	return &FavoriteService{profiles: profiles, favoriteRepo: favoriteRepo, subjectRepo: subjectRepo, logger: logger}
}

// Toggle flips the favorite state of a subject for the caller
func (s *FavoriteService) Toggle(ctx context.Context, subjectID int64) (*domain.FavoriteToggleResponse, error) {
	userCtx, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.subjectRepo.ExistingIDs(ctx, []int64{subjectID})
	if err != nil {
		return nil, fmt.Errorf("failed to look up subject: %w", err)
	}
	if len(existing) == 0 {
		return nil, ErrSubjectNotFound
	}
	// Favorites reference the profile row, which may not exist yet
	if _, err := s.profiles.ensure(ctx, userCtx.UserID, userCtx.Email); err != nil {
		return nil, err
	}

	favorite, err := s.favoriteRepo.Toggle(ctx, userCtx.UserID, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle favorite: %w", err)
	}

	s.logger.Debug("Favorite toggled",
		zap.String("user_id", userCtx.UserID.String()),
		zap.Int64("subject_id", subjectID),
		zap.Bool("favorite", favorite),
	)
	return &domain.FavoriteToggleResponse{SubjectID: subjectID, Favorite: favorite}, nil
}

func (s *FavoriteService) List(ctx context.Context) (*domain.FavoritesResponse, error) {
	userCtx, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := s.favoriteRepo.ListSubjectIDs(ctx, userCtx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return &domain.FavoritesResponse{SubjectIDs: ids}, nil
}

// Replace adds subjectIDs as favorites of userID. Unknown ids reject the whole batch.
func (s *FavoriteService) Replace(ctx context.Context, userID uuid.UUID, subjectIDs []int64) error {
	unique := dedupe(subjectIDs)
	existing, err := s.subjectRepo.ExistingIDs(ctx, unique)
	if err != nil {
		return fmt.Errorf("failed to look up subjects: %w", err)
	}
	if len(existing) != len(unique) {
		return fmt.Errorf("%w: %d of %d ids unknown", ErrSubjectNotFound, len(unique)-len(existing), len(unique))
	}
	if err := s.favoriteRepo.AddMany(ctx, userID, unique); err != nil {
		return fmt.Errorf("failed to store favorites: %w", err)
	}
	return nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
