package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/mapper"
	"github.com/FreakyLetsFail/uni-swipe/internal/repository"
	"go.uber.org/zap"
)

type MatchService struct {
	profiles       *ProfileService
	matchRepo      *repository.MatchRepository
	universityRepo *repository.UniversityRepository
	catalog        *CatalogService
	logger         *zap.Logger
}

func NewMatchService(
	profiles *ProfileService,
	matchRepo *repository.MatchRepository,
	universityRepo *repository.UniversityRepository,
	catalog *CatalogService,
	logger *zap.Logger,
) *MatchService {
	return &MatchService{
		profiles:       profiles,
		matchRepo:      matchRepo,
		universityRepo: universityRepo,
		catalog:        catalog,
		logger:         logger,
	}
}

// Create records a right-swipe. Swiping the same university twice returns the
// stored match with created set to false.
func (s *MatchService) Create(ctx context.Context, universityID int64) (*domain.CreateMatchResponse, error) {
	userCtx, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	exists, err := s.universityRepo.Exists(ctx, universityID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up university: %w", err)
	}
	if !exists {
		return nil, ErrUniversityNotFound
	}
	if _, err := s.profiles.ensure(ctx, userCtx.UserID, userCtx.Email); err != nil {
		return nil, err
	}

	match := &domain.Match{UserID: userCtx.UserID, UniversityID: universityID, MatchedAt: time.Now().UTC()}
	created, err := s.matchRepo.Create(ctx, match)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	if created {
		s.logger.Info("Match created",
			zap.String("user_id", userCtx.UserID.String()),
			zap.Int64("university_id", universityID),
			zap.Int64("match_id", match.ID),
		)
	}
	return &domain.CreateMatchResponse{Match: mapper.ToMatchDTO(match, ""), Created: created}, nil
}

// Remove deletes one of the caller's matches. Unknown or foreign ids are a no-op.
func (s *MatchService) Remove(ctx context.Context, matchID int64) error {
	userCtx, err := currentUser(ctx)
	if err != nil {
		return err
	}
	rows, err := s.matchRepo.Delete(ctx, matchID, userCtx.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	if rows == 0 {
		s.logger.Debug("Match delete matched no rows",
			zap.String("user_id", userCtx.UserID.String()),
			zap.Int64("match_id", matchID),
		)
	}
	return nil
}

// List returns the caller's matches newest first, narrowed by filter
func (s *MatchService) List(ctx context.Context, filter domain.MatchFilter) ([]domain.MatchDTO, error) {
	userCtx, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByUser(ctx, userCtx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	keep := matchPredicate(filter)
	dtos := make([]domain.MatchDTO, 0, len(matches))
	for i := range matches {
		m := &matches[i]
		if m.University == nil || !keep(m.University) {
			continue
		}
		dtos = append(dtos, mapper.ToMatchDTO(m, s.catalog.ImageFor(m.University)))
	}
	return dtos, nil
}

func matchPredicate(filter domain.MatchFilter) func(*domain.University) bool {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	degree := categoryMatcher(strings.ToLower(strings.TrimSpace(filter.Category)))

	return func(u *domain.University) bool {
		if degree != nil && !offersDegree(u, degree) {
			return false
		}
		return search == "" || mentions(u, search)
	}
}

func categoryMatcher(category string) func(string) bool {
	switch category {
	case "bachelor":
		return func(d string) bool { return d == "Bachelor" }
	case "master":
		return func(d string) bool { return d == "Master" }
	case "phd":
		return func(d string) bool { return d == "Doktor" || strings.Contains(d, "PhD") }
	default:
		return nil
	}
}

func offersDegree(u *domain.University, matches func(string) bool) bool {
	for _, o := range u.Offerings {
		if o.Subject != nil && matches(o.Subject.DegreeType) {
			return true
		}
	}
	return false
}

func mentions(u *domain.University, needle string) bool {
	if strings.Contains(strings.ToLower(u.Name), needle) ||
		strings.Contains(strings.ToLower(u.Location), needle) {
		return true
	}
	for _, o := range u.Offerings {
		if o.Subject != nil && strings.Contains(strings.ToLower(o.Subject.Name), needle) {
			return true
		}
	}
	return false
}
