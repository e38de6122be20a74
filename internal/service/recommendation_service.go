package service

import (
	"context"
	"fmt"
	"time"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/mapper"
	"github.com/FreakyLetsFail/uni-swipe/internal/metrics"
	"github.com/FreakyLetsFail/uni-swipe/internal/recommendation"
	"github.com/FreakyLetsFail/uni-swipe/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type RecommendationService struct {
	profiles     *ProfileService
	favoriteRepo *repository.FavoriteRepository
	matchRepo    *repository.MatchRepository
	catalog      *CatalogService
	scorer       *recommendation.Scorer
	logger       *zap.Logger
}

func NewRecommendationService(
	profiles *ProfileService,
	favoriteRepo *repository.FavoriteRepository,
	matchRepo *repository.MatchRepository,
	catalog *CatalogService,
	scorer *recommendation.Scorer,
	logger *zap.Logger,
) *RecommendationService {
	return &RecommendationService{
		profiles:     profiles,
		favoriteRepo: favoriteRepo,
		matchRepo:    matchRepo,
		catalog:      catalog,
		scorer:       scorer,
		logger:       logger,
	}
}

// ForCurrentUser ranks the catalog for the caller
func (s *RecommendationService) ForCurrentUser(ctx context.Context) (*domain.RecommendationsResponse, error) {
	userCtx, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	var (
		profile   *domain.Profile
		favorites []int64
		matched   []int64
		snap      *Catalog
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile, err = s.profiles.load(gctx, userCtx.UserID)
		return err
	})
	g.Go(func() (err error) {
		favorites, err = s.favoriteRepo.ListSubjectIDs(gctx, userCtx.UserID)
		if err != nil {
			return fmt.Errorf("failed to load favorites: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		matched, err = s.matchRepo.UniversityIDs(gctx, userCtx.UserID)
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		snap, err = s.catalog.Snapshot(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	req := recommendation.Request{
		FavoriteSubjectIDs:    recommendation.IDSet(favorites),
		ExcludedUniversityIDs: recommendation.IDSet(matched),
		Catalog:               snap.Scorer,
		SearchRadius:          domain.DefaultSearchRadius,
	}
	if profile != nil {
		req.PreferredLocation = profile.PreferredLocation
		req.SearchRadius = profile.Radius
		if profile.DegreeType != nil {
			req.DegreeType = string(*profile.DegreeType)
		}
	}

	resp := s.scorer.Score(req)
	metrics.RecordRecommendation(resp.Fallback, len(resp.Results), time.Since(start))

	s.logger.Debug("Recommendations computed",
		zap.String("user_id", userCtx.UserID.String()),
		zap.Int("favorites", len(favorites)),
		zap.Int("excluded", len(matched)),
		zap.Int("results", len(resp.Results)),
		zap.Bool("fallback", resp.Fallback),
	)

	out := mapper.ToRecommendationsResponse(resp)
	return &out, nil
}
