package service

import (
	"context"
	"errors"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/repository"
	"go.uber.org/zap"
)

// DiagnosticsService reports what the store knows about the caller and checks
// that favorite writes work. Only a missing profile row is left behind.
type DiagnosticsService struct {
	profiles     *ProfileService
	favoriteRepo *repository.FavoriteRepository
	matchRepo    *repository.MatchRepository
	catalog      *CatalogService
	logger       *zap.Logger
}

func NewDiagnosticsService(
	profiles *ProfileService,
	favoriteRepo *repository.FavoriteRepository,
	matchRepo *repository.MatchRepository,
	catalog *CatalogService,
	logger *zap.Logger,
) *DiagnosticsService {
	return &DiagnosticsService{
		profiles:     profiles,
		favoriteRepo: favoriteRepo,
		matchRepo:    matchRepo,
		catalog:      catalog,
		logger:       logger,
	}
}

func (s *DiagnosticsService) Run(ctx context.Context) (*domain.DiagnosticsResponse, error) {
	userCtx, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	resp := &domain.DiagnosticsResponse{
		UserID: userCtx.UserID,
		Email:  userCtx.Email,
		Steps:  []domain.DiagnosticStep{},
	}

	profile, err := s.profiles.load(ctx, userCtx.UserID)
	resp.ProfileExists = err == nil && profile != nil
	resp.Steps = append(resp.Steps, step("load_profile", err))
	if err == nil && profile == nil {
		_, err = s.profiles.ensure(ctx, userCtx.UserID, userCtx.Email)
		resp.Steps = append(resp.Steps, step("create_profile", err))
	}

	resp.FavoriteCount, err = s.favoriteRepo.Count(ctx, userCtx.UserID)
	resp.Steps = append(resp.Steps, step("count_favorites", err))

	resp.MatchCount, err = s.matchRepo.Count(ctx, userCtx.UserID)
	resp.Steps = append(resp.Steps, step("count_matches", err))

	snap, err := s.catalog.Snapshot(ctx)
	resp.Steps = append(resp.Steps, step("load_catalog", err))
	if err != nil {
		return resp, nil
	}
	resp.CatalogSubjects = len(snap.Subjects)
	if len(snap.Subjects) == 0 {
		resp.Steps = append(resp.Steps, step("favorite_roundtrip", errors.New("catalog has no subjects")))
		return resp, nil
	}

	result, err := s.favoriteRepo.RoundTrip(ctx, userCtx.UserID, snap.Subjects[0].ID)
	if err != nil {
		s.logger.Warn("Favorite round trip failed", zap.Error(err))
		resp.Steps = append(resp.Steps, step("favorite_roundtrip", err))
		return resp, nil
	}
	selectErr := result.SelectErr
	if selectErr == nil && !result.Found {
		selectErr = errors.New("inserted favorite not visible")
	}
	resp.Steps = append(resp.Steps,
		step("favorite_insert", result.InsertErr),
		step("favorite_select", selectErr),
		step("favorite_delete", result.DeleteErr),
	)
	return resp, nil
}

func step(name string, err error) domain.DiagnosticStep {
	s := domain.DiagnosticStep{Name: name, Success: err == nil}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}
