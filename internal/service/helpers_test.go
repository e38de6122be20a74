package service_test

import (
	"context"
	"testing"

	"github.com/FreakyLetsFail/uni-swipe/internal/auth"
	"github.com/FreakyLetsFail/uni-swipe/internal/recommendation"
	"github.com/FreakyLetsFail/uni-swipe/internal/repository"
	"github.com/FreakyLetsFail/uni-swipe/internal/service"
	"github.com/FreakyLetsFail/uni-swipe/internal/storage"
	"github.com/FreakyLetsFail/uni-swipe/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type services struct {
	db              *gorm.DB
	store           *storage.LocalStorage
	catalog         *service.CatalogService
	profiles        *service.ProfileService
	favorites       *service.FavoriteService
	matches         *service.MatchService
	recommendations *service.RecommendationService
	diagnostics     *service.DiagnosticsService
}

func setupServices(t *testing.T) *services {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	store, err := storage.NewLocalStorage(t.TempDir(), "/images")
	require.NoError(t, err)

	subjectRepo := repository.NewSubjectRepository(db)
	universityRepo := repository.NewUniversityRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	matchRepo := repository.NewMatchRepository(db)

	images := recommendation.NewImageResolver(recommendation.ImageConfig{}, logger)
	catalog := service.NewCatalogService(subjectRepo, universityRepo, store, images, 1, logger)
	profiles := service.NewProfileService(profileRepo, logger)

	return &services{
		db:        db,
		store:     store,
		catalog:   catalog,
		profiles:  profiles,
		favorites: service.NewFavoriteService(profiles, favoriteRepo, subjectRepo, logger),
		matches:   service.NewMatchService(profiles, matchRepo, universityRepo, catalog, logger),
		recommendations: service.NewRecommendationService(
			profiles, favoriteRepo, matchRepo, catalog, recommendation.NewScorer(images), logger,
		),
		diagnostics: service.NewDiagnosticsService(profiles, favoriteRepo, matchRepo, catalog, logger),
	}
}

func userContext(userID uuid.UUID) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      userID,
		Email:       "student@example.org",
		Role:        auth.RoleAuthenticated,
		AccessToken: "access-token",
	})
}

func newUserContext() (context.Context, uuid.UUID) {
	id := uuid.New()
	return userContext(id), id
}
