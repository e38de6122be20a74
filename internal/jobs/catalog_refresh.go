package jobs

import (
	"context"
	"fmt"

	"github.com/FreakyLetsFail/uni-swipe/internal/service"
	"go.uber.org/zap"
)

// CatalogRefreshJobName is the scheduler name of the catalog refresh
const CatalogRefreshJobName = "catalog_refresh"

// CatalogRefresher reloads the in-process catalog snapshot
type CatalogRefresher interface {
	Refresh(ctx context.Context) (*service.Catalog, error)
}

// CatalogRefreshJob returns a job that reloads the catalog so edits made
// directly in the database show up without a restart
func CatalogRefreshJob(catalog CatalogRefresher, logger *zap.Logger) Job {
	return func(ctx context.Context) error {
		snap, err := catalog.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("catalog refresh: %w", err)
		}
		logger.Info("catalog refreshed",
			zap.Int("subjects", len(snap.Subjects)),
			zap.Int("universities", len(snap.Universities)))
		return nil
	}
}
