package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/logging"
	"github.com/dmitrijs2005/soncatalog/internal/server/cache"
	"github.com/dmitrijs2005/soncatalog/internal/server/models"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/repomanager"
)

// DashboardService computes the admin landing page summary.
type DashboardService struct {
	counts *cache.Query[struct{}, models.DashboardCounts]
	logger logging.Logger
}

func NewDashboardService(db *sql.DB, m repomanager.RepositoryManager, c *cache.Coordinator, l logging.Logger) *DashboardService {
	s := &DashboardService{logger: l.With("module", "dashboard_service")}

	s.counts = cache.NewQuery(c, "admin.dashboard",
		cache.Options{
			Tags: []string{cache.TagAdmin, cache.TagProducts, cache.TagCategories, cache.TagContact},
			TTL:  cache.Short,
		},
		func(ctx context.Context, _ struct{}) (models.DashboardCounts, error) {
			var (
				out models.DashboardCounts
				err error
			)
			if out.Products, err = m.Products(db).Count(ctx, false); err != nil {
				return out, err
			}
			if out.FeaturedProducts, err = m.Products(db).Count(ctx, true); err != nil {
				return out, err
			}
			if out.Categories, err = m.Categories(db).Count(ctx); err != nil {
				return out, err
			}
			if out.UnhandledMessages, err = m.Messages(db).CountUnhandled(ctx); err != nil {
				return out, err
			}
			return out, nil
		})

	return s
}

func (s *DashboardService) Counts(ctx context.Context) (models.DashboardCounts, error) {
	out, err := s.counts.Get(ctx, struct{}{})
	if err != nil {
		s.logger.Error(ctx, "dashboard counts failed", "error", err)
		return models.DashboardCounts{}, common.ErrorInternal
	}
	return out, nil
}
