package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/dashboard"
	"github.com/frahmantamala/asset-management/internal/scope"
)

// StatsRepository implements dashboard.StatsRepositoryAPI with count queries
// over the assets table.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) dashboard.StatsRepositoryAPI {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) scoped(ctx context.Context, sc scope.Scope) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&asset.Asset{})
	if sc.All {
		return tx
	}
	return tx.Where("branch_code IN ? OR from_branch_code IN ?", sc.BranchCodes, sc.BranchCodes)
}

func (r *StatsRepository) CountByStatus(ctx context.Context, sc scope.Scope, statuses []string) (int64, error) {
	var count int64
	err := r.scoped(ctx, sc).Where("status IN ?", statuses).Count(&count).Error
	return count, err
}

// CountExpiring gives AMC end precedence: warranty end is only consulted for
// rows with no AMC end date.
func (r *StatsRepository) CountExpiring(ctx context.Context, sc scope.Scope, from, to string) (int64, error) {
	var count int64
	err := r.scoped(ctx, sc).
		Where(
			"(amc_end <> '' AND amc_end BETWEEN ? AND ?) OR (amc_end = '' AND warranty_end <> '' AND warranty_end BETWEEN ? AND ?)",
			from, to, from, to,
		).
		Count(&count).Error
	return count, err
}

func (r *StatsRepository) CountAMCDue(ctx context.Context, sc scope.Scope, from, to string) (int64, error) {
	var count int64
	err := r.scoped(ctx, sc).
		Where("amc_end <> '' AND amc_end BETWEEN ? AND ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *StatsRepository) CountCreatedSince(ctx context.Context, sc scope.Scope, since time.Time) (int64, error) {
	var count int64
	err := r.scoped(ctx, sc).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}
