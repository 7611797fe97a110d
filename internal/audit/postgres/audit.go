package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/asset-management/internal/audit"
)

// AuditRepository implements audit.RepositoryAPI using GORM. Rows are only
// ever inserted; there is no update or delete path.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, e *audit.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *AuditRepository) ListForEntity(ctx context.Context, entity string, entityID int64) ([]*audit.Entry, error) {
	var entries []*audit.Entry
	err := r.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("timestamp ASC").
		Find(&entries).Error
	return entries, err
}

func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]*audit.Entry, error) {
	var entries []*audit.Entry
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
