package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/asset-management/internal/notification"
)

// NotificationRepository implements notification.RepositoryAPI using GORM.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.RepositoryAPI {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// targetClause matches rows aimed at the actor. Each leg requires the row's
// target field to be set: an actor with no branch (Admin, HO) must not match
// rows whose target_branch is simply empty.
func targetClause(tx *gorm.DB, target notification.Target) *gorm.DB {
	return tx.Where(
		"(target_username <> '' AND target_username = ?) OR (target_branch <> '' AND target_branch = ?) OR (target_role <> '' AND target_role IN ?)",
		target.Username, target.Branch, target.Roles,
	)
}

func (r *NotificationRepository) ListForTarget(ctx context.Context, target notification.Target, unreadOnly bool) ([]*notification.Notification, error) {
	tx := targetClause(r.db.WithContext(ctx), target)
	if unreadOnly {
		tx = tx.Where("is_read = ?", false)
	}

	var list []*notification.Notification
	err := tx.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&notification.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, target notification.Target) error {
	return targetClause(r.db.WithContext(ctx).Model(&notification.Notification{}), target).
		Update("is_read", true).Error
}
