package notification

import (
	"context"
	"time"
)

// Notification is a poll-read record created by workflow transitions. The
// target fields mirror the emitting event: any combination of role, branch
// and username may be set.
type Notification struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"not null" json:"title"`
	Message        string    `json:"message"`
	Type           string    `gorm:"index" json:"type"`
	Entity         string    `json:"entity,omitempty"`
	EntityID       int64     `json:"entityId,omitempty"`
	CreatedBy      string    `json:"createdBy,omitempty"`
	TargetRole     string    `gorm:"index" json:"targetRole,omitempty"`
	TargetBranch   string    `gorm:"index" json:"targetBranch,omitempty"`
	TargetUsername string    `gorm:"index" json:"targetUsername,omitempty"`
	IsRead         bool      `gorm:"default:false" json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Target describes one actor's view of the notification feed.
type Target struct {
	// Roles the actor reads for; HO reads Admin-targeted entries too.
	Roles    []string
	Branch   string
	Username string
}

type RepositoryAPI interface {
	Create(ctx context.Context, n *Notification) error
	ListForTarget(ctx context.Context, target Target, unreadOnly bool) ([]*Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, target Target) error
}
