package audit

import (
	"context"
	"time"
)

// Entry is one append-only ledger row. Transfer entries are the asset's real
// movement history; the from_branch* breadcrumb on the asset row only keeps
// the latest hop.
type Entry struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `gorm:"index" json:"action"`
	Entity    string    `json:"entity"`
	EntityID  int64     `gorm:"index" json:"entityId"`
	Remarks   string    `json:"remarks,omitempty"`
}

func (Entry) TableName() string {
	return "audit_logs"
}

type RepositoryAPI interface {
	Append(ctx context.Context, e *Entry) error
	ListForEntity(ctx context.Context, entity string, entityID int64) ([]*Entry, error)
	ListRecent(ctx context.Context, limit int) ([]*Entry, error)
}
