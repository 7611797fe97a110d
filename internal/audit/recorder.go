package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/core/events"
)

type ServiceAPI interface {
	History(ctx context.Context, entity string, entityID int64) ([]*Entry, error)
	Recent(ctx context.Context, limit int) ([]*Entry, error)
}

// Recorder appends a ledger entry for every workflow transition it observes
// on the bus. Appends are best effort: a failed write is logged by the bus
// and never fails the transition.
type Recorder struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewRecorder(repo RepositoryAPI, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

func (r *Recorder) Register(bus *events.EventBus) {
	bus.SubscribeAll(events.WorkflowEventTypes, r.handleWorkflowEvent)
}

func (r *Recorder) handleWorkflowEvent(ctx context.Context, event events.Event) error {
	we, ok := event.(*events.WorkflowEvent)
	if !ok {
		return nil
	}
	return r.repo.Append(ctx, &Entry{
		ID:        ulid.Make().String(),
		Timestamp: we.OccurredAt(),
		Actor:     we.Actor,
		Action:    we.Action,
		Entity:    we.Entity,
		EntityID:  we.EntityID,
		Remarks:   we.Message,
	})
}

func (r *Recorder) History(ctx context.Context, entity string, entityID int64) ([]*Entry, error) {
	entries, err := r.repo.ListForEntity(ctx, entity, entityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, internal.NewInternalError("failed to read audit history", err)
	}
	return entries, nil
}

func (r *Recorder) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	entries, err := r.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, internal.NewInternalError("failed to read audit log", err)
	}
	return entries, nil
}
