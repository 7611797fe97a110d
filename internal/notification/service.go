package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/auth"
	"github.com/frahmantamala/asset-management/internal/core/events"
	"github.com/frahmantamala/asset-management/internal/obs"
	"github.com/frahmantamala/asset-management/internal/scope"
)

type ServiceAPI interface {
	ListForUser(ctx context.Context, actor *auth.User, unreadOnly bool) ([]*Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, actor *auth.User) error
}

// Service stores notifications and serves the poll-read feed. RegisterEmitter
// wires it to the event bus so every workflow transition lands one row.
type Service struct {
	repo    RepositoryAPI
	webhook *WebhookForwarder
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, webhook *WebhookForwarder, logger *slog.Logger) *Service {
	return &Service{repo: repo, webhook: webhook, logger: logger}
}

// RegisterEmitter subscribes the service to every workflow event type.
// Failures inside the handler are logged by the bus and never reach the
// transition that emitted the event.
func (s *Service) RegisterEmitter(bus *events.EventBus) {
	bus.SubscribeAll(events.WorkflowEventTypes, s.handleWorkflowEvent)
}

func (s *Service) handleWorkflowEvent(ctx context.Context, event events.Event) error {
	we, ok := event.(*events.WorkflowEvent)
	if !ok {
		return nil
	}
	if we.TargetRole == "" && we.TargetBranch == "" && we.TargetUsername == "" {
		return nil
	}

	n := &Notification{
		ID:             ulid.Make().String(),
		Title:          we.Title,
		Message:        we.Message,
		Type:           we.Action,
		Entity:         we.Entity,
		EntityID:       we.EntityID,
		CreatedBy:      we.Actor,
		TargetRole:     we.TargetRole,
		TargetBranch:   we.TargetBranch,
		TargetUsername: we.TargetUsername,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	obs.RecordNotification()
	if s.webhook != nil {
		s.webhook.Forward(ctx, n)
	}
	return nil
}

// targetFor widens the feed for head office: HO reads everything targeted at
// the Admin role as well as its own.
func targetFor(actor *auth.User) Target {
	roles := []string{actor.Role}
	if kind, err := scope.ParseRole(actor.Role); err == nil && kind == scope.RoleHO {
		roles = append(roles, "Admin")
	}
	return Target{
		Roles:    roles,
		Branch:   actor.BranchCode,
		Username: actor.Username,
	}
}

func (s *Service) ListForUser(ctx context.Context, actor *auth.User, unreadOnly bool) ([]*Notification, error) {
	list, err := s.repo.ListForTarget(ctx, targetFor(actor), unreadOnly)
	if err != nil {
		return nil, internal.NewInternalError("failed to list notifications", err)
	}
	return list, nil
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return internal.NewNotFoundError("Notification not found", internal.ErrCodeNotificationNotFound)
		}
		return internal.NewInternalError("failed to mark notification read", err)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, actor *auth.User) error {
	if err := s.repo.MarkAllRead(ctx, targetFor(actor)); err != nil {
		return internal.NewInternalError("failed to mark notifications read", err)
	}
	return nil
}
