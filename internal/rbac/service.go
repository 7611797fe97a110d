package rbac

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/asset-management/internal"
)

type ServiceAPI interface {
	GetForRoleName(ctx context.Context, roleName string) (*Role, error)
	ListRoles(ctx context.Context) ([]*Role, error)
	UpdateRole(ctx context.Context, dto UpdateRoleDTO) (*Role, error)
	EnsureDefaults(ctx context.Context) error
}

// Service resolves role names to permission bundles. Bundles change rarely
// and are read on every guarded request, so lookups go through a short TTL
// cache invalidated on any role write.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger

	mu       sync.RWMutex
	cache    map[string]cachedRole
	cacheTTL time.Duration
}

type cachedRole struct {
	role      *Role
	expiresAt time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		logger:   logger,
		cache:    make(map[string]cachedRole),
		cacheTTL: time.Minute,
	}
}

// GetForRoleName resolves a user's role string to its bundle. Bundle names
// carry no spaces ("BranchUser") while directory rows may ("Branch User");
// the lookup key strips them.
func (s *Service) GetForRoleName(ctx context.Context, roleName string) (*Role, error) {
	key := strings.ReplaceAll(strings.TrimSpace(roleName), " ", "")
	if key == "" {
		return nil, internal.ErrRoleNotFound
	}

	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.role, nil
	}

	role, err := s.repo.GetByName(ctx, key)
	if err != nil {
		return nil, internal.ErrRoleNotFound
	}

	s.mu.Lock()
	s.cache[key] = cachedRole{role: role, expiresAt: time.Now().Add(s.cacheTTL)}
	s.mu.Unlock()

	return role, nil
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) UpdateRole(ctx context.Context, dto UpdateRoleDTO) (*Role, error) {
	role, err := s.repo.GetByName(ctx, dto.Name)
	if err != nil {
		return nil, internal.ErrRoleNotFound
	}

	dto.ApplyTo(role)
	if err := s.repo.Update(ctx, role); err != nil {
		s.logger.Error("failed to update role", "error", err, "role", dto.Name)
		return nil, err
	}

	s.mu.Lock()
	delete(s.cache, role.Name)
	s.mu.Unlock()

	s.logger.Info("role updated", "role", role.Name)
	return role, nil
}

// EnsureDefaults seeds the out-of-box bundles that are missing. Existing
// bundles are left untouched so operator edits survive restarts.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	for _, def := range DefaultRoles() {
		if _, err := s.repo.GetByName(ctx, def.Name); err == nil {
			continue
		}
		role := def
		if err := s.repo.Create(ctx, &role); err != nil {
			s.logger.Error("failed to seed role", "error", err, "role", def.Name)
			return err
		}
		s.logger.Info("seeded default role", "role", def.Name)
	}
	return nil
}
