package dashboard

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/auth"
	"github.com/frahmantamala/asset-management/internal/core/events"
	"github.com/frahmantamala/asset-management/internal/scope"
)

type ServiceAPI interface {
	GetStats(ctx context.Context, actor *auth.User) (*Stats, error)
}

// disposalPendingStatuses are the in-flight disposal states counted by the
// dashboard.
var disposalPendingStatuses = []string{
	asset.StatusInCart,
	asset.StatusPendingDisposal,
	asset.StatusRecommended,
}

var headlineStatuses = []string{asset.StatusActive, asset.StatusDisposed}

type cachedStats struct {
	stats   Stats
	expires time.Time
}

// Service aggregates dashboard counts per visibility scope. Results are
// cached for a short TTL and the whole cache is dropped on any asset write.
type Service struct {
	repo     StatsRepositoryAPI
	resolver *scope.Resolver
	ttl      time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[string]cachedStats
}

func NewService(repo StatsRepositoryAPI, resolver *scope.Resolver, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		ttl:      ttl,
		logger:   logger,
		cache:    make(map[string]cachedStats),
	}
}

// Register subscribes the cache invalidation to every asset-write event.
func (s *Service) Register(bus *events.EventBus) {
	bus.SubscribeAll(events.AssetWriteEventTypes, func(ctx context.Context, _ events.Event) error {
		s.Invalidate()
		return nil
	})
}

func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[string]cachedStats)
	s.mu.Unlock()
}

func cacheKey(sc scope.Scope) string {
	if sc.All {
		return "*"
	}
	codes := append([]string(nil), sc.BranchCodes...)
	sort.Strings(codes)
	return strings.Join(codes, ",")
}

func (s *Service) GetStats(ctx context.Context, actor *auth.User) (*Stats, error) {
	sc, err := s.resolver.Resolve(ctx, actor.Role, actor.BranchCode, actor.ID)
	if err != nil {
		return nil, err
	}

	key := cacheKey(sc)
	now := time.Now()

	s.mu.Lock()
	if entry, ok := s.cache[key]; ok && now.Before(entry.expires) {
		s.mu.Unlock()
		stats := entry.stats
		return &stats, nil
	}
	s.mu.Unlock()

	stats, err := s.compute(ctx, sc, now)
	if err != nil {
		return nil, internal.NewInternalError("failed to compute dashboard stats", err)
	}

	if s.ttl > 0 {
		s.mu.Lock()
		s.cache[key] = cachedStats{stats: *stats, expires: now.Add(s.ttl)}
		s.mu.Unlock()
	}
	return stats, nil
}

func (s *Service) compute(ctx context.Context, sc scope.Scope, now time.Time) (*Stats, error) {
	today := now.Format(asset.DateLayout)
	expiringEnd := now.AddDate(0, 0, expiringWindowDays).Format(asset.DateLayout)
	amcDueEnd := now.AddDate(0, 0, amcDueWindowDays).Format(asset.DateLayout)
	newSince := now.AddDate(0, 0, -newAssetWindowDays)

	total, err := s.repo.CountByStatus(ctx, sc, headlineStatuses)
	if err != nil {
		return nil, err
	}
	expiring, err := s.repo.CountExpiring(ctx, sc, today, expiringEnd)
	if err != nil {
		return nil, err
	}
	amcDue, err := s.repo.CountAMCDue(ctx, sc, today, amcDueEnd)
	if err != nil {
		return nil, err
	}
	disposalPending, err := s.repo.CountByStatus(ctx, sc, disposalPendingStatuses)
	if err != nil {
		return nil, err
	}
	newAssets, err := s.repo.CountCreatedSince(ctx, sc, newSince)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalAssets:     total,
		ExpiringSoon:    expiring,
		AmcDue:          amcDue,
		DisposalPending: disposalPending,
		NewAssets:       newAssets,
	}, nil
}
