package dashboard_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/auth"
	"github.com/frahmantamala/asset-management/internal/core/events"
	"github.com/frahmantamala/asset-management/internal/dashboard"
	"github.com/frahmantamala/asset-management/internal/scope"
)

func TestDashboardService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dashboard Service Suite")
}

// In-memory stats source over a plain asset slice.
type mockStatsRepository struct {
	assets []*asset.Asset
	calls  int
}

func (m *mockStatsRepository) inScope(a *asset.Asset, sc scope.Scope) bool {
	return sc.AllowsAsset(a.BranchCode, a.FromBranchCode)
}

func (m *mockStatsRepository) CountByStatus(_ context.Context, sc scope.Scope, statuses []string) (int64, error) {
	m.calls++
	var count int64
	for _, a := range m.assets {
		if !m.inScope(a, sc) {
			continue
		}
		for _, st := range statuses {
			if a.Status == st {
				count++
				break
			}
		}
	}
	return count, nil
}

func (m *mockStatsRepository) CountExpiring(_ context.Context, sc scope.Scope, from, to string) (int64, error) {
	m.calls++
	var count int64
	for _, a := range m.assets {
		if !m.inScope(a, sc) {
			continue
		}
		end := a.AmcEnd
		if end == "" {
			end = a.WarrantyEnd
		}
		if end != "" && end >= from && end <= to {
			count++
		}
	}
	return count, nil
}

func (m *mockStatsRepository) CountAMCDue(_ context.Context, sc scope.Scope, from, to string) (int64, error) {
	m.calls++
	var count int64
	for _, a := range m.assets {
		if !m.inScope(a, sc) {
			continue
		}
		if a.AmcEnd != "" && a.AmcEnd >= from && a.AmcEnd <= to {
			count++
		}
	}
	return count, nil
}

func (m *mockStatsRepository) CountCreatedSince(_ context.Context, sc scope.Scope, since time.Time) (int64, error) {
	m.calls++
	var count int64
	for _, a := range m.assets {
		if m.inScope(a, sc) && !a.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

type mockHierarchy struct {
	managedBranches map[int64][]string
}

func (m *mockHierarchy) BranchCodesForManager(_ context.Context, managerID int64) ([]string, error) {
	return m.managedBranches[managerID], nil
}

var _ = Describe("DashboardService", func() {
	var (
		service    *dashboard.Service
		mockRepo   *mockStatsRepository
		bus        *events.EventBus
		ctx        context.Context
		branchUser *auth.User
		manager    *auth.User
		admin      *auth.User
	)

	date := func(days int) string {
		return time.Now().AddDate(0, 0, days).Format(asset.DateLayout)
	}

	BeforeEach(func() {
		now := time.Now()
		mockRepo = &mockStatsRepository{assets: []*asset.Asset{
			{BranchCode: "BR1", Status: asset.StatusActive, AmcEnd: date(20), CreatedAt: now},
			{BranchCode: "BR1", Status: asset.StatusInCart, CreatedAt: now.AddDate(0, 0, -60)},
			{BranchCode: "BR1", Status: asset.StatusDisposed, CreatedAt: now.AddDate(0, 0, -200)},
			{BranchCode: "BR2", Status: asset.StatusActive, WarrantyEnd: date(10), CreatedAt: now},
			{BranchCode: "BR2", Status: asset.StatusTransferApprovalPending, CreatedAt: now},
			{BranchCode: "BR3", Status: asset.StatusRecommended, CreatedAt: now},
			{BranchCode: "BR4", Status: asset.StatusActive, AmcEnd: date(200), WarrantyEnd: date(5), CreatedAt: now},
		}}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
		hierarchy := &mockHierarchy{managedBranches: map[int64][]string{20: {"BR1", "BR3"}}}
		resolver := scope.NewResolver(hierarchy, logger)
		service = dashboard.NewService(mockRepo, resolver, time.Minute, logger)
		service.Register(bus)
		ctx = context.Background()

		branchUser = &auth.User{ID: 10, Username: "ravi", Role: "Branch User", BranchCode: "BR1"}
		manager = &auth.User{ID: 20, Username: "meera", Role: "Manager", BranchCode: "BR2"}
		admin = &auth.User{ID: 30, Username: "root", Role: "Admin", BranchCode: "HO"}
	})

	It("should count only Active and Disposed in the headline total", func() {
		stats, err := service.GetStats(ctx, admin)

		Expect(err).ToNot(HaveOccurred())
		Expect(stats.TotalAssets).To(Equal(int64(4)))
	})

	It("should count in-flight disposal states separately", func() {
		stats, err := service.GetStats(ctx, admin)

		Expect(err).ToNot(HaveOccurred())
		Expect(stats.DisposalPending).To(Equal(int64(2)))
	})

	It("should give AMC end precedence over warranty end", func() {
		stats, err := service.GetStats(ctx, admin)

		Expect(err).ToNot(HaveOccurred())
		// BR1 AMC in 20d and BR2 warranty in 10d count; BR4's far AMC end
		// hides its near warranty end.
		Expect(stats.ExpiringSoon).To(Equal(int64(2)))
		Expect(stats.AmcDue).To(Equal(int64(1)))
	})

	It("should count recently created assets", func() {
		stats, err := service.GetStats(ctx, admin)

		Expect(err).ToNot(HaveOccurred())
		Expect(stats.NewAssets).To(Equal(int64(5)))
	})

	It("should scope counts to the actor", func() {
		branchStats, err := service.GetStats(ctx, branchUser)
		Expect(err).ToNot(HaveOccurred())
		Expect(branchStats.TotalAssets).To(Equal(int64(2)))
		Expect(branchStats.DisposalPending).To(Equal(int64(1)))

		managerStats, err := service.GetStats(ctx, manager)
		Expect(err).ToNot(HaveOccurred())
		adminStats, err := service.GetStats(ctx, admin)
		Expect(err).ToNot(HaveOccurred())

		Expect(branchStats.TotalAssets).To(BeNumerically("<=", managerStats.TotalAssets))
		Expect(managerStats.TotalAssets).To(BeNumerically("<=", adminStats.TotalAssets))
		Expect(branchStats.DisposalPending).To(BeNumerically("<=", managerStats.DisposalPending))
		Expect(managerStats.DisposalPending).To(BeNumerically("<=", adminStats.DisposalPending))
	})

	It("should serve repeat reads from the cache", func() {
		_, err := service.GetStats(ctx, admin)
		Expect(err).ToNot(HaveOccurred())
		callsAfterFirst := mockRepo.calls

		_, err = service.GetStats(ctx, admin)
		Expect(err).ToNot(HaveOccurred())
		Expect(mockRepo.calls).To(Equal(callsAfterFirst))
	})

	It("should recompute after an asset write event", func() {
		_, err := service.GetStats(ctx, admin)
		Expect(err).ToNot(HaveOccurred())
		callsAfterFirst := mockRepo.calls

		err = bus.PublishSync(ctx, events.NewWorkflowEvent(
			events.EventTypeAssetCreated, "asset", 99, "ravi", "Asset Created", "new asset",
			events.WorkflowTarget{Branch: "BR1"}))
		Expect(err).ToNot(HaveOccurred())

		_, err = service.GetStats(ctx, admin)
		Expect(err).ToNot(HaveOccurred())
		Expect(mockRepo.calls).To(BeNumerically(">", callsAfterFirst))
	})

	It("should keep separate cache entries per scope", func() {
		branchStats, err := service.GetStats(ctx, branchUser)
		Expect(err).ToNot(HaveOccurred())
		adminStats, err := service.GetStats(ctx, admin)
		Expect(err).ToNot(HaveOccurred())

		Expect(branchStats.TotalAssets).ToNot(Equal(adminStats.TotalAssets))
	})
})
