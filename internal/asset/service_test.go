package asset_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/auth"
	"github.com/frahmantamala/asset-management/internal/core/events"
	"github.com/frahmantamala/asset-management/internal/scope"
)

func TestAssetService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Asset Service Suite")
}

// Mock repository for testing
type mockAssetRepository struct {
	assets      map[int64]*asset.Asset
	gatePasses  []*asset.GatePass
	createError error
	getError    error
	updateError error
	nextID      int64
}

func newMockAssetRepository() *mockAssetRepository {
	return &mockAssetRepository{
		assets: make(map[int64]*asset.Asset),
		nextID: 1,
	}
}

func (m *mockAssetRepository) Create(_ context.Context, a *asset.Asset) error {
	if m.createError != nil {
		return m.createError
	}
	a.ID = m.nextID
	m.nextID++
	copied := *a
	m.assets[a.ID] = &copied
	return nil
}

func (m *mockAssetRepository) GetByID(_ context.Context, id int64) (*asset.Asset, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	a, exists := m.assets[id]
	if !exists {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockAssetRepository) Update(_ context.Context, a *asset.Asset) error {
	if m.updateError != nil {
		return m.updateError
	}
	copied := *a
	m.assets[a.ID] = &copied
	return nil
}

func (m *mockAssetRepository) List(_ context.Context, sc scope.Scope, q string) ([]*asset.Asset, error) {
	var out []*asset.Asset
	for _, a := range m.assets {
		if !sc.AllowsAsset(a.BranchCode, a.FromBranchCode) {
			continue
		}
		if q != "" {
			needle := strings.ToLower(q)
			if !strings.Contains(strings.ToLower(a.Name), needle) &&
				!strings.Contains(strings.ToLower(a.TagNumber), needle) {
				continue
			}
		}
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockAssetRepository) ListByStatus(_ context.Context, sc scope.Scope, statuses []string) ([]*asset.Asset, error) {
	var out []*asset.Asset
	for _, a := range m.assets {
		if !sc.AllowsAsset(a.BranchCode, a.FromBranchCode) {
			continue
		}
		for _, st := range statuses {
			if a.Status == st {
				copied := *a
				out = append(out, &copied)
				break
			}
		}
	}
	return out, nil
}

func (m *mockAssetRepository) ListTransferredFrom(_ context.Context, branchCode string) ([]*asset.Asset, error) {
	var out []*asset.Asset
	for _, a := range m.assets {
		if a.FromBranchCode == branchCode && a.TransferStatus == asset.TransferStatusTransferred {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockAssetRepository) CreateGatePass(_ context.Context, gp *asset.GatePass) error {
	gp.ID = int64(len(m.gatePasses) + 1)
	m.gatePasses = append(m.gatePasses, gp)
	return nil
}

func (m *mockAssetRepository) ListGatePasses(_ context.Context, sc scope.Scope) ([]*asset.GatePass, error) {
	var out []*asset.GatePass
	for _, gp := range m.gatePasses {
		if sc.All || sc.ContainsBranch(gp.FromBranch) || sc.ContainsBranch(gp.ToBranch) {
			out = append(out, gp)
		}
	}
	return out, nil
}

// Mock hierarchy lookup for the scope resolver
type mockHierarchy struct {
	managedBranches map[int64][]string
}

func (m *mockHierarchy) BranchCodesForManager(_ context.Context, managerID int64) ([]string, error) {
	return m.managedBranches[managerID], nil
}

var _ = Describe("AssetService", func() {
	var (
		service    *asset.Service
		mockRepo   *mockAssetRepository
		hierarchy  *mockHierarchy
		bus        *events.EventBus
		logger     *slog.Logger
		branchUser *auth.User
		manager    *auth.User
		admin      *auth.User
		ctx        context.Context
	)

	BeforeEach(func() {
		mockRepo = newMockAssetRepository()
		hierarchy = &mockHierarchy{managedBranches: map[int64][]string{
			20: {"BR1", "BR3"},
		}}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
		resolver := scope.NewResolver(hierarchy, logger)
		service = asset.NewService(mockRepo, resolver, bus, logger)
		ctx = context.Background()

		branchUser = &auth.User{ID: 10, Username: "ravi", Role: "Branch User", BranchCode: "BR1"}
		manager = &auth.User{ID: 20, Username: "meera", Role: "Manager", BranchCode: "BR2"}
		admin = &auth.User{ID: 30, Username: "root", Role: "Admin", BranchCode: "HO"}
	})

	createActive := func(tag, branchCode string) *asset.Asset {
		a, err := service.CreateAsset(ctx, branchUser, asset.CreateAssetDTO{
			Name:       "Laptop " + tag,
			TagNumber:  tag,
			Type:       "IT Equipment",
			BranchCode: branchCode,
			BranchName: "Branch " + branchCode,
		})
		Expect(err).ToNot(HaveOccurred())
		return a
	}

	Describe("CreateAsset", func() {
		It("should create an Active asset", func() {
			a := createActive("TAG-001", "BR1")

			Expect(a.ID).To(BeNumerically(">", 0))
			Expect(a.Status).To(Equal(asset.StatusActive))
			Expect(a.CreatedBy).To(Equal("ravi"))
		})

		It("should reject a missing tag number", func() {
			_, err := service.CreateAsset(ctx, branchUser, asset.CreateAssetDTO{
				Name:       "Laptop",
				BranchCode: "BR1",
			})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should reject a malformed warranty date", func() {
			_, err := service.CreateAsset(ctx, branchUser, asset.CreateAssetDTO{
				Name:        "Laptop",
				TagNumber:   "TAG-002",
				BranchCode:  "BR1",
				WarrantyEnd: "31-12-2026",
			})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("disposal flow", func() {
		It("should walk the full approve path in order", func() {
			a := createActive("TAG-100", "BR1")

			a, err := service.InitiateDisposal(ctx, branchUser, a.ID, asset.InitiateDisposalDTO{Reason: "obsolete"})
			Expect(err).ToNot(HaveOccurred())
			Expect(a.Status).To(Equal(asset.StatusInCart))
			Expect(a.InitiatedBy).To(Equal("ravi"))

			a, err = service.SubmitForApproval(ctx, branchUser, a.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(a.Status).To(Equal(asset.StatusPendingDisposal))

			a, err = service.RecommendDisposal(ctx, manager, a.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(a.Status).To(Equal(asset.StatusRecommended))

			a, err = service.ApproveDisposal(ctx, admin, a.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(a.Status).To(Equal(asset.StatusDisposed))
			Expect(a.ApprovedBy).To(Equal("root"))
		})

		It("should allow approval straight from pending", func() {
			a := createActive("TAG-101", "BR1")
			_, err := service.InitiateDisposal(ctx, branchUser, a.ID, asset.InitiateDisposalDTO{Reason: "obsolete"})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.SubmitForApproval(ctx, branchUser, a.ID)
			Expect(err).ToNot(HaveOccurred())

			approved, err := service.ApproveDisposal(ctx, admin, a.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(approved.Status).To(Equal(asset.StatusDisposed))
		})

		It("should refuse to approve without submission", func() {
			a := createActive("TAG-102", "BR1")
			_, err := service.InitiateDisposal(ctx, branchUser, a.ID, asset.InitiateDisposalDTO{Reason: "obsolete"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ApproveDisposal(ctx, admin, a.ID)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeStateConflict))
		})

		It("should refuse to initiate on a non-Active asset", func() {
			a := createActive("TAG-103", "BR1")
			_, err := service.InitiateDisposal(ctx, branchUser, a.ID, asset.InitiateDisposalDTO{Reason: "obsolete"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.InitiateDisposal(ctx, branchUser, a.ID, asset.InitiateDisposalDTO{Reason: "again"})
			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Code).To(Equal(internal.ErrCodeStateConflict))
		})

		It("should return a rejected disposal to the cart for resubmission", func() {
			a := createActive("TAG-104", "BR1")
			_, err := service.InitiateDisposal(ctx, branchUser, a.ID, asset.InitiateDisposalDTO{Reason: "obsolete"})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.SubmitForApproval(ctx, branchUser, a.ID)
			Expect(err).ToNot(HaveOccurred())

			rejected, err := service.RejectDisposal(ctx, admin, a.ID, asset.RejectDTO{Reason: "still usable"})
			Expect(err).ToNot(HaveOccurred())
			Expect(rejected.Status).To(Equal(asset.StatusInCart))
			Expect(rejected.RejectionReason).To(Equal("still usable"))

			resubmitted, err := service.SubmitForApproval(ctx, branchUser, a.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(resubmitted.Status).To(Equal(asset.StatusPendingDisposal))
		})

		It("should restore an Active asset when removed from the cart", func() {
			a := createActive("TAG-105", "BR1")
			_, err := service.InitiateDisposal(ctx, branchUser, a.ID, asset.InitiateDisposalDTO{Reason: "obsolete"})
			Expect(err).ToNot(HaveOccurred())

			restored, err := service.RemoveFromCart(ctx, branchUser, a.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(restored.Status).To(Equal(asset.StatusActive))
			Expect(restored.InitiatedBy).To(BeEmpty())
			Expect(restored.Reason).To(BeEmpty())
		})

		It("should list every stage of review in the disposal cart", func() {
			carted := createActive("TAG-106", "BR1")
			_, err := service.InitiateDisposal(ctx, branchUser, carted.ID, asset.InitiateDisposalDTO{Reason: "obsolete"})
			Expect(err).ToNot(HaveOccurred())

			pending := createActive("TAG-107", "BR1")
			_, err = service.InitiateDisposal(ctx, branchUser, pending.ID, asset.InitiateDisposalDTO{Reason: "obsolete"})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.SubmitForApproval(ctx, branchUser, pending.ID)
			Expect(err).ToNot(HaveOccurred())

			createActive("TAG-108", "BR1")

			cart, err := service.ListDisposalCart(ctx, branchUser)

			Expect(err).ToNot(HaveOccurred())
			Expect(cart).To(HaveLen(2))
		})
	})

	Describe("transfer flow", func() {
		It("should keep a pending transfer in the origin scope only", func() {
			a := createActive("TAG-200", "BR1")

			pending, err := service.InitiateTransfer(ctx, branchUser, a.ID, asset.InitiateTransferDTO{
				ToBranchCode: "BR2", ToBranchName: "Branch BR2", Reason: "relocation",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(pending.Status).To(Equal(asset.StatusTransferApprovalPending))

			br1User := &auth.User{ID: 11, Username: "asha", Role: "Branch User", BranchCode: "BR1"}
			br2User := &auth.User{ID: 12, Username: "kiran", Role: "Branch User", BranchCode: "BR2"}

			originView, err := service.ListAssets(ctx, br1User, "")
			Expect(err).ToNot(HaveOccurred())
			Expect(originView).To(HaveLen(1))

			destView, err := service.ListAssets(ctx, br2User, "")
			Expect(err).ToNot(HaveOccurred())
			Expect(destView).To(BeEmpty())
		})

		It("should mutate the single row in place on approval", func() {
			a := createActive("TAG-201", "BR1")
			_, err := service.InitiateTransfer(ctx, branchUser, a.ID, asset.InitiateTransferDTO{
				ToBranchCode: "BR2", ToBranchName: "Branch BR2",
			})
			Expect(err).ToNot(HaveOccurred())

			moved, err := service.ApproveTransfer(ctx, admin, a.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(moved.ID).To(Equal(a.ID))
			Expect(moved.TagNumber).To(Equal("TAG-201"))
			Expect(moved.BranchCode).To(Equal("BR2"))
			Expect(moved.FromBranchCode).To(Equal("BR1"))
			Expect(moved.Status).To(Equal(asset.StatusActive))
			Expect(moved.TransferStatus).To(Equal(asset.TransferStatusTransferred))
			Expect(mockRepo.assets).To(HaveLen(1))
		})

		It("should list the moved asset under the destination and in origin history", func() {
			a := createActive("TAG-202", "BR1")
			_, err := service.InitiateTransfer(ctx, branchUser, a.ID, asset.InitiateTransferDTO{
				ToBranchCode: "BR2", ToBranchName: "Branch BR2",
			})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.ApproveTransfer(ctx, admin, a.ID)
			Expect(err).ToNot(HaveOccurred())

			br2User := &auth.User{ID: 12, Username: "kiran", Role: "Branch User", BranchCode: "BR2"}
			destView, err := service.ListAssets(ctx, br2User, "")
			Expect(err).ToNot(HaveOccurred())
			Expect(destView).To(HaveLen(1))

			history, err := service.ListTransferredFrom(ctx, branchUser, "BR1")
			Expect(err).ToNot(HaveOccurred())
			Expect(history).To(HaveLen(1))
			Expect(history[0].TagNumber).To(Equal("TAG-202"))
		})

		It("should keep another branch's transfer history out of reach", func() {
			a := createActive("TAG-205", "BR1")
			_, err := service.InitiateTransfer(ctx, branchUser, a.ID, asset.InitiateTransferDTO{
				ToBranchCode: "BR2", ToBranchName: "Branch BR2",
			})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.ApproveTransfer(ctx, admin, a.ID)
			Expect(err).ToNot(HaveOccurred())

			outsider := &auth.User{ID: 13, Username: "kiran", Role: "Branch User", BranchCode: "BR4"}
			_, err = service.ListTransferredFrom(ctx, outsider, "BR1")
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUnauthorizedAccess))

			// A manager overseeing the origin branch still reads it.
			history, err := service.ListTransferredFrom(ctx, manager, "BR1")
			Expect(err).ToNot(HaveOccurred())
			Expect(history).To(HaveLen(1))

			history, err = service.ListTransferredFrom(ctx, admin, "BR1")
			Expect(err).ToNot(HaveOccurred())
			Expect(history).To(HaveLen(1))
		})

		It("should refuse approval when no transfer is pending", func() {
			a := createActive("TAG-203", "BR1")

			_, err := service.ApproveTransfer(ctx, admin, a.ID)
			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Code).To(Equal(internal.ErrCodeStateConflict))
		})

		It("should return the asset to Active on rejection", func() {
			a := createActive("TAG-204", "BR1")
			_, err := service.InitiateTransfer(ctx, branchUser, a.ID, asset.InitiateTransferDTO{
				ToBranchCode: "BR2", ToBranchName: "Branch BR2",
			})
			Expect(err).ToNot(HaveOccurred())

			rejected, err := service.RejectTransfer(ctx, admin, a.ID, asset.RejectDTO{Reason: "not needed"})
			Expect(err).ToNot(HaveOccurred())
			Expect(rejected.Status).To(Equal(asset.StatusActive))
			Expect(rejected.BranchCode).To(Equal("BR1"))
			Expect(rejected.RejectionReason).To(Equal("not needed"))
			Expect(rejected.ToBranchCode).To(BeEmpty())
		})

		It("should refuse a transfer to the asset's own branch", func() {
			a := createActive("TAG-205", "BR1")

			_, err := service.InitiateTransfer(ctx, branchUser, a.ID, asset.InitiateTransferDTO{
				ToBranchCode: "BR1", ToBranchName: "Branch BR1",
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("gate pass", func() {
		It("should create a pass and park the asset", func() {
			a := createActive("TAG-300", "BR1")

			gp, err := service.CreateGatePass(ctx, branchUser, a.ID, asset.CreateGatePassDTO{
				ToBranch: "BR2", Type: asset.GatePassTypeTemporary, Reason: "repair",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(gp.PassID).To(HavePrefix("GP-"))
			Expect(gp.FromBranch).To(Equal("BR1"))

			parked, err := service.GetAsset(ctx, a.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(parked.Status).To(Equal(asset.StatusGatePass))
			Expect(parked.GatePassType).To(Equal(asset.GatePassTypeTemporary))
		})

		It("should refuse a pass while another workflow is in flight", func() {
			a := createActive("TAG-301", "BR1")
			_, err := service.InitiateDisposal(ctx, branchUser, a.ID, asset.InitiateDisposalDTO{Reason: "obsolete"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.CreateGatePass(ctx, branchUser, a.ID, asset.CreateGatePassDTO{
				ToBranch: "BR2", Type: asset.GatePassTypeTemporary,
			})
			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Code).To(Equal(internal.ErrCodeStateConflict))
		})
	})

	Describe("scoped listing", func() {
		BeforeEach(func() {
			createActive("TAG-400", "BR1")
			createActive("TAG-401", "BR2")
			createActive("TAG-402", "BR3")
			createActive("TAG-403", "BR4")
		})

		It("should show a branch user only their branch", func() {
			assets, err := service.ListAssets(ctx, branchUser, "")
			Expect(err).ToNot(HaveOccurred())
			Expect(assets).To(HaveLen(1))
			Expect(assets[0].BranchCode).To(Equal("BR1"))
		})

		It("should show a manager their branch plus managed branches", func() {
			assets, err := service.ListAssets(ctx, manager, "")
			Expect(err).ToNot(HaveOccurred())
			Expect(assets).To(HaveLen(3))
		})

		It("should show an admin everything", func() {
			assets, err := service.ListAssets(ctx, admin, "")
			Expect(err).ToNot(HaveOccurred())
			Expect(assets).To(HaveLen(4))
		})

		It("should keep the manager view between branch user and admin", func() {
			branchView, err := service.ListAssets(ctx, branchUser, "")
			Expect(err).ToNot(HaveOccurred())
			managerView, err := service.ListAssets(ctx, manager, "")
			Expect(err).ToNot(HaveOccurred())
			adminView, err := service.ListAssets(ctx, admin, "")
			Expect(err).ToNot(HaveOccurred())

			tags := func(list []*asset.Asset) map[string]bool {
				out := make(map[string]bool)
				for _, a := range list {
					out[a.TagNumber] = true
				}
				return out
			}
			managerTags := tags(managerView)
			adminTags := tags(adminView)
			for tag := range tags(branchView) {
				Expect(managerTags).To(HaveKey(tag))
			}
			for tag := range managerTags {
				Expect(adminTags).To(HaveKey(tag))
			}
			Expect(len(managerView)).To(BeNumerically("<", len(adminView)))
		})

		It("should reject an unknown role at the boundary", func() {
			ghost := &auth.User{ID: 99, Username: "ghost", Role: "Superuser", BranchCode: "BR1"}
			_, err := service.ListAssets(ctx, ghost, "")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, internal.ErrInvalidRole)).To(BeTrue())
		})

		It("should narrow results with the free-text search", func() {
			assets, err := service.ListAssets(ctx, admin, "tag-401")
			Expect(err).ToNot(HaveOccurred())
			Expect(assets).To(HaveLen(1))
			Expect(assets[0].TagNumber).To(Equal("TAG-401"))
		})
	})

	Describe("warranty AMC flag", func() {
		It("should report an expired warranty as AMC without persisting it", func() {
			past := time.Now().AddDate(0, 0, -10).Format(asset.DateLayout)
			a, err := service.CreateAsset(ctx, branchUser, asset.CreateAssetDTO{
				Name:        "Old Printer",
				TagNumber:   "TAG-500",
				BranchCode:  "BR1",
				WarrantyEnd: past,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(a.AmcWarranty).To(Equal("AMC"))

			stored := mockRepo.assets[a.ID]
			Expect(stored.AmcWarranty).To(BeEmpty())

			again, err := service.GetAsset(ctx, a.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(again.AmcWarranty).To(Equal("AMC"))
		})

		It("should leave a live warranty untouched", func() {
			future := time.Now().AddDate(1, 0, 0).Format(asset.DateLayout)
			a, err := service.CreateAsset(ctx, branchUser, asset.CreateAssetDTO{
				Name:        "New Printer",
				TagNumber:   "TAG-501",
				BranchCode:  "BR1",
				WarrantyEnd: future,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(a.AmcWarranty).To(BeEmpty())
		})
	})
})
