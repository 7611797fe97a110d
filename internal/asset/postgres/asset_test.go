package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/scope"
)

func TestAssetRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AssetRepository Suite")
}

var _ = Describe("AssetRepository", func() {
	var (
		db   *gorm.DB
		repo asset.RepositoryAPI
		ctx  context.Context
	)

	seed := func(a asset.Asset) *asset.Asset {
		Expect(db.Create(&a).Error).To(Succeed())
		return &a
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&asset.Asset{}, &asset.GatePass{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewAssetRepository(db)
		ctx = context.Background()
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Create and GetByID", func() {
		It("should round-trip an asset", func() {
			created := seed(asset.Asset{Name: "Laptop", TagNumber: "TAG-1", BranchCode: "BR1", Status: asset.StatusActive})

			got, err := repo.GetByID(ctx, created.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(got.TagNumber).To(Equal("TAG-1"))
			Expect(got.Status).To(Equal(asset.StatusActive))
		})

		It("should report a missing id as record not found", func() {
			_, err := repo.GetByID(ctx, 999)
			Expect(errors.Is(err, gorm.ErrRecordNotFound)).To(BeTrue())
		})

		It("should refuse a duplicate tag number", func() {
			seed(asset.Asset{Name: "Laptop", TagNumber: "TAG-1", BranchCode: "BR1", Status: asset.StatusActive})

			err := repo.Create(ctx, &asset.Asset{Name: "Other", TagNumber: "TAG-1", BranchCode: "BR2", Status: asset.StatusActive})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			seed(asset.Asset{Name: "Dell Laptop", TagNumber: "IT-1", BranchCode: "BR1", Status: asset.StatusActive})
			seed(asset.Asset{Name: "Office Chair", TagNumber: "FUR-1", BranchCode: "BR2", Status: asset.StatusActive})
			// Transferred out of BR1, now living at BR3.
			seed(asset.Asset{Name: "Printer", TagNumber: "IT-2", BranchCode: "BR3", FromBranchCode: "BR1", TransferStatus: asset.TransferStatusTransferred, Status: asset.StatusActive})
		})

		It("should return everything for an unrestricted scope", func() {
			assets, err := repo.List(ctx, scope.Everything(), "")
			Expect(err).NotTo(HaveOccurred())
			Expect(assets).To(HaveLen(3))
		})

		It("should keep transferred-away assets visible at the origin branch", func() {
			assets, err := repo.List(ctx, scope.ForBranches("BR1"), "")

			Expect(err).NotTo(HaveOccurred())
			Expect(assets).To(HaveLen(2))
			tags := []string{assets[0].TagNumber, assets[1].TagNumber}
			Expect(tags).To(ConsistOf("IT-1", "IT-2"))
		})

		It("should match name and tag number case-insensitively", func() {
			assets, err := repo.List(ctx, scope.Everything(), "dell")
			Expect(err).NotTo(HaveOccurred())
			Expect(assets).To(HaveLen(1))
			Expect(assets[0].TagNumber).To(Equal("IT-1"))

			assets, err = repo.List(ctx, scope.Everything(), "it-")
			Expect(err).NotTo(HaveOccurred())
			Expect(assets).To(HaveLen(2))
		})
	})

	Describe("ListByStatus", func() {
		It("should filter on the status set within scope", func() {
			seed(asset.Asset{Name: "A", TagNumber: "T-1", BranchCode: "BR1", Status: asset.StatusInCart})
			seed(asset.Asset{Name: "B", TagNumber: "T-2", BranchCode: "BR1", Status: asset.StatusPendingDisposal})
			seed(asset.Asset{Name: "C", TagNumber: "T-3", BranchCode: "BR1", Status: asset.StatusActive})
			seed(asset.Asset{Name: "D", TagNumber: "T-4", BranchCode: "BR2", Status: asset.StatusInCart})

			assets, err := repo.ListByStatus(ctx, scope.ForBranches("BR1"), []string{asset.StatusInCart, asset.StatusPendingDisposal})

			Expect(err).NotTo(HaveOccurred())
			Expect(assets).To(HaveLen(2))
		})
	})

	Describe("ListTransferredFrom", func() {
		It("should return only completed transfers out of the branch", func() {
			seed(asset.Asset{Name: "Moved", TagNumber: "T-1", BranchCode: "BR2", FromBranchCode: "BR1", TransferStatus: asset.TransferStatusTransferred, Status: asset.StatusActive})
			seed(asset.Asset{Name: "Pending", TagNumber: "T-2", BranchCode: "BR1", Status: asset.StatusTransferApprovalPending})
			seed(asset.Asset{Name: "Elsewhere", TagNumber: "T-3", BranchCode: "BR3", FromBranchCode: "BR2", TransferStatus: asset.TransferStatusTransferred, Status: asset.StatusActive})

			assets, err := repo.ListTransferredFrom(ctx, "BR1")

			Expect(err).NotTo(HaveOccurred())
			Expect(assets).To(HaveLen(1))
			Expect(assets[0].TagNumber).To(Equal("T-1"))
		})
	})

	Describe("Gate passes", func() {
		It("should scope listings to either endpoint branch", func() {
			now := time.Now()
			Expect(repo.CreateGatePass(ctx, &asset.GatePass{PassID: "GP-1", AssetID: 1, FromBranch: "BR1", ToBranch: "BR2", Type: asset.GatePassTypeTemporary, GeneratedAt: now})).To(Succeed())
			Expect(repo.CreateGatePass(ctx, &asset.GatePass{PassID: "GP-2", AssetID: 2, FromBranch: "BR3", ToBranch: "BR4", Type: asset.GatePassTypeTransfer, GeneratedAt: now})).To(Succeed())

			passes, err := repo.ListGatePasses(ctx, scope.ForBranches("BR2"))
			Expect(err).NotTo(HaveOccurred())
			Expect(passes).To(HaveLen(1))
			Expect(passes[0].PassID).To(Equal("GP-1"))

			passes, err = repo.ListGatePasses(ctx, scope.Everything())
			Expect(err).NotTo(HaveOccurred())
			Expect(passes).To(HaveLen(2))
		})
	})
})
