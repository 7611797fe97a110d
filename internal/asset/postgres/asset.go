package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/scope"
)

// AssetRepository implements asset.RepositoryAPI using GORM.
type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) asset.RepositoryAPI {
	return &AssetRepository{db: db}
}

// scoped translates a visibility scope into the shared SQL filter: records in
// a visible branch, or transferred out of one (from_branch_code breadcrumb).
func scoped(tx *gorm.DB, sc scope.Scope) *gorm.DB {
	if sc.All {
		return tx
	}
	return tx.Where("branch_code IN ? OR from_branch_code IN ?", sc.BranchCodes, sc.BranchCodes)
}

func (r *AssetRepository) Create(ctx context.Context, a *asset.Asset) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AssetRepository) GetByID(ctx context.Context, id int64) (*asset.Asset, error) {
	var a asset.Asset
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssetRepository) Update(ctx context.Context, a *asset.Asset) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AssetRepository) List(ctx context.Context, sc scope.Scope, q string) ([]*asset.Asset, error) {
	tx := scoped(r.db.WithContext(ctx), sc)
	if q = strings.TrimSpace(q); q != "" {
		needle := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("lower(name) LIKE ? OR lower(tag_number) LIKE ?", needle, needle)
	}

	var assets []*asset.Asset
	err := tx.Order("created_at DESC").Find(&assets).Error
	return assets, err
}

func (r *AssetRepository) ListByStatus(ctx context.Context, sc scope.Scope, statuses []string) ([]*asset.Asset, error) {
	var assets []*asset.Asset
	err := scoped(r.db.WithContext(ctx), sc).
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Find(&assets).Error
	return assets, err
}

func (r *AssetRepository) ListTransferredFrom(ctx context.Context, branchCode string) ([]*asset.Asset, error) {
	var assets []*asset.Asset
	err := r.db.WithContext(ctx).
		Where("from_branch_code = ? AND transfer_status = ?", branchCode, asset.TransferStatusTransferred).
		Order("updated_at DESC").
		Find(&assets).Error
	return assets, err
}

func (r *AssetRepository) CreateGatePass(ctx context.Context, gp *asset.GatePass) error {
	return r.db.WithContext(ctx).Create(gp).Error
}

func (r *AssetRepository) ListGatePasses(ctx context.Context, sc scope.Scope) ([]*asset.GatePass, error) {
	tx := r.db.WithContext(ctx)
	if !sc.All {
		tx = tx.Where("from_branch IN ? OR to_branch IN ?", sc.BranchCodes, sc.BranchCodes)
	}

	var passes []*asset.GatePass
	err := tx.Order("generated_at DESC").Find(&passes).Error
	return passes, err
}
