package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/asset-management/internal/payables"
	"github.com/frahmantamala/asset-management/internal/scope"
)

// AgreementRepository implements payables.AgreementRepositoryAPI using GORM.
type AgreementRepository struct {
	db *gorm.DB
}

func NewAgreementRepository(db *gorm.DB) payables.AgreementRepositoryAPI {
	return &AgreementRepository{db: db}
}

func (r *AgreementRepository) Create(ctx context.Context, agreement *payables.Agreement) error {
	return r.db.WithContext(ctx).Create(agreement).Error
}

func (r *AgreementRepository) GetByID(ctx context.Context, id int64) (*payables.Agreement, error) {
	var agreement payables.Agreement
	if err := r.db.WithContext(ctx).First(&agreement, id).Error; err != nil {
		return nil, err
	}
	return &agreement, nil
}

func (r *AgreementRepository) GetByContractID(ctx context.Context, contractID string) (*payables.Agreement, error) {
	var agreement payables.Agreement
	if err := r.db.WithContext(ctx).Where("contract_id = ?", contractID).First(&agreement).Error; err != nil {
		return nil, err
	}
	return &agreement, nil
}

func (r *AgreementRepository) List(ctx context.Context, sc scope.Scope) ([]*payables.Agreement, error) {
	tx := r.db.WithContext(ctx)
	if !sc.All {
		tx = tx.Where("branch_code IN ?", sc.BranchCodes)
	}

	var agreements []*payables.Agreement
	err := tx.Order("created_at DESC").Find(&agreements).Error
	return agreements, err
}

// BillRepository implements payables.BillRepositoryAPI using GORM.
type BillRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) payables.BillRepositoryAPI {
	return &BillRepository{db: db}
}

func (r *BillRepository) Create(ctx context.Context, bill *payables.Bill) error {
	return r.db.WithContext(ctx).Create(bill).Error
}

func (r *BillRepository) GetByID(ctx context.Context, id int64) (*payables.Bill, error) {
	var bill payables.Bill
	if err := r.db.WithContext(ctx).First(&bill, id).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *BillRepository) Update(ctx context.Context, bill *payables.Bill) error {
	return r.db.WithContext(ctx).Save(bill).Error
}

func (r *BillRepository) List(ctx context.Context, sc scope.Scope, contractID string) ([]*payables.Bill, error) {
	tx := r.db.WithContext(ctx)
	if !sc.All {
		tx = tx.Where("branch_code IN ?", sc.BranchCodes)
	}
	if contractID != "" {
		tx = tx.Where("contract_id = ?", contractID)
	}

	var bills []*payables.Bill
	err := tx.Order("created_at DESC").Find(&bills).Error
	return bills, err
}

func (r *BillRepository) ListUnpaid(ctx context.Context, sc scope.Scope) ([]*payables.Bill, error) {
	tx := r.db.WithContext(ctx).
		Where("payment_status <> ?", payables.PaymentStatusPaid).
		Where("approval_status <> ?", payables.ApprovalStatusRejected)
	if !sc.All {
		tx = tx.Where("branch_code IN ?", sc.BranchCodes)
	}

	var bills []*payables.Bill
	err := tx.Order("due_date ASC").Find(&bills).Error
	return bills, err
}

func (r *BillRepository) SumForContractMonth(ctx context.Context, contractID, monthYear string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&payables.Bill{}).
		Where("contract_id = ? AND month_year = ? AND approval_status <> ?",
			contractID, monthYear, payables.ApprovalStatusRejected).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
