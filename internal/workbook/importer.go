package workbook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/payables"
	"github.com/frahmantamala/asset-management/internal/user"
)

// Importer loads a legacy workbook into the database. Sheets it does not
// recognize are skipped; rows that fail to parse are logged and skipped so
// one bad row does not abort a migration.
type Importer struct {
	users      user.RepositoryAPI
	assets     asset.RepositoryAPI
	agreements payables.AgreementRepositoryAPI
	bills      payables.BillRepositoryAPI
	logger     *slog.Logger
}

func NewImporter(users user.RepositoryAPI, assets asset.RepositoryAPI, agreements payables.AgreementRepositoryAPI, bills payables.BillRepositoryAPI, logger *slog.Logger) *Importer {
	return &Importer{
		users:      users,
		assets:     assets,
		agreements: agreements,
		bills:      bills,
		logger:     logger,
	}
}

type ImportSummary struct {
	Users      int `json:"users"`
	Assets     int `json:"assets"`
	Agreements int `json:"agreements"`
	Bills      int `json:"bills"`
	Skipped    int `json:"skipped"`
}

func (im *Importer) Import(ctx context.Context, path string) (*ImportSummary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	summary := &ImportSummary{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}
		h := newHeader(rows[0])

		switch sheet {
		case SheetUsers:
			im.importUsers(ctx, h, rows[1:], summary)
		case SheetAssets:
			im.importAssets(ctx, h, rows[1:], summary)
		case SheetAgreements:
			im.importAgreements(ctx, h, rows[1:], summary)
		case SheetBills:
			im.importBills(ctx, h, rows[1:], summary)
		default:
			im.logger.Info("skipping unknown sheet", "sheet", sheet)
		}
	}

	im.logger.Info("workbook import finished",
		"users", summary.Users, "assets", summary.Assets,
		"agreements", summary.Agreements, "bills", summary.Bills, "skipped", summary.Skipped)
	return summary, nil
}

func (im *Importer) importUsers(ctx context.Context, h header, rows [][]string, summary *ImportSummary) {
	for i, row := range rows {
		username := h.str(row, "username")
		if username == "" {
			summary.Skipped++
			continue
		}
		managerID, err := h.int64(row, "managerid")
		if err != nil {
			im.logger.Warn("skipping user row", "row", i+2, "error", err)
			summary.Skipped++
			continue
		}
		u := &user.User{
			Username:   username,
			Role:       h.str(row, "role"),
			BranchCode: h.str(row, "branchcode"),
			BranchName: h.str(row, "branchname"),
		}
		if managerID > 0 {
			u.ManagerID = &managerID
		}
		if err := im.users.Create(ctx, u); err != nil {
			im.logger.Warn("skipping user row", "row", i+2, "username", username, "error", err)
			summary.Skipped++
			continue
		}
		summary.Users++
	}
}

func (im *Importer) importAssets(ctx context.Context, h header, rows [][]string, summary *ImportSummary) {
	now := time.Now()
	for i, row := range rows {
		tag := h.str(row, "tagnumber")
		if tag == "" {
			summary.Skipped++
			continue
		}
		status := h.str(row, "status")
		if status == "" {
			status = asset.StatusActive
		}
		a := &asset.Asset{
			Name:           h.str(row, "name"),
			TagNumber:      tag,
			Type:           h.str(row, "type"),
			BranchCode:     h.str(row, "branchcode"),
			BranchName:     h.str(row, "branchname"),
			Status:         status,
			PurchaseDate:   h.str(row, "purchasedate"),
			WarrantyEnd:    h.str(row, "warrantyend"),
			AmcStart:       h.str(row, "amcstart"),
			AmcEnd:         h.str(row, "amcend"),
			ExpiryDate:     h.str(row, "expirydate"),
			AmcWarranty:    h.str(row, "amcwarranty"),
			BranchUser:     h.str(row, "branchuser"),
			MappedEmployee: h.str(row, "mappedemployee"),
			Custodian:      h.str(row, "custodian"),
			FromBranch:     h.str(row, "frombranch"),
			FromBranchCode: h.str(row, "frombranchcode"),
			TransferStatus: h.str(row, "transferstatus"),
			CreatedBy:      h.str(row, "createdby"),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := im.assets.Create(ctx, a); err != nil {
			im.logger.Warn("skipping asset row", "row", i+2, "tag_number", tag, "error", err)
			summary.Skipped++
			continue
		}
		summary.Assets++
	}
}

func (im *Importer) importAgreements(ctx context.Context, h header, rows [][]string, summary *ImportSummary) {
	now := time.Now()
	for i, row := range rows {
		contractID := h.str(row, "contractid")
		if contractID == "" {
			summary.Skipped++
			continue
		}
		amount, err := h.int64(row, "amount")
		if err != nil {
			im.logger.Warn("skipping agreement row", "row", i+2, "error", err)
			summary.Skipped++
			continue
		}
		status := h.str(row, "status")
		if status == "" {
			status = payables.AgreementStatusActive
		}
		agreement := &payables.Agreement{
			ContractID:    contractID,
			VendorName:    h.str(row, "vendorname"),
			BranchCode:    h.str(row, "branchcode"),
			BranchName:    h.str(row, "branchname"),
			Type:          h.str(row, "type"),
			BillType:      h.str(row, "billtype"),
			Amount:        amount,
			AgreementDate: h.str(row, "agreementdate"),
			RenewalDate:   h.str(row, "renewaldate"),
			Status:        status,
			CreatedBy:     h.str(row, "createdby"),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := im.agreements.Create(ctx, agreement); err != nil {
			im.logger.Warn("skipping agreement row", "row", i+2, "contract_id", contractID, "error", err)
			summary.Skipped++
			continue
		}
		summary.Agreements++
	}
}

func (im *Importer) importBills(ctx context.Context, h header, rows [][]string, summary *ImportSummary) {
	now := time.Now()
	for i, row := range rows {
		contractID := h.str(row, "contractid")
		if contractID == "" {
			summary.Skipped++
			continue
		}
		// Legacy workbooks contain orphaned bills; the referential rule is
		// enforced here the same way the engine enforces it at create time.
		if _, err := im.agreements.GetByContractID(ctx, contractID); err != nil {
			im.logger.Warn("skipping bill row: unknown contract", "row", i+2, "contract_id", contractID)
			summary.Skipped++
			continue
		}
		amount, err := h.int64(row, "amount")
		if err != nil {
			im.logger.Warn("skipping bill row", "row", i+2, "error", err)
			summary.Skipped++
			continue
		}
		approvalStatus := h.str(row, "approvalstatus")
		if approvalStatus == "" {
			approvalStatus = payables.ApprovalStatusPending
		}
		paymentStatus := h.str(row, "paymentstatus")
		if paymentStatus == "" {
			paymentStatus = payables.PaymentStatusUnpaid
		}
		// The legacy store healed paid-but-pending rows on read; here the
		// inconsistency is repaired once at import.
		if paymentStatus == payables.PaymentStatusPaid {
			approvalStatus = payables.ApprovalStatusApproved
		}
		bill := &payables.Bill{
			BillNo:          h.str(row, "billno"),
			ContractID:      contractID,
			BillType:        h.str(row, "billtype"),
			VendorName:      h.str(row, "vendorname"),
			BranchCode:      h.str(row, "branchcode"),
			Amount:          amount,
			BillDate:        h.str(row, "billdate"),
			MonthYear:       h.str(row, "monthyear"),
			DueDate:         h.str(row, "duedate"),
			ApprovalStatus:  approvalStatus,
			PaymentStatus:   paymentStatus,
			IsException:     h.bool(row, "isexception"),
			ExceptionReason: h.str(row, "exceptionreason"),
			CreatedBy:       h.str(row, "createdby"),
			ApprovedBy:      h.str(row, "approvedby"),
			PaidBy:          h.str(row, "paidby"),
			ModeOfPayment:   h.str(row, "modeofpayment"),
			UTRNumber:       h.str(row, "utrnumber"),
			PaymentDate:     h.str(row, "paymentdate"),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := im.bills.Create(ctx, bill); err != nil {
			im.logger.Warn("skipping bill row", "row", i+2, "contract_id", contractID, "error", err)
			summary.Skipped++
			continue
		}
		summary.Bills++
	}
}
