package payables

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/auth"
	"github.com/frahmantamala/asset-management/internal/core/events"
	"github.com/frahmantamala/asset-management/internal/obs"
	"github.com/frahmantamala/asset-management/internal/scope"
)

// Bills are valid when dated within the last 90 days.
const billDateWindowDays = 90

// DueDate defaults to billDate plus 30 days when the caller leaves it blank.
const defaultDueDays = 30

type ServiceAPI interface {
	CreateAgreement(ctx context.Context, actor *auth.User, dto CreateAgreementDTO) (*Agreement, error)
	GetAgreement(ctx context.Context, contractID string) (*Agreement, error)
	ListAgreements(ctx context.Context, actor *auth.User) ([]*Agreement, error)

	CreateBill(ctx context.Context, actor *auth.User, dto CreateBillDTO) (*Bill, error)
	ValidateBill(ctx context.Context, dto ValidateBillDTO) (*ValidationResult, error)
	GetBill(ctx context.Context, id int64) (*Bill, error)
	ListBills(ctx context.Context, actor *auth.User, contractID string) ([]*Bill, error)
	ApproveBill(ctx context.Context, actor *auth.User, id int64) (*Bill, error)
	RejectBill(ctx context.Context, actor *auth.User, id int64, dto RejectBillDTO) (*Bill, error)
	PayBill(ctx context.Context, actor *auth.User, id int64, dto PayBillDTO) (*Bill, error)
	UpdateBillStatus(ctx context.Context, actor *auth.User, id int64, dto UpdateBillStatusDTO) (*Bill, error)
	GetMonthlyBillTotal(ctx context.Context, contractID, monthYear string) (int64, error)
	GetUnpaidBills(ctx context.Context, actor *auth.User) ([]*Bill, error)
}

type Service struct {
	agreements AgreementRepositoryAPI
	bills      BillRepositoryAPI
	resolver   *scope.Resolver
	bus        *events.EventBus
	logger     *slog.Logger
}

func NewService(agreements AgreementRepositoryAPI, bills BillRepositoryAPI, resolver *scope.Resolver, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		agreements: agreements,
		bills:      bills,
		resolver:   resolver,
		bus:        bus,
		logger:     logger,
	}
}

func (s *Service) CreateAgreement(ctx context.Context, actor *auth.User, dto CreateAgreementDTO) (*Agreement, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	contractID := strings.TrimSpace(dto.ContractID)
	if contractID == "" {
		contractID = "AGR-" + ulid.Make().String()
	}

	billType := dto.BillType
	if billType == "" {
		billType = AgreementToBillType[dto.Type]
	}

	now := time.Now()
	agreement := &Agreement{
		ContractID:    contractID,
		VendorName:    dto.VendorName,
		BranchCode:    dto.BranchCode,
		BranchName:    dto.BranchName,
		Type:          dto.Type,
		BillType:      billType,
		Amount:        dto.Amount,
		AgreementDate: dto.AgreementDate,
		RenewalDate:   dto.RenewalDate,
		Status:        AgreementStatusActive,
		Description:   dto.Description,
		CreatedBy:     actor.Username,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.agreements.Create(ctx, agreement); err != nil {
		s.logger.Error("create agreement failed", "contract_id", contractID, "error", err)
		return nil, internal.NewInternalError("failed to create agreement", err)
	}

	s.logger.Info("agreement created", "contract_id", contractID, "vendor", dto.VendorName, "branch_code", dto.BranchCode)
	return agreement, nil
}

func (s *Service) GetAgreement(ctx context.Context, contractID string) (*Agreement, error) {
	agreement, err := s.agreements.GetByContractID(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrAgreementNotFound
		}
		return nil, internal.NewInternalError("failed to read agreement", err)
	}
	return agreement, nil
}

func (s *Service) ListAgreements(ctx context.Context, actor *auth.User) ([]*Agreement, error) {
	sc, err := s.resolver.Resolve(ctx, actor.Role, actor.BranchCode, actor.ID)
	if err != nil {
		return nil, err
	}
	agreements, err := s.agreements.List(ctx, sc)
	if err != nil {
		return nil, internal.NewInternalError("failed to list agreements", err)
	}
	return agreements, nil
}

// CreateBill persists a bill against an existing agreement. A contract id
// that resolves to no agreement is an invalid reference and never produces a
// bill row. Missing vendor, branch and bill type are enriched from the
// agreement; the engine records the caller's exception flag as-is.
func (s *Service) CreateBill(ctx context.Context, actor *auth.User, dto CreateBillDTO) (*Bill, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	agreement, err := s.agreements.GetByContractID(ctx, dto.ContractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewInvalidReferenceError(
				fmt.Sprintf("no agreement found for contract %q", dto.ContractID))
		}
		return nil, internal.NewInternalError("failed to resolve agreement", err)
	}

	billDate, _ := time.Parse(DateLayout, dto.BillDate)

	vendorName := dto.VendorName
	if vendorName == "" {
		vendorName = agreement.VendorName
	}
	branchCode := dto.BranchCode
	if branchCode == "" {
		branchCode = agreement.BranchCode
	}
	billType := dto.BillType
	if billType == "" {
		billType = agreement.BillType
	}
	if billType == "" {
		billType = AgreementToBillType[agreement.Type]
	}
	monthYear := dto.MonthYear
	if monthYear == "" {
		monthYear = billDate.Format(MonthYearLayout)
	}
	dueDate := dto.DueDate
	if dueDate == "" {
		dueDate = billDate.AddDate(0, 0, defaultDueDays).Format(DateLayout)
	}

	now := time.Now()
	bill := &Bill{
		BillNo:          dto.BillNo,
		ContractID:      dto.ContractID,
		BillType:        billType,
		VendorName:      vendorName,
		BranchCode:      branchCode,
		Amount:          dto.Amount,
		BillDate:        dto.BillDate,
		MonthYear:       monthYear,
		DueDate:         dueDate,
		BilledFromDate:  dto.BilledFromDate,
		BilledToDate:    dto.BilledToDate,
		BilledToWhom:    dto.BilledToWhom,
		Priority:        dto.Priority,
		ApprovalStatus:  ApprovalStatusPending,
		PaymentStatus:   PaymentStatusUnpaid,
		IsException:     dto.IsException,
		ExceptionReason: dto.ExceptionReason,
		CreatedBy:       actor.Username,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.bills.Create(ctx, bill); err != nil {
		s.logger.Error("create bill failed", "contract_id", dto.ContractID, "error", err)
		return nil, internal.NewInternalError("failed to create bill", err)
	}

	s.logger.Info("bill created",
		"bill_id", bill.ID, "contract_id", bill.ContractID, "amount", bill.Amount, "is_exception", bill.IsException)
	obs.RecordTransition("bill", "create")
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeBillCreated, "bill", bill.ID,
		actor.Username, "Bill Awaiting Approval",
		fmt.Sprintf("Bill %s for %d against %s awaiting approval", bill.BillNo, bill.Amount, bill.ContractID),
		events.WorkflowTarget{Role: "Admin"}))
	return bill, nil
}

// ValidateBill is the pre-submission check: bill date within the window,
// amount under the agreement ceiling, and month-to-date total under the
// ceiling. The month total is read fresh on every call.
func (s *Service) ValidateBill(ctx context.Context, dto ValidateBillDTO) (*ValidationResult, error) {
	agreement, err := s.agreements.GetByContractID(ctx, dto.ContractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewInvalidReferenceError(
				fmt.Sprintf("no agreement found for contract %q", dto.ContractID))
		}
		return nil, internal.NewInternalError("failed to resolve agreement", err)
	}

	billDate, err := time.Parse(DateLayout, dto.BillDate)
	if err != nil {
		return nil, internal.NewValidationFieldError("billDate", "must be a YYYY-MM-DD date", internal.ErrCodeInvalidDate)
	}

	monthYear := dto.MonthYear
	if monthYear == "" {
		monthYear = billDate.Format(MonthYearLayout)
	}

	monthTotal, err := s.bills.SumForContractMonth(ctx, dto.ContractID, monthYear)
	if err != nil {
		return nil, internal.NewInternalError("failed to total monthly bills", err)
	}

	now := time.Now()
	windowStart := now.AddDate(0, 0, -billDateWindowDays)
	result := &ValidationResult{
		DateValid:         !billDate.Before(windowStart) && !billDate.After(now),
		AmountValid:       dto.Amount <= agreement.Amount,
		MonthlyLimitValid: monthTotal+dto.Amount <= agreement.Amount,
		CurrentMonthTotal: monthTotal,
		AgreementAmount:   agreement.Amount,
	}
	result.NeedsException = !result.AmountValid || !result.MonthlyLimitValid
	return result, nil
}

func (s *Service) GetBill(ctx context.Context, id int64) (*Bill, error) {
	return s.getBill(ctx, id)
}

func (s *Service) ListBills(ctx context.Context, actor *auth.User, contractID string) ([]*Bill, error) {
	sc, err := s.resolver.Resolve(ctx, actor.Role, actor.BranchCode, actor.ID)
	if err != nil {
		return nil, err
	}
	bills, err := s.bills.List(ctx, sc, contractID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list bills", err)
	}
	return bills, nil
}

func (s *Service) ApproveBill(ctx context.Context, actor *auth.User, id int64) (*Bill, error) {
	bill, err := s.getBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.ApprovalStatus != ApprovalStatusPending {
		obs.RecordRejectedTransition("bill", "approve")
		return nil, internal.NewStateConflictError(
			fmt.Sprintf("only pending bills can be approved, current status is %q", bill.ApprovalStatus))
	}

	bill.ApprovalStatus = ApprovalStatusApproved
	bill.ApprovedBy = actor.Username
	bill.ApproverID = &actor.ID
	bill.UpdatedAt = time.Now()
	if err := s.bills.Update(ctx, bill); err != nil {
		return nil, internal.NewInternalError("failed to approve bill", err)
	}

	s.logger.Info("bill approved", "bill_id", bill.ID, "approved_by", actor.Username)
	obs.RecordTransition("bill", "approve")
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeBillApproved, "bill", bill.ID,
		actor.Username, "Bill Approved",
		fmt.Sprintf("Bill %s against %s approved by %s", bill.BillNo, bill.ContractID, actor.Username),
		events.WorkflowTarget{Username: bill.CreatedBy}))
	return bill, nil
}

// RejectBill terminates the bill. A blank reason is refused.
func (s *Service) RejectBill(ctx context.Context, actor *auth.User, id int64, dto RejectBillDTO) (*Bill, error) {
	if strings.TrimSpace(dto.Reason) == "" {
		return nil, internal.NewValidationError("rejection reason is required", internal.ErrCodeMissingReason)
	}

	bill, err := s.getBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.ApprovalStatus != ApprovalStatusPending {
		obs.RecordRejectedTransition("bill", "reject")
		return nil, internal.NewStateConflictError(
			fmt.Sprintf("only pending bills can be rejected, current status is %q", bill.ApprovalStatus))
	}

	bill.ApprovalStatus = ApprovalStatusRejected
	bill.RejectionReason = dto.Reason
	bill.ApprovedBy = actor.Username
	bill.ApproverID = &actor.ID
	bill.UpdatedAt = time.Now()
	if err := s.bills.Update(ctx, bill); err != nil {
		return nil, internal.NewInternalError("failed to reject bill", err)
	}

	obs.RecordTransition("bill", "reject")
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeBillRejected, "bill", bill.ID,
		actor.Username, "Bill Rejected",
		fmt.Sprintf("Bill %s against %s rejected: %s", bill.BillNo, bill.ContractID, dto.Reason),
		events.WorkflowTarget{Username: bill.CreatedBy}))
	return bill, nil
}

// PayBill settles the bill. A still-pending bill self-promotes: payment
// forces approvalStatus to Approved so a paid-but-pending row can never be
// written.
func (s *Service) PayBill(ctx context.Context, actor *auth.User, id int64, dto PayBillDTO) (*Bill, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	bill, err := s.getBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.ApprovalStatus == ApprovalStatusRejected {
		obs.RecordRejectedTransition("bill", "pay")
		return nil, internal.NewStateConflictError("a rejected bill cannot be paid")
	}
	if bill.PaymentStatus == PaymentStatusPaid {
		obs.RecordRejectedTransition("bill", "pay")
		return nil, internal.NewStateConflictError("bill is already paid")
	}

	paymentDate := dto.PaymentDate
	if paymentDate == "" {
		paymentDate = time.Now().Format(DateLayout)
	}

	bill.PaymentStatus = PaymentStatusPaid
	bill.ApprovalStatus = ApprovalStatusApproved
	if bill.ApprovedBy == "" {
		bill.ApprovedBy = actor.Username
	}
	bill.PaidBy = actor.Username
	bill.ModeOfPayment = dto.ModeOfPayment
	bill.UTRNumber = dto.UTRNumber
	bill.PaymentDate = paymentDate
	bill.UpdatedAt = time.Now()
	if err := s.bills.Update(ctx, bill); err != nil {
		return nil, internal.NewInternalError("failed to pay bill", err)
	}

	s.logger.Info("bill paid", "bill_id", bill.ID, "paid_by", actor.Username, "mode", dto.ModeOfPayment)
	obs.RecordTransition("bill", "pay")
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeBillPaid, "bill", bill.ID,
		actor.Username, "Bill Paid",
		fmt.Sprintf("Bill %s against %s paid via %s", bill.BillNo, bill.ContractID, dto.ModeOfPayment),
		events.WorkflowTarget{Username: bill.CreatedBy}))
	return bill, nil
}

// UpdateBillStatus applies the ad-hoc payment overrides (Hold with an
// optional scheduled date, SentForFinance).
func (s *Service) UpdateBillStatus(ctx context.Context, actor *auth.User, id int64, dto UpdateBillStatusDTO) (*Bill, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	bill, err := s.getBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.PaymentStatus == PaymentStatusPaid {
		obs.RecordRejectedTransition("bill", "status_update")
		return nil, internal.NewStateConflictError("a paid bill cannot change payment status")
	}

	bill.PaymentStatus = dto.Status
	if dto.Remarks != "" {
		bill.Remarks = dto.Remarks
	}
	if dto.PaymentScheduledDate != "" {
		bill.PaymentScheduledDate = dto.PaymentScheduledDate
	}
	bill.UpdatedAt = time.Now()
	if err := s.bills.Update(ctx, bill); err != nil {
		return nil, internal.NewInternalError("failed to update bill status", err)
	}

	obs.RecordTransition("bill", "status_update")
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeBillStatusUpdated, "bill", bill.ID,
		actor.Username, "Bill Status Updated",
		fmt.Sprintf("Bill %s against %s marked %s", bill.BillNo, bill.ContractID, dto.Status),
		events.WorkflowTarget{Username: bill.CreatedBy}))
	return bill, nil
}

func (s *Service) GetMonthlyBillTotal(ctx context.Context, contractID, monthYear string) (int64, error) {
	total, err := s.bills.SumForContractMonth(ctx, contractID, monthYear)
	if err != nil {
		return 0, internal.NewInternalError("failed to total monthly bills", err)
	}
	return total, nil
}

// GetUnpaidBills lists outstanding bills in the actor's scope. Rejected
// bills are terminal and excluded.
func (s *Service) GetUnpaidBills(ctx context.Context, actor *auth.User) ([]*Bill, error) {
	sc, err := s.resolver.Resolve(ctx, actor.Role, actor.BranchCode, actor.ID)
	if err != nil {
		return nil, err
	}
	bills, err := s.bills.ListUnpaid(ctx, sc)
	if err != nil {
		return nil, internal.NewInternalError("failed to list unpaid bills", err)
	}
	return bills, nil
}

func (s *Service) getBill(ctx context.Context, id int64) (*Bill, error) {
	bill, err := s.bills.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrBillNotFound
		}
		return nil, internal.NewInternalError("failed to read bill", err)
	}
	return bill, nil
}
