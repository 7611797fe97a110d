package payables

import (
	"strings"
	"time"

	"github.com/frahmantamala/asset-management/internal"
)

type CreateAgreementDTO struct {
	ContractID    string `json:"contractId,omitempty"`
	VendorName    string `json:"vendorName"`
	BranchCode    string `json:"branchCode"`
	BranchName    string `json:"branchName,omitempty"`
	Type          string `json:"type,omitempty"`
	BillType      string `json:"billType,omitempty"`
	Amount        int64  `json:"amount"`
	AgreementDate string `json:"agreementDate,omitempty"`
	RenewalDate   string `json:"renewalDate,omitempty"`
	Description   string `json:"description,omitempty"`
}

func (dto CreateAgreementDTO) Validate() error {
	if strings.TrimSpace(dto.VendorName) == "" {
		return internal.NewValidationFieldError("vendorName", "vendor name is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.BranchCode) == "" {
		return internal.NewValidationFieldError("branchCode", "branch code is required", internal.ErrCodeValidationFailed)
	}
	if dto.Amount <= 0 {
		return internal.NewValidationFieldError("amount", "amount must be positive", internal.ErrCodeInvalidAmount)
	}
	for field, v := range map[string]string{
		"agreementDate": dto.AgreementDate,
		"renewalDate":   dto.RenewalDate,
	} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, v); err != nil {
			return internal.NewValidationFieldError(field, "must be a YYYY-MM-DD date", internal.ErrCodeInvalidDate)
		}
	}
	return nil
}

type CreateBillDTO struct {
	BillNo         string `json:"billNo"`
	ContractID     string `json:"contractId"`
	BillType       string `json:"billType,omitempty"`
	VendorName     string `json:"vendorName,omitempty"`
	BranchCode     string `json:"branchCode,omitempty"`
	Amount         int64  `json:"amount"`
	BillDate       string `json:"billDate"`
	MonthYear      string `json:"monthYear,omitempty"`
	DueDate        string `json:"dueDate,omitempty"`
	BilledFromDate string `json:"billedFromDate,omitempty"`
	BilledToDate   string `json:"billedToDate,omitempty"`
	BilledToWhom   string `json:"billedToWhom,omitempty"`
	Priority       string `json:"priority,omitempty"`

	IsException     bool   `json:"isException"`
	ExceptionReason string `json:"exceptionReason,omitempty"`
}

func (dto CreateBillDTO) Validate() error {
	if strings.TrimSpace(dto.ContractID) == "" {
		return internal.NewValidationFieldError("contractId", "contract id is required", internal.ErrCodeValidationFailed)
	}
	if dto.Amount <= 0 {
		return internal.NewValidationFieldError("amount", "amount must be positive", internal.ErrCodeInvalidAmount)
	}
	if _, err := time.Parse(DateLayout, dto.BillDate); err != nil {
		return internal.NewValidationFieldError("billDate", "must be a YYYY-MM-DD date", internal.ErrCodeInvalidDate)
	}
	if dto.MonthYear != "" {
		if _, err := time.Parse(MonthYearLayout, dto.MonthYear); err != nil {
			return internal.NewValidationFieldError("monthYear", "must be a YYYY-MM month", internal.ErrCodeInvalidDate)
		}
	}
	return nil
}

type ValidateBillDTO struct {
	ContractID string `json:"contractId"`
	Amount     int64  `json:"amount"`
	BillDate   string `json:"billDate"`
	MonthYear  string `json:"monthYear,omitempty"`
}

// ValidationResult is the pre-submission check the client runs before
// createBill. needsException signals that a non-empty exception reason must
// accompany the bill.
type ValidationResult struct {
	DateValid         bool  `json:"dateValid"`
	AmountValid       bool  `json:"amountValid"`
	MonthlyLimitValid bool  `json:"monthlyLimitValid"`
	NeedsException    bool  `json:"needsException"`
	CurrentMonthTotal int64 `json:"currentMonthTotal"`
	AgreementAmount   int64 `json:"agreementAmount"`
}

type RejectBillDTO struct {
	Reason string `json:"reason"`
}

type PayBillDTO struct {
	ModeOfPayment string `json:"modeOfPayment"`
	UTRNumber     string `json:"utrNumber,omitempty"`
	PaymentDate   string `json:"paymentDate,omitempty"`
}

func (dto PayBillDTO) Validate() error {
	if strings.TrimSpace(dto.ModeOfPayment) == "" {
		return internal.NewValidationFieldError("modeOfPayment", "mode of payment is required", internal.ErrCodeValidationFailed)
	}
	if dto.PaymentDate != "" {
		if _, err := time.Parse(DateLayout, dto.PaymentDate); err != nil {
			return internal.NewValidationFieldError("paymentDate", "must be a YYYY-MM-DD date", internal.ErrCodeInvalidDate)
		}
	}
	return nil
}

type UpdateBillStatusDTO struct {
	Status               string `json:"status"`
	Remarks              string `json:"remarks,omitempty"`
	PaymentScheduledDate string `json:"paymentScheduledDate,omitempty"`
}

func (dto UpdateBillStatusDTO) Validate() error {
	switch dto.Status {
	case PaymentStatusHold, PaymentStatusSentForFinance:
	default:
		return internal.NewValidationFieldError("status", "status must be Hold or SentForFinance", internal.ErrCodeValidationFailed)
	}
	if dto.PaymentScheduledDate != "" {
		if _, err := time.Parse(DateLayout, dto.PaymentScheduledDate); err != nil {
			return internal.NewValidationFieldError("paymentScheduledDate", "must be a YYYY-MM-DD date", internal.ErrCodeInvalidDate)
		}
	}
	return nil
}
