package payables

import (
	"context"
	"time"

	"github.com/frahmantamala/asset-management/internal/scope"
)

const (
	ApprovalStatusPending  = "Pending"
	ApprovalStatusApproved = "Approved"
	ApprovalStatusRejected = "Rejected"

	PaymentStatusUnpaid = "Unpaid"
	PaymentStatusPaid   = "Paid"

	// Ad-hoc override statuses applied through UpdateBillStatus.
	PaymentStatusHold           = "Hold"
	PaymentStatusSentForFinance = "SentForFinance"

	AgreementStatusActive  = "Active"
	AgreementStatusExpired = "Expired"
)

// DateLayout is the wire and storage format for billing dates.
const DateLayout = "2006-01-02"

// MonthYearLayout keys the monthly spend ceiling per contract.
const MonthYearLayout = "2006-01"

// Bills raised against an agreement inherit their bill type from the
// agreement type through this fixed mapping.
var AgreementToBillType = map[string]string{
	"Rent Agreement":        "Rent Invoice",
	"KSEB Agreement":        "Electricity Bill",
	"Water Bill Agreement":  "Water Bill",
	"Maintenance Agreement": "Maintenance Bill",
	"Internet Agreement":    "Internet Bill",
	"Security Agreement":    "Security Bill",
}

// Agreement is a vendor contract, the immutable ceiling bills are validated
// against.
type Agreement struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ContractID    string `gorm:"uniqueIndex;not null" json:"contractId"`
	VendorName    string `gorm:"not null" json:"vendorName"`
	BranchCode    string `gorm:"index;not null" json:"branchCode"`
	BranchName    string `json:"branchName,omitempty"`
	Type          string `json:"type,omitempty"`
	BillType      string `json:"billType,omitempty"`
	Amount        int64  `gorm:"not null" json:"amount"`
	AgreementDate string `json:"agreementDate,omitempty"`
	RenewalDate   string `json:"renewalDate,omitempty"`
	Status        string `gorm:"default:Active" json:"status"`
	Description   string `json:"description,omitempty"`

	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Agreement) TableName() string {
	return "agreements"
}

type Bill struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	BillNo     string `json:"billNo"`
	ContractID string `gorm:"index;not null" json:"contractId"`
	BillType   string `json:"billType,omitempty"`
	VendorName string `json:"vendorName,omitempty"`
	BranchCode string `gorm:"index" json:"branchCode,omitempty"`

	Amount         int64  `gorm:"not null" json:"amount"`
	BillDate       string `gorm:"not null" json:"billDate"`
	MonthYear      string `gorm:"index" json:"monthYear"`
	DueDate        string `json:"dueDate,omitempty"`
	BilledFromDate string `json:"billedFromDate,omitempty"`
	BilledToDate   string `json:"billedToDate,omitempty"`
	BilledToWhom   string `json:"billedToWhom,omitempty"`
	Priority       string `json:"priority,omitempty"`

	ApprovalStatus string `gorm:"index;default:Pending" json:"approvalStatus"`
	PaymentStatus  string `gorm:"index;default:Unpaid" json:"paymentStatus"`

	IsException     bool   `json:"isException"`
	ExceptionReason string `json:"exceptionReason,omitempty"`

	CreatedBy       string `json:"createdBy,omitempty"`
	ApprovedBy      string `json:"approvedBy,omitempty"`
	ApproverID      *int64 `json:"approverId,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`

	PaidBy               string `json:"paidBy,omitempty"`
	ModeOfPayment        string `json:"modeOfPayment,omitempty"`
	UTRNumber            string `gorm:"column:utr_number" json:"utrNumber,omitempty"`
	PaymentDate          string `json:"paymentDate,omitempty"`
	PaymentScheduledDate string `json:"paymentScheduledDate,omitempty"`
	Remarks              string `json:"remarks,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Bill) TableName() string {
	return "bills"
}

type AgreementRepositoryAPI interface {
	Create(ctx context.Context, agreement *Agreement) error
	GetByID(ctx context.Context, id int64) (*Agreement, error)
	GetByContractID(ctx context.Context, contractID string) (*Agreement, error)
	List(ctx context.Context, sc scope.Scope) ([]*Agreement, error)
}

type BillRepositoryAPI interface {
	Create(ctx context.Context, bill *Bill) error
	GetByID(ctx context.Context, id int64) (*Bill, error)
	Update(ctx context.Context, bill *Bill) error
	List(ctx context.Context, sc scope.Scope, contractID string) ([]*Bill, error)
	ListUnpaid(ctx context.Context, sc scope.Scope) ([]*Bill, error)

	// SumForContractMonth totals non-rejected bills for one contract and
	// month. Callers rely on it being computed fresh per call.
	SumForContractMonth(ctx context.Context, contractID, monthYear string) (int64, error)
}
