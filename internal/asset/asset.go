package asset

import (
	"context"
	"time"

	"github.com/frahmantamala/asset-management/internal/scope"
)

// Asset statuses. The status field is the exclusive workflow discriminator:
// at most one of disposal, transfer or gate-pass may be in flight at a time.
const (
	StatusActive                  = "Active"
	StatusInCart                  = "In Cart"
	StatusPendingDisposal         = "Pending Disposal"
	StatusRecommended             = "Recommended"
	StatusDisposed                = "Disposed"
	StatusTransferApprovalPending = "Transfer Approval Pending"
	StatusGatePass                = "Gate Pass"
)

// TransferStatusTransferred marks an asset that has completed at least one
// transfer. It is a historical marker, never cleared.
const TransferStatusTransferred = "Transferred"

const (
	GatePassTypeTemporary = "Temporary"
	GatePassTypeTransfer  = "Transfer"
)

// DateLayout is the wire and storage format for domain dates (purchase,
// warranty, AMC). Timestamps stamped by the engine use time.Time.
const DateLayout = "2006-01-02"

type Asset struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"not null" json:"name"`
	TagNumber  string `gorm:"uniqueIndex;not null" json:"tagNumber"`
	Type       string `json:"type"`
	BranchCode string `gorm:"index;not null" json:"branchCode"`
	BranchName string `json:"branchName"`
	Status     string `gorm:"index;not null;default:Active" json:"status"`

	PurchaseDate string `json:"purchaseDate,omitempty"`
	WarrantyEnd  string `json:"warrantyEnd,omitempty"`
	AmcStart     string `json:"amcStart,omitempty"`
	AmcEnd       string `json:"amcEnd,omitempty"`
	ExpiryDate   string `json:"expiryDate,omitempty"`
	AmcWarranty  string `json:"amcWarranty,omitempty"`

	DepreciationMethod string  `json:"depreciationMethod,omitempty"`
	DepreciationRate   float64 `json:"depreciationRate,omitempty"`
	ClosingValue       int64   `json:"closingValue,omitempty"`

	BranchUser     string `json:"branchUser,omitempty"`
	MappedEmployee string `json:"mappedEmployee,omitempty"`
	Custodian      string `json:"custodian,omitempty"`
	ImageURL       string `json:"imageUrl,omitempty"`

	// Workflow-transient fields, meaningful only while a disposal, transfer
	// or gate pass is in flight.
	ToLocation      string     `json:"toLocation,omitempty"`
	ToBranchCode    string     `json:"toBranchCode,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	Purpose         string     `json:"purpose,omitempty"`
	GatePassType    string     `json:"gatePassType,omitempty"`
	InitiatedBy     string     `json:"initiatedBy,omitempty"`
	InitiatedAt     *time.Time `json:"initiatedAt,omitempty"`
	ApprovedBy      string     `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedBy      string     `json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	GeneratedBy     string     `json:"generatedBy,omitempty"`
	GeneratedAt     *time.Time `json:"generatedAt,omitempty"`

	// Origin breadcrumb set by transfer approval, never cleared.
	FromBranch     string `json:"fromBranch,omitempty"`
	FromBranchCode string `gorm:"index" json:"fromBranchCode,omitempty"`
	TransferStatus string `json:"transferStatus,omitempty"`

	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Asset) TableName() string {
	return "assets"
}

// WorkflowIdle reports whether no disposal, transfer or gate pass is in
// flight on the asset.
func (a *Asset) WorkflowIdle() bool {
	return a.Status == StatusActive
}

func (a *Asset) InDisposalReview() bool {
	return a.Status == StatusPendingDisposal || a.Status == StatusRecommended
}

// ApplyAMCFlag performs the lazy warranty-to-AMC correction: once the
// warranty end date has passed, reads report the asset as under AMC. The
// correction is idempotent and never written back.
func (a *Asset) ApplyAMCFlag(now time.Time) {
	if a.AmcWarranty == "AMC" || a.WarrantyEnd == "" {
		return
	}
	end, err := time.Parse(DateLayout, a.WarrantyEnd)
	if err != nil {
		return
	}
	if end.Before(now.Truncate(24 * time.Hour)) {
		a.AmcWarranty = "AMC"
	}
}

// GatePass records a temporary movement that does not change ownership.
type GatePass struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PassID      string    `gorm:"uniqueIndex;not null" json:"passId"`
	AssetID     int64     `gorm:"index;not null" json:"assetId"`
	FromBranch  string    `json:"fromBranch"`
	ToBranch    string    `json:"toBranch"`
	Type        string    `json:"type"`
	Reason      string    `json:"reason,omitempty"`
	GeneratedBy string    `json:"generatedBy"`
	GeneratedAt time.Time `json:"generatedAt"`
	Status      string    `gorm:"default:Open" json:"status"`
}

func (GatePass) TableName() string {
	return "gate_passes"
}

type RepositoryAPI interface {
	Create(ctx context.Context, a *Asset) error
	GetByID(ctx context.Context, id int64) (*Asset, error)
	Update(ctx context.Context, a *Asset) error
	List(ctx context.Context, sc scope.Scope, q string) ([]*Asset, error)
	ListByStatus(ctx context.Context, sc scope.Scope, statuses []string) ([]*Asset, error)
	ListTransferredFrom(ctx context.Context, branchCode string) ([]*Asset, error)
	CreateGatePass(ctx context.Context, gp *GatePass) error
	ListGatePasses(ctx context.Context, sc scope.Scope) ([]*GatePass, error)
}
