package rbac

import (
	"context"
	"time"
)

// Role is a named permission bundle. The legacy store kept each flag as the
// string "true"/"false"; here they are real booleans with a versioned schema.
type Role struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`

	ManageRoles       bool `json:"manage_roles" gorm:"column:manage_roles;default:false"`
	AssetCreation     bool `json:"asset_creation" gorm:"column:asset_creation;default:false"`
	AssetModification bool `json:"asset_modification" gorm:"column:asset_modification;default:false"`
	AssetDeletion     bool `json:"asset_deletion" gorm:"column:asset_deletion;default:false"`
	AssetConfirmation bool `json:"asset_confirmation" gorm:"column:asset_confirmation;default:false"`
	InitiateDisposal  bool `json:"initiate_disposal" gorm:"column:initiate_disposal;default:false"`
	ApproveDisposal   bool `json:"approve_disposal" gorm:"column:approve_disposal;default:false"`
	InitiateTransfer  bool `json:"initiate_transfer" gorm:"column:initiate_transfer;default:false"`
	ApproveTransfer   bool `json:"approve_transfer" gorm:"column:approve_transfer;default:false"`
	CreateAgreement   bool `json:"create_agreement" gorm:"column:create_agreement;default:false"`
	ApproveAgreement  bool `json:"approve_agreement" gorm:"column:approve_agreement;default:false"`
	CreateBill        bool `json:"create_bill" gorm:"column:create_bill;default:false"`
	ApproveBill       bool `json:"approve_bill" gorm:"column:approve_bill;default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Role) TableName() string {
	return "roles"
}

type Permission string

const (
	PermManageRoles       Permission = "manage_roles"
	PermAssetCreation     Permission = "asset_creation"
	PermAssetModification Permission = "asset_modification"
	PermAssetDeletion     Permission = "asset_deletion"
	PermAssetConfirmation Permission = "asset_confirmation"
	PermInitiateDisposal  Permission = "initiate_disposal"
	PermApproveDisposal   Permission = "approve_disposal"
	PermInitiateTransfer  Permission = "initiate_transfer"
	PermApproveTransfer   Permission = "approve_transfer"
	PermCreateAgreement   Permission = "create_agreement"
	PermApproveAgreement  Permission = "approve_agreement"
	PermCreateBill        Permission = "create_bill"
	PermApproveBill       Permission = "approve_bill"
)

func (r *Role) Allows(p Permission) bool {
	switch p {
	case PermManageRoles:
		return r.ManageRoles
	case PermAssetCreation:
		return r.AssetCreation
	case PermAssetModification:
		return r.AssetModification
	case PermAssetDeletion:
		return r.AssetDeletion
	case PermAssetConfirmation:
		return r.AssetConfirmation
	case PermInitiateDisposal:
		return r.InitiateDisposal
	case PermApproveDisposal:
		return r.ApproveDisposal
	case PermInitiateTransfer:
		return r.InitiateTransfer
	case PermApproveTransfer:
		return r.ApproveTransfer
	case PermCreateAgreement:
		return r.CreateAgreement
	case PermApproveAgreement:
		return r.ApproveAgreement
	case PermCreateBill:
		return r.CreateBill
	case PermApproveBill:
		return r.ApproveBill
	default:
		return false
	}
}

type RepositoryAPI interface {
	GetByName(ctx context.Context, name string) (*Role, error)
	GetAll(ctx context.Context) ([]*Role, error)
	Create(ctx context.Context, role *Role) error
	Update(ctx context.Context, role *Role) error
}

// DefaultRoles are the out-of-box bundles seeded at startup when absent.
func DefaultRoles() []Role {
	all := Role{
		ManageRoles:       true,
		AssetCreation:     true,
		AssetModification: true,
		AssetDeletion:     true,
		AssetConfirmation: true,
		InitiateDisposal:  true,
		ApproveDisposal:   true,
		InitiateTransfer:  true,
		ApproveTransfer:   true,
		CreateAgreement:   true,
		ApproveAgreement:  true,
		CreateBill:        true,
		ApproveBill:       true,
	}

	ho := all
	ho.Name = "HO"
	ho.Description = "Head office: full control including role management"

	admin := all
	admin.Name = "Admin"
	admin.Description = "Administrator: full workflow control"
	admin.ManageRoles = false

	// Managers hold approval authority only; initiation stays with the
	// branch users they oversee.
	manager := Role{
		Name:              "Manager",
		Description:       "Regional manager: approves workflows for reporting branches",
		AssetConfirmation: true,
		ApproveDisposal:   true,
		ApproveTransfer:   true,
		ApproveAgreement:  true,
		ApproveBill:       true,
	}

	manager1 := manager
	manager1.Name = "Manager1"
	manager2 := manager
	manager2.Name = "Manager2"

	branchUser := Role{
		Name:             "BranchUser",
		Description:      "Branch user: operates own branch records",
		AssetCreation:    true,
		InitiateDisposal: true,
		InitiateTransfer: true,
		CreateAgreement:  true,
		CreateBill:       true,
	}

	return []Role{ho, admin, manager, manager1, manager2, branchUser}
}
