package scope

import (
	"strings"

	"github.com/frahmantamala/asset-management/internal"
)

// RoleKind is the closed set of organizational roles. The legacy system
// dispatched on free-text role strings with substring matching; here unknown
// strings are rejected at the boundary instead of falling through.
type RoleKind int

const (
	RoleBranchUser RoleKind = iota
	RoleManager
	RoleAdmin
	RoleHO
)

func (k RoleKind) String() string {
	switch k {
	case RoleAdmin:
		return "Admin"
	case RoleHO:
		return "HO"
	case RoleManager:
		return "Manager"
	default:
		return "Branch User"
	}
}

// ParseRole maps a stored role string onto a RoleKind. Numbered manager
// roles ("Manager1", "Manager2") come from the seeded role bundles and all
// resolve to RoleManager.
func ParseRole(s string) (RoleKind, error) {
	switch strings.TrimSpace(s) {
	case "Admin":
		return RoleAdmin, nil
	case "HO":
		return RoleHO, nil
	case "Manager", "Manager1", "Manager2":
		return RoleManager, nil
	case "Branch User", "BranchUser":
		return RoleBranchUser, nil
	default:
		return RoleBranchUser, internal.ErrInvalidRole
	}
}

// Scope is the visibility filter computed for one actor. It is built once
// per request and applied identically by asset, agreement and bill listings
// and by the dashboard aggregator.
type Scope struct {
	// All short-circuits every check; set for Admin and HO.
	All bool

	// BranchCodes are the branches whose current records the actor sees:
	// the actor's own branch plus, for managers, every branch reporting to
	// them.
	BranchCodes []string
}

func Everything() Scope {
	return Scope{All: true}
}

func ForBranches(codes ...string) Scope {
	return Scope{BranchCodes: codes}
}

func (s Scope) ContainsBranch(code string) bool {
	if s.All {
		return true
	}
	for _, c := range s.BranchCodes {
		if c == code {
			return true
		}
	}
	return false
}

// AllowsRecord reports whether a record at branchCode is visible. Used for
// agreements and bills, which have no transfer breadcrumb.
func (s Scope) AllowsRecord(branchCode string) bool {
	return s.ContainsBranch(branchCode)
}

// AllowsAsset additionally admits records whose fromBranchCode is in scope,
// so a branch keeps sight of assets it transferred away.
func (s Scope) AllowsAsset(branchCode, fromBranchCode string) bool {
	if s.ContainsBranch(branchCode) {
		return true
	}
	return fromBranchCode != "" && s.ContainsBranch(fromBranchCode)
}
