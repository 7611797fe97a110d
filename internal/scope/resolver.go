package scope

import (
	"context"
	"log/slog"
)

// HierarchyRepository answers which branches report to a manager. The
// canonical link is users.manager_id -> manager's user id; the legacy
// role-string and branch-code double-mapping is not consulted.
type HierarchyRepository interface {
	BranchCodesForManager(ctx context.Context, managerID int64) ([]string, error)
}

// Resolver computes the visibility Scope for an actor.
type Resolver struct {
	hierarchy HierarchyRepository
	logger    *slog.Logger
}

func NewResolver(hierarchy HierarchyRepository, logger *slog.Logger) *Resolver {
	return &Resolver{hierarchy: hierarchy, logger: logger}
}

// Resolve builds the Scope for an actor identified by role string, branch
// code and user id. Unknown role strings surface a validation error.
func (r *Resolver) Resolve(ctx context.Context, roleName, branchCode string, userID int64) (Scope, error) {
	kind, err := ParseRole(roleName)
	if err != nil {
		r.logger.Warn("scope resolution rejected unknown role", "role", roleName, "user_id", userID)
		return Scope{}, err
	}

	switch kind {
	case RoleAdmin, RoleHO:
		return Everything(), nil

	case RoleManager:
		managed, err := r.hierarchy.BranchCodesForManager(ctx, userID)
		if err != nil {
			r.logger.Error("failed to load managed branches", "error", err, "manager_id", userID)
			return Scope{}, err
		}
		codes := make([]string, 0, len(managed)+1)
		if branchCode != "" {
			codes = append(codes, branchCode)
		}
		for _, c := range managed {
			if c != "" && c != branchCode {
				codes = append(codes, c)
			}
		}
		return ForBranches(codes...), nil

	default:
		return ForBranches(branchCode), nil
	}
}
