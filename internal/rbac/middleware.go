package rbac

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/asset-management/internal/auth"
)

// Authorization guards routes with role-bundle permission checks. The
// legacy system shipped these flags as display metadata only and trusted
// the client to hide disallowed actions; here every workflow route enforces
// them server-side before the engine runs.
type Authorization struct {
	roles  ServiceAPI
	logger *slog.Logger
}

func NewAuthorization(roles ServiceAPI, logger *slog.Logger) *Authorization {
	return &Authorization{roles: roles, logger: logger}
}

func (a *Authorization) Require(permission Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := auth.UserFromContext(r.Context())
			if !ok || actor == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			role, err := a.roles.GetForRoleName(r.Context(), actor.Role)
			if err != nil {
				a.logger.WarnContext(r.Context(), "authorization failed: role bundle not found",
					"user_id", actor.ID, "role", actor.Role)
				http.Error(w, "Forbidden: unknown role", http.StatusForbidden)
				return
			}

			if !role.Allows(permission) {
				a.logger.WarnContext(r.Context(), "access denied: role lacks permission",
					"user_id", actor.ID,
					"role", actor.Role,
					"required_permission", string(permission))
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
