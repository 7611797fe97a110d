package dashboard

import (
	"context"
	"time"

	"github.com/frahmantamala/asset-management/internal/scope"
)

// Stats is the headline dashboard payload. totalAssets deliberately counts
// only Active and Disposed rows; in-flight transfer, cart and gate-pass
// states are excluded from the headline number.
type Stats struct {
	TotalAssets     int64 `json:"totalAssets"`
	ExpiringSoon    int64 `json:"expiringSoon"`
	AmcDue          int64 `json:"amcDue"`
	DisposalPending int64 `json:"disposalPending"`
	NewAssets       int64 `json:"newAssets"`
}

// expiringWindowDays is how far ahead the expiring-soon count looks.
const expiringWindowDays = 90

// amcDueWindowDays is the shorter window for AMC renewals.
const amcDueWindowDays = 30

// newAssetWindowDays bounds the recently-created count.
const newAssetWindowDays = 30

type StatsRepositoryAPI interface {
	CountByStatus(ctx context.Context, sc scope.Scope, statuses []string) (int64, error)

	// CountExpiring counts assets whose AMC end, or warranty end when no AMC
	// end is set, falls inside [from, to]. Dates are ISO strings, so lexical
	// comparison matches chronological order.
	CountExpiring(ctx context.Context, sc scope.Scope, from, to string) (int64, error)

	// CountAMCDue counts assets whose AMC end falls inside [from, to].
	CountAMCDue(ctx context.Context, sc scope.Scope, from, to string) (int64, error)

	CountCreatedSince(ctx context.Context, sc scope.Scope, since time.Time) (int64, error)
}
