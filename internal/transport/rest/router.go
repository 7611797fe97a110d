package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/audit"
	"github.com/frahmantamala/asset-management/internal/auth"
	"github.com/frahmantamala/asset-management/internal/dashboard"
	"github.com/frahmantamala/asset-management/internal/notification"
	"github.com/frahmantamala/asset-management/internal/obs"
	"github.com/frahmantamala/asset-management/internal/payables"
	"github.com/frahmantamala/asset-management/internal/rbac"
	"github.com/frahmantamala/asset-management/internal/transport/middleware"
	"github.com/frahmantamala/asset-management/internal/transport/swagger"
	"github.com/frahmantamala/asset-management/internal/user"
)

type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Asset        *asset.Handler
	Payables     *payables.Handler
	Notification *notification.Handler
	Dashboard    *dashboard.Handler
	Audit        *audit.Handler
	Role         *rbac.Handler
}

// RegisterAllRoutes wires every endpoint. Each workflow transition sits
// behind the permission flag of the acting role; listing and read endpoints
// only require authentication, visibility being narrowed by scope inside the
// services.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, authz *rbac.Authorization, metricsEnabled bool, metricsPath string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	if metricsEnabled {
		router.Handle(metricsPath, obs.Handler())
	}

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.User.GetCurrentUser)
			pr.Get("/users", h.User.ListUsers)
			pr.Group(func(mr chi.Router) {
				mr.Use(authz.Require(rbac.PermManageRoles))
				mr.Post("/users", h.User.CreateUser)
			})

			pr.Get("/dashboard/stats", h.Dashboard.GetStats)

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", h.Notification.ListNotifications)
				nr.Patch("/{id}/read", h.Notification.MarkRead)
				nr.Post("/read-all", h.Notification.MarkAllRead)
			})

			pr.Route("/audit", func(ar chi.Router) {
				ar.Get("/", h.Audit.Recent)
				ar.Get("/{entity}/{id}", h.Audit.EntityHistory)
			})

			pr.Route("/roles", func(rr chi.Router) {
				rr.Get("/", h.Role.ListRoles)
				rr.Group(func(mr chi.Router) {
					mr.Use(authz.Require(rbac.PermManageRoles))
					mr.Put("/", h.Role.UpdateRole)
				})
			})

			pr.Route("/assets", func(ar chi.Router) {
				ar.Get("/", h.Asset.ListAssets)
				ar.Get("/{id}", h.Asset.GetAsset)
				ar.Get("/transferred/{branchCode}", h.Asset.TransferHistory)
				ar.Get("/disposal/cart", h.Asset.ListDisposalCart)
				ar.Get("/gate-passes", h.Asset.ListGatePasses)

				ar.Group(func(mr chi.Router) {
					mr.Use(authz.Require(rbac.PermAssetCreation))
					mr.Post("/", h.Asset.CreateAsset)
				})
				ar.Group(func(mr chi.Router) {
					mr.Use(authz.Require(rbac.PermAssetModification))
					mr.Put("/{id}", h.Asset.UpdateAsset)
				})

				ar.Group(func(mr chi.Router) {
					mr.Use(authz.Require(rbac.PermInitiateDisposal))
					mr.Post("/{id}/disposal/initiate", h.Asset.InitiateDisposal)
					mr.Post("/{id}/disposal/submit", h.Asset.SubmitForApproval)
					mr.Post("/{id}/disposal/remove", h.Asset.RemoveFromCart)
				})
				ar.Group(func(mr chi.Router) {
					mr.Use(authz.Require(rbac.PermApproveDisposal))
					mr.Post("/{id}/disposal/recommend", h.Asset.RecommendDisposal)
					mr.Post("/{id}/disposal/approve", h.Asset.ApproveDisposal)
					mr.Post("/{id}/disposal/reject", h.Asset.RejectDisposal)
				})

				ar.Group(func(mr chi.Router) {
					mr.Use(authz.Require(rbac.PermInitiateTransfer))
					mr.Post("/{id}/transfer/initiate", h.Asset.InitiateTransfer)
					mr.Post("/{id}/gate-pass", h.Asset.CreateGatePass)
				})
				ar.Group(func(mr chi.Router) {
					mr.Use(authz.Require(rbac.PermApproveTransfer))
					mr.Post("/{id}/transfer/approve", h.Asset.ApproveTransfer)
					mr.Post("/{id}/transfer/reject", h.Asset.RejectTransfer)
				})
			})

			pr.Route("/payables", func(br chi.Router) {
				br.Get("/agreements", h.Payables.ListAgreements)
				br.Get("/agreements/{contractId}", h.Payables.GetAgreement)
				br.Group(func(mr chi.Router) {
					mr.Use(authz.Require(rbac.PermCreateAgreement))
					mr.Post("/agreements", h.Payables.CreateAgreement)
				})

				br.Get("/bills", h.Payables.ListBills)
				br.Get("/bills/unpaid", h.Payables.GetUnpaidBills)
				br.Get("/bills/monthly-total", h.Payables.GetMonthlyBillTotal)
				br.Get("/bills/{id}", h.Payables.GetBill)
				br.Post("/bills/validate", h.Payables.ValidateBill)

				br.Group(func(mr chi.Router) {
					mr.Use(authz.Require(rbac.PermCreateBill))
					mr.Post("/bills", h.Payables.CreateBill)
				})
				br.Group(func(mr chi.Router) {
					mr.Use(authz.Require(rbac.PermApproveBill))
					mr.Post("/bills/{id}/approve", h.Payables.ApproveBill)
					mr.Post("/bills/{id}/reject", h.Payables.RejectBill)
					mr.Post("/bills/{id}/pay", h.Payables.PayBill)
					mr.Put("/bills/{id}/status", h.Payables.UpdateBillStatus)
				})
			})
		})
	})
}
