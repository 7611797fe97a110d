package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/asset"
	assetpg "github.com/frahmantamala/asset-management/internal/asset/postgres"
	"github.com/frahmantamala/asset-management/internal/audit"
	auditpg "github.com/frahmantamala/asset-management/internal/audit/postgres"
	"github.com/frahmantamala/asset-management/internal/auth"
	"github.com/frahmantamala/asset-management/internal/core/events"
	"github.com/frahmantamala/asset-management/internal/dashboard"
	dashboardpg "github.com/frahmantamala/asset-management/internal/dashboard/postgres"
	"github.com/frahmantamala/asset-management/internal/notification"
	notificationpg "github.com/frahmantamala/asset-management/internal/notification/postgres"
	"github.com/frahmantamala/asset-management/internal/obs"
	"github.com/frahmantamala/asset-management/internal/payables"
	payablespg "github.com/frahmantamala/asset-management/internal/payables/postgres"
	"github.com/frahmantamala/asset-management/internal/rbac"
	rbacpg "github.com/frahmantamala/asset-management/internal/rbac/postgres"
	"github.com/frahmantamala/asset-management/internal/scope"
	"github.com/frahmantamala/asset-management/internal/transport/rest"
	"github.com/frahmantamala/asset-management/internal/user"
	userpg "github.com/frahmantamala/asset-management/internal/user/postgres"
	"github.com/frahmantamala/asset-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	ORM    *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to wire services: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

// setupRoutes builds every service on the shared connection and registers
// the full route table. Workflow side effects (notifications, audit trail,
// dashboard invalidation) subscribe to the event bus here so handlers stay
// unaware of them.
func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	log := deps.Logger

	obs.Init()

	bus := events.NewEventBus(log)

	userRepo := userpg.NewUserRepository(deps.ORM)
	roleRepo := rbacpg.NewRoleRepository(deps.ORM)
	assetRepo := assetpg.NewAssetRepository(deps.ORM)
	agreementRepo := payablespg.NewAgreementRepository(deps.ORM)
	billRepo := payablespg.NewBillRepository(deps.ORM)
	notificationRepo := notificationpg.NewNotificationRepository(deps.ORM)
	auditRepo := auditpg.NewAuditRepository(deps.ORM)
	statsRepo := dashboardpg.NewStatsRepository(deps.ORM)

	resolver := scope.NewResolver(userRepo, log)

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(user.NewDirectory(userRepo), tokens, log)

	roleService := rbac.NewService(roleRepo, log)
	if err := roleService.EnsureDefaults(context.Background()); err != nil {
		return fmt.Errorf("seed default roles: %w", err)
	}
	authz := rbac.NewAuthorization(roleService, log)

	webhook := notification.NewWebhookForwarder(
		cfg.Notification.WebhookURL,
		cfg.Notification.WebhookTimeout,
		log,
	)
	notificationService := notification.NewService(notificationRepo, webhook, log)
	notificationService.RegisterEmitter(bus)

	recorder := audit.NewRecorder(auditRepo, log)
	recorder.Register(bus)

	dashboardService := dashboard.NewService(statsRepo, resolver, cfg.Dashboard.CacheTTL, log)
	dashboardService.Register(bus)

	userService := user.NewService(userRepo, log)
	assetService := asset.NewService(assetRepo, resolver, bus, log)
	payablesService := payables.NewService(agreementRepo, billRepo, resolver, bus, log)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, rest.Handlers{
		Auth:         auth.NewHandler(authService),
		User:         user.NewHandler(userService),
		Asset:        asset.NewHandler(assetService),
		Payables:     payables.NewHandler(payablesService),
		Notification: notification.NewHandler(notificationService),
		Dashboard:    dashboard.NewHandler(dashboardService),
		Audit:        audit.NewHandler(recorder),
		Role:         rbac.NewHandler(roleService),
	}, authz, cfg.Observability.Metrics.Enabled, cfg.Observability.Metrics.Path, log)

	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	orm, err := initORM(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		ORM:    orm,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initORM layers gorm over the already-pooled pgx connection so repositories
// and the health check share one pool.
func initORM(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
}
