package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/leaguedesk/roster-service/internal/api/http"
	"github.com/leaguedesk/roster-service/internal/api/http/handlers"
	"github.com/leaguedesk/roster-service/internal/auth"
	"github.com/leaguedesk/roster-service/internal/config"
	"github.com/leaguedesk/roster-service/internal/events"
	"github.com/leaguedesk/roster-service/internal/observability"
	"github.com/leaguedesk/roster-service/internal/persistence"
	"github.com/leaguedesk/roster-service/internal/repository"
	"github.com/leaguedesk/roster-service/internal/service"
	"github.com/leaguedesk/roster-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.Enabled() {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var store repository.Store
	if pg.Enabled() {
		store = repository.NewPostgresStore(pg.PoolHandle())
	} else {
		store = repository.NewMemoryStore()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	dispatcher := events.NewInMemoryDispatcher()
	var publisher *events.RedisPublisher
	if redis.Enabled() {
		publisher = events.NewRedisPublisher(redis.Client, cfg.Redis.EventsChannel)
	}
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(dispatcher, notificationService, publisher, logger)

	deps := service.GovernanceDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		MaxTags:    cfg.Governance.MaxTags,
	}
	staffService := service.NewStaffService(service.StaffDependencies{StaffRepo: store.Staff(), MaxTags: cfg.Governance.MaxTags})
	assignmentService := service.NewTagAssignmentService(deps)
	approvalService := service.NewApprovalService(deps)
	registryService := service.NewTagRegistryService(deps)
	sessionService := service.NewSessionService(*cfg)

	loadSeed(ctx, cfg.Governance.SeedFile, staffService, registryService, logger)
	go worker.RunPendingGaugeRefresher(ctx, cfg.Governance.PendingRefreshInterval(), approvalService, logger)

	authzMode, err := auth.ParseMode(cfg.Authz.Mode)
	if err != nil {
		logger.Fatal("invalid authz mode", zap.Error(err))
	}
	authorizer, err := auth.NewAuthorizer(authzMode, logger)
	if err != nil {
		logger.Fatal("failed to build authorizer", zap.Error(err))
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, Immutable: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Session:        handlers.NewSessionHandler(sessionService),
		Staff:          handlers.NewStaffHandler(staffService, assignmentService),
		Tags:           handlers.NewTagsHandler(registryService),
		Approvals:      handlers.NewApprovalsHandler(approvalService),
		AuthMiddleware: auth.NewAuthMiddleware(sessionService.TokenManager()),
		Authorizer:     authorizer,
		Metrics:        observability.MetricsHandler(registry),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func loadSeed(ctx context.Context, path string, staff *service.StaffService, registry *service.TagRegistryService, logger *zap.Logger) {
	if path == "" {
		return
	}
	seed, err := persistence.LoadStaffSeed(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("seed file not found; starting with an empty roster", zap.String("path", path))
		return
	}
	if err != nil {
		logger.Fatal("failed to load seed", zap.Error(err))
	}

	imported, err := staff.ImportStaff(ctx, seed.Staff)
	if err != nil {
		logger.Fatal("failed to import staff", zap.Error(err))
	}
	tags, err := registry.ImportCatalog(ctx, seed.Tags)
	if err != nil {
		logger.Fatal("failed to import tag catalog", zap.Error(err))
	}
	logger.Info("seed loaded", zap.String("path", path), zap.Int("staff", imported), zap.Int("tags", tags))
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
