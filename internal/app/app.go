package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/gatelaunch/internal/api/http"
	"github.com/spec-kit/gatelaunch/internal/api/http/handlers"
	"github.com/spec-kit/gatelaunch/internal/auth"
	"github.com/spec-kit/gatelaunch/internal/config"
	"github.com/spec-kit/gatelaunch/internal/events"
	"github.com/spec-kit/gatelaunch/internal/integrations"
	"github.com/spec-kit/gatelaunch/internal/observability"
	"github.com/spec-kit/gatelaunch/internal/persistence"
	"github.com/spec-kit/gatelaunch/internal/repository"
	"github.com/spec-kit/gatelaunch/internal/service"
	"github.com/spec-kit/gatelaunch/internal/worker"
)

const (
	aiSyncStartupDelay = 8 * time.Second
	backupStartupDelay = 12 * time.Second
	shutdownTimeout    = 10 * time.Second
)

// App owns every process-scoped component. Nothing here is global.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	HTTP       *fiber.App
	Store      *repository.Store
	Hub        *events.Hub
	Sessions   *auth.SessionRegistry
	Dispatcher *worker.Dispatcher
	Scheduler  *worker.Scheduler
	Storage    *service.StorageService
	Insights   *service.InsightService

	registry *integrations.Registry
	redis    *persistence.Redis
}

// Build opens storage, seeds accounts and wires services and routes.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	backend, err := persistence.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	store, err := repository.NewStore(ctx, backend)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("load storage: %w", err)
	}
	logger.Info("storage ready", zap.String("driver", backend.Driver()), zap.Any("records", store.Counts()))

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	registry, err := integrations.NewRegistry(cfg, logger)
	if err != nil {
		redis.Close()
		_ = backend.Close()
		return nil, err
	}

	a := &App{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Hub:        events.NewHub(32),
		Sessions:   auth.NewSessionRegistry(cfg.Auth.SessionTTL, nil),
		Dispatcher: worker.NewDispatcher(registry.Providers, cfg.Integrations.QueueSize, cfg.Integrations.DispatchTimeout, logger),
		Scheduler:  worker.NewScheduler(logger),
		registry:   registry,
		redis:      redis,
	}

	var limiter auth.Limiter
	if redis.Enabled() {
		limiter = auth.NewRedisLimiter(redis.Client, cfg.RateLimit.Window, cfg.RateLimit.MaxAttempts)
	} else {
		memory := auth.NewMemoryLimiter(cfg.RateLimit.Window, cfg.RateLimit.MaxAttempts, nil)
		a.Scheduler.Add(worker.Task{Name: "rate-limit-purge", Interval: cfg.RateLimit.PurgeInterval, Run: memory.Purge})
		limiter = memory
	}

	notifications := service.NewNotificationService(service.NotificationDependencies{
		Repo:       store.Notifications,
		Hub:        a.Hub,
		Dispatcher: a.Dispatcher,
		Logger:     logger,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo: store.Users,
		Sessions: a.Sessions,
		Limiter:  limiter,
		Logger:   logger,
	})
	if err := authService.Seed(ctx, cfg.Seed); err != nil {
		a.Close()
		return nil, fmt.Errorf("seed accounts: %w", err)
	}

	tickets := service.NewTicketService(service.TicketDependencies{TicketRepo: store.Tickets, Publisher: notifications})
	orders := service.NewOrderService(service.OrderDependencies{OrderRepo: store.Orders, Publisher: notifications})
	accessRequests := service.NewAccessRequestService(service.AccessRequestDependencies{AccessRequestRepo: store.AccessRequests, Publisher: notifications})
	receipts := service.NewReceiptService(service.ReceiptDependencies{ReceiptRepo: store.Receipts, Publisher: notifications})
	support := service.NewSupportService(service.SupportDependencies{SupportRepo: store.SupportRequests, Publisher: notifications})
	proofs := service.NewProofService(service.ProofDependencies{
		Dir:         cfg.Uploads.ProofDir,
		MaxBytes:    cfg.Uploads.MaxBytes,
		OrderRepo:   store.Orders,
		ReceiptRepo: store.Receipts,
	})
	a.Insights = service.NewInsightService(service.InsightDependencies{
		Store:     store,
		Publisher: notifications,
		N8N:       registry.N8N,
		Config:    cfg.AISync,
		Logger:    logger,
	})
	a.Storage = service.NewStorageService(service.StorageDependencies{
		Store:     store,
		Config:    cfg.Backup,
		BackupExt: cfg.Storage.BackupExt(),
		Logger:    logger,
	})
	integrationService := service.NewIntegrationService(service.IntegrationDependencies{
		Registry:       registry,
		Dispatcher:     a.Dispatcher,
		TelegramChatID: cfg.Integrations.TelegramChatID,
	})

	authMiddleware := auth.NewAuthMiddleware(a.Sessions, store.Users, auth.CookieSettings{
		Name:                cfg.Auth.CookieName,
		Secure:              cfg.Auth.CookieSecure,
		TrustForwardedProto: cfg.Auth.TrustForwardedProto,
	})
	metrics := observability.NewMetrics(nil)

	a.HTTP = httptransport.NewApp(httptransport.ServerConfig{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.App.BodyLimitBytes,
		Middleware: httptransport.MiddlewareConfig{
			Logger:         logger,
			Metrics:        metrics,
			Timeout:        cfg.App.RequestTimeout(),
			Port:           cfg.App.Port,
			AllowedOrigins: cfg.Security.AllowedOrigins,
		},
		Routes: httptransport.RouteConfig{
			Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, backend, redis),
			Auth:           handlers.NewAuthHandler(authService, authMiddleware),
			Tickets:        handlers.NewTicketsHandler(tickets),
			Orders:         handlers.NewOrdersHandler(orders),
			AccessRequests: handlers.NewAccessRequestsHandler(accessRequests),
			Receipts:       handlers.NewReceiptsHandler(receipts, proofs),
			Notifications:  handlers.NewNotificationsHandler(notifications, cfg.App.StreamPingInterval),
			AI:             handlers.NewAIHandler(a.Insights),
			Public:         handlers.NewPublicHandler(a.Insights, support),
			Integrations:   handlers.NewIntegrationsHandler(integrationService),
			Diagnostics:    handlers.NewDiagnosticsHandler(a.Storage, metrics),
			AuthMiddleware: authMiddleware,
		},
	})

	a.scheduleTasks()
	return a, nil
}

func (a *App) scheduleTasks() {
	cfg := a.Config
	a.Scheduler.Add(worker.Task{Name: "session-sweep", Interval: cfg.Auth.SweepInterval, Run: a.Sessions.Sweeper()})
	if a.Insights.Enabled() {
		a.Scheduler.Add(worker.Task{Name: "ai-sync", Interval: cfg.AISync.Interval, Run: a.Insights.SyncTask("auto")})
		a.Scheduler.Add(worker.Task{Name: "ai-sync-startup", Delay: aiSyncStartupDelay, Run: a.Insights.SyncTask("startup")})
	}
	if cfg.Backup.Enabled {
		a.Scheduler.Add(worker.Task{Name: "storage-backup", Interval: cfg.Backup.Interval, Run: a.Storage.BackupTask("scheduled")})
		if cfg.Backup.OnStartup {
			a.Scheduler.Add(worker.Task{Name: "storage-backup-startup", Delay: backupStartupDelay, Run: a.Storage.BackupTask("startup")})
		}
	}
}

// Run serves HTTP and runs background work until ctx ends, then shuts down.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Dispatcher.Run(ctx) })
	g.Go(func() error { return a.Scheduler.Run(ctx) })
	g.Go(func() error {
		a.Logger.Info("listening", zap.String("addr", a.Config.App.Addr()), zap.String("storage", a.Store.Backend.Driver()))
		if err := a.HTTP.Listen(a.Config.App.Addr()); err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		// Open event streams would otherwise hold shutdown until the timeout.
		a.Hub.Close()
		return a.HTTP.ShutdownWithTimeout(shutdownTimeout)
	})
	return g.Wait()
}

// Close releases storage, redis and provider resources.
func (a *App) Close() {
	if err := a.registry.Close(); err != nil {
		a.Logger.Warn("close integrations", zap.Error(err))
	}
	a.redis.Close()
	if err := a.Store.Backend.Close(); err != nil {
		a.Logger.Warn("close storage", zap.Error(err))
	}
}
