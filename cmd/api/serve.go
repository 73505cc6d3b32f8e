package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/cache"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/mailer"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/storage"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	var store repository.Store
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		store = repository.NewPostgresStore(pg.Pool)
	} else {
		store = memory.New()
		if _, err := seedDemoData(ctx, store, cfg, logger); err != nil {
			return fmt.Errorf("seed in-memory store: %w", err)
		}
	}

	rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer rdb.Close()
	var statsCache service.StatsCache
	if rdb.Enabled() {
		statsCache = cache.NewStatsCache(rdb.Client, cfg.Redis.StatsTTL(), logger)
	}

	blobs, uploadsDir, err := openBlobStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	repos := store.Repos()

	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:        store,
		Dispatcher:   dispatcher,
		StatsCache:   statsCache,
		Metrics:      metrics,
		Logger:       logger,
		CodeAttempts: cfg.Tickets.CodeAttempts,
	})
	attachmentService := service.NewAttachmentService(service.AttachmentDependencies{
		Store:        store,
		Blobs:        blobs,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
		TicketFolder: cfg.Storage.TicketFolder,
		TempFolder:   cfg.Storage.TempFolder,
		MaxFileBytes: cfg.Uploads.MaxFileBytes,
		MaxFiles:     cfg.Uploads.MaxFiles,
	})
	catalogService := service.NewCatalogService(store, nil)
	authService := service.NewAuthService(repos.Users, tokens)

	mail := worker.NewNotificationWorker(mailer.New(cfg.Mail, logger), cfg.Mail.QueueSize, logger)
	worker.StartNotificationWorker(ctx, service.NewNotificationService(dispatcher, repos.Users, logger), mail)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.App.BodyLimitBytes,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    rdb,
		}),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Attachments:    handlers.NewAttachmentsHandler(attachmentService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, repos.Users),
		Metrics:        metrics,
		UploadsDir:     uploadsDir,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.App.Addr()))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := mail.Stop(shutdownCtx); err != nil {
		logger.Warn("notification queue not drained", zap.Error(err))
	}
	return nil
}

// openBlobStore returns the configured store and, for the local driver, the
// directory to serve under /uploads.
func openBlobStore(ctx context.Context, cfg config.StorageConfig) (storage.BlobStore, string, error) {
	if cfg.Driver == "s3" {
		s3, err := storage.NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, "", err
		}
		return s3, "", nil
	}
	local, err := storage.NewLocalStore(cfg.LocalDir, cfg.LocalBaseURL)
	if err != nil {
		return nil, "", err
	}
	return local, local.Dir(), nil
}
