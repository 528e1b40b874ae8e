package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/collab-access/internal/api/http"
	"github.com/spec-kit/collab-access/internal/api/http/handlers"
	"github.com/spec-kit/collab-access/internal/auth"
	"github.com/spec-kit/collab-access/internal/config"
	"github.com/spec-kit/collab-access/internal/directory"
	"github.com/spec-kit/collab-access/internal/events"
	"github.com/spec-kit/collab-access/internal/identity"
	"github.com/spec-kit/collab-access/internal/observability"
	"github.com/spec-kit/collab-access/internal/persistence"
	"github.com/spec-kit/collab-access/internal/repository"
	"github.com/spec-kit/collab-access/internal/search"
	"github.com/spec-kit/collab-access/internal/service"
	"github.com/spec-kit/collab-access/internal/session"
	"github.com/spec-kit/collab-access/internal/worker"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	docRepo := repository.NewDocumentRepository(pg.PoolHandle())

	tokens := identity.NewTokenManager(cfg.Auth.TokenSecret)
	var provider identity.Provider
	if cfg.Provider.BaseURL != "" {
		provider = identity.NewHTTPProvider(cfg.Provider)
	} else {
		logger.Warn("IDENTITY_PROVIDER_URL not provided; membership lookups disabled")
	}
	var memberships *identity.MembershipCache
	if !cfg.Provider.MembershipCacheDisabled {
		ttl := time.Duration(cfg.Provider.MembershipCacheTTLSec) * time.Second
		memberships = identity.NewMembershipCache(redis.Client, ttl)
	}
	resolver := identity.NewResolver(tokens, provider, memberships, logger)

	dirCache := directory.NewCache(provider, cfg.Directory.RefreshInterval(), cfg.Directory.MinForceGap(), logger)
	dirCache.Start(ctx)

	dispatcher := events.NewInMemoryDispatcher()

	var searcher search.Searcher
	if cfg.Search.URL != "" {
		meili := search.NewMeili(cfg.Search.URL, cfg.Search.APIKey, logger)
		defer meili.Close()
		searcher = meili
		worker.StartIndexWorker(dispatcher, meili, logger)
	} else {
		logger.Warn("MEILI_URL not provided; title search served by the document store")
	}

	docService := service.NewDocumentService(service.DocumentDependencies{
		DocumentRepo: docRepo,
		Searcher:     searcher,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})

	issuer := session.NewCredentialIssuer(cfg.Session.CredentialSecret, cfg.Session.CredentialTTL())
	gateway := session.NewGateway(docRepo, issuer, metrics, logger)

	authMiddleware := auth.NewAuthMiddleware(resolver)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Documents:      handlers.NewDocumentsHandler(docService),
		Collaborators:  handlers.NewCollaboratorsHandler(dirCache),
		Session:        handlers.NewSessionHandler(gateway),
		AuthMiddleware: authMiddleware,
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

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
