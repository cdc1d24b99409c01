package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	apiMiddleware "github.com/phrazzld/catalog-api/internal/api/middleware"
	"github.com/phrazzld/catalog-api/internal/config"
	"github.com/phrazzld/catalog-api/internal/events"
	"github.com/phrazzld/catalog-api/internal/platform/inmemory"
	"github.com/phrazzld/catalog-api/internal/platform/postgres"
	platformredis "github.com/phrazzld/catalog-api/internal/platform/redis"
	"github.com/phrazzld/catalog-api/internal/service"
	"github.com/phrazzld/catalog-api/internal/service/auth"
	"github.com/phrazzld/catalog-api/internal/store"
)

// revocationCacheTTL bounds how long a positive revocation answer from a
// shared backend is kept in process.
const revocationCacheTTL = 15 * time.Minute

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore     store.UserStore
	storeStore    store.StoreStore
	itemStore     store.ItemStore
	tagStore      store.TagStore
	revokedTokens store.RevokedTokenStore

	authService    *auth.Service
	catalogService service.CatalogService
	taggingService service.TaggingService
	userService    service.UserService

	eventEmitter *events.InMemoryEventEmitter
	authLimiter  *apiMiddleware.KeyedRateLimiter

	// closers run in reverse order on cleanup.
	closers []func()
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}
	app.addCloser(func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	})

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.storeStore = postgres.NewPostgresStoreStore(db, logger)
	app.itemStore = postgres.NewPostgresItemStore(db, logger)
	app.tagStore = postgres.NewPostgresTagStore(db, logger)

	var err error
	app.revokedTokens, err = app.setupRevocationStore(ctx)
	if err != nil {
		app.cleanup()
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"access_token_lifetime_minutes", cfg.Auth.AccessTokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	hasher := auth.NewBcryptHasher(cfg.Auth.HashWorkers, cfg.Auth.BCryptCost)
	app.addCloser(hasher.Close)

	app.authService, err = auth.NewService(
		app.userStore, app.revokedTokens, jwtService, hasher, cfg.Auth.AdminUserIDs, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	if err := app.setupEvents(); err != nil {
		app.cleanup()
		return nil, err
	}

	app.catalogService, err = service.NewCatalogService(
		app.storeStore, app.itemStore, app.tagStore, app.eventEmitter, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create catalog service: %w", err)
	}
	app.taggingService, err = service.NewTaggingService(
		app.storeStore, app.itemStore, app.tagStore, app.eventEmitter, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create tagging service: %w", err)
	}
	app.userService = service.NewUserService(app.userStore, logger)

	return app, nil
}

// setupRevocationStore builds the configured token revocation set. Shared
// backends are fronted by an in-process cache of revoked IDs.
func (app *application) setupRevocationStore(ctx context.Context) (store.RevokedTokenStore, error) {
	switch app.config.Auth.RevocationBackend {
	case config.RevocationBackendMemory:
		app.logger.Warn("using in-process token revocation; logouts are lost on restart")
		return inmemory.NewRevokedTokenStore(), nil

	case config.RevocationBackendRedis:
		client, err := platformredis.NewClient(ctx, app.config.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to set up redis revocation store: %w", err)
		}
		app.addCloser(func() { _ = client.Close() })
		app.logger.Info("using redis token revocation")
		return inmemory.NewCachedRevokedTokenStore(
			platformredis.NewRevokedTokenStore(client, app.logger), revocationCacheTTL), nil

	default:
		app.logger.Info("using postgres token revocation")
		return inmemory.NewCachedRevokedTokenStore(
			postgres.NewPostgresRevokedTokenStore(app.db, app.logger), revocationCacheTTL), nil
	}
}

// setupEvents logs every catalog event and, when configured, publishes it to NATS.
func (app *application) setupEvents() error {
	app.eventEmitter = events.NewInMemoryEventEmitter(app.logger)
	app.eventEmitter.RegisterHandler(events.NewLoggingHandler(app.logger))

	if app.config.Events.NATSURL == "" {
		return nil
	}

	conn, err := events.ConnectNATS(app.config.Events.NATSURL, app.logger)
	if err != nil {
		return err
	}
	app.addCloser(func() {
		if err := conn.Drain(); err != nil {
			app.logger.Error("failed to drain nats connection", "error", err)
		}
	})
	app.eventEmitter.RegisterHandler(
		events.NewNATSPublisher(conn, app.config.Events.SubjectPrefix, app.logger))
	return nil
}

func (app *application) addCloser(fn func()) {
	app.closers = append(app.closers, fn)
}

// cleanup releases resources in reverse order of acquisition.
func (app *application) cleanup() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}
	app.closers = nil
}
