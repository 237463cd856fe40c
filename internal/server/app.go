// Package server wires the catalog together: configuration, PostgreSQL,
// Redis, the cache coordinator, the services and the HTTP server. It also
// handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/soncatalog/internal/logging"
	"github.com/dmitrijs2005/soncatalog/internal/server/auth"
	"github.com/dmitrijs2005/soncatalog/internal/server/cache"
	"github.com/dmitrijs2005/soncatalog/internal/server/config"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soncatalog/internal/server/services"
	"github.com/dmitrijs2005/soncatalog/internal/server/web"
	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *RedisBackends
	server *web.Server
}

// NewLogger returns the JSON logger at the configured level.
func NewLogger(c *config.Config) logging.Logger {
	return logging.NewJSONLogger(logging.ParseLevel(c.LogLevel))
}

// OpenDatabase connects to PostgreSQL and applies pending migrations.
func OpenDatabase(ctx context.Context, c *config.Config, rm repomanager.RepositoryManager) (*sql.DB, error) {
	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return db, nil
}

// RedisBackends holds the Redis-backed cache tier and revocation list. Both
// are replaced by their in-process fallbacks when Redis is disabled.
type RedisBackends struct {
	Client      redis.UniversalClient
	Durable     cache.Durable
	Revocations auth.RevocationStore
}

// ConnectRedis builds the Redis backends. An empty address disables Redis.
// An unreachable server is only logged: the cache falls back to direct
// queries per request and recovers when Redis comes back.
func ConnectRedis(ctx context.Context, c *config.Config, l logging.Logger) *RedisBackends {
	if c.RedisAddr == "" {
		l.Info(ctx, "redis disabled, using in-process cache only")
		return &RedisBackends{Revocations: auth.NopRevocationStore{}}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		l.Warn(ctx, "redis unreachable at startup", "address", c.RedisAddr, "error", err)
	}

	return &RedisBackends{
		Client:      client,
		Durable:     cache.NewRedisStore(client, c.CacheKeyPrefix),
		Revocations: auth.NewRedisRevocationStore(client, c.CacheKeyPrefix),
	}
}

// NewCoordinator creates the cache coordinator on top of the backends.
func (b *RedisBackends) NewCoordinator(c *config.Config, l logging.Logger) *cache.Coordinator {
	var opts []cache.Option
	if b.Durable != nil {
		opts = append(opts, cache.WithDurable(b.Durable))
	}
	return cache.NewCoordinator(c.CacheMemoryTTL, l, opts...)
}

func (b *RedisBackends) Close() error {
	if b.Client == nil {
		return nil
	}
	return b.Client.Close()
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := NewLogger(c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	signer, err := auth.NewSigner([]byte(c.SecretKey), c.SessionValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("signer init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	db, err := OpenDatabase(ctx, c, rm)
	if err != nil {
		return nil, err
	}

	rb := ConnectRedis(ctx, c, logger)
	coord := rb.NewCoordinator(c, logger)

	svc := web.Services{
		Auth:       services.NewAuthService(db, rm, signer, rb.Revocations, coord, logger),
		Categories: services.NewCategoryService(db, rm, coord, logger),
		Products:   services.NewProductService(db, rm, coord, logger),
		Contact:    services.NewContactService(db, rm, coord, logger),
		Dashboard:  services.NewDashboardService(db, rm, coord, logger),
		Images:     services.NewImageService(c, logger),
	}
	guard := auth.NewGuard(signer, rb.Revocations, logger)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		redis:  rb,
		server: web.NewServer(c.HTTPAddr, c.IsProduction(), svc, guard, coord, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	if err := app.redis.Close(); err != nil {
		app.logger.Error(ctx, "redis close failed", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "environment", app.config.Environment)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.WithoutCancel(ctx))
	app.logger.Info(ctx, "App stopped")
}
