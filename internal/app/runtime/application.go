// Package runtime assembles configuration, storage, services, and the HTTP
// server into a runnable process.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	app "github.com/landscape-hq/underwriter/internal/app"
	"github.com/landscape-hq/underwriter/internal/app/httpapi"
	"github.com/landscape-hq/underwriter/internal/app/metrics"
	"github.com/landscape-hq/underwriter/internal/app/services/documents"
	"github.com/landscape-hq/underwriter/internal/app/services/reports"
	"github.com/landscape-hq/underwriter/internal/app/storage/postgres"
	"github.com/landscape-hq/underwriter/internal/config"
	"github.com/landscape-hq/underwriter/internal/httputil"
	"github.com/landscape-hq/underwriter/internal/logging"
	"github.com/landscape-hq/underwriter/internal/middleware"
	"github.com/landscape-hq/underwriter/internal/platform/migrations"
)

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg    *config.Config
	log    *logging.Logger
	app    *app.Application
	server *http.Server
	db     *sql.DB
	redis  *redis.Client
}

// NewApplication constructs a runnable application from configuration.
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	log := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}).WithField("component", "underwriter")

	stores, db, err := buildStores(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}

	opts, redisClient, err := buildOptions(cfg, log)
	if err != nil {
		return nil, err
	}

	application, err := app.New(stores, opts, log)
	if err != nil {
		return nil, fmt.Errorf("build application: %w", err)
	}

	ready := func(ctx context.Context) error {
		if db == nil {
			return nil
		}
		return db.PingContext(ctx)
	}
	apiHandler, err := httpapi.NewHandler(application, httpapi.Options{
		AuditFile:  cfg.Server.AuditLogPath,
		ReadyCheck: ready,
	})
	if err != nil {
		return nil, fmt.Errorf("build http handler: %w", err)
	}

	handler := buildMiddleware(cfg, log, apiHandler)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Application{
		cfg:    cfg,
		log:    log,
		app:    application,
		server: server,
		db:     db,
		redis:  redisClient,
	}, nil
}

// buildStores opens Postgres when configured and falls back to memory stores
// otherwise.
func buildStores(cfg *config.Config, log *logging.Logger) (app.Stores, *sql.DB, error) {
	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set; using in-memory storage")
		return app.Stores{}, nil, nil
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return app.Stores{}, nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return app.Stores{}, nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.Database.RunMigrations {
		if err := migrations.Up(db); err != nil {
			_ = db.Close()
			return app.Stores{}, nil, fmt.Errorf("run migrations: %w", err)
		}
		log.Info("database migrations applied")
	}

	store := postgres.New(db)
	return app.Stores{
		Projects:   store,
		Leases:     store,
		Benchmarks: store,
		Opex:       store,
		Comps:      store,
		Costs:      store,
		Documents:  store,
	}, db, nil
}

// buildOptions assembles the optional integrations: blob storage, the LLM
// extractor, the Redis report cache, and the backend proxy client.
func buildOptions(cfg *config.Config, log *logging.Logger) (app.Options, *redis.Client, error) {
	opts := app.Options{
		ExtractionSchedule: cfg.Extraction.PollSchedule,
		ExtractionBatch:    cfg.Extraction.PollBatch,
		PromoteThreshold:   cfg.Extraction.ConfidenceThreshold,
	}

	if cfg.Extraction.DocumentDir != "" {
		blobs, err := documents.NewLocalBlobStore(cfg.Extraction.DocumentDir)
		if err != nil {
			return app.Options{}, nil, fmt.Errorf("create blob store: %w", err)
		}
		opts.Blobs = blobs
	}

	if cfg.Extraction.Endpoint != "" {
		client := &http.Client{Timeout: cfg.Extraction.Timeout}
		extractor, err := documents.NewExtractor(client, cfg.Extraction.Endpoint, cfg.Extraction.APIKey, cfg.Extraction.Model, log)
		if err != nil {
			return app.Options{}, nil, fmt.Errorf("configure extractor: %w", err)
		}
		opts.Extractor = extractor
	}

	var redisClient *redis.Client
	if cfg.Cache.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			return app.Options{}, nil, fmt.Errorf("parse redis url: %w", err)
		}
		redisClient = redis.NewClient(redisOpts)
		opts.ReportCache = reports.NewRedisCache(redisClient, cfg.Cache.TTL, log)
	}

	if cfg.Backend.BaseURL != "" {
		opts.Backend = httputil.NewServiceClient(httputil.ServiceClientConfig{
			ServiceKey: []byte(cfg.Backend.ServiceKey),
			ServiceID:  cfg.Backend.ServiceID,
			BaseURL:    cfg.Backend.BaseURL,
			Timeout:    cfg.Backend.Timeout,
		})
	} else {
		log.Warn("DJANGO_API_URL not set; backend proxy disabled")
	}

	return opts, redisClient, nil
}

// buildMiddleware stacks tracing, CORS, authentication, rate limiting, and
// request metrics around the API handler. Auth runs before the limiter so
// buckets key on the authenticated user rather than the remote address.
func buildMiddleware(cfg *config.Config, log *logging.Logger, next http.Handler) http.Handler {
	handler := metrics.InstrumentHandler(next)

	if cfg.Server.RateLimitPerSec > 0 {
		limiter := middleware.NewRateLimiter(cfg.Server.RateLimitPerSec*60, cfg.Server.RateLimitBurst, log)
		handler = limiter.Handler(handler)
	}

	if !cfg.Auth.Disabled && cfg.Auth.JWTSecret != "" {
		auth := middleware.NewAuthMiddleware([]byte(cfg.Auth.JWTSecret), log, []string{"/healthz", "/readyz", "/metrics"})
		handler = auth.Handler(handler)
	} else {
		log.Warn("JWT auth disabled; requests are not authenticated")
	}

	handler = middleware.CORS(cfg.Server.AllowedOrigins)(handler)
	handler = middleware.Tracing(handler)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", handler)
	return mux
}

// Run starts the application and blocks until ctx is cancelled or the HTTP
// server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}
	a.log.WithField("addr", a.server.Addr).Info("http server listening")

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		a.shutdown(context.Background())
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return a.shutdown(shutdownCtx)
}

func (a *Application) shutdown(ctx context.Context) error {
	var first error
	if err := a.server.Shutdown(ctx); err != nil {
		first = err
	}
	if err := a.app.Stop(ctx); err != nil && first == nil {
		first = err
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && first == nil {
			first = err
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && first == nil {
			first = err
		}
	}
	if first != nil {
		return first
	}
	a.log.Info("shutdown complete")
	return nil
}

// DB exposes the underlying database handle. Nil when running on memory
// stores.
func (a *Application) DB() *sql.DB { return a.db }
