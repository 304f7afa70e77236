// Package app wires configuration, storage and services into a runnable
// storefront.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"trendhive/internal/handler"
	"trendhive/internal/insight"
	"trendhive/internal/model"
	"trendhive/internal/seed"
	"trendhive/internal/server"
	"trendhive/internal/service"
	"trendhive/internal/session"
	"trendhive/internal/store"
	"trendhive/internal/store/gormstore"
	"trendhive/internal/store/memory"
	"trendhive/internal/store/mongostore"
	"trendhive/pkg/cache"
	"trendhive/pkg/config"
	"trendhive/pkg/database"
	"trendhive/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App is a wired storefront
type App struct {
	cfg      *config.Config
	log      *zap.Logger
	store    store.Store
	redis    *redis.Client
	services handler.Services
	echo     *echo.Echo
}

// New opens the configured store, session backend and AI client and builds
// the HTTP application
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	s, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, log: log, store: s}

	var sessions session.Store
	var trendCache *cache.Cache
	if cfg.Redis.Enabled() {
		a.redis, err = database.OpenRedis(ctx, cfg, log)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		if sessions, err = session.NewRedisStore(a.redis); err != nil {
			_ = a.Close()
			return nil, err
		}
		trendCache = cache.New(a.redis, cfg.ServiceName)
	} else {
		log.Warn("REDIS_ADDR not set, sessions are kept in memory")
		sessions = session.NewMemoryStore()
	}

	var completer insight.Completer
	if cfg.AI.APIKey != "" {
		completer = insight.NewOpenAICompleter(cfg.AI)
	} else {
		log.Warn("OPENAI_API_KEY not set, insights use local fallbacks")
	}
	opts := []insight.Option{insight.WithTimeout(cfg.AI.Timeout)}
	if trendCache != nil {
		opts = append(opts, insight.WithCache(trendCache, cfg.AI.CacheTTL))
	}
	analyzer := insight.NewAnalyzer(completer, opts...)

	shipping := model.ShippingPolicy{
		FreeThreshold: cfg.Shop.FreeShippingThreshold,
		Fee:           cfg.Shop.ShippingFee,
	}
	locks := service.NewUserLocks()
	catalog := service.NewCatalogService(s)
	orders := service.NewOrderService(s, locks, shipping)
	auth := service.NewAuthService(s, sessions, jwtutil.NewJWTUtil(&cfg.JWT))
	a.services = handler.Services{
		Catalog:  catalog,
		Carts:    service.NewCartService(s, catalog, locks, shipping),
		Wishlist: service.NewWishlistService(s, catalog, locks),
		Orders:   orders,
		Reviews:  service.NewReviewService(s, locks),
		Auth:     auth,
		Insights: service.NewInsightService(catalog, orders, auth, analyzer),
	}
	a.echo = server.New(cfg, handler.New(a.services, cfg.Session), auth)
	return a, nil
}

// OpenStore connects the backend selected by STORE_DRIVER
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.DB.Driver {
	case config.DriverMemory:
		log.Warn("Using the in-memory store, data is lost on restart")
		return memory.New(), nil
	case config.DriverPostgres, config.DriverSQLite:
		db, err := database.OpenGorm(cfg, log)
		if err != nil {
			return nil, err
		}
		return gormstore.New(db), nil
	case config.DriverMongo:
		db, err := database.OpenMongo(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return mongostore.New(db), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.DB.Driver)
	}
}

// Echo exposes the HTTP application
func (a *App) Echo() *echo.Echo {
	return a.echo
}

// Migrate creates the schema or indexes of the store
func (a *App) Migrate(ctx context.Context) error {
	if err := a.store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	a.log.Info("Store migrated", zap.String("driver", a.cfg.DB.Driver))
	return nil
}

// Seed loads the starter catalog into an empty store and ensures the
// configured admin account
func (a *App) Seed(ctx context.Context) error {
	if _, err := seed.Catalog(ctx, a.store, time.Now().UTC()); err != nil {
		return err
	}
	admin := a.cfg.Admin
	return seed.Admin(ctx, a.services.Auth, admin.Email, admin.Name, admin.Password)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (a *App) Run(ctx context.Context) error {
	addr := ":" + a.cfg.Server.Port
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Starting server", zap.String("addr", addr))
		if err := a.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server", zap.Duration("timeout", a.cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// Close releases the store and redis connections
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}
