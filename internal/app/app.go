package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/brosmart/db"
	"github.com/xenking/brosmart/internal/domain/checkout"
	"github.com/xenking/brosmart/internal/domain/content"
	"github.com/xenking/brosmart/internal/domain/coupon"
	"github.com/xenking/brosmart/internal/domain/order"
	"github.com/xenking/brosmart/internal/domain/product"
	"github.com/xenking/brosmart/internal/domain/storefront"
	"github.com/xenking/brosmart/internal/handler"
	"github.com/xenking/brosmart/internal/seed"
	"github.com/xenking/brosmart/internal/storage/memory"
	"github.com/xenking/brosmart/internal/storage/postgres"
	"github.com/xenking/brosmart/internal/storage/redis"
	"github.com/xenking/brosmart/pkg/health"
	"github.com/xenking/brosmart/pkg/httpmiddleware"
)

// maxGoroutines trips the liveness probe on a goroutine leak.
const maxGoroutines = 10000

// Stores groups the persistence backends selected by Config.Storage.
type Stores struct {
	Products product.Repository
	Coupons  coupon.Repository
	Orders   order.Repository
	Content  content.Repository
	Sessions checkout.SessionStore
}

// openStores connects the configured backends and registers a readiness
// check for each remote one. The returned cleanup closes the connections.
func openStores(ctx context.Context, lg *zap.Logger, cfg *Config, checker *health.Checker) (_ *Stores, _ func(), err error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	defer func() {
		if err != nil {
			closeAll()
		}
	}()

	var s Stores
	switch cfg.Storage {
	case StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		closers = append(closers, pool.Close)

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		checker.Add(health.Readiness, "postgres", health.PingCheck("postgres", pool))

		s.Products = postgres.NewProductRepository(pool)
		s.Coupons = postgres.NewCouponRepository(pool)
		s.Orders = postgres.NewOrderRepository(pool)
		s.Content = postgres.NewContentRepository(pool)
	default:
		s.Products = memory.NewProductRepository()
		s.Coupons = memory.NewCouponRepository()
		s.Orders = memory.NewOrderRepository()
		s.Content = memory.NewContentRepository()
	}

	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect redis")
		}
		closers = append(closers, func() { _ = client.Close() })

		sessions := redis.NewSessionStore(client)
		checker.Add(health.Readiness, "redis", health.PingCheck("redis", sessions))
		s.Sessions = sessions
	} else {
		s.Sessions = memory.NewSessionStore()
	}

	lg.Info("Stores ready",
		zap.String("storage", cfg.Storage),
		zap.Bool("redis_sessions", cfg.RedisURL != ""),
	)
	return &s, closeAll, nil
}

// seedStores loads the embedded sample storefront into empty collections.
func seedStores(ctx context.Context, lg *zap.Logger, s *Stores) error {
	products, err := seed.ParseProducts(db.SeedProducts)
	if err != nil {
		return err
	}
	report, err := seed.Apply(ctx, seed.Stores{
		Products: s.Products,
		Coupons:  s.Coupons,
		Content:  s.Content,
	}, products)
	if err != nil {
		return errors.Wrap(err, "seed")
	}
	lg.Info("Seeded sample data",
		zap.Int("products", report.Products),
		zap.Int("coupons", report.Coupons),
		zap.Int("slides", report.Slides),
		zap.Int("features", report.Features),
		zap.Bool("content", report.Content),
	)
	return nil
}

// NewHandler builds the domain services over s and returns the fully wrapped
// HTTP handler serving the health probes and the /api routes.
func NewHandler(lg *zap.Logger, m httpmiddleware.Telemetry, cfg *Config, s *Stores, checker *health.Checker, limiter *httpmiddleware.Limiter) (http.Handler, error) {
	orders, err := order.NewService(s.Products, s.Orders,
		order.WithTracerProvider(m.TracerProvider()),
		order.WithMeterProvider(m.MeterProvider()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create order service")
	}
	resolver := coupon.NewResolver(s.Coupons, s.Products)

	api := handler.New(handler.Config{AdminPassword: cfg.Admin.Password}, handler.Deps{
		Products:   s.Products,
		Coupons:    s.Coupons,
		Content:    s.Content,
		Resolver:   resolver,
		Orders:     orders,
		Checkout:   checkout.NewService(s.Sessions, s.Products, resolver, orders, cfg.Session.TTL),
		Storefront: storefront.NewService(s.Products, s.Orders, s.Coupons, s.Content),
	})

	r := chi.NewRouter()
	r.Get("/livez", checker.LiveHandler)
	r.Get("/readyz", checker.ReadyHandler)
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware())
		r.Mount("/", api.Routes())
	})

	return httpmiddleware.Wrap(r,
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.RequestID(),
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			Origins:     cfg.CORS.Origins,
			Headers:     []string{"Content-Type", handler.HeaderAdminPassword, httpmiddleware.HeaderRequestID},
			Credentials: cfg.CORS.AllowCredentials,
			MaxAge:      cfg.CORS.MaxAge,
		}),
		httpmiddleware.Route(),
		httpmiddleware.Instrument("brosmart", m),
		httpmiddleware.LogRequests(),
	), nil
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage),
	)

	checker := health.New(health.Options{})
	checker.Add(health.Liveness, "goroutines", health.GoroutineCheck(maxGoroutines))

	stores, cleanup, err := openStores(ctx, lg, cfg, checker)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Seed {
		if err := seedStores(ctx, lg, stores); err != nil {
			return err
		}
	}

	limiter := httpmiddleware.NewLimiter(httpmiddleware.RateLimitConfig{
		Max:    cfg.RateLimit.Max,
		Window: cfg.RateLimit.Window,
	})
	h, err := NewHandler(lg, m, cfg, stores, checker, limiter)
	if err != nil {
		return err
	}

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           h,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return checker.Run(gCtx)
	})
	g.Go(func() error {
		return limiter.Run(gCtx)
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		checker.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		if ctx.Err() != nil {
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})

	checker.SetReady(true)
	return g.Wait()
}
