package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"

	"github.com/noah-isme/backend-pos/internal/app"
	"github.com/noah-isme/backend-pos/internal/bulk"
	"github.com/noah-isme/backend-pos/internal/config"
	"github.com/noah-isme/backend-pos/internal/health"
	"github.com/noah-isme/backend-pos/internal/lock"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/products"
	"github.com/noah-isme/backend-pos/internal/queue"
	"github.com/noah-isme/backend-pos/internal/repo"
	"github.com/noah-isme/backend-pos/internal/tenant"
	"github.com/noah-isme/backend-pos/internal/tiers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().
		Str("component", "api").
		Str("env", cfg.AppEnv).
		Logger()

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	if cfg.TracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "pos-api",
			Endpoint:      cfg.TracingEndpoint,
			Exporter:      cfg.TracingExporter,
			SamplingRatio: cfg.TracingSamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := app.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	pool, queries, err := app.OpenDatabase(initCtx, cfg, "pos-api")
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer pool.Close()

	redisClient, err := app.OpenRedis(initCtx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("open redis")
	}
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis metrics")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	tenants := &repo.Tenants{Q: queries}
	tiersSvc := &tiers.Service{Q: queries, DB: pool, Tenants: tenants}
	productsSvc := &products.Service{Q: queries, DB: pool, Tenants: tenants, Tiers: tiersSvc}
	processor := &bulk.Processor{
		Q:       queries,
		DB:      pool,
		Tenants: tenants,
		Tiers:   tiersSvc,
		Locker:  &lock.Locker{R: redisClient},
		LockTTL: cfg.BulkLockTTL,
		Log:     logger,
	}

	pricingHandler := &pricing.Handler{Service: pricing.Service{Margins: pricing.SampleMargins}}
	tiersHandler := &tiers.Handler{Service: tiersSvc}
	productsHandler := &products.Handler{Service: productsSvc, Validate: validator.New()}
	bulkHandler := &bulk.Handler{
		Processor: processor,
		Jobs:      &bulk.JobStore{R: redisClient, Prefix: cfg.QueuePrefix, TTL: cfg.BulkJobTTL},
		Enqueuer:  queue.Enqueuer{R: redisClient, Prefix: cfg.QueuePrefix},
	}

	httpMetrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, nil, nil)
	resolver := tenant.Resolver{Header: cfg.TenantHeader, RootDomain: cfg.TenantRootDomain}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.TracingMiddleware)
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", cfg.TenantHeader},
		ExposedHeaders:   []string{"Link", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	healthHandler := health.Handler{Checker: app.ReadinessChecker{DB: pool, Redis: redisClient}}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(resolver.Middleware)
		v.Use(tenant.RequireTenant)

		v.Route("/pricing", func(p chi.Router) {
			p.Post("/preview", pricingHandler.Preview)
			p.Get("/tiers", tiersHandler.Get)
			p.Put("/tiers", tiersHandler.Update)
			p.Post("/bulk-update", bulkHandler.Update)
			p.Post("/bulk-update/async", bulkHandler.UpdateAsync)
			p.Get("/bulk-update/jobs/{id}", bulkHandler.GetJob)
		})

		v.Route("/products", func(p chi.Router) {
			p.Get("/", productsHandler.List)
			p.Post("/", productsHandler.Create)
			p.Get("/{id}", productsHandler.Get)
			p.Get("/{id}/pricing", productsHandler.GetPricing)
			p.Put("/{id}/pricing", productsHandler.SetPricing)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	case <-ctx.Done():
	}

	health.SetReady(false)
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
