// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uniadvisor/uniadvisor/internal/advisor"
	"github.com/uniadvisor/uniadvisor/internal/api"
	"github.com/uniadvisor/uniadvisor/internal/buildinfo"
	"github.com/uniadvisor/uniadvisor/internal/config"
	"github.com/uniadvisor/uniadvisor/internal/dataset"
	"github.com/uniadvisor/uniadvisor/internal/genai"
	"github.com/uniadvisor/uniadvisor/internal/logger"
	"github.com/uniadvisor/uniadvisor/internal/matcher"
	"github.com/uniadvisor/uniadvisor/internal/metrics"
	"github.com/uniadvisor/uniadvisor/internal/profile"
	"github.com/uniadvisor/uniadvisor/internal/r2client"
	"github.com/uniadvisor/uniadvisor/internal/ratelimit"
	"github.com/uniadvisor/uniadvisor/internal/recommend"
	"github.com/uniadvisor/uniadvisor/internal/scraper"
	"github.com/uniadvisor/uniadvisor/internal/sentry"
	"github.com/uniadvisor/uniadvisor/internal/storage"
)

// readinessGrace is how long /readyz waits for the first dataset load
// before reporting ready anyway.
const readinessGrace = 2 * time.Minute

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg       *config.Config
	logger    *logger.Logger
	db        *storage.DB
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
	store     *profile.Store
	datasets  *dataset.Holder
	llm       genai.Completer
	limiter   *ratelimit.KeyedLimiter
	server    *http.Server
	readiness *readiness
	wg        sync.WaitGroup // Tracks background goroutines for graceful shutdown
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	opts := logger.Options{}
	if cfg.BetterStack.Enabled {
		opts.BetterStackToken = cfg.BetterStack.Token
		opts.BetterStackEndpoint = cfg.BetterStack.Endpoint
	}
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, opts).
		WithField("service", "uniadvisor").
		WithField("version", buildinfo.Release())
	if cfg.InstanceID != "" {
		log = log.WithField("instance_id", cfg.InstanceID)
	} else if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog.*Context calls pick up user and request IDs
	// through the ContextHandler.
	slog.SetDefault(log.Logger)

	log.WithField("log_level", log.GetLevel()).Info("Initializing application...")
	if cfg.BetterStack.Enabled {
		log.WithField("endpoint", cfg.BetterStack.Endpoint).Info("Better Stack logging enabled")
	}

	if cfg.Sentry.Enabled {
		release := cfg.Sentry.Release
		if release == "" {
			release = buildinfo.Release()
		}
		if err := sentry.Initialize(sentry.Config{
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     release,
			ServerName:  cfg.ServerName,
			SampleRate:  cfg.Sentry.SampleRate,
		}); err != nil {
			log.WithError(err).Warn("Sentry initialization failed, error tracking disabled")
		} else {
			log.WithField("environment", cfg.Sentry.Environment).Info("Sentry error tracking enabled")
		}
	}

	db, err := storage.New(ctx, cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", db.Path()).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	sources, err := datasetSources(ctx, cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	holder := dataset.NewHolder(sources, m)

	llm, err := genai.New(ctx, cfg.LLM, m)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("llm: %w", err)
	}

	policy, err := matcher.PolicyByName(cfg.MatchPolicy)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("matcher: %w", err)
	}

	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "llm",
		Burst:         int(cfg.LLMRateBurst),
		RefillRate:    ratelimit.PerHour(cfg.LLMRatePerHour),
		CleanupPeriod: config.RateLimiterCleanupInterval,
		Metrics:       m,
	})

	store := profile.NewStore()
	svc := advisor.New(advisor.Config{
		Store:          store,
		Datasets:       holder,
		Matcher:        matcher.New(policy, cfg.MatchLimit),
		Composer:       recommend.NewComposer(llm, cfg.HistoryWindow),
		Limiter:        limiter,
		Metrics:        m,
		Logger:         log,
		MaxQueryLength: cfg.MaxQueryLength,
	})
	handler := api.NewHandler(api.Config{
		Advisor:       svc,
		Datasets:      holder,
		Scraper:       scraper.Noop{},
		Saver:         db,
		Metrics:       m,
		Logger:        log,
		ReloadTimeout: config.DatasetReload,
	})

	app := &Application{
		cfg:       cfg,
		logger:    log,
		db:        db,
		metrics:   m,
		registry:  registry,
		store:     store,
		datasets:  holder,
		llm:       llm,
		limiter:   limiter,
		readiness: newReadiness(readinessGrace),
	}

	gin.SetMode(gin.ReleaseMode)
	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router(handler),
		ReadHeaderTimeout: config.HTTPRead,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.HTTPWrite,
		IdleTimeout:       config.HTTPIdle,
	}

	log.WithField("match_policy", policy.Name).
		WithField("llm_provider", llm.Provider()).
		Info("Initialization complete")
	return app, nil
}

// datasetSources orders the dataset sources: the SQLite snapshot, then the
// R2 object when enabled, then the local file.
func datasetSources(ctx context.Context, cfg *config.Config, db *storage.DB) (dataset.Chain, error) {
	chain := dataset.Chain{storage.Source{DB: db}}

	if cfg.R2.Enabled {
		client, err := r2client.New(ctx, r2client.Config{
			Endpoint:    cfg.R2.Endpoint(),
			AccessKeyID: cfg.R2.AccessKeyID,
			SecretKey:   cfg.R2.SecretAccessKey,
			BucketName:  cfg.R2.BucketName,
		})
		if err != nil {
			return nil, fmt.Errorf("r2: %w", err)
		}
		chain = append(chain, dataset.ObjectSource{Client: client, Key: cfg.R2.DatasetKey})
	}

	if cfg.DatasetPath != "" {
		chain = append(chain, dataset.FileSource{Path: cfg.DatasetPath})
	}
	return chain, nil
}

func (a *Application) router(handler *api.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentry.Middleware())
	}
	router.Use(api.RequestID(), api.SecurityHeaders(), api.Logging(a.logger))

	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)

	protected := basicAuth("metrics", a.cfg.MetricsAuthEnabled, a.cfg.MetricsUsername, a.cfg.MetricsPassword)
	router.GET("/metrics", protected, gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	router.POST("/admin/reload", protected, handler.Reload)

	handler.Register(router)
	return router
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ReadinessCheck)
	defer cancel()

	if !a.readiness.IsReady() {
		status := a.readiness.Status()
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not ready",
			"reason":   status.Reason,
			"progress": status,
		})
		return
	}

	if err := a.db.Ping(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	ds := a.datasets.Current()
	body := gin.H{
		"status":   "ready",
		"database": "connected",
		"dataset": gin.H{
			"source": ds.Source(),
			"rows":   ds.Len(),
		},
		"profiles": a.store.Len(),
		"llm": gin.H{
			"provider":   a.llm.Provider().String(),
			"configured": a.cfg.HasLLMProvider(),
		},
	}
	if loaded := ds.LoadedAt(); !loaded.IsZero() {
		body["dataset"].(gin.H)["loaded_at"] = loaded.Format(time.RFC3339)
	}
	body["cache"] = a.cacheStatus(ctx)
	c.JSON(http.StatusOK, body)
}

// cacheStatus describes the SQLite dataset cache. Query failures are
// reported in the payload rather than failing readiness.
func (a *Application) cacheStatus(ctx context.Context) gin.H {
	rows, err := a.db.CountUniversities(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Readiness check: counting cached rows failed")
		return gin.H{"error": err.Error()}
	}
	status := gin.H{"rows": rows}

	imp, err := a.db.LastImport(ctx)
	switch {
	case err != nil:
		a.logger.WithError(err).Warn("Readiness check: reading last import failed")
	case imp != nil:
		status["last_import"] = gin.H{
			"source":      imp.Source,
			"rows":        imp.RowCount,
			"imported_at": imp.ImportedAt.UTC().Format(time.RFC3339),
		}
	}
	return status
}

// Run starts the HTTP server and background jobs, then blocks until
// SIGINT/SIGTERM.
//
// Shutdown order: cancel background jobs, wait for them, stop the HTTP
// server, then close resources.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		a.loadDataset(ctx)
	})
	a.wg.Go(func() {
		a.updateGaugeMetrics(ctx)
	})
}

func (a *Application) startHTTPServer() {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()
}

func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown stops the HTTP server and closes resources. Call it only after
// background jobs have finished.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Closing resources...")
	a.limiter.Stop()

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}

	if sentry.IsEnabled() && !sentry.Flush(2*time.Second) {
		a.logger.Warn("Sentry flush timed out")
	}

	if dropped := a.logger.DroppedRemote(); dropped > 0 {
		a.logger.WithField("dropped", dropped).Warn("Remote log sink dropped records")
	}

	a.logger.Info("Shutdown complete")
	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}
	return nil
}

// loadDataset performs the initial dataset load and marks the service
// ready. A failed load leaves an empty dataset; recommendations then take
// the LLM fallback path until /admin/reload succeeds.
func (a *Application) loadDataset(ctx context.Context) {
	defer a.readiness.MarkReady()

	loadCtx, cancel := context.WithTimeout(ctx, config.DatasetReload)
	defer cancel()

	ds, stats, err := a.datasets.Reload(loadCtx)
	if err != nil {
		a.logger.WithError(err).Warn("Initial dataset load failed, serving without dataset")
		sentry.CaptureExceptionWithContext(ctx, "dataset", err)
		return
	}
	a.logger.WithField("source", ds.Source()).
		WithField("rows", ds.Len()).
		WithField("dropped", stats.Malformed+stats.Incomplete+stats.Duplicates).
		Info("Dataset ready")
}

// updateGaugeMetrics periodically records the profile store size.
func (a *Application) updateGaugeMetrics(ctx context.Context) {
	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.metrics.SetProfilesStored(a.store.Len())
			a.metrics.SetRateLimiterKeys("llm", a.limiter.ActiveCount())
		}
	}
}
