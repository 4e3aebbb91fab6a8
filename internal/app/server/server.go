package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"p9ify/internal/domain/audit"
	"p9ify/internal/domain/auth"
	"p9ify/internal/domain/backup"
	"p9ify/internal/domain/employees"
	"p9ify/internal/domain/payroll"
	"p9ify/internal/domain/settings"
	"p9ify/internal/platform/config"
	cryptoutil "p9ify/internal/platform/crypto"
	"p9ify/internal/platform/db"
	"p9ify/internal/platform/jobs"
	"p9ify/internal/platform/kv"
	"p9ify/internal/platform/metrics"
	"p9ify/internal/platform/storage"
	"p9ify/internal/reports"
	"p9ify/internal/transport/http/api"
	audithandler "p9ify/internal/transport/http/handlers/audit"
	authhandler "p9ify/internal/transport/http/handlers/auth"
	datahandler "p9ify/internal/transport/http/handlers/data"
	documentshandler "p9ify/internal/transport/http/handlers/documents"
	employeeshandler "p9ify/internal/transport/http/handlers/employees"
	payrollhandler "p9ify/internal/transport/http/handlers/payroll"
	settingshandler "p9ify/internal/transport/http/handlers/settings"
	"p9ify/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Store   kv.Store
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Backups *backup.Service
	Router  http.Handler

	closers []func()
}

func Run() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()
	app.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("server shutdown failed", "err", err)
		}
	}()

	slog.Info("p9ify server listening", "addr", cfg.Addr, "store", cfg.StoreDriver, "archive", cfg.ArchiveDriver, "auth", cfg.AuthEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

// New builds every service and the router. Background jobs are created
// but not started.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg, Metrics: metrics.New()}

	store, err := app.openStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		app.Close()
		return nil, err
	}

	archiveStore, err := openArchive(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	defaults := payroll.DefaultRates()
	if cfg.RatesFile != "" {
		if defaults, err = payroll.LoadRatesFile(cfg.RatesFile); err != nil {
			app.Close()
			return nil, fmt.Errorf("rates file %s: %w", cfg.RatesFile, err)
		}
		slog.Info("rates loaded", "file", cfg.RatesFile, "bands", len(defaults.Bands))
	}

	employeeStore := employees.NewStore(store)
	payrollStore := payroll.NewStore(store)
	settingsService := settings.NewService(store, defaults)
	employeeService := employees.NewService(employeeStore)
	payrollService := payroll.NewService(payrollStore, employeeService, settingsService)
	employeeService.SetPayrollCleaner(payrollService)
	app.Backups = backup.NewService(store, employeeStore, payrollStore, settingsService, crypto)
	auditService := audit.New(store)
	authService := auth.NewService(cfg.JWTSecret, cfg.AdminPasswordHash, cfg.TokenTTL, store, crypto)

	app.Jobs = jobs.New(cfg.BackupInterval, func(ctx context.Context) (any, error) {
		info, err := app.Backups.Create(ctx)
		if err != nil {
			return nil, err
		}
		app.Metrics.BackupCreated()
		return info, nil
	})

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(app.Metrics))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(authService))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequireAuth(authService)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			snapshot := app.Metrics.Snapshot()
			snapshot["jobs"] = app.Jobs.Runs()
			api.Success(w, snapshot, middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute))
		r.Use(middleware.SensitiveRateLimit(cfg.RateLimitPerMinute))

		authHandler := authhandler.NewHandler(authService)
		authHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(authService))

			authHandler.RegisterMFARoutes(r)

			employeeshandler.NewHandler(employeeService, payrollService, auditService).RegisterRoutes(r)
			payrollhandler.NewHandler(payrollService, app.Metrics).RegisterRoutes(r)
			documentshandler.NewHandler(
				payrollService,
				employeeService,
				settingsService,
				reports.NewArchive(archiveStore, crypto),
				app.Jobs,
				app.Metrics,
			).RegisterRoutes(r)
			settingshandler.NewHandler(settingsService, auditService).RegisterRoutes(r)
			datahandler.NewHandler(app.Backups, auditService, app.Metrics).RegisterRoutes(r)
			audithandler.NewHandler(auditService).RegisterRoutes(r)
		})
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	app.Router = router
	return app, nil
}

// Close releases storage connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openStore(ctx context.Context) (kv.Store, error) {
	cfg := a.Config
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return kv.NewMemory(), nil
	case config.StoreFile:
		store, err := kv.OpenFile(cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return store, nil
	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db connect failed: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
				return nil, fmt.Errorf("migrations failed: %w", err)
			}
		}
		return kv.NewPostgres(pool), nil
	case config.StoreRedis:
		store, err := kv.OpenRedis(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := store.Close(); err != nil {
				slog.Warn("redis close failed", "err", err)
			}
		})
		return store, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openArchive(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.ArchiveDriver {
	case config.ArchiveLocal:
		return storage.NewLocalStore(cfg.ArchiveDir)
	case config.ArchiveS3:
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return storage.Discard{}, nil
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		index := filepath.Join(h.staticPath, h.indexPath)
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
		return
	}

	http.NotFound(w, r)
}
