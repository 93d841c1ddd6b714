package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/Sizimon/grippendor/internal/auth"
	"github.com/Sizimon/grippendor/internal/cache"
	"github.com/Sizimon/grippendor/internal/config"
	"github.com/Sizimon/grippendor/internal/guildapi"
	"github.com/Sizimon/grippendor/internal/loader"
	"github.com/Sizimon/grippendor/internal/metrics"
	"github.com/Sizimon/grippendor/internal/middleware"
	"github.com/Sizimon/grippendor/internal/service"
	"github.com/Sizimon/grippendor/internal/storage"
	"github.com/Sizimon/grippendor/internal/storage/memory"
	"github.com/Sizimon/grippendor/internal/storage/redis"
	"github.com/Sizimon/grippendor/internal/storage/sqlite"
	"github.com/Sizimon/grippendor/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store, err := openStore(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache storage: %w", err)
	}
	defer store.Close()

	resources := newResourceCache(ctx, store, cfg.Cache, m)

	api := newAPIClient(cfg.API, slog.Default())
	if cfg.API.SessionToken == "" {
		slog.Warn("No guild API session token configured, requests will be unauthenticated")
	}

	loaderLog := slog.Default().With("component", "loader")
	sessions := service.NewSessions(func() *loader.Loader {
		return loader.New(api, resources,
			loader.WithMetrics(m),
			loader.WithLogger(loaderLog),
			loader.WithListener(func(u loader.Update) {
				loaderLog.Debug("Guild resource updated",
					"guild_id", u.Snapshot.GuildID,
					"resource", u.Resource,
					"source", u.Source,
				)
			}),
		)
	})
	go sessions.RunPruner(ctx, time.Minute, cfg.Server.SessionIdle)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(m),
		middleware.RequireAuth(jwtManager),
	)

	mux := http.NewServeMux()
	mux.Handle(service.NewGuildServiceHandler(service.NewGuildService(sessions, resources), interceptors))
	mux.Handle(service.NewPlannerServiceHandler(service.NewPlannerService(sessions, m), interceptors))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Add logging and CORS middleware
	handler := loggingMiddleware(corsMiddleware(cfg.Server.AllowedOrigins, mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting",
			"address", srv.Addr,
			"env", cfg.Server.Env,
			"cache_backend", cfg.Cache.Backend,
			"guild_api", cfg.API.BaseURL,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.CacheConfig) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		s, err := redis.New(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("Cache storage initialized", "backend", cfg.Backend, "addr", cfg.Redis.Addr)
		return s, nil
	case config.BackendMemory:
		slog.Info("Cache storage initialized", "backend", cfg.Backend)
		return memory.New(), nil
	default:
		s, err := sqlite.New(cfg.SQLitePath, sqlite.WithScope(cfg.SQLiteScope))
		if err != nil {
			return nil, err
		}
		slog.Info("Cache storage initialized", "backend", cfg.Backend, "database", cfg.SQLitePath, "scope", cfg.SQLiteScope)
		return s, nil
	}
}

func newResourceCache(ctx context.Context, store storage.Store, cfg config.CacheConfig, m *metrics.Metrics) *cache.Cache {
	resources := cache.New(store,
		cache.WithTTL(cfg.TTL),
		cache.WithMetrics(m),
		cache.WithLogger(slog.Default().With("component", "cache")),
	)
	if cfg.ClearOnStart {
		resources.Clear(ctx)
		slog.Info("Cache cleared on start", "backend", cfg.Backend)
	}
	return resources
}

// newAPIClient builds the guild API client. Requests carry no timeout; callers
// cancel through their context.
func newAPIClient(cfg config.APIConfig, logger *slog.Logger) *guildapi.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = cfg.MaxIdleConns

	return guildapi.New(cfg.BaseURL,
		guildapi.WithHTTPClient(&http.Client{Transport: transport}),
		guildapi.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		guildapi.WithSessionCookie(cfg.SessionCookie, cfg.SessionToken),
		guildapi.WithLogger(logger.With("component", "guildapi")),
	)
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for the dashboard origins
func corsMiddleware(allowedOrigins []string, next http.Handler) http.Handler {
	allowAny := slices.Contains(allowedOrigins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowAny || slices.Contains(allowedOrigins, origin)) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
			w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
