package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/hostledger/internal/auth"
	"github.com/mmynk/hostledger/internal/config"
	"github.com/mmynk/hostledger/internal/events"
	"github.com/mmynk/hostledger/internal/fx"
	"github.com/mmynk/hostledger/internal/ledger"
	"github.com/mmynk/hostledger/internal/middleware"
	"github.com/mmynk/hostledger/internal/models"
	"github.com/mmynk/hostledger/internal/service"
	"github.com/mmynk/hostledger/internal/settlement"
	"github.com/mmynk/hostledger/internal/storage"
	"github.com/mmynk/hostledger/internal/storage/postgres"
	"github.com/mmynk/hostledger/internal/storage/sqlite"
	"github.com/mmynk/hostledger/pkg/api/apiconnect"
	"github.com/mmynk/hostledger/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	rates, closeRates, err := rateProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRates()
	conv := fx.NewConverter(rates)

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		defer kp.Close()
		publisher = kp
		slog.Info("Publishing ledger events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	platform, err := ensurePlatform(ctx, store, conv, cfg.Platform)
	if err != nil {
		return err
	}
	slog.Info("Platform entity ready", "entity_id", platform.ID, "currency", platform.Currency)

	ledgerEngine := ledger.NewEngine(store, conv, platform.ID, ledger.WithPublisher(publisher))
	settlementEngine := settlement.NewEngine(store, conv, platform.ID, settlement.WithPublisher(publisher))
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	mux := http.NewServeMux()
	path, handler := apiconnect.NewLedgerServiceHandler(
		service.NewLedgerService(store, ledgerEngine, settlementEngine),
		connect.WithInterceptors(
			middleware.RequireAuth(jwtManager, service.Policy()),
			middleware.LoggingInterceptor(),
		),
	)
	mux.Handle(path, handler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// h2c serves HTTP/2 without TLS for Connect and gRPC clients.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		store, err := postgres.New(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres storage: %w", err)
		}
		slog.Info("Storage initialized", "driver", cfg.Driver)
		return store, nil
	default:
		store, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		slog.Info("Storage initialized", "driver", cfg.Driver, "database", cfg.Path)
		return store, nil
	}
}

// rateProvider builds the cached rate source. The returned func releases the
// Redis client when one was opened.
func rateProvider(ctx context.Context, cfg *config.Config) (fx.RateProvider, func(), error) {
	var source fx.RateProvider
	if cfg.FX.BaseURL != "" {
		source = fx.NewHTTPProvider(cfg.FX.BaseURL, cfg.FX.AccessKey)
		slog.Info("Using HTTP rate provider", "base_url", cfg.FX.BaseURL)
	} else {
		static, err := fx.ParseStaticRates(cfg.FX.StaticRates)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse FX_STATIC_RATES: %w", err)
		}
		source = static
		slog.Info("Using static rates", "pairs", len(static))
	}

	if cfg.Redis.Addr == "" {
		return fx.NewCachedProvider(source, fx.NewMemoryCache(), cfg.FX.CacheTTL), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	slog.Info("Caching rates in redis", "addr", cfg.Redis.Addr, "ttl", cfg.FX.CacheTTL)
	return fx.NewCachedProvider(source, fx.NewRedisCache(rdb), cfg.FX.CacheTTL), func() { rdb.Close() }, nil
}

// ensurePlatform returns the configured platform entity, registering it on
// first start.
func ensurePlatform(ctx context.Context, store storage.Store, conv *fx.Converter, cfg config.PlatformConfig) (*models.Entity, error) {
	if cfg.EntityID != "" {
		platform, err := store.GetEntity(ctx, cfg.EntityID)
		switch {
		case err == nil:
			if platform.Role != models.RolePlatform {
				return nil, fmt.Errorf("entity %s is a %s, not the platform", platform.ID, platform.Role)
			}
			return platform, nil
		case !errors.Is(err, models.ErrEntityNotFound):
			return nil, fmt.Errorf("failed to load platform: %w", err)
		}
	} else {
		platforms, err := store.ListEntities(ctx, models.RolePlatform)
		if err != nil {
			return nil, fmt.Errorf("failed to list platforms: %w", err)
		}
		if len(platforms) > 0 {
			return platforms[0], nil
		}
	}

	platform := &models.Entity{
		ID:       cfg.EntityID,
		Name:     cfg.Name,
		Role:     models.RolePlatform,
		Currency: cfg.Currency,
	}
	if err := ledger.NewEngine(store, conv, "").RegisterEntity(ctx, platform); err != nil {
		return nil, fmt.Errorf("failed to register platform: %w", err)
	}
	return platform, nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
