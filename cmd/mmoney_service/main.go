package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	gRPC "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	notifhttp "github.com/mmoney/golang_services/internal/notification_service/adapters/http"
	notifapp "github.com/mmoney/golang_services/internal/notification_service/app"
	notifpg "github.com/mmoney/golang_services/internal/notification_service/repository/postgres"
	"github.com/mmoney/golang_services/internal/platform/cache"
	"github.com/mmoney/golang_services/internal/platform/config"
	"github.com/mmoney/golang_services/internal/platform/database"
	"github.com/mmoney/golang_services/internal/platform/dynamo"
	"github.com/mmoney/golang_services/internal/platform/logger"
	"github.com/mmoney/golang_services/internal/platform/messagebroker"
	repayhttp "github.com/mmoney/golang_services/internal/repayment_service/adapters/http"
	repayapp "github.com/mmoney/golang_services/internal/repayment_service/app"
	"github.com/mmoney/golang_services/internal/repayment_service/domain"
	repaydynamo "github.com/mmoney/golang_services/internal/repayment_service/repository/dynamodb"
	repaypg "github.com/mmoney/golang_services/internal/repayment_service/repository/postgres"
	repayredis "github.com/mmoney/golang_services/internal/repayment_service/repository/redis"
)

const (
	serviceName     = "mmoney-service"
	shutdownTimeout = 15 * time.Second
)

// httpLogger is a middleware that logs HTTP requests using slog.
func httpLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.LogAttrs(r.Context(), slog.LevelInfo, "HTTP request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status_code", ww.Status()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", chiMiddleware.GetReqID(r.Context())),
				slog.String("remote_ip", chiMiddleware.GetRealIP(r.Context())),
			)
		}
		return http.HandlerFunc(fn)
	}
}

// newDuplicateGuard builds the configured guard. The returned func releases
// whatever client the guard owns.
func newDuplicateGuard(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, log *slog.Logger) (domain.DuplicateGuard, func(), error) {
	ttl := time.Duration(cfg.DuplicateTTLHours) * time.Hour
	switch cfg.DuplicateGuard {
	case "redis":
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return repayredis.NewDuplicateGuard(rdb, ttl, log), func() { _ = rdb.Close() }, nil
	case "dynamodb":
		ddb, err := dynamo.NewClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			return nil, nil, err
		}
		return repaydynamo.NewDuplicateGuard(ddb, cfg.DynamoDBTable, ttl, log), func() {}, nil
	default:
		return repaypg.NewPgProcessedTransactionRepository(dbPool, log), func() {}, nil
	}
}

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	appLogger := logger.New(cfg.LogLevel).With("service", serviceName)
	appLogger.Info("Mobile money service starting...",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"metrics_port", cfg.MetricsPort,
		"duplicate_guard", cfg.DuplicateGuard,
	)

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	guard, closeGuard, err := newDuplicateGuard(mainCtx, cfg, dbPool, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize duplicate guard", "guard", cfg.DuplicateGuard, "error", err)
		os.Exit(1)
	}
	defer closeGuard()

	var publisher messagebroker.Publisher
	var natsClient *messagebroker.NatsClient
	if cfg.NATSUrl != "" {
		natsClient, err = messagebroker.NewNatsClient(cfg.NATSUrl, serviceName, appLogger)
		if err != nil {
			appLogger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = natsClient
	} else {
		appLogger.Warn("NATS_URL empty, outcome events are disabled")
	}

	aliasPairs, err := config.ParsePairs(cfg.ProviderFieldAliases)
	if err != nil {
		appLogger.Error("Invalid PROVIDER_FIELD_ALIASES", "error", err)
		os.Exit(1)
	}
	aliases, err := repayapp.ParseFieldAliases(aliasPairs)
	if err != nil {
		appLogger.Error("Invalid PROVIDER_FIELD_ALIASES", "error", err)
		os.Exit(1)
	}
	apiKeyHashes, err := config.ParsePairs(cfg.ProviderAPIKeyHashes)
	if err != nil {
		appLogger.Error("Invalid PROVIDER_API_KEY_HASHES", "error", err)
		os.Exit(1)
	}
	senderIDs, err := config.ParsePairs(cfg.SenderIDs)
	if err != nil {
		appLogger.Error("Invalid SENDER_IDS", "error", err)
		os.Exit(1)
	}

	// --- Repayment validation ---
	settingsCache := repayapp.NewCachedSettingsProvider(
		repaypg.NewPgCountrySettingsRepository(dbPool, appLogger),
		time.Duration(cfg.SettingsCacheTTLSeconds)*time.Second,
	)
	paymentValidator := repayapp.NewValidator(repaypg.NewPgClientRepository(dbPool, appLogger), guard, settingsCache, appLogger)
	repaymentService := repayapp.NewRepaymentService(repayapp.NewNormalizer(aliases, nil), paymentValidator, publisher, appLogger)

	if natsClient != nil {
		_, err := natsClient.Subscribe(mainCtx, repayapp.SettingsUpdatedSubject, "", func(msg *nats.Msg) {
			if err := settingsCache.HandleSettingsUpdated(msg.Data); err != nil {
				appLogger.Warn("Ignoring settings update", "error", err)
			}
		})
		if err != nil {
			appLogger.Error("Failed to subscribe to settings updates", "error", err)
			os.Exit(1)
		}
	}

	// --- Notification composition ---
	localization := notifpg.NewPgLocalizationRepository(dbPool, appLogger)
	composer := notifapp.NewComposer(
		localization,
		notifpg.NewPgTemplateRepository(dbPool, appLogger),
		notifapp.StaticSenderDirectory(senderIDs),
		cfg.SMSChannel,
		cfg.DefaultLanguage,
		appLogger,
	)

	// --- HTTP server ---
	httpRouter := chi.NewRouter()
	httpRouter.Use(chiMiddleware.RequestID)
	httpRouter.Use(chiMiddleware.RealIP)
	httpRouter.Use(chiMiddleware.Recoverer)
	httpRouter.Use(httpLogger(appLogger))
	httpRouter.Get("/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	repayhttp.NewRepaymentHandler(repaymentService, appLogger).
		RegisterRoutes(httpRouter, repayhttp.APIKeyMiddleware(apiKeyHashes, appLogger))
	notifhttp.NewComposeHandler(composer, notifpg.NewPgClientDirectory(dbPool, appLogger), localization, validator.New(), appLogger).
		RegisterRoutes(httpRouter, notifhttp.JWTMiddleware([]byte(cfg.JWTSecret), appLogger))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		appLogger.Info("HTTP server starting", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server ListenAndServe error", "error", err)
			return err
		}
		appLogger.Info("HTTP server shut down gracefully.")
		return nil
	})

	// --- gRPC health server ---
	grpcMetrics := grpcprom.NewServerMetrics(grpcprom.WithServerHandlingTimeHistogram())
	if err := prometheus.DefaultRegisterer.Register(grpcMetrics); err != nil {
		appLogger.Warn("Failed to register gRPC Prometheus metrics", "error", err)
	}
	grpcServer := gRPC.NewServer(
		gRPC.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()),
		gRPC.ChainStreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	grpcMetrics.InitializeMetrics(grpcServer)

	grpcListenAddress := fmt.Sprintf(":%d", cfg.GRPCPort)
	grpcListener, err := net.Listen("tcp", grpcListenAddress)
	if err != nil {
		appLogger.Error("Failed to listen for gRPC", "address", grpcListenAddress, "error", err)
		os.Exit(1)
	}

	g.Go(func() error {
		appLogger.Info("gRPC health server starting", "address", grpcListenAddress)
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, gRPC.ErrServerStopped) {
			appLogger.Error("gRPC server failed to serve", "error", err)
			return err
		}
		appLogger.Info("gRPC server shut down gracefully.")
		return nil
	})

	// --- Metrics server ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: metricsMux,
	}

	g.Go(func() error {
		appLogger.Info("Metrics HTTP server starting", "address", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Metrics HTTP server ListenAndServe error", "error", err)
			return err
		}
		return nil
	})

	// --- Graceful shutdown ---
	stopSignal := make(chan os.Signal, 1)
	signal.Notify(stopSignal, syscall.SIGINT, syscall.SIGTERM)

	g.Go(func() error {
		select {
		case sig := <-stopSignal:
			appLogger.Info("Received termination signal", "signal", sig.String())
			mainCancel()
			return nil
		case <-groupCtx.Done():
			return nil
		}
	})

	g.Go(func() error {
		<-groupCtx.Done()
		appLogger.Info("Initiating graceful shutdown of servers...")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var shutdownErrors error
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = errors.Join(shutdownErrors, fmt.Errorf("metrics http shutdown: %w", err))
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = errors.Join(shutdownErrors, fmt.Errorf("http shutdown: %w", err))
		}
		grpcServer.GracefulStop()
		return shutdownErrors
	})

	appLogger.Info("Mobile money service is ready and running.")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Service group encountered an error during run/shutdown", "error", err)
	}
	appLogger.Info("Mobile money service shut down.")
}
