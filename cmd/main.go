package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"product-lifecycle-service/internal/api"
	"product-lifecycle-service/internal/config"
	"product-lifecycle-service/internal/event"
	"product-lifecycle-service/internal/feature"
	"product-lifecycle-service/internal/file"
	"product-lifecycle-service/internal/notify"
	"product-lifecycle-service/internal/product"
	"product-lifecycle-service/internal/saleelements"
	"product-lifecycle-service/internal/store"
)

const (
	defaultAppName = "ProductLifecycleService" // App name for logger

	healthCheckInterval = 10 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found or failed to load, relying on system environment")
	}
	logger := log.New(os.Stdout, fmt.Sprintf("[%s] ", defaultAppName), log.LstdFlags|log.Lshortfile|log.Lmicroseconds)
	logger.Println("INFO: Starting service...")

	// --- Configuration Loading ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("FATAL: Error loading configuration: %v", err)
	}
	logger.Printf("INFO: Configuration loaded for APP_ENV: %s, LogLevel: %s", cfg.AppEnv, cfg.LogLevel)

	dbStore := openDatabase(logger, cfg.Postgres)
	bus, redisClient := buildBus(logger, cfg, dbStore)

	// --- Setup & Start HTTP Server ---
	httpAPIHandler := api.NewHTTPHandler(bus, dbStore, api.Defaults{
		Locale:     cfg.Catalog.DefaultLocale,
		CurrencyID: cfg.Catalog.DefaultCurrencyID,
	})

	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, logger)
	registerHealthCheck(httpRouter, logger, dbStore)
	httpAPIHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		logger.Printf("INFO: HTTP server listening on port %s", cfg.HttpServer.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("FATAL: HTTP server ListenAndServe error: %v", err)
		}
		logger.Println("INFO: HTTP server has stopped.")
	}()

	// --- Setup & Start gRPC Server ---
	healthServer := health.NewServer()
	grpcServer := setupGRPCServer(logger, healthServer)
	grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
	if err != nil {
		logger.Fatalf("FATAL: Failed to listen for gRPC on port %s: %v", cfg.GrpcServer.Port, err)
	}

	go func() {
		logger.Printf("INFO: gRPC server listening on port %s", cfg.GrpcServer.Port)
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Fatalf("FATAL: gRPC server Serve error: %v", err)
		}
		logger.Println("INFO: gRPC server has stopped.")
	}()

	healthCtx, stopHealth := context.WithCancel(context.Background())
	go watchDatabaseHealth(healthCtx, logger, healthServer, dbStore)

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(logger, httpServer, grpcServer, stopHealth, dbStore, redisClient, shutdownComplete)

	<-shutdownComplete
	logger.Println("INFO: Service shutdown sequence finished.")
}

// openDatabase connects to PostgreSQL and exits the process when it is unreachable.
func openDatabase(logger *log.Logger, pg config.PostgresConfig) *store.PostgresStore {
	db, err := sql.Open("postgres", pg.DSN())
	if err != nil {
		logger.Fatalf("FATAL: Could not open postgres connection to %s:%s: %v", pg.Host, pg.Port, err)
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Fatalf("FATAL: Postgres at %s:%s is not answering: %v", pg.Host, pg.Port, err)
	}
	logger.Printf("INFO: Connected to postgres database %s", pg.DBName)
	return store.NewPostgresStore(db)
}

// buildBus registers every lifecycle listener. The redis client is nil when
// notifications are disabled.
func buildBus(logger *log.Logger, cfg *config.Config, dbStore *store.PostgresStore) (*event.Bus, *notify.Client) {
	var busLogger *log.Logger
	if strings.EqualFold(cfg.LogLevel, "debug") {
		busLogger = logger
	}
	bus := event.NewBus(busLogger)
	bus.AddSubscriber(product.NewHandler(dbStore, logger))
	bus.AddSubscriber(feature.NewHandler(dbStore))
	bus.AddSubscriber(saleelements.NewHandler(dbStore))
	bus.AddSubscriber(file.NewHandler(dbStore, logger))
	if err := bus.RequireListeners(event.Cascaded...); err != nil {
		logger.Fatalf("FATAL: %v", err)
	}

	if !cfg.Redis.Enabled() {
		logger.Println("INFO: REDIS_ADDR not set, lifecycle notifications disabled.")
		return bus, nil
	}

	redisClient, err := notify.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatalf("FATAL: %v", err)
	}
	publisher := notify.NewStreamPublisher(redisClient.Client, cfg.Redis.Stream, cfg.Redis.StreamMaxLen)
	bus.AddSubscriber(notify.NewListener(publisher, logger))
	logger.Printf("INFO: Publishing product lifecycle changes to redis stream %s", cfg.Redis.Stream)
	return bus, redisClient
}

func setupBaseMiddleware(router *chi.Mux, logger *log.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	logger.Println("INFO: Base HTTP middleware registered.")
}

type pinger interface {
	Ping(ctx context.Context) error
}

// registerHealthCheck answers 503 while the database is unreachable.
func registerHealthCheck(router *chi.Mux, logger *log.Logger, db pinger) {
	const path = "/api/v1/healthz"
	router.Get(path, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		code, database := http.StatusOK, "up"
		if err := db.Ping(ctx); err != nil {
			logger.Printf("WARN: healthz: database ping failed: %v", err)
			code, database = http.StatusServiceUnavailable, "down"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"service":  defaultAppName,
			"database": database,
			"checked":  time.Now().UTC().Format(time.RFC3339),
		})
	})
	logger.Printf("INFO: Health endpoint at %s", path)
}

func setupGRPCServer(logger *log.Logger, healthServer *health.Server) *grpc.Server {
	s := grpc.NewServer()

	grpc_health_v1.RegisterHealthServer(s, healthServer)
	logger.Println("INFO: gRPC health check service registered.")

	// Enable gRPC server reflection (useful for tools like grpcurl).
	reflection.Register(s)
	logger.Println("INFO: gRPC reflection service registered.")

	return s
}

// watchDatabaseHealth reports SERVING over gRPC health while the database answers pings.
func watchDatabaseHealth(ctx context.Context, logger *log.Logger, hs *health.Server, db pinger) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	last := grpc_health_v1.HealthCheckResponse_UNKNOWN
	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		status := grpc_health_v1.HealthCheckResponse_SERVING
		if err := db.Ping(pingCtx); err != nil {
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
		cancel()

		if status != last {
			logger.Printf("INFO: gRPC health status is now %s", status)
			hs.SetServingStatus("", status)
			last = status
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func waitForShutdown(
	logger *log.Logger,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	stopHealth context.CancelFunc,
	dbStore *store.PostgresStore,
	redisClient *notify.Client,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logger.Printf("INFO: Received signal: %s. Starting graceful shutdown...", receivedSignal)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	stopHealth()

	logger.Println("INFO: Attempting to gracefully shut down gRPC server...")
	stoppedGrpc := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stoppedGrpc)
	}()

	logger.Println("INFO: Attempting to gracefully shut down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("WARN: HTTP server graceful shutdown failed: %v", err)
	} else {
		logger.Println("INFO: HTTP server gracefully shut down.")
	}

	select {
	case <-stoppedGrpc:
		logger.Println("INFO: gRPC server gracefully shut down.")
	case <-shutdownCtx.Done():
		logger.Printf("WARN: gRPC server graceful shutdown timed out: %v", shutdownCtx.Err())
		grpcServer.Stop()
		logger.Println("INFO: gRPC server forced stop.")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Printf("WARN: Error closing redis connection: %v", err)
		}
	}

	if dbStore != nil {
		if err := dbStore.Close(); err != nil {
			logger.Printf("WARN: Error closing database connection: %v", err)
		}
	}

	logger.Println("INFO: Graceful shutdown sequence completed.")
}
