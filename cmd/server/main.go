package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"

	apihttp "vodstream/internal/api/http"
	"vodstream/internal/app"
	"vodstream/internal/media"
	"vodstream/internal/metrics"
	"vodstream/internal/queue/redisq"
	mongorepo "vodstream/internal/repository/mongo"
	"vodstream/internal/telemetry"
	"vodstream/internal/usecase"
)

func main() {
	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "vodstream-api")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "vodstream-api"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.String("mediaRoot", cfg.MediaRoot),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	defer cancel()

	mongoClient, err := mongorepo.Connect(ctx, cfg.MongoURI, options.Client().SetMonitor(otelmongo.NewMonitor()))
	if err != nil {
		logger.Error("mongo connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("mongo ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repo := mongorepo.NewRepository(mongoClient, cfg.MongoDatabase, cfg.MongoCollection)
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warn("mongo ensure indexes failed", slog.String("error", err.Error()))
	}

	redisClient, err := redisq.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("redis connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	queue := redisq.New(redisClient)

	locator, err := media.NewLocator(cfg.MediaRoot)
	if err != nil {
		logger.Error("media root invalid", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dispatch := usecase.DispatchProcessing{Queue: queue, PendingTTL: cfg.PendingTTL, Logger: logger}
	handler := apihttp.NewServer(repo, locator,
		apihttp.WithLogger(logger),
		apihttp.WithCreateVideo(usecase.CreateVideo{Repo: repo, Dispatch: dispatch, Now: time.Now}),
		apihttp.WithUpdateVideo(usecase.UpdateVideo{Repo: repo, Dispatch: dispatch}),
		apihttp.WithDeleteVideo(usecase.DeleteVideo{Repo: repo, Locator: locator, Logger: logger}),
		apihttp.WithReprocessVideo(usecase.ReprocessVideo{Repo: repo, Dispatch: dispatch}),
		apihttp.WithQueue(queue),
		apihttp.WithAllowedOrigins(cfg.CORSAllowedOrigins),
	)

	go updateQueueMetrics(rootCtx, queue)
	go broadcastCatalog(rootCtx, handler)
	// Relay worker-side status changes to connected WebSocket clients.
	go redisq.NewVideoEvents(redisClient, logger).Listen(rootCtx, handler.NotifyVideo)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("server started", slog.String("addr", cfg.HTTPAddr))

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	handler.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", slog.String("error", err.Error()))
	}
	if err := redisClient.Close(); err != nil {
		logger.Warn("redis close error", slog.String("error", err.Error()))
	}
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		logger.Warn("mongo disconnect error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

func broadcastCatalog(ctx context.Context, handler *apihttp.Server) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			handler.BroadcastVideos(ctx)
		}
	}
}

func updateQueueMetrics(ctx context.Context, queue *redisq.Queue) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			depth, err := queue.Depth(ctx)
			if err != nil {
				continue
			}
			metrics.QueueDepth.Set(float64(depth))
		}
	}
}
