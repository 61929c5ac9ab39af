package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"

	"vodstream/internal/app"
	"vodstream/internal/media"
	"vodstream/internal/media/ffmpeg"
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

	shutdownTracer, err := telemetry.Init(context.Background(), "vodstream-worker")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "vodstream-worker"),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("mediaRoot", cfg.MediaRoot),
		slog.Int("concurrency", cfg.WorkerCount),
		slog.Duration("encodeTimeout", cfg.EncodeTimeout),
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

	encoder := ffmpeg.New(cfg.FFMPEGPath, cfg.FFProbePath,
		ffmpeg.WithEncodeTimeout(cfg.EncodeTimeout),
		ffmpeg.WithProbeTimeout(cfg.ProbeTimeout),
		ffmpeg.WithThumbnailTimestamp(cfg.ThumbnailAt),
		ffmpeg.WithLogger(logger),
	)

	worker := app.Worker{
		Queue: queue,
		Process: usecase.ProcessVideo{
			Repo:     repo,
			Locator:  locator,
			Encoder:  encoder,
			Notifier: redisq.NewVideoEvents(redisClient, logger),
			Logger:   logger,
		},
		Logger:      logger,
		Concurrency: cfg.WorkerCount,
		// One job runs up to four sequential encodes plus probing.
		JobTimeout: 5 * cfg.EncodeTimeout,
		StaleAfter: cfg.PendingTTL,
	}

	logger.Info("worker pool started")
	if err := worker.Run(rootCtx); err != nil {
		logger.Error("worker pool error", slog.String("error", err.Error()))
	}

	if err := redisClient.Close(); err != nil {
		logger.Warn("redis close error", slog.String("error", err.Error()))
	}
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		logger.Warn("mongo disconnect error", slog.String("error", err.Error()))
	}
	logger.Info("worker stopped")
}
