package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/snaketips/internal/api"
	"github.com/dmitrymomot/snaketips/internal/config"
	"github.com/dmitrymomot/snaketips/internal/leaderboard"
	"github.com/dmitrymomot/snaketips/internal/realtime"
	"github.com/dmitrymomot/snaketips/internal/tips"
	"github.com/dmitrymomot/snaketips/pkg/clientip"
	"github.com/dmitrymomot/snaketips/pkg/httpserver"
	"github.com/dmitrymomot/snaketips/pkg/logger"
	"github.com/dmitrymomot/snaketips/pkg/publisher"
	"github.com/dmitrymomot/snaketips/pkg/ratelimiter"
	"github.com/dmitrymomot/snaketips/pkg/redis"
	"github.com/dmitrymomot/snaketips/pkg/requestid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.New().Error("Failed to load configuration", logger.Component("config"), logger.Error(err))
		os.Exit(1)
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Environment(), config.ServiceName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Service stopped with error", logger.Component("server"), logger.Error(err))
		stop()
		os.Exit(1)
	}

	log.Info("Application stopped")
}

// run wires the service and blocks until ctx is done or a component fails.
func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	catalogue, err := tips.Load()
	if err != nil {
		return fmt.Errorf("load tip catalogue: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := realtime.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	tipsCh, err := realtime.NewChannel[tips.Tip](realtime.Config{
		Name:     "tips",
		Capacity: cfg.Tips.MailboxCapacity,
		History:  cfg.Tips.HistorySize,
		Retry:    cfg.Tips.Retry,
	}, metrics, log)
	if err != nil {
		return fmt.Errorf("create tips channel: %w", err)
	}
	defer tipsCh.Close()

	boardCh, err := realtime.NewChannel[leaderboard.ChangeEvent](realtime.Config{
		Name:     "leaderboard",
		Capacity: cfg.Leaderboard.MailboxCapacity,
		History:  cfg.Leaderboard.HistorySize,
		Retry:    cfg.Leaderboard.Retry,
	}, metrics, log)
	if err != nil {
		return fmt.Errorf("create leaderboard channel: %w", err)
	}
	defer boardCh.Close()

	store := leaderboard.NewStore(boardCh, leaderboard.WithLogger(log))

	// Tips are broadcast through the registry directly; each session stamps
	// what it emits into the replay history.
	producer, err := publisher.NewPeriodic[tips.Tip](tipsCh.Registry(), catalogue.All(),
		publisher.WithInterval(cfg.Tips.Interval),
		publisher.WithName("tips_producer"),
		publisher.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("create tip producer: %w", err)
	}
	producer.OnBroadcast(func(tip tips.Tip, _ int) {
		metrics.TipBroadcast(string(tip.Category))
	})

	var (
		limiterStore ratelimiter.Store
		healthChecks []func(context.Context) error
	)
	redisClient, err := redis.Connect(ctx, cfg.Redis, log)
	switch {
	case errors.Is(err, redis.ErrEmptyConnectionURL):
		memStore := ratelimiter.NewMemoryStore()
		defer memStore.Close()
		limiterStore = memStore
	case err != nil:
		return fmt.Errorf("connect to redis: %w", err)
	default:
		defer redisClient.Close()
		limiterStore, err = ratelimiter.NewRedisStore(redisClient)
		if err != nil {
			return fmt.Errorf("create redis rate limit store: %w", err)
		}
		healthChecks = append(healthChecks, redis.Healthcheck(redisClient))
	}

	limiter, err := ratelimiter.NewBucket(limiterStore, ratelimiter.Config{
		Capacity:       cfg.RateLimit.Submissions,
		RefillRate:     cfg.RateLimit.Submissions,
		RefillInterval: cfg.RateLimit.Window,
	})
	if err != nil {
		return fmt.Errorf("create rate limiter: %w", err)
	}

	router := api.NewRouter(api.Deps{
		Log:           log,
		Env:           cfg.Environment(),
		Catalogue:     catalogue,
		Tips:          tipsCh,
		Leaderboard:   boardCh,
		Store:         store,
		SubmitLimiter: limiter,
		ClientIP:      clientip.New(cfg.TrustedIPHeaders...),
		Gatherer:      reg,
		HealthChecks:  healthChecks,
	})

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return srv.Run(ctx, router) })
	eg.Go(func() error { return producer.Run(ctx) })

	return eg.Wait()
}
