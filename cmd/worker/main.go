// Package main is the entry point for the shopledger background worker.
// It raises low-stock and overdue notifications, relays them from the outbox
// to Redis subscribers and prunes idempotency keys.
//
// Usage: worker run     # jobs every WORKER_INTERVAL, relay every WORKER_RELAY_INTERVAL
//
//	worker once    # run every job a single time and exit
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shopledger/internal/config"
	"shopledger/internal/domain/notification"
	"shopledger/internal/infrastructure/cache"
	"shopledger/internal/infrastructure/storage/postgres"
	"shopledger/internal/infrastructure/storage/postgres/report_repo"
	"shopledger/pkg/logger"
)

const jobsLockKey = "worker:jobs"

func main() {
	root := &cobra.Command{
		Use:           "worker",
		Short:         "shopledger background jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the jobs on a schedule until interrupted",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withWorker(cmd.Context(), func(ctx context.Context, w *Worker) error {
					w.Run(ctx)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "once",
			Short: "Run every job one time",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withWorker(cmd.Context(), func(ctx context.Context, w *Worker) error {
					return w.Tick(ctx)
				})
			},
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

// withWorker builds the worker from config and hands it to fn.
func withWorker(ctx context.Context, fn func(ctx context.Context, w *Worker) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	logger.SetDefault(log)
	ctx = logger.WithLogger(ctx, log.WithComponent("worker"))

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.URL))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	txm := postgres.NewTxManager(pool)

	w := &Worker{
		idempotency:   postgres.NewIdempotencyStore(txm, postgres.DefaultIdempotencyTTL),
		interval:      cfg.Worker.Interval,
		relayInterval: cfg.Worker.RelayInterval,
		lockTTL:       cfg.Worker.LockTTL,
	}

	redisClient, err := cache.NewClient(ctx, cache.Config{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn(ctx, "redis unavailable, running jobs without a lock and leaving the outbox pending", "error", err)
	} else {
		defer redisClient.Close()
		w.locker = redisClient
		w.relay = postgres.NewOutboxRelay(txm, postgres.NewNotificationHandler(redisClient.Publisher()), 100)
	}

	svc := notification.NewService(postgres.NewNotificationRepo(txm), txm, postgres.NewOutboxPublisher(txm))
	w.jobs = notification.NewJobs(svc, report_repo.NewNotificationSource(txm), cfg.Worker.OverdueAfter)

	return fn(ctx, w)
}

// Locker serializes job runs across worker instances.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}

// Worker runs the periodic jobs.
type Worker struct {
	jobs          *notification.Jobs
	idempotency   *postgres.IdempotencyStore
	relay         *postgres.OutboxRelay
	locker        Locker
	interval      time.Duration
	relayInterval time.Duration
	lockTTL       time.Duration
}

// Run ticks immediately and then every interval until ctx is done.
// The outbox is relayed on its own, shorter interval.
func (w *Worker) Run(ctx context.Context) {
	logger.Info(ctx, "worker started", "interval", w.interval, "relay_interval", w.relayInterval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	relayTicker := time.NewTicker(w.relayInterval)
	defer relayTicker.Stop()

	if err := w.Tick(ctx); err != nil {
		logger.Error(ctx, "worker tick failed", "error", err)
	}
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "worker stopped")
			return
		case <-ticker.C:
			if err := w.Tick(ctx); err != nil {
				logger.Error(ctx, "worker tick failed", "error", err)
			}
		case <-relayTicker.C:
			if err := w.relayOutbox(ctx); err != nil {
				logger.Error(ctx, "outbox relay failed", "error", err)
			}
		}
	}
}

// Tick runs every job once and then relays what they produced. Another
// instance holding the lock turns the jobs into a no-op.
func (w *Worker) Tick(ctx context.Context) error {
	var err error
	if w.locker == nil {
		err = w.runJobs(ctx)
	} else {
		err = w.locker.WithLock(ctx, jobsLockKey, w.lockTTL, w.runJobs)
		if errors.Is(err, cache.ErrLocked) {
			logger.Info(ctx, "jobs already running elsewhere, skipping")
			err = nil
		}
	}
	return errors.Join(err, w.relayOutbox(ctx))
}

// relayOutbox publishes pending notifications. Rows are claimed with
// SKIP LOCKED, so it needs no lock of its own.
func (w *Worker) relayOutbox(ctx context.Context) error {
	if w.relay == nil {
		return nil
	}
	published, err := w.relay.Drain(ctx)
	if published > 0 {
		logger.Info(ctx, "outbox relayed", "published", published)
	}
	return err
}

func (w *Worker) runJobs(ctx context.Context) error {
	start := time.Now()
	jobsErr := w.jobs.RunAll(ctx)

	removed, err := w.idempotency.CleanupExpired(ctx)
	if err != nil {
		return errors.Join(jobsErr, err)
	}
	logger.Info(ctx, "jobs finished", "idempotency_keys_removed", removed, "duration", time.Since(start))
	return jobsErr
}
