package cron

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/srikanth-zersys/divedream-sub002/config"
	"github.com/srikanth-zersys/divedream-sub002/services/booking"
)

const TypeHoldSweep = "hold:sweep"

// InitHoldSweepWorker runs the async worker in background. It reclaims
// seats held by checkouts that never completed.
func InitHoldSweepWorker(capacity booking.CapacityManager, logger *zap.Logger) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeHoldSweep, handleHoldSweepTask(capacity, logger))

	go func() {
		log.Println("[HoldSweepWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[HoldSweepWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[HoldSweepWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go enqueueHoldSweeps(redisOpts, logger)
}

func handleHoldSweepTask(capacity booking.CapacityManager, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		released, err := capacity.SweepExpired(ctx)
		if err != nil {
			logger.Error("Hold sweep failed", zap.Error(err))
			return err
		}
		if released > 0 {
			logger.Info("Hold sweep reclaimed seats", zap.Int("holds_released", released))
		}
		return nil
	}
}

// enqueueHoldSweeps schedules a sweep task on a fixed interval. The
// task is idempotent, so overlapping runs are harmless.
func enqueueHoldSweeps(redisOpts asynq.RedisClientOpt, logger *zap.Logger) {
	client := asynq.NewClient(redisOpts)
	defer client.Close()

	interval := time.Duration(config.AppConfig.SweepIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		task := asynq.NewTask(TypeHoldSweep, nil)
		if _, err := client.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(time.Minute)); err != nil {
			logger.Error("Failed to enqueue hold sweep", zap.Error(err))
		}
	}
}
