package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"caresaviour/config"
	"caresaviour/services/notification"
	"caresaviour/services/tasks"
	"caresaviour/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt is the asynq connection shared by the enqueuer and the worker.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitPushWorker runs the push delivery worker in background and returns the
// server so the caller can shut it down.
func InitPushWorker(sender notification.PushSender) *asynq.Server {
	concurrency := config.AppConfig.PushWorkerConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"notifications": 5,
				"default":       1,
			},
			Logger: utils.GetLogger().Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePushNotification, handlePushTask(sender))

	go func() {
		logger := utils.GetLogger()
		logger.Info("[PushWorker] starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("[PushWorker] failed to start worker",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("[PushWorker] max retry attempts reached, push delivery disabled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	return srv
}

func handlePushTask(sender notification.PushSender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParsePushTask(task)
		if err != nil {
			utils.GetLogger().Warn("[PushHandler] invalid payload", zap.Error(err))
			return fmt.Errorf("invalid push payload: %v: %w", err, asynq.SkipRetry)
		}

		err = sender.Send(ctx, p)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, notification.ErrNoPushTarget):
			utils.GetLogger().Debug("[PushHandler] recipient has no device", zap.String("recipient", p.Recipient))
			return nil
		default:
			utils.GetLogger().Warn("[PushHandler] failed to send push",
				zap.String("recipient", p.Recipient), zap.String("notificationId", p.NotificationID), zap.Error(err))
			return err
		}
	}
}
