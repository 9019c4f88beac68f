package queue

import (
	"context"

	"github.com/hibiken/asynq"

	"resource-scheduler/core/config"
	"resource-scheduler/core/constants"
	"resource-scheduler/core/logger"
	"resource-scheduler/modules/calendar/service"
)

// Queue owns the asynq client and server for background tasks.
type Queue struct {
	client *asynq.Client
	server *asynq.Server
}

func New(cfg config.RedisConfig) *Queue {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	return &Queue{
		client: asynq.NewClient(redisOpt),
		server: asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: 2,
		}),
	}
}

// Start registers the task handlers and runs the worker in the background.
func (q *Queue) Start(calendarSvc service.CalendarService) error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(constants.TaskMigrateTokens, func(ctx context.Context, t *asynq.Task) error {
		migrated, err := calendarSvc.MigrateLegacyTokens(ctx)
		if err != nil {
			logger.Error("Queue:MigrateTokens:Error", "error", err, "migrated", migrated)
			return err
		}
		logger.Info("Queue:MigrateTokens:Done", "migrated", migrated)
		return nil
	})
	return q.server.Start(mux)
}

// EnqueueTokenMigration schedules the one-time plaintext token migration.
// Idempotent: re-running on an already migrated table is a no-op.
func (q *Queue) EnqueueTokenMigration() error {
	task := asynq.NewTask(constants.TaskMigrateTokens, nil)
	info, err := q.client.Enqueue(task, asynq.MaxRetry(3))
	if err != nil {
		return err
	}
	logger.Info("Queue:EnqueueTokenMigration", "task_id", info.ID, "queue", info.Queue)
	return nil
}

func (q *Queue) Shutdown() {
	q.server.Shutdown()
	if err := q.client.Close(); err != nil {
		logger.Warn("Queue:Close:Error", "error", err)
	}
}
