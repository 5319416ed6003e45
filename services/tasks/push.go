package tasks

import (
	"context"
	"encoding/json"
	"time"

	"caresaviour/models"

	"github.com/hibiken/asynq"
)

const TypePushNotification = "notification:push"

// NewPushTask wraps a push payload. Delivery is best-effort so retries are few.
func NewPushTask(payload models.PushPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePushNotification, b)
	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(30 * time.Second),
		asynq.Queue("notifications"),
	}
	return task, opts, nil
}

// ParsePushTask decodes a task built by NewPushTask.
func ParsePushTask(task *asynq.Task) (models.PushPayload, error) {
	var p models.PushPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}

// AsynqPushEnqueuer queues push deliveries on asynq.
type AsynqPushEnqueuer struct {
	client *asynq.Client
}

func NewAsynqPushEnqueuer(client *asynq.Client) *AsynqPushEnqueuer {
	return &AsynqPushEnqueuer{client: client}
}

func (e *AsynqPushEnqueuer) EnqueuePush(ctx context.Context, payload models.PushPayload) error {
	task, opts, err := NewPushTask(payload)
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task, opts...)
	return err
}
