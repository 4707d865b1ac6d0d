package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/visitor-function/internal/lib/job"
	"github.com/deppfellow/visitor-function/internal/model"
	"github.com/hibiken/asynq"
)

// enqueuer is the part of asynq.Client the queue repository needs.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueRepository hands records to the background job queue. The worker
// writes them through the wrapped repository.
type QueueRepository struct {
	client enqueuer
	next   VisitorRepository
}

func NewQueueRepository(client enqueuer, next VisitorRepository) *QueueRepository {
	return &QueueRepository{client: client, next: next}
}

func (r *QueueRepository) Save(ctx context.Context, visitor model.Visitor) error {
	task, err := job.NewPersistVisitorTask(visitor)
	if err != nil {
		return fmt.Errorf("build persist task: %w", err)
	}

	if _, err := r.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue visitor %s: %w", visitor.ID, err)
	}
	return nil
}

func (r *QueueRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

func (r *QueueRepository) Close(ctx context.Context) error {
	return r.next.Close(ctx)
}

func (r *QueueRepository) Driver() string {
	return r.next.Driver()
}
