package job

import (
	"encoding/json"
	"time"

	"github.com/deppfellow/visitor-function/internal/model"
	"github.com/hibiken/asynq"
)

// Queue names.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// TaskPersistVisitor is the job type name stored in Redis.
const TaskPersistVisitor = "visitor:persist"

// PersistVisitorPayload is the JSON payload of a persist task. It is the
// visitor document itself.
type PersistVisitorPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewPersistVisitorTask builds the task that writes one visitor record.
//
// The task id is the visitor id, so enqueueing the same record twice is
// rejected by Asynq instead of producing a second write.
func NewPersistVisitorTask(visitor model.Visitor) (*asynq.Task, error) {
	payload, err := json.Marshal(PersistVisitorPayload{
		ID:   visitor.ID,
		Name: visitor.Name,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskPersistVisitor,
		payload,
		asynq.TaskID(visitor.ID),
		asynq.MaxRetry(5),
		asynq.Queue(QueueCritical),
		asynq.Timeout(30*time.Second),
	), nil
}
