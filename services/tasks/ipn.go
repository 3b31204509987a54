package tasks

import (
	"encoding/json"
	"time"

	"nestmart/models"

	"github.com/hibiken/asynq"
)

const TypePaymentIPN = "payment:ipn"

// NewIPNTask builds the task that verifies and applies one gateway
// notification. The task id is derived from the gateway event id when there
// is one, otherwise from tran_id and val_id. It is retained for ten minutes
// after completion, so redelivered notifications are rejected with
// asynq.ErrTaskIDConflict.
func NewIPNTask(payload models.IPNPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePaymentIPN, b)
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.TaskID(payloadTaskID(payload)),
		asynq.Retention(10 * time.Minute),
		asynq.Timeout(30 * time.Second),
	}

	return task, opts, nil
}

// IPNTaskID names the queued task for one notification.
func IPNTaskID(tranID, valID string) string {
	return TypePaymentIPN + ":" + tranID + ":" + valID
}

// EventTaskID names the queued task for a numbered gateway event.
func EventTaskID(eventID string) string {
	return TypePaymentIPN + ":event:" + eventID
}

func payloadTaskID(p models.IPNPayload) string {
	if p.EventID != "" {
		return EventTaskID(p.EventID)
	}
	return IPNTaskID(p.TranID, p.ValID)
}

// ParseIPNTask decodes a task produced by NewIPNTask.
func ParseIPNTask(task *asynq.Task) (models.IPNPayload, error) {
	var p models.IPNPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
