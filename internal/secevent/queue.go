package secevent

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// TaskTypeRecord is the asynq task type carrying one security event.
const TaskTypeRecord = "secevent:record"

// Queue is the asynq queue name events are enqueued to.
const Queue = "secevents"

// Recorder accepts events without ever failing the caller.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// NopRecorder discards events. Used when recording is disabled.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, Event) {}

// Enqueuer publishes events onto the task queue. Enqueue failures are
// logged and swallowed.
type Enqueuer struct {
	Client *asynq.Client
	Logger *zerolog.Logger
}

// Record implements Recorder.
func (e Enqueuer) Record(ctx context.Context, ev Event) {
	if e.Client == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		e.warn(err, ev)
		return
	}
	task := asynq.NewTask(TaskTypeRecord, payload)
	if _, err := e.Client.EnqueueContext(ctx, task, asynq.Queue(Queue), asynq.MaxRetry(5)); err != nil {
		e.warn(err, ev)
	}
}

func (e Enqueuer) warn(err error, ev Event) {
	if e.Logger == nil {
		return
	}
	e.Logger.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("enqueue security event")
}

// NewTaskHandler returns the worker-side asynq handler persisting events.
func NewTaskHandler(store Store) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var ev Event
		if err := json.Unmarshal(task.Payload(), &ev); err != nil {
			// Malformed payloads never succeed on retry.
			return asynq.SkipRetry
		}
		return store.Insert(ctx, ev)
	}
}
