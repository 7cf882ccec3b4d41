package secevent

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func TestNewBuildsDistinctEvents(t *testing.T) {
	a := New(KindPriceDiscrepancy, "user-1", "203.0.113.7", map[string]any{"serverTotal": 100.0})
	b := New(KindPriceDiscrepancy, "user-1", "203.0.113.7", nil)

	require.NotEmpty(t, a.ID)
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, KindPriceDiscrepancy, a.Kind)
	require.False(t, a.OccurredAt.IsZero())
	require.Equal(t, "UTC", a.OccurredAt.Location().String())
}

func TestEnqueuerWithoutClientIsSilent(t *testing.T) {
	// Must not panic and must not block the caller.
	Enqueuer{}.Record(context.Background(), New(KindRateLimited, "", "203.0.113.7", nil))
}

func TestNopRecorder(t *testing.T) {
	NopRecorder{}.Record(context.Background(), New(KindValidationRejected, "user-1", "", nil))
}

func TestTaskHandlerSkipsMalformedPayload(t *testing.T) {
	handler := NewTaskHandler(Store{})

	task := asynq.NewTask(TaskTypeRecord, []byte("{not json"))
	err := handler(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestTaskHandlerRequiresStorePool(t *testing.T) {
	handler := NewTaskHandler(Store{})

	ev := New(KindValidationRejected, "user-1", "", nil)
	task := asynq.NewTask(TaskTypeRecord, mustJSON(t, ev))
	err := handler(context.Background(), task)
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)
}
