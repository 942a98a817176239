package delay

import (
	"context"
	"testing"
	"time"

	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want time.Duration
	}{
		{name: "seconds", data: map[string]any{"duration": float64(5), "unit": "seconds"}, want: 5 * time.Second},
		{name: "minutes", data: map[string]any{"duration": float64(2), "unit": "minutes"}, want: 2 * time.Minute},
		{name: "hours", data: map[string]any{"duration": float64(1), "unit": "hours"}, want: time.Hour},
		{name: "days", data: map[string]any{"duration": float64(1), "unit": "days"}, want: 24 * time.Hour},
		{name: "default unit is seconds", data: map[string]any{"duration": float64(3)}, want: 3 * time.Second},
		{name: "missing duration", data: map[string]any{}, want: 0},
		{name: "negative duration", data: map[string]any{"duration": float64(-1)}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDuration(tt.data))
		})
	}
}

func TestDelayNode_Execute_CapsSleep(t *testing.T) {
	var slept time.Duration

	node := NewDelayNode()
	node.sleep = func(_ context.Context, d time.Duration) error {
		slept = d

		return nil
	}

	// 2 days, far beyond the cap
	output, err := node.Execute(context.Background(), &models.ExecutionContext{}, &models.Node{
		ID:   "d1",
		Type: models.NodeTypeDelay,
		Data: map[string]any{"duration": float64(2), "unit": "days"},
	})
	require.NoError(t, err)

	assert.Equal(t, MaxDelay, slept)
	assert.Empty(t, output)
}

func TestDelayNode_Execute_CancelledContext(t *testing.T) {
	node := NewDelayNode()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := node.Execute(ctx, &models.ExecutionContext{}, &models.Node{
		ID:   "d1",
		Type: models.NodeTypeDelay,
		Data: map[string]any{"duration": float64(10), "unit": "seconds"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
