// Package delay provides the delay node executor: an in-memory, capped
// suspension of the current execution.
package delay

import (
	"context"
	"time"

	"github.com/flowd-sh/flowd/pkg/models"
)

// MaxDelay caps the real sleep regardless of the configured duration. The
// wait is not durable: a process crash during a delay loses the remaining
// time.
const MaxDelay = 30 * time.Second

type DelayNode struct {
	// sleep is swappable so tests don't block
	sleep func(ctx context.Context, d time.Duration) error
}

func NewDelayNode() *DelayNode {
	return &DelayNode{sleep: sleepContext}
}

// Execute converts {duration, unit} to a wait time, sleeps for at most
// MaxDelay, and produces no output variables.
func (n *DelayNode) Execute(ctx context.Context, execCtx *models.ExecutionContext, node *models.Node) (map[string]any, error) {
	wait := parseDuration(node.Data)
	if wait > MaxDelay {
		wait = MaxDelay
	}

	if wait > 0 {
		if err := n.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	return map[string]any{}, nil
}

func parseDuration(data map[string]any) time.Duration {
	var amount float64

	switch v := data["duration"].(type) {
	case float64:
		amount = v
	case int:
		amount = float64(v)
	}

	if amount <= 0 {
		return 0
	}

	unit, _ := data["unit"].(string)

	var per time.Duration

	switch unit {
	case "seconds", "":
		per = time.Second
	case "minutes":
		per = time.Minute
	case "hours":
		per = time.Hour
	case "days":
		per = 24 * time.Hour
	default:
		per = time.Second
	}

	return time.Duration(amount * float64(per))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
