package addrlist

import (
	"context"
	"time"
)

// State is a step of a synchronization run.
type State int

const (
	StateIdle State = iota
	StateClearing
	StateAdding
	StatePausing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateClearing:
		return "clearing"
	case StateAdding:
		return "adding"
	case StatePausing:
		return "pausing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Transition describes entering a state. Batch is 1-based and only set for
// adding and pausing.
type Transition struct {
	State   State
	Batch   int
	Batches int
	Size    int
}

// Pacer suspends the run between batches.
type Pacer interface {
	Wait(ctx context.Context, d time.Duration) error
}

// TimerPacer waits on a timer. It returns early only when ctx is cancelled.
type TimerPacer struct{}

func (TimerPacer) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
