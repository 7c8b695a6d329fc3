package reconciler

import (
	"fmt"
	"time"
)

// Action tells the engine what to do with a key after a reconcile.
type Action struct {
	// Requeue schedules another reconcile of the same key after RequeueAfter.
	Requeue bool

	// RequeueAfter is the delay before the next reconcile. Only meaningful
	// when Requeue is set.
	RequeueAfter time.Duration
}

// RequeueAfter schedules exactly one future reconcile after d.
func RequeueAfter(d time.Duration) Action {
	return Action{Requeue: true, RequeueAfter: d}
}

// AwaitChange waits for the next watch event before reconciling again.
func AwaitChange() Action {
	return Action{}
}

func (a Action) String() string {
	if !a.Requeue {
		return "AwaitChange"
	}
	return fmt.Sprintf("RequeueAfter(%s)", a.RequeueAfter)
}
