package executor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParallelism is returned when the pool is constructed with
// N < 1 (§6 "Parallelism configuration").
var ErrInvalidParallelism = errors.New("executor: parallelism must be >= 1")

// ErrQueueClosed is returned by MergedQueue.Add once the queue has
// been Close-d.
var ErrQueueClosed = errors.New("executor: queue is closed")

// ErrQueueNotDrained is returned by MergedQueue.Close when plans are
// still live.
var ErrQueueNotDrained = errors.New("executor: queue still holds live plans")

// livenessPrefix is part of the external contract (§6): the liveness
// failure message must start with this text so callers can recognize
// it without string-matching the whole message.
const livenessPrefix = "Unable to make progress running work"

// LivenessError is raised by the health monitor (§4.6) when work is
// queued but no worker is Running. It carries enough of the queue's
// diagnostics to be useful on its own, without requiring the caller to
// re-query the (by then, aborted) sources.
type LivenessError struct {
	Diagnostics []Diagnostics
	Waiting     int
	Stopped     int
}

func (e *LivenessError) Error() string {
	var b strings.Builder
	b.WriteString(livenessPrefix)
	b.WriteString(fmt.Sprintf(": %d waiting, %d stopped worker(s)", e.Waiting, e.Stopped))
	for _, d := range e.Diagnostics {
		b.WriteString(fmt.Sprintf("\n  plan %q: pending=%d blocked=%d running=%d %s",
			d.Name, d.PendingNodes, d.BlockedNodes, d.RunningNodes, d.Detail))
	}
	return b.String()
}
