package scheduler

import (
	"container/heap"
	"time"

	"github.com/fleetcore/telemetry-core/internal/types"
)

// scheduledPID mirrors the package's Scheduled PID: a PID plus its current
// target rate, next-due instant, consecutive-failure counter and priority.
type scheduledPID struct {
	pid       types.PID
	rateHz    float64
	nextDue   time.Time
	failures  int
	index     int // heap.Interface bookkeeping
}

func (s *scheduledPID) interval() time.Duration {
	return time.Duration(float64(time.Second) / s.rateHz)
}

// pidHeap is a min-heap keyed by (next_due, -priority): earliest-due
// first, ties broken by higher base priority . The
// container/heap-over-a-slice shape is grounded on it's
// eventloop package's timerHeap (eventloop/loop.go).
type pidHeap []*scheduledPID

func (h pidHeap) Len() int { return len(h) }

func (h pidHeap) Less(i, j int) bool {
	if !h[i].nextDue.Equal(h[j].nextDue) {
		return h[i].nextDue.Before(h[j].nextDue)
	}
	return h[i].pid.BasePriority > h[j].pid.BasePriority
}

func (h pidHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *pidHeap) Push(x any) {
	item := x.(*scheduledPID)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *pidHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

var _ heap.Interface = (*pidHeap)(nil)
