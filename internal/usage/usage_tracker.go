package usage

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Tracker counts executed steps for one session. The total is atomic so a
// monitor can sample it without taking the lock.
type Tracker struct {
	steps atomic.Int64

	mu       sync.Mutex
	byOp     map[string]int64
	failures map[string]int64
}

// NewTracker creates a zeroed tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byOp:     make(map[string]int64),
		failures: make(map[string]int64),
	}
}

// Step records one executed line attributed to op. An empty op counts only
// toward the total.
func (t *Tracker) Step(op string) {
	t.steps.Add(1)
	if op == "" {
		return
	}
	t.mu.Lock()
	t.byOp[op]++
	t.mu.Unlock()
}

// Fail records that a step attributed to op returned an error.
func (t *Tracker) Fail(op string) {
	if op == "" {
		return
	}
	t.mu.Lock()
	t.failures[op]++
	t.mu.Unlock()
}

// Steps returns the running total.
func (t *Tracker) Steps() int64 {
	return t.steps.Load()
}

// Stats returns a copy of all counters.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		Steps:       t.steps.Load(),
		ByOperation: copyCounts(t.byOp),
		Failures:    copyCounts(t.failures),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func sortOpCounts(s []OpCount) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Count != s[j].Count {
			return s[i].Count > s[j].Count
		}
		return s[i].Op < s[j].Op
	})
}
