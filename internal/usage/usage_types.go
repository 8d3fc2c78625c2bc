package usage

// Stats is a point-in-time copy of a Tracker's counters.
type Stats struct {
	// Steps counts every command line the session executed.
	Steps int64 `json:"steps"`

	// ByOperation counts executions per command word.
	ByOperation map[string]int64 `json:"by_operation"`

	// Failures counts executions that returned an error, per command word.
	Failures map[string]int64 `json:"failures"`
}

// Top returns the n most used operations, most used first. Ties break by name.
func (s Stats) Top(n int) []OpCount {
	out := make([]OpCount, 0, len(s.ByOperation))
	for op, c := range s.ByOperation {
		out = append(out, OpCount{Op: op, Count: c})
	}
	sortOpCounts(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// OpCount pairs an operation with its execution count.
type OpCount struct {
	Op    string `json:"op"`
	Count int64  `json:"count"`
}
