package generation

import (
	"context"
	"sync"
	"time"
)

// UsageRecorder tracks completion calls per model per UTC day. The
// dispatcher records after every completed call and reads before trying a
// model, skipping models whose free-tier daily budget is already spent.
type UsageRecorder interface {
	// RecordUse notes one successful completion call against the model.
	// Errors are logged by the caller, never escalated.
	RecordUse(ctx context.Context, model string) error

	// CountForDay returns the recorded call count for the model on the
	// given UTC day. Days without recorded use count as zero.
	CountForDay(ctx context.Context, model string, day time.Time) (int, error)
}

const usageDayFormat = "2006-01-02"

// InMemoryUsageRecorder counts model usage in process memory. Suitable for
// tests and as a fallback when no persistent recorder is wired.
type InMemoryUsageRecorder struct {
	mu     sync.Mutex
	counts map[string]int            // totals across days
	perDay map[string]map[string]int // model -> day -> count
}

// NewInMemoryUsageRecorder creates an empty in-memory recorder.
func NewInMemoryUsageRecorder() *InMemoryUsageRecorder {
	return &InMemoryUsageRecorder{
		counts: make(map[string]int),
		perDay: make(map[string]map[string]int),
	}
}

// RecordUse implements UsageRecorder.
func (r *InMemoryUsageRecorder) RecordUse(_ context.Context, model string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts[model]++

	day := time.Now().UTC().Format(usageDayFormat)
	if r.perDay[model] == nil {
		r.perDay[model] = make(map[string]int)
	}
	r.perDay[model][day]++
	return nil
}

// CountForDay implements UsageRecorder.
func (r *InMemoryUsageRecorder) CountForDay(_ context.Context, model string, day time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.perDay[model][day.UTC().Format(usageDayFormat)], nil
}

// Count returns the number of recorded uses of the model across all days.
func (r *InMemoryUsageRecorder) Count(model string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[model]
}
