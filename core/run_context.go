package core

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/eduforge/eduforge/logging"
)

// RunContext is the explicit run-state record threaded through every stage
// call. It replaces implicit shared orchestrator state with one value whose
// sole mutator is the engine: stages read the retry budget and cancellation
// state, the engine records gaps.
//
// Cancellation is soft: Cancel stops dispatch of new specs while letting
// already-dispatched generation and validation finish or fail, so a
// cancelled run still assembles a best-effort manifest. Cancelling the
// parent context is the hard variant and also aborts in-flight capability
// calls.
type RunContext struct {
	ctx context.Context

	// RunID identifies the run in logs and the artifact store.
	RunID string
	// Logger is never nil; it defaults to the no-op logger.
	Logger logging.Logger
	// MaxAttempts bounds synthesis retries per spec (>= 1).
	MaxAttempts int
	// Calls bounds total capability calls for the run (0 = unlimited).
	Calls *CallLimiter

	done     chan struct{}
	doneOnce sync.Once

	mu   sync.Mutex
	gaps []Gap
}

// NewRunContext builds a run context around ctx. A zero maxAttempts is
// normalized to 1; a nil logger is replaced with the no-op logger.
func NewRunContext(ctx context.Context, logger logging.Logger, maxAttempts, maxCalls int) *RunContext {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RunContext{
		ctx:         ctx,
		RunID:       uuid.NewString(),
		Logger:      logger,
		MaxAttempts: maxAttempts,
		Calls:       NewCallLimiter(maxCalls),
		done:        make(chan struct{}),
	}
}

// Context returns the context governing outbound capability calls.
func (rc *RunContext) Context() context.Context { return rc.ctx }

// Cancel stops dispatch of new work without interrupting in-flight specs.
func (rc *RunContext) Cancel() {
	rc.doneOnce.Do(func() { close(rc.done) })
}

// Cancelled reports whether the run has been cancelled, softly via Cancel or
// hard via the parent context.
func (rc *RunContext) Cancelled() bool {
	select {
	case <-rc.done:
		return true
	case <-rc.ctx.Done():
		return true
	default:
		return false
	}
}

// RecordGap appends a per-spec failure to the run's gap list.
func (rc *RunContext) RecordGap(g Gap) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.gaps = append(rc.gaps, g)
}

// Gaps returns a snapshot of recorded gaps, ordered by spec index.
func (rc *RunContext) Gaps() []Gap {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]Gap, len(rc.gaps))
	copy(out, rc.gaps)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].SpecIndex < out[j-1].SpecIndex; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
