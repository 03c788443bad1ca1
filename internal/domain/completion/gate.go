package completion

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/checkoutkit/internal/ports"
)

// Outcome reports how an evaluation settled. Synchronous evaluations set
// Complete and leave Deferred false; deferred evaluations report Deferred
// and deliver the decision through the settle callback later.
type Outcome struct {
	Complete bool
	Deferred bool
}

// Gate evaluates whether advancing past a step is permitted. It owns all
// writes to the tracker and drops settlements that were superseded by a
// newer evaluation or an explicit invalidation, so a check that settles
// after the shopper moved on never corrupts the completion map.
type Gate struct {
	mu      sync.Mutex
	tracker *Tracker
	logger  ports.Logger
	gens    map[string]uint64
}

// NewGate creates a gate writing outcomes into tracker.
func NewGate(tracker *Tracker, logger ports.Logger) *Gate {
	return &Gate{
		tracker: tracker,
		logger:  logger,
		gens:    make(map[string]uint64),
	}
}

// Evaluate runs a step's completion check.
//
// An absent check counts as unconditionally complete. A synchronous verdict
// is recorded in the tracker before Evaluate returns. A deferred verdict
// returns Deferred and settles on a background goroutine: the outcome is
// recorded and settle is invoked exactly once, unless a newer evaluation or
// invalidation for the same step supersedes it, in which case the stale
// settlement is dropped without touching the tracker. A closed pending
// channel settles as incomplete; ctx cancellation abandons the settlement.
func (g *Gate) Evaluate(ctx context.Context, check CheckFunc, req Request, settle func(complete bool)) Outcome {
	if check == nil {
		g.tracker.Record(req.StepID, true)
		return Outcome{Complete: true}
	}

	verdict := check(ctx, req)
	if !verdict.IsDeferred() {
		g.tracker.Record(req.StepID, verdict.Done)
		g.logger.Debug(ctx, "completion check settled",
			ports.F("step", req.StepID),
			ports.F("complete", verdict.Done),
		)
		return Outcome{Complete: verdict.Done}
	}

	g.mu.Lock()
	g.gens[req.StepID]++
	gen := g.gens[req.StepID]
	g.mu.Unlock()

	g.logger.Debug(ctx, "completion check deferred", ports.F("step", req.StepID))
	go g.awaitSettlement(ctx, req.StepID, gen, verdict.Pending, settle)

	return Outcome{Deferred: true}
}

// Invalidate supersedes any outstanding deferred evaluation for the step.
// Its eventual settlement is dropped instead of applied.
func (g *Gate) Invalidate(stepID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gens[stepID]++
}

// InvalidateAll supersedes every outstanding deferred evaluation.
func (g *Gate) InvalidateAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for stepID := range g.gens {
		g.gens[stepID]++
	}
}

// awaitSettlement waits for a deferred verdict and applies it if it is
// still the newest evaluation for the step.
func (g *Gate) awaitSettlement(ctx context.Context, stepID string, gen uint64, pending <-chan bool, settle func(complete bool)) {
	select {
	case done, ok := <-pending:
		if !ok {
			done = false
		}

		g.mu.Lock()
		stale := g.gens[stepID] != gen
		g.mu.Unlock()

		if stale {
			g.logger.Debug(ctx, "dropping stale completion settlement",
				ports.F("step", stepID),
				ports.F("complete", done),
			)
			return
		}

		g.tracker.Record(stepID, done)
		g.logger.Debug(ctx, "completion check settled",
			ports.F("step", stepID),
			ports.F("complete", done),
		)
		if settle != nil {
			settle(done)
		}

	case <-ctx.Done():
		g.logger.Debug(ctx, "completion check abandoned", ports.F("step", stepID))
	}
}
