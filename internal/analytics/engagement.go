// Package analytics derives engagement statistics from the live event
// stream. Purely observational: it consumes the log subscription and
// exports prometheus series, never touching the world.
package analytics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zhulik/pips"
	"github.com/zhulik/pips/apply"

	"storsim/internal/core"
)

var (
	interactionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storsim_interactions_processed_total",
		Help: "The total number of successful interactions by kind",
	}, []string{"kind"})

	tootsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storsim_toots_created_total",
		Help: "The total number of toots created, boost records included",
	})
)

// interaction kinds are actions directed at existing content or
// accounts, as opposed to original posts.
var interactionKinds = map[core.ActionKind]struct{}{
	core.ActionReply:  {},
	core.ActionLike:   {},
	core.ActionBoost:  {},
	core.ActionFollow: {},
}

type EngagementCollector struct {
	Logger *slog.Logger
	Log    core.EventLog

	sub    <-chan core.EventRecord
	mu     sync.Mutex
	counts map[core.ActionKind]int64
}

func (e *EngagementCollector) Init(_ context.Context) error {
	e.Logger = e.Logger.With("component", "analytics.EngagementCollector")
	e.counts = map[core.ActionKind]int64{}
	e.sub = e.Log.Subscribe()
	return nil
}

func (e *EngagementCollector) Run(ctx context.Context) error {
	ch := make(chan pips.D[core.EventRecord])
	go func() {
		defer close(ch)
		for rec := range e.sub {
			select {
			case ch <- pips.NewD(rec):
			case <-ctx.Done():
				return
			}
		}
	}()

	return pips.New[core.EventRecord, any]().
		Then(
			apply.Each(func(_ context.Context, rec core.EventRecord) error {
				e.process(rec)
				return nil
			}),
		).
		Run(ctx, ch).
		Wait(ctx)
}

func (e *EngagementCollector) process(rec core.EventRecord) {
	if rec.Outcome != core.OutcomeSuccess || rec.Action == nil {
		return
	}

	if rec.TootID != nil {
		tootsCreated.Inc()
	}

	kind := rec.Action.Kind
	if _, ok := interactionKinds[kind]; !ok {
		return
	}
	interactionsProcessed.WithLabelValues(string(kind)).Inc()

	e.mu.Lock()
	e.counts[kind]++
	e.mu.Unlock()
}

// Counts returns a snapshot of successful interactions by kind.
func (e *EngagementCollector) Counts() map[core.ActionKind]int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := make(map[core.ActionKind]int64, len(e.counts))
	for kind, n := range e.counts {
		snapshot[kind] = n
	}
	return snapshot
}
