// Package archiving drains the live event log into durable sinks. The
// sinks only consume the ordered subscription channel; they never touch
// the world or the scheduler.
package archiving

import (
	"context"
	"log/slog"
	"time"

	"storsim/internal/core"
	"storsim/pkg/async"
)

const (
	batchSize    = 10
	batchTimeout = time.Second
)

// EventArchiver batches event records and inserts them into postgres.
type EventArchiver struct {
	Logger *slog.Logger
	Log    core.EventLog
	Repo   core.EventRepository

	sub <-chan core.EventRecord
}

// Init subscribes eagerly so no record appended between startup and Run
// is lost.
func (a *EventArchiver) Init(_ context.Context) error {
	a.Logger = a.Logger.With("component", "archiving.EventArchiver")
	a.sub = a.Log.Subscribe()
	return nil
}

func (a *EventArchiver) Run(ctx context.Context) error {
	batches := async.Batcher(ctx, a.sub, batchSize, batchTimeout)

	for batch := range batches {
		if err := a.Repo.Insert(ctx, batch...); err != nil {
			return err
		}
		a.Logger.Debug("archived batch", "size", len(batch))
	}
	return nil
}
