// Package eventlog is the append-only record of every attempted action
// in a run. Records get a strictly increasing sequence number, go to a
// JSONL file for offline analytics, and fan out to live subscribers
// (the archiver).
package eventlog

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"storsim/internal/config"
	"storsim/internal/core"
)

var eventsLogged = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storsim_events_logged_total",
	Help: "The total number of event log records by action kind and outcome",
}, []string{"kind", "outcome"})

const subscriberBuffer = 256

type Log struct {
	Logger *slog.Logger
	Config *config.Config

	mu          sync.Mutex
	seq         int64
	runID       string
	file        *os.File
	subscribers []chan core.EventRecord
}

func (l *Log) Init(_ context.Context) error {
	l.Logger = l.Logger.With("component", "eventlog.Log")
	l.runID = uuid.NewString()

	if l.Config.EventsPath != "" {
		file, err := os.OpenFile(l.Config.EventsPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		l.file = file
	}

	return nil
}

func (l *Log) Shutdown(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, ch := range l.subscribers {
		close(ch)
	}
	l.subscribers = nil

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Append stamps and records rec, returning the stored form. Records are
// totally ordered by Seq in execution order.
func (l *Log) Append(rec core.EventRecord) core.EventRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	rec.Seq = l.seq
	rec.RunID = l.runID
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	kind := "none"
	if rec.Action != nil {
		kind = string(rec.Action.Kind)
	}
	eventsLogged.WithLabelValues(kind, string(rec.Outcome)).Inc()

	if l.file != nil {
		line, err := json.Marshal(rec)
		if err == nil {
			_, err = l.file.Write(append(line, '\n'))
		}
		if err != nil {
			l.Logger.Error("failed to write event record", "seq", rec.Seq, "error", err)
		}
	}

	for _, ch := range l.subscribers {
		select {
		case ch <- rec:
		default:
			l.Logger.Warn("subscriber lagging, dropping event", "seq", rec.Seq)
		}
	}

	return rec
}

// Subscribe returns a live feed of records appended after the call. The
// channel closes on shutdown.
func (l *Log) Subscribe() <-chan core.EventRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan core.EventRecord, subscriberBuffer)
	l.subscribers = append(l.subscribers, ch)
	return ch
}
