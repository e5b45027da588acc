package archiving

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	libnats "github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zhulik/pips"
	"github.com/zhulik/pips/apply"

	"storsim/internal/core"
	"storsim/internal/nats"
)

var eventsRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storsim_events_relayed_total",
	Help: "The total number of event records published to JetStream",
}, []string{"kind", "outcome"})

// Relay republishes event records to NATS JetStream. The msg ID header
// makes re-publishes after a restart deduplicate server-side; the KV
// cursor records the last relayed seq per run.
type Relay struct {
	Logger *slog.Logger
	Log    core.EventLog
	NATS   *nats.NATS

	sub <-chan core.EventRecord
}

func (r *Relay) Init(_ context.Context) error {
	r.Logger = r.Logger.With("component", "archiving.Relay")
	r.sub = r.Log.Subscribe()
	return nil
}

func (r *Relay) Run(ctx context.Context) error {
	ch := make(chan pips.D[core.EventRecord])
	go func() {
		defer close(ch)
		for rec := range r.sub {
			select {
			case ch <- pips.NewD(rec):
			case <-ctx.Done():
				return
			}
		}
	}()

	return pips.New[core.EventRecord, any]().
		Then(apply.Each(countRecord)).
		Then(
			apply.Map(func(ctx context.Context, rec core.EventRecord) (any, error) {
				return nil, r.publish(ctx, rec)
			}),
		).
		Run(ctx, ch).
		Wait(ctx)
}

func (r *Relay) publish(ctx context.Context, rec core.EventRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	msgID := fmt.Sprintf("%s-%d", rec.RunID, rec.Seq)

	msg := &libnats.Msg{
		Subject: "storsim.event",
		Data:    payload,
		Header: libnats.Header{
			libnats.MsgIdHdr: []string{msgID},
		},
	}
	if _, err = r.NATS.JS.PublishMsg(ctx, msg); err != nil {
		return err
	}
	if _, err = r.NATS.KV.Put(ctx, "last_seq:"+rec.RunID, []byte(fmt.Sprintf("%d", rec.Seq))); err != nil {
		return err
	}

	r.Logger.Debug("relayed event", "id", msgID)
	return nil
}

func countRecord(_ context.Context, rec core.EventRecord) error {
	kind := "none"
	if rec.Action != nil {
		kind = string(rec.Action.Kind)
	}
	eventsRelayed.WithLabelValues(kind, string(rec.Outcome)).Inc()
	return nil
}
