// Package nats owns the JetStream connection used by the archival
// relay. The stream holds every event record of a run; the KV bucket
// tracks the last relayed sequence per run so restarts don't re-publish.
package nats

import (
	"context"
	"log/slog"
	"time"

	libnats "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"storsim/internal/config"
)

const appName = "storsim"

type NATS struct {
	Logger *slog.Logger
	Config *config.Config

	JS jetstream.JetStream
	KV jetstream.KeyValue
}

func (n *NATS) Init(ctx context.Context) error {
	n.Logger = n.Logger.With("component", "nats.NATS")

	url := n.Config.NATSUrl
	if url == "" {
		url = libnats.DefaultURL
	}

	nc, err := libnats.Connect(url)
	if err != nil {
		return err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return err
	}

	n.JS = js

	if n.Config.NATSInit {
		if err := n.initNATS(ctx); err != nil {
			return err
		}
	}

	kv, err := js.KeyValue(ctx, appName)
	if err != nil {
		return err
	}
	n.KV = kv

	return nil
}

func (n *NATS) HealthCheck(context.Context) error {
	_, err := n.JS.Conn().RTT()
	return err
}

func (n *NATS) Shutdown(context.Context) error {
	return n.JS.Conn().Drain()
}

func (n *NATS) initNATS(ctx context.Context) error {
	n.Logger.Info("Initializing NATS")
	_, err := n.JS.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     appName,
		Subjects: []string{appName + ".*"},
		MaxAge:   24 * time.Hour,
	})
	if err != nil {
		return err
	}
	n.Logger.Info("Stream created or updated", "name", appName)

	_, err = n.JS.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: appName,
	})
	if err != nil {
		return err
	}
	n.Logger.Info("KeyValue created or updated", "name", appName)

	return nil
}
