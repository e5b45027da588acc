package flags

import (
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

var LogLevel = &cli.StringFlag{
	Name:    "log-level",
	Aliases: []string{"l"},
	Usage:   "The level of the logs",
	Value:   "info",
	Validator: func(value string) error {
		if !slices.Contains(validLogLevels, value) {
			return fmt.Errorf("invalid log level: %s, allowed values are: %s", value, validLogLevels)
		}
		return nil
	},
	Sources: cli.EnvVars("LOG_LEVEL"),
}

var Scenario = &cli.StringFlag{
	Name:     "scenario",
	Aliases:  []string{"s"},
	Usage:    "Path to the scenario YAML file",
	Required: true,
	Sources:  cli.EnvVars("STORSIM_SCENARIO"),
}

var EventsFile = &cli.StringFlag{
	Name:    "events-file",
	Aliases: []string{"e"},
	Usage:   "Path of the JSONL event log, empty disables the file sink",
	Sources: cli.EnvVars("STORSIM_EVENTS_FILE"),
}

var Seed = &cli.UintFlag{
	Name:    "seed",
	Usage:   "RNG seed for deterministic runs, 0 picks a random seed",
	Sources: cli.EnvVars("STORSIM_SEED"),
}

var ServerURL = &cli.StringFlag{
	Name:    "server-url",
	Usage:   "Base URL of a Mastodon-compatible server, empty runs the in-memory world",
	Sources: cli.EnvVars("STORSIM_SERVER_URL"),
}

var TokensFile = &cli.StringFlag{
	Name:    "tokens-file",
	Usage:   "YAML map of account handle to bearer token, required with --server-url",
	Sources: cli.EnvVars("STORSIM_TOKENS_FILE"),
}

var MaxAttempts = &cli.IntFlag{
	Name:    "max-attempts",
	Usage:   "Retry ceiling for transient backend errors",
	Sources: cli.EnvVars("STORSIM_MAX_ATTEMPTS"),
}

var TurnTimeout = &cli.IntFlag{
	Name:    "turn-timeout",
	Usage:   "Timeout in seconds for external calls within one turn",
	Sources: cli.EnvVars("STORSIM_TURN_TIMEOUT"),
}

var MetricsAddr = &cli.StringFlag{
	Name:    "metrics-addr",
	Usage:   "Listen address of the prometheus endpoint, empty disables it",
	Sources: cli.EnvVars("STORSIM_METRICS_ADDR"),
}

var DatabaseURL = &cli.StringFlag{
	Name:    "database-url",
	Usage:   "Postgres DSN for the event archive, empty disables archiving",
	Sources: cli.EnvVars("DATABASE_URL"),
}

var NATSUrl = &cli.StringFlag{
	Name:    "nats-url",
	Aliases: []string{"n"},
	Usage:   "The URL of the NATS server, empty disables the JetStream relay",
	Sources: cli.EnvVars("NATS_URL"),
}

var NATSInit = &cli.BoolFlag{
	Name:        "nats-init",
	Aliases:     []string{"i"},
	Usage:       "Initialize the NATS server: create streams, buckets, etc.",
	DefaultText: "false",
	Value:       false,
	Sources:     cli.EnvVars("NATS_INIT"),
}
