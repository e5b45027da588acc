package config

// Config carries runtime parameters parsed from CLI flags and env vars,
// see internal/cmd/flags.
type Config struct {
	LogLevel string `flag:"log-level"`

	ScenarioPath string `flag:"scenario"`
	EventsPath   string `flag:"events-file"`
	Seed         uint64 `flag:"seed"`

	// Connected mode. Empty ServerURL means simulated mode.
	ServerURL   string `flag:"server-url"`
	TokensPath  string `flag:"tokens-file"`
	MaxAttempts int    `flag:"max-attempts"`
	TurnTimeout int    `flag:"turn-timeout"`

	MetricsAddr string `flag:"metrics-addr"`
	DatabaseURL string `flag:"database-url"`
	NATSUrl     string `flag:"nats-url"`
	NATSInit    bool   `flag:"nats-init"`
}

func (c *Config) Connected() bool {
	return c.ServerURL != ""
}
