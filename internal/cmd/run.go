package cmd

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"
	"resty.dev/v3"

	"storsim/internal/agents"
	"storsim/internal/analytics"
	"storsim/internal/archiving"
	"storsim/internal/cmd/flags"
	"storsim/internal/config"
	"storsim/internal/core"
	"storsim/internal/eventlog"
	"storsim/internal/metrics"
	"storsim/internal/nats"
	"storsim/internal/persistence"
	"storsim/internal/persistence/events"
	"storsim/internal/platform"
	"storsim/internal/scheduler"
	"storsim/internal/world"
	"storsim/pkg/clicfg"
	"storsim/pkg/masto"
	"storsim/pkg/retry"
)

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "Run a scenario: bounded episodes of agents acting on the platform",
	Flags: []cli.Flag{
		flags.Scenario,
		flags.EventsFile,
		flags.Seed,
		flags.ServerURL,
		flags.TokensFile,
		flags.MaxAttempts,
		flags.TurnTimeout,
		flags.MetricsAddr,
		flags.DatabaseURL,
		flags.NATSUrl,
		flags.NATSInit,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		cfg := config.Config{}
		if err := clicfg.ParseFlags(c, &cfg); err != nil {
			return err
		}

		scenario, err := config.LoadScenario(cfg.ScenarioPath)
		if err != nil {
			return err
		}

		plat, err := buildPlatform(&cfg, scenario)
		if err != nil {
			return err
		}

		services := []pal.ServiceDef{
			pal.Provide(scenario),
			pal.Provide[core.Platform](plat),
			pal.Provide[core.Decider](buildDecider(scenario)),
			pal.Provide[core.EventLog](&eventlog.Log{}),
			pal.Provide(&analytics.EngagementCollector{}),
			pal.Provide(&scheduler.Scheduler{}),
		}

		if cfg.DatabaseURL != "" {
			services = append(services,
				pal.Provide[core.DB](&persistence.DB{}),
				pal.Provide[core.EventRepository](&events.Repository{}),
				pal.Provide(&archiving.EventArchiver{}),
				pal.Provide(&metrics.Collector{}),
			)
		}
		if cfg.NATSUrl != "" {
			services = append(services,
				pal.Provide(&nats.NATS{}),
				pal.Provide(&archiving.Relay{}),
			)
		}
		if cfg.MetricsAddr != "" {
			services = append(services, pal.Provide(&metrics.Server{}))
		}

		return boot(ctx, &cfg, services...)
	},
}

func buildPlatform(cfg *config.Config, scenario *config.Scenario) (core.Platform, error) {
	if !cfg.Connected() {
		w := world.New(scenario.Accounts(), time.Now)
		return platform.NewSimulated(w, scenario.ObservationLimit), nil
	}

	tokens, err := config.LoadTokens(cfg.TokensPath)
	if err != nil {
		return nil, err
	}

	policy := retry.DefaultPolicy
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}

	client := masto.NewClient(cfg.ServerURL, &masto.ClientConfig{
		TransportSettings:   masto.DefaultConfig.TransportSettings,
		ResponseMiddlewares: []resty.ResponseMiddleware{masto.MetricMiddleware},
	})
	return platform.NewConnected(client, tokens, policy, scenario.ObservationLimit), nil
}

// buildDecider wires the scenario scripts as the reasoner. An external
// reasoner would be plugged in here instead.
func buildDecider(scenario *config.Scenario) core.Decider {
	scripts := map[core.AccountID][]string{}
	for _, agent := range scenario.Agents {
		scripts[core.AccountID(agent.Name)] = agent.Script
	}
	return agents.NewScripted(scripts)
}
