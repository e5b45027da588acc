package cmd

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"storsim/internal/cmd/flags"
	"storsim/internal/config"
)

const VERSION = "0.1.0"

var cmd = &cli.Command{
	Name:    "storsim",
	Usage:   "Storsim runs agent-driven social platform simulations",
	Version: VERSION,
	Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
		if err := initLogger(c.String("log-level")); err != nil {
			return ctx, err
		}
		return ctx, nil
	},
	Flags: []cli.Flag{
		flags.LogLevel,
	},
	Commands: []*cli.Command{
		runCmd,
		dumpScenarioCmd,
	},
}

func Run() {
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func boot(ctx context.Context, cfg *config.Config, services ...pal.ServiceDef) error {
	services = append(services, pal.Provide(cfg))

	return pal.New(services...).
		InjectSlog().
		InitTimeout(2*time.Second).
		HealthCheckTimeout(1*time.Second).
		ShutdownTimeout(10*time.Second).
		Run(ctx, syscall.SIGINT, syscall.SIGTERM)
}
