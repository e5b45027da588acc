package cmd

import (
	"context"

	"github.com/k0kubun/pp"
	"github.com/urfave/cli/v3"

	"storsim/internal/cmd/flags"
	"storsim/internal/config"
)

var dumpScenarioCmd = &cli.Command{
	Name:  "dump-scenario",
	Usage: "Parse, validate and pretty-print a scenario file",
	Flags: []cli.Flag{
		flags.Scenario,
	},
	Action: func(_ context.Context, c *cli.Command) error {
		scenario, err := config.LoadScenario(c.String("scenario"))
		if err != nil {
			return err
		}

		pp.Println(scenario)
		return nil
	},
}
