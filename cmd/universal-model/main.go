package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/universal-model/universal-model/config"
	"github.com/universal-model/universal-model/logging"
)

const (
	configKey    = "config"
	itersKey     = "iters"
	consumersKey = "consumers"
	burstKey     = "burst"
	reportKey    = "report"
	tableKey     = "table"
)

func main() {
	cmd := &cli.Command{
		Name:  "universal-model",
		Usage: "Drive a universal-model store from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configKey,
				Aliases: []string{"c"},
				Usage:   "YAML or TOML config file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "demo",
				Usage:  "Run a scripted scenario through the hook, instance and slot adapters",
				Action: demo,
			},
			{
				Name:  "bench",
				Usage: "Measure the cost of a coalesced flush",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  itersKey,
						Usage: "Ticks measured per configuration",
						Value: 200,
					},
					&cli.IntSliceFlag{
						Name:  consumersKey,
						Usage: "Consumer counts to run",
						Value: []int64{1, 10, 100, 1_000},
					},
					&cli.IntSliceFlag{
						Name:  burstKey,
						Usage: "Mutations per tick to run",
						Value: []int64{1, 10, 100},
					},
					&cli.StringFlag{
						Name:  reportKey,
						Usage: "Also write a markdown report to this file",
					},
					&cli.BoolFlag{
						Name:  tableKey,
						Usage: "Print the summary table",
						Value: true,
					},
				},
				Action: bench,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the --config file, or the defaults when there is none, and
// configures logging from it.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg := config.Default()
	if path := cmd.String(configKey); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if err := logging.Configure(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
