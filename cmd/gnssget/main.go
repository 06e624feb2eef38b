// gnssget downloads GNSS observations, navigation data and products from the IGS
// archives and stores them in a local directory tree.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/de-bkg/gnssget/pkg/tools"
	"github.com/urfave/cli/v2"
)

const version = "0.3.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "gnssget",
		Usage:   "download GNSS data and products from the IGS archives",
		Version: version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Value:   1,
				Usage:   "number of parallel downloads",
				EnvVars: []string{"GNSSGET_WORKERS"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Value:   tools.DefaultTimeout,
				Usage:   "timeout for each wget, gzip and crx2rnx invocation",
				EnvVars: []string{"GNSSGET_TIMEOUT"},
			},
			&cli.StringFlag{
				Name:    "metrics-textfile",
				Usage:   "write metrics to `FILE` for the node exporter",
				EnvVars: []string{"GNSSGET_METRICS_TEXTFILE"},
			},
			&cli.StringFlag{
				Name:    "pushgateway",
				Usage:   "push metrics to the Prometheus Pushgateway at `URL`",
				EnvVars: []string{"GNSSGET_PUSHGATEWAY"},
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "log warnings and errors only",
				EnvVars: []string{"GNSSGET_QUIET"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "download everything configured",
				ArgsUsage: "CONFIG",
				Action:    runAction,
			},
			{
				Name:      "resolve",
				Usage:     "print the remote location and local file of every download without downloading",
				ArgsUsage: "CONFIG",
				Action:    resolveAction,
			},
			{
				Name:      "watch",
				Usage:     "download the configured products on a schedule",
				ArgsUsage: "CONFIG",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "schedule",
						Value:   "0 30 3 * * *",
						Usage:   "cron spec with seconds field",
						EnvVars: []string{"GNSSGET_SCHEDULE"},
					},
					&cli.IntFlag{
						Name:  "latency",
						Value: 1,
						Usage: "download the day this many days before today",
					},
					&cli.IntFlag{
						Name:  "ndays",
						Value: 1,
						Usage: "number of days ending with today minus latency",
					},
				},
				Action: watchAction,
			},
			{
				Name:      "gpsweek",
				Usage:     "print day of year, GPS week and MJD of a date",
				ArgsUsage: "YYYY-MM-DD|YYYY-DDD",
				Action:    gpsweekAction,
			},
		},
	}
}

// configArg returns the single CONFIG argument.
func configArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit(fmt.Sprintf("%s needs exactly one configuration file", c.Command.Name), 2)
	}
	return c.Args().First(), nil
}

func timeout(c *cli.Context) time.Duration {
	if d := c.Duration("timeout"); d > 0 {
		return d
	}
	return tools.DefaultTimeout
}
