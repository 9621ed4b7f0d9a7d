// Package main is the wlf command line tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	flagDebug     = "debug"
	flagConfig    = "config"
	flagLAS       = "las"
	flagWaveforms = "waveforms"
	flagStart     = "start"
	flagCount     = "count"
	flagQuiet     = "quiet"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	var logger *zap.Logger

	return &cli.App{
		Name:  "wlf",
		Usage: "inspect, create and convert WLF LIDAR files",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.BoolFlag{
				Name:    flagQuiet,
				Aliases: []string{"q"},
				Usage:   "don't show progress",
			},
		},
		Before: func(c *cli.Context) (err error) {
			if c.Bool(flagDebug) {
				logger, err = zap.NewDevelopment()
				if err != nil {
					return err
				}
			} else {
				logger = zap.NewNop()
			}

			return nil
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				_ = logger.Sync()
			}

			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "print the header and record layout of a file",
				ArgsUsage: "FILE",
				Action: func(c *cli.Context) error {
					return info(c, logger)
				},
			},
			{
				Name:      "dump",
				Usage:     "print records",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  flagWaveforms,
						Usage: "print the waveform samples of every record",
					},
					&cli.Uint64Flag{
						Name:  flagStart,
						Usage: "index of the first record",
					},
					&cli.Uint64Flag{
						Name:  flagCount,
						Usage: "number of records, 0 for all",
					},
				},
				Action: func(c *cli.Context) error {
					return dump(c, logger)
				},
			},
			{
				Name:      "create",
				Usage:     "create a file from the points of a LAS file",
				ArgsUsage: "OUT",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagLAS,
						Usage:    "read points from `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:    flagConfig,
						Aliases: []string{"c"},
						Usage:   "load the header configuration from YAML `FILE` instead of deriving it from the LAS header",
					},
				},
				Action: func(c *cli.Context) error {
					return create(c, logger)
				},
			},
			{
				Name:      "export",
				Usage:     "write the points of a file to LAS",
				ArgsUsage: "IN OUT",
				Action: func(c *cli.Context) error {
					return export(c, logger)
				},
			},
		},
	}
}

// args returns exactly n positional arguments.
func args(c *cli.Context, n int) ([]string, error) {
	if c.NArg() != n {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", c.Command.Name, n, c.NArg())
	}

	return c.Args().Slice(), nil
}
