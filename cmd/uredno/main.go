// Uredno cleaning booking backend.
//
// Usage:
//
//	uredno serve
//	uredno migrate up|down|status
//	uredno quote --service regular --size 60 --extra oven
//	uredno export --out bookings.xlsx
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"uredno/internal/config"
	"uredno/internal/logger"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "uredno",
		Usage:   "Cleaning service pricing and booking backend",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:    "dev",
				Usage:   "Human readable console logging",
				EnvVars: []string{"DEVELOPMENT"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			quoteCommand(),
			exportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the environment config and builds the logger. Global flags
// override the matching config values.
func setup(c *cli.Context) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("dev") {
		cfg.Development = c.Bool("dev")
	}

	zapLogger, err := logger.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return nil, nil, err
	}
	return cfg, zapLogger, nil
}
