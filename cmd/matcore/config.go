package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/matcore/internal/config"
	"github.com/samcharles93/matcore/internal/logger"
	"github.com/samcharles93/matcore/pkg/csvio"
)

// appConfig is the effective configuration, loaded by setup.
var appConfig *config.Config

// setup loads the configuration and installs the logger. Flags given on
// the command line win over config values.
func setup(ctx context.Context, c *cli.Command) (context.Context, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return ctx, err
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = logLevel
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return ctx, fmt.Errorf("invalid configuration: %w", err)
	}
	appConfig = cfg

	format, _ := logger.ParseFormat(cfg.Log.Format)
	log := logger.NewFor(errWriter(c), logger.ParseLevel(cfg.Log.Level), format)
	if cfg.File != "" {
		log.Debug("loaded config", "path", cfg.File)
	}
	return logger.WithContext(ctx, log), nil
}

// applyCSVConfig fills csv flags the user did not set from the config file.
func applyCSVConfig(c *cli.Command, cfg *config.Config) csvio.Properties {
	if !c.IsSet("header") {
		hasHeader = cfg.CSV.Header
	}
	if !c.IsSet("delimiter") {
		delimiter = cfg.CSV.Delimiter
	}
	if !c.IsSet("fill") {
		fill = cfg.CSV.Fill
	}
	if !c.IsSet("fill-value") {
		fillValue = cfg.CSV.FillValue
	}
	return csvio.Properties{
		HasHeader: hasHeader,
		Delimiter: delimiter,
		Fill:      fill,
		FillValue: fillValue,
	}
}

// applyExecConfig fills the grid flags from the config file.
func applyExecConfig(c *cli.Command, cfg *config.Config, parallelism *int) {
	if !c.IsSet("block-rows") {
		blockRows = cfg.Exec.BlockRows
	}
	if !c.IsSet("block-cols") {
		blockCols = cfg.Exec.BlockCols
	}
	if parallelism != nil && !c.IsSet("parallelism") {
		*parallelism = cfg.Exec.Parallelism
	}
}

func applyServeConfig(c *cli.Command, cfg *config.Config, addr, dataDir *string) {
	if !c.IsSet("addr") {
		*addr = cfg.Server.Address
	}
	if !c.IsSet("data-dir") {
		*dataDir = cfg.Server.DataDir
	}
	if !c.IsSet("read-timeout") {
		readTimeout = cfg.Server.ReadTimeout
	}
}

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective configuration as YAML",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			out, err := appConfig.Marshal()
			if err != nil {
				return err
			}
			w := outWriter(cmd)
			if appConfig.File != "" {
				_, _ = fmt.Fprintf(w, "# %s\n", appConfig.File)
			}
			_, err = w.Write(out)
			return err
		},
	}
}

func outWriter(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(c *cli.Command) io.Writer {
	if w := c.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
