package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	app := &cli.Command{
		Name:   "matcore",
		Usage:  "Block matrix reader and scalar instruction engine",
		Flags:  rootFlags(),
		Before: setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			readCmd(),
			execCmd(),
			serveCmd(),
			configCmd(),
			versionCmd(),
		},
	}
	// instructions contain commas themselves
	app.DisableSliceFlagSeparator = true
	return app
}
