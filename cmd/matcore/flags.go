package main

import "github.com/urfave/cli/v3"

var (
	configFile string
	logLevel   string
	logFormat  string
	debug      bool

	hasHeader bool
	delimiter string
	fill      bool
	fillValue float64

	rows      int
	cols      int
	blockRows int
	blockCols int
	output    string
)

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml (default: user config dir)",
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (auto, pretty, json, text)",
			Value:       "auto",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func csvFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "header",
			Usage:       "first line of the first file is a header",
			Destination: &hasHeader,
		},
		&cli.StringFlag{
			Name:        "delimiter",
			Aliases:     []string{"d"},
			Usage:       "field delimiter",
			Value:       ",",
			Destination: &delimiter,
		},
		&cli.BoolFlag{
			Name:        "fill",
			Usage:       "read empty fields as --fill-value",
			Destination: &fill,
		},
		&cli.FloatFlag{
			Name:        "fill-value",
			Usage:       "value used for empty fields when --fill is set",
			Destination: &fillValue,
		},
	}
}

func sizeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "rows",
			Usage:       "number of rows if known (inferred when unset)",
			Value:       -1,
			Destination: &rows,
		},
		&cli.IntFlag{
			Name:        "cols",
			Usage:       "number of columns if known (inferred when unset)",
			Value:       -1,
			Destination: &cols,
		},
	}
}

func gridFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "block-rows",
			Usage:       "rows per grid block (0 = whole matrix)",
			Destination: &blockRows,
		},
		&cli.IntFlag{
			Name:        "block-cols",
			Usage:       "columns per grid block (0 = whole matrix)",
			Destination: &blockCols,
		},
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "output",
		Aliases:     []string{"o"},
		Usage:       "output format (table, json)",
		Value:       "table",
		Destination: &output,
	}
}

func matrixFlags() []cli.Flag {
	flags := append(csvFlags(), sizeFlags()...)
	flags = append(flags, gridFlags()...)
	return append(flags, outputFlag())
}
