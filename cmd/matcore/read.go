package main

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/matcore/internal/logger"
	"github.com/samcharles93/matcore/internal/report"
	"github.com/samcharles93/matcore/pkg/block"
	"github.com/samcharles93/matcore/pkg/csvio"
)

func readCmd() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Read a delimited text file or directory and summarize the block",
		ArgsUsage: "PATH",
		Flags:     matrixFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := report.ParseFormat(output)
			if err != nil {
				return err
			}
			props := applyCSVConfig(cmd, appConfig)

			fsys, name, err := resolveInput(cmd.Args().First())
			if err != nil {
				return err
			}
			b, err := readMatrix(ctx, fsys, name, props)
			if err != nil {
				return err
			}

			rep := report.Report{Source: cmd.Args().First(), Matrix: report.Summarize(b)}
			if blockRows > 0 && blockCols > 0 {
				parts, err := block.Partition(b, blockRows, blockCols)
				if err != nil {
					return err
				}
				rep.Blocks = report.SummarizeGrid(parts)
			}
			return report.Render(outWriter(cmd), rep, format)
		},
	}
}

func readMatrix(ctx context.Context, fsys fs.FS, name string, props csvio.Properties) (*block.Block, error) {
	log := logger.FromContext(ctx)

	rd, err := csvio.NewReader(props)
	if err != nil {
		return nil, err
	}
	opts := csvio.UnknownSize()
	if rows > 0 && cols > 0 {
		opts.Rows, opts.Cols = rows, cols
	}
	opts.BlockRows, opts.BlockCols = blockRows, blockCols

	start := time.Now()
	b, err := rd.Read(fsys, name, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	log.Info("read matrix", "path", name, "rows", b.Rows(), "cols", b.Cols(),
		"nnz", b.NonZeros(), "sparse", b.IsSparse(), "elapsed", time.Since(start))
	return b, nil
}
