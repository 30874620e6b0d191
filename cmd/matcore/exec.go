package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/matcore/internal/engine"
	"github.com/samcharles93/matcore/internal/instruction"
	"github.com/samcharles93/matcore/internal/logger"
	"github.com/samcharles93/matcore/internal/report"
	"github.com/samcharles93/matcore/pkg/csvio"
)

func execCmd() *cli.Command {
	var (
		instructions []string
		programFile  string
		inputTag     string
		outputTag    string
		outFile      string
		parallelism  int
	)

	return &cli.Command{
		Name:      "exec",
		Usage:     "Run scalar instructions over every block of a matrix",
		ArgsUsage: "PATH",
		Flags: append(matrixFlags(),
			&cli.StringSliceFlag{
				Name:        "instruction",
				Aliases:     []string{"i"},
				Usage:       "instruction opcode,arg1,arg2,out (repeatable)",
				Destination: &instructions,
			},
			&cli.StringFlag{
				Name:        "program",
				Aliases:     []string{"p"},
				Usage:       "file with one instruction per line ('#' starts a comment)",
				Destination: &programFile,
			},
			&cli.StringFlag{
				Name:        "input-tag",
				Usage:       "tag each block is published under",
				Value:       string(engine.DefaultInputTag),
				Destination: &inputTag,
			},
			&cli.StringFlag{
				Name:        "output-tag",
				Usage:       "tag collected into the result",
				Value:       string(engine.DefaultOutputTag),
				Destination: &outputTag,
			},
			&cli.IntFlag{
				Name:        "parallelism",
				Aliases:     []string{"j"},
				Usage:       "blocks processed concurrently (0 = GOMAXPROCS)",
				Destination: &parallelism,
			},
			&cli.StringFlag{
				Name:        "out",
				Usage:       "write the result as delimited text to this file",
				Destination: &outFile,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			format, err := report.ParseFormat(output)
			if err != nil {
				return err
			}
			props := applyCSVConfig(cmd, appConfig)
			applyExecConfig(cmd, appConfig, &parallelism)

			lines := instructions
			if programFile != "" {
				fileLines, err := readProgramFile(programFile)
				if err != nil {
					return err
				}
				lines = append(lines, fileLines...)
			}
			prog, err := instruction.ParseProgram(lines)
			if err != nil {
				return err
			}
			if prog.Len() == 0 {
				return fmt.Errorf("no instructions given; use --instruction or --program")
			}

			fsys, name, err := resolveInput(cmd.Args().First())
			if err != nil {
				return err
			}
			m, err := readMatrix(ctx, fsys, name, props)
			if err != nil {
				return err
			}

			res, err := engine.Run(ctx, m, engine.Job{
				InputTag:    instruction.Tag(inputTag),
				OutputTag:   instruction.Tag(outputTag),
				Program:     prog,
				BlockRows:   blockRows,
				BlockCols:   blockCols,
				Parallelism: parallelism,
			})
			if err != nil {
				return err
			}

			if outFile != "" {
				path, err := resolveOutput(outFile)
				if err != nil {
					return err
				}
				if err := csvio.WriteFile(path, res.Block, csvio.WritePropertiesFor(props)); err != nil {
					return err
				}
				log.Info("wrote result", "path", path)
			}

			return report.Render(outWriter(cmd), report.Report{
				Source:  cmd.Args().First(),
				RunID:   res.RunID,
				Matrix:  report.Summarize(res.Block),
				Elapsed: res.Elapsed.String(),
			}, format)
		},
	}
}
