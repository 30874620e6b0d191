package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/matcore/internal/api"
	"github.com/samcharles93/matcore/internal/logger"
)

var readTimeout time.Duration

func serveCmd() *cli.Command {
	var (
		addr        string
		dataDir     string
		maxResults  int
		parallelism int
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the read and exec HTTP API",
		Flags: append(csvFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "directory request paths are resolved against",
				Value:       ".",
				Destination: &dataDir,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout and per-request deadline",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.IntFlag{
				Name:        "block-rows",
				Usage:       "default rows per grid block for exec",
				Destination: &blockRows,
			},
			&cli.IntFlag{
				Name:        "block-cols",
				Usage:       "default columns per grid block for exec",
				Destination: &blockCols,
			},
			&cli.IntFlag{
				Name:        "parallelism",
				Usage:       "blocks processed concurrently per request (0 = GOMAXPROCS)",
				Destination: &parallelism,
			},
			&cli.IntFlag{
				Name:        "max-results",
				Usage:       "exec results kept for retrieval",
				Value:       api.DefaultMaxResults,
				Destination: &maxResults,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			props := applyCSVConfig(cmd, appConfig)
			applyExecConfig(cmd, appConfig, &parallelism)
			applyServeConfig(cmd, appConfig, &addr, &dataDir)

			root, err := filepath.Abs(dataDir)
			if err != nil {
				return err
			}
			if _, err := os.Stat(root); err != nil {
				return err
			}

			server := api.NewServer(api.Options{
				Data:        os.DirFS(root),
				CSV:         props,
				BlockRows:   blockRows,
				BlockCols:   blockCols,
				Parallelism: parallelism,
				Timeout:     readTimeout,
				Logger:      log.With("component", "api"),
				Store:       api.NewResultStore(maxResults),
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "data_dir", root)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
