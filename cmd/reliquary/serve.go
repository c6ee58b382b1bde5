package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/reliquary/internal/assets"
	"github.com/samcharles93/reliquary/internal/store"
	"github.com/samcharles93/reliquary/internal/webapi"
)

func serveCmd() *cli.Command {
	var (
		dir         string
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve a read-only browse API over a directory of containers",
		Flags: append(commonLogFlags(),
			&cli.StringFlag{
				Name:        "dir",
				Usage:       "directory containing .arc files",
				Value:       ".",
				Destination: &dir,
			},
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyConfig(cmd, LoadConfig(), &dir, &addr)
			log := newLog()

			st := store.New(assets.Factory{}, log)
			defer func() { _ = st.Close() }()
			if err := st.LoadDir(dir); err != nil {
				return err
			}
			log.Info("containers loaded", "dir", dir, "count", len(st.Containers()))

			server := webapi.NewServer(st, log)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr)
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
