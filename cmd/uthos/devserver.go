package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/timmy/uthos/internal/api"
	"github.com/timmy/uthos/internal/logger"
)

func newDevServerCmd(a *app) *cobra.Command {
	var (
		port  int
		token string
	)
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a local emulator of the object storage API",
		Long: `devserver serves the object storage API on localhost, backed by a SQL
database for metadata and a blob store for content. Point the CLI or the
library at http://localhost:<port>/v2 to use it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("port") {
				if cfg.Server.PublicURL == fmt.Sprintf("http://localhost:%d/v2", cfg.Server.Port) {
					cfg.Server.PublicURL = fmt.Sprintf("http://localhost:%d/v2", port)
				}
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("root-token") {
				cfg.Server.Token = token
			}
			log := a.log.WithField(logger.FieldComponent, "devserver")

			if cfg.Server.Token == "" && cfg.Server.AccessKey == "" {
				cfg.Server.Token = uuid.NewString()
				log.WithField("token", cfg.Server.Token).
					Warn("no root credentials configured, generated a token for this run")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return api.Run(ctx, cfg, log, nil)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port")
	cmd.Flags().StringVar(&token, "root-token", "", "root bearer token accepted by the server")
	return cmd
}
