package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/image-handler/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			server.Version = Version
			logger.Debug("starting MCP server",
				zap.String("version", Version),
				zap.String("build_time", BuildTime),
				zap.String("git_commit", GitCommit),
			)

			srv := server.New(*cfg, logger)
			defer srv.Close()
			return srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
