package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nodeforge-editor/nodeforge/internal/cli/config"
	"github.com/nodeforge-editor/nodeforge/internal/host"
	"github.com/nodeforge-editor/nodeforge/internal/rpc"
)

// NewServeCommand creates the serve command, which runs the JSON-RPC
// session on stdin/stdout until the client exits.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve a NodeForge session over JSON-RPC on stdio",
		Long: `Starts an editing session backed by the core library registry and a
fresh graph document, and serves catalog/discover, node/create, and
node/configure requests on stdin/stdout. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			registry := host.CoreRegistry()
			ownClass := registry.ClassByName(cfg.Session.OwnClass)
			if ownClass == nil {
				return fmt.Errorf("session own_class %q is not a registered class", cfg.Session.OwnClass)
			}
			document := host.NewGraphDocument(cfg.Session.Document, ownClass)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return rpc.NewServer(registry, document, logger).Run(ctx)
		},
	}
}
