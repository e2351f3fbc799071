package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nodeforge-editor/nodeforge/internal/catalog"
	"github.com/nodeforge-editor/nodeforge/internal/cli/config"
	"github.com/nodeforge-editor/nodeforge/internal/host"
	"github.com/nodeforge-editor/nodeforge/internal/marshal"
)

// NewCatalogCommand creates the catalog command, a human-readable
// discovery pass over the core library for inspecting what a session
// would offer.
func NewCatalogCommand() *cobra.Command {
	var (
		search     string
		category   string
		owningType string
		maxResults int
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List discoverable operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if maxResults == 0 {
				maxResults = cfg.Discovery.MaxResults
			}

			registry := host.CoreRegistry()
			ownClass := registry.ClassByName(cfg.Session.OwnClass)
			document := host.NewGraphDocument(cfg.Session.Document, ownClass)
			ctx := host.NewContext(registry, document, document.MainGraph())

			marshaller := marshal.New(registry, zap.NewNop())
			extractor := catalog.NewExtractor(marshaller, zap.NewNop())
			cache := catalog.NewHandleCache(registry)
			discovery := catalog.NewDiscovery(extractor, cache, zap.NewNop())

			ops := discovery.Discover(ctx, catalog.Filter{
				Search:     search,
				Category:   category,
				OwningType: owningType,
				MaxResults: maxResults,
			})

			if len(ops) == 0 {
				fmt.Println("No operations matched.")
				return nil
			}

			keyColor := color.New(color.FgCyan)
			kindColor := color.New(color.FgYellow)
			for _, op := range ops {
				keyColor.Printf("%-50s", op.StableKey)
				kindColor.Printf(" %-14s", op.Kind)
				fmt.Printf(" %d pins", op.ExpectedPinCount)
				if op.Relevance > 0 {
					fmt.Printf("  (score %d)", op.Relevance)
				}
				fmt.Println()
				if op.Tooltip != "" {
					fmt.Printf("    %s\n", op.Tooltip)
				}
			}
			fmt.Printf("\n%d operations\n", len(ops))
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Free-text search term")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category filter (substring)")
	cmd.Flags().StringVarP(&owningType, "owner", "o", "", "Owning type filter (substring)")
	cmd.Flags().IntVarP(&maxResults, "max", "n", 0, "Maximum results (defaults to config)")
	return cmd
}
