package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/ccheck/internal"
	"github.com/gnolang/ccheck/internal/graphexport"
)

var (
	neo4jURI  string
	neo4jUser string
	neo4jPass string
	cleanLoad bool
)

var exportCmd = &cobra.Command{
	Use:   "export <manifest>",
	Short: "Export the resolved contract hierarchy of a manifest to Neo4j",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if neo4jPass == "" {
			neo4jPass = os.Getenv("NEO4J_PASSWORD")
		}
		if neo4jPass == "" {
			fmt.Fprintln(os.Stderr, "error: --neo4j-pass or NEO4J_PASSWORD is required")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		g, err := collectGraph(args[0])
		if err != nil {
			logger.Error("Failed to resolve manifest", zap.String("file", args[0]), zap.Error(err))
			os.Exit(1)
		}

		loader, err := graphexport.NewNeo4jLoader(ctx, neo4jURI, neo4jUser, neo4jPass, logger)
		if err != nil {
			logger.Error("Failed to connect to Neo4j", zap.Error(err))
			os.Exit(1)
		}
		defer loader.Close(ctx)

		if err := exportGraph(ctx, loader, g, cleanLoad); err != nil {
			logger.Error("Export failed", zap.Error(err))
			os.Exit(1)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d types and %d members from %s\n", len(g.Types), len(g.Members), args[0])
	},
}

func init() {
	exportCmd.Flags().StringVar(&neo4jURI, "neo4j-uri", "bolt://localhost:7687", "Neo4j bolt URI")
	exportCmd.Flags().StringVar(&neo4jUser, "neo4j-user", "neo4j", "Neo4j username")
	exportCmd.Flags().StringVar(&neo4jPass, "neo4j-pass", "", "Neo4j password")
	exportCmd.Flags().BoolVar(&cleanLoad, "clean", false, "Remove previously exported contract data before loading")
}

// collectGraph resolves the manifest at path without checking its
// invocations.
func collectGraph(path string) (*graphexport.Graph, error) {
	m, err := internal.LoadManifest(path)
	if err != nil {
		return nil, err
	}
	model, err := m.Build()
	if err != nil {
		return nil, err
	}
	hm, err := internal.NewRun(model, logger).Resolve()
	if err != nil {
		return nil, err
	}
	return graphexport.Collect(hm), nil
}

func exportGraph(ctx context.Context, loader *graphexport.Neo4jLoader, g *graphexport.Graph, clean bool) error {
	if clean {
		if err := loader.CleanGraph(ctx); err != nil {
			return err
		}
	}
	if err := loader.CreateIndexes(ctx); err != nil {
		return err
	}
	return loader.Load(ctx, g)
}
