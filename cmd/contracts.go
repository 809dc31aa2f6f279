package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/ccheck/formatter"
	"github.com/gnolang/ccheck/internal"
	"github.com/gnolang/ccheck/internal/propagate"
)

var contractsType string

var contractsCmd = &cobra.Command{
	Use:   "contracts <manifest>",
	Short: "Print the effective contracts of every member of a manifest",
	Long: `Resolves and propagates the contracts of a manifest and prints, for each
member of each class, the clauses it must satisfy together with their origin.
Example) ccheck contracts --type Foo testdata/foo.contracts.yaml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := newEngine(logger)
		if err != nil {
			logger.Fatal("Failed to initialize check engine", zap.Error(err))
		}
		if err := runContracts(cmd.OutOrStdout(), engine, args[0], contractsType); err != nil {
			logger.Error("Failed to compute effective contracts", zap.String("file", args[0]), zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	contractsCmd.Flags().StringVarP(&contractsType, "type", "t", "", "Only print the members of this type")
}

func runContracts(out io.Writer, engine *internal.Engine, path, typ string) error {
	m, err := internal.LoadManifest(path)
	if err != nil {
		return err
	}
	res, err := engine.Analyze(path, m)
	if err != nil {
		return err
	}

	var effective map[propagate.Key]*propagate.EffectiveContract
	if res.Run != nil {
		effective = res.Run.Effective()
	}
	if effective == nil {
		// structural errors stop the run before propagation
		fmt.Fprint(out, formatter.GenerateFormattedIssue(res.Issues))
		return fmt.Errorf("%s could not be propagated", path)
	}

	found := false
	for _, key := range propagate.SortedKeys(effective) {
		if typ != "" && key.Type != typ {
			continue
		}
		found = true
		fmt.Fprintln(out, formatter.FormatEffective(effective[key]))
	}
	if typ != "" && !found {
		return fmt.Errorf("type %q has no members in %s", typ, path)
	}
	return nil
}
