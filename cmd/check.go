package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/ccheck/formatter"
	"github.com/gnolang/ccheck/internal"
	tt "github.com/gnolang/ccheck/internal/types"
	"github.com/gnolang/ccheck/lint"
)

var (
	ignoreRules     string
	ignorePaths     string
	checkJsonOutput bool
	outPath         string
	watchMode       bool
	cacheDir        string
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check the invocations of contract manifests against the inherited contracts",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		engine, err := newEngine(logger)
		if err != nil {
			logger.Fatal("Failed to initialize check engine", zap.Error(err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		issues, err := lint.ProcessFiles(ctx, logger, engine, args, lint.ProcessFile)
		cancel()
		if err != nil {
			logger.Error("Error processing files", zap.Error(err))
			os.Exit(1)
		}

		out := cmd.OutOrStdout()
		if err := printIssues(out, issues, checkJsonOutput, outPath); err != nil {
			logger.Error("Error printing issues", zap.Error(err))
			os.Exit(1)
		}

		if watchMode {
			if err := runWatch(logger, engine, args, out); err != nil {
				logger.Error("Watch failed", zap.Error(err))
				os.Exit(1)
			}
			return
		}

		if len(issues) > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	checkCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of diagnostic codes to ignore")
	checkCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	checkCmd.Flags().BoolVar(&checkJsonOutput, "json", false, "Output issues in JSON format")
	checkCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	checkCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Re-check manifests when they change")
	checkCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory of the result cache (disabled when empty)")
}

// newEngine builds an engine from the configuration and the command line
// flags.
func newEngine(logger *zap.Logger) (*internal.Engine, error) {
	path := configPath()
	engine, err := lint.New(path, logger)
	if err != nil {
		return nil, err
	}

	for _, rule := range splitList(ignoreRules) {
		engine.IgnoreRule(rule)
	}
	for _, p := range splitList(ignorePaths) {
		engine.IgnorePath(p)
	}

	if cacheDir != "" {
		cache, err := internal.NewCache(cacheDir)
		if err != nil {
			return nil, err
		}
		if path != "" {
			if err := cache.SetDependencies(path); err != nil {
				return nil, err
			}
		}
		engine.SetCache(cache)
	}
	return engine, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func runWatch(logger *zap.Logger, engine *internal.Engine, paths []string, out io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return lint.Watch(ctx, logger, engine, watchDirs(paths), func(filename string, issues []tt.Issue, err error) {
		if err != nil {
			logger.Error("Error checking manifest", zap.String("file", filename), zap.Error(err))
			return
		}
		if len(issues) == 0 {
			fmt.Fprintf(out, "%s: ok\n", filename)
			return
		}
		fmt.Fprintln(out, formatter.GenerateFormattedIssue(issues))
	})
}

// watchDirs maps file arguments to their directories and removes
// duplicates.
func watchDirs(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var dirs []string
	for _, p := range paths {
		dir := p
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			dir = filepath.Dir(p)
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func printIssues(out io.Writer, issues []tt.Issue, isJson bool, jsonOutput string) error {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	if !isJson {
		// text output
		for _, filename := range sortedFiles {
			fmt.Fprintln(out, formatter.GenerateFormattedIssue(issuesByFile[filename]))
		}
		return nil
	}

	// JSON output
	d, err := json.Marshal(issuesByFile)
	if err != nil {
		return fmt.Errorf("error marshalling issues to JSON: %w", err)
	}
	if jsonOutput == "" {
		fmt.Fprintln(out, string(d))
		return nil
	}
	if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
		return fmt.Errorf("error writing JSON output file: %w", err)
	}
	return nil
}
