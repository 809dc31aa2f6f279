package lint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnolang/ccheck/internal"
	tt "github.com/gnolang/ccheck/internal/types"
	"github.com/gnolang/ccheck/scanner"
)

type LintEngine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	IgnoreRule(rule string)
	IgnorePath(path string)
}

// New creates an engine configured from configurationPath. An empty path
// uses DefaultConfig.
func New(configurationPath string, logger *zap.Logger) (*internal.Engine, error) {
	config := DefaultConfig()
	if configurationPath != "" {
		var err error
		config, err = parseConfigurationFile(configurationPath)
		if err != nil {
			return nil, err
		}
	}
	return NewWithConfig(config, logger), nil
}

// NewWithConfig creates an engine from an already loaded configuration.
func NewWithConfig(config Config, logger *zap.Logger) *internal.Engine {
	engine := internal.NewEngine(config.Rules, logger)
	engine.SetReportUndecided(config.ReportUndecided)
	for _, p := range config.Ignore {
		engine.IgnorePath(p)
	}
	return engine
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	sources [][]byte,
	processor func(LintEngine, []byte) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return allIssues, err
		}
		issues, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	paths []string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

type fileResult struct {
	path   string
	issues []tt.Issue
	err    error
}

// ProcessPath analyzes path, or every manifest below it when it is a
// directory, on a pool of runtime.NumCPU() workers. Issues of the files
// that succeeded are returned together with the errors of those that did
// not. On cancellation the issues collected so far are returned with the
// context error.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	path string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	issues := make([]tt.Issue, 0)
	if !info.IsDir() {
		if !hasDesiredExtension(path) {
			return issues, nil
		}
		fileIssues, err := processor(engine, path)
		if err != nil {
			return issues, err
		}
		return append(issues, fileIssues...), nil
	}

	files, err := collectFiles(path)
	if err != nil {
		return nil, err
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	results := make(chan fileResult, len(files))
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	started := 0
dispatch:
	for _, filePath := range files {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}
		started++
		wg.Add(1)
		go func(fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			fileIssues, err := processor(engine, fp)
			if err != nil && logger != nil {
				logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
			}
			_ = bar.Add(1)
			results <- fileResult{path: fp, issues: fileIssues, err: err}
		}(filePath)
	}
	wg.Wait()
	close(results)

	collected := make([]fileResult, 0, len(files))
	for res := range results {
		collected = append(collected, res)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].path < collected[j].path })

	var errs []error
	for _, res := range collected {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.path, res.err))
			continue
		}
		issues = append(issues, res.issues...)
	}

	if err := ctx.Err(); err != nil && started < len(files) {
		return issues, err
	}
	return issues, errors.Join(errs...)
}

func collectFiles(root string) ([]string, error) {
	files, err := scanner.New(root, internal.ManifestExt).Paths()
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}
	return files, nil
}

func ProcessFile(engine LintEngine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine LintEngine, source []byte) ([]tt.Issue, error) {
	return engine.RunSource(source)
}

func hasDesiredExtension(path string) bool {
	return strings.HasSuffix(filepath.Base(path), internal.ManifestExt)
}
