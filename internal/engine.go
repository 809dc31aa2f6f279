package internal

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/gnolang/ccheck/internal/checker"
	"github.com/gnolang/ccheck/internal/contract"
	"github.com/gnolang/ccheck/internal/trie"
	tt "github.com/gnolang/ccheck/internal/types"
)

// Engine analyzes contract manifests.
type Engine struct {
	logger          *zap.Logger
	rules           map[string]tt.ConfigRule
	ignoredRules    map[string]bool
	ignoredPaths    *trie.Trie
	reportUndecided bool
	cache           *Cache
}

// NewEngine creates an engine applying the given per-code severity
// overrides. A nil logger disables logging.
func NewEngine(rules map[string]tt.ConfigRule, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := &Engine{
		logger:       logger,
		rules:        make(map[string]tt.ConfigRule, len(rules)),
		ignoredRules: make(map[string]bool),
		ignoredPaths: trie.New(),
	}
	engine.applyRules(rules)
	return engine
}

func (e *Engine) applyRules(rules map[string]tt.ConfigRule) {
	for code, rule := range rules {
		if rule.Severity == tt.SeverityOff {
			e.IgnoreRule(code)
			continue
		}
		e.rules[code] = rule
	}
}

// SetReportUndecided makes undecided predicates produce diagnostics.
func (e *Engine) SetReportUndecided(report bool) {
	e.reportUndecided = report
}

// SetCache enables result caching for Run.
func (e *Engine) SetCache(c *Cache) {
	e.cache = c
}

// IgnoreRule drops every issue with the given code.
func (e *Engine) IgnoreRule(rule string) {
	e.ignoredRules[rule] = true
}

// IgnorePath skips manifests under path.
func (e *Engine) IgnorePath(path string) {
	e.ignoredPaths.InsertPath(path)
}

// Result is the outcome of analyzing one manifest.
type Result struct {
	Manifest *Manifest
	Run      *Run
	Issues   []tt.Issue

	// suppressed holds the issues left after nolint entries, before
	// ignored rules and severity overrides. This is what gets cached.
	suppressed []tt.Issue
}

func (r *Result) finish(e *Engine, filename string, issues []tt.Issue) {
	r.suppressed = e.suppress(filename, r.Manifest, issues)
	r.Issues = e.apply(filename, r.suppressed)
}

// Run analyzes the manifest at filename.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	if e.ignoredPaths.MatchPath(filename) {
		e.logger.Debug("skipping ignored path", zap.String("file", filename))
		return nil, nil
	}
	if e.cache != nil {
		if issues, ok := e.cache.Get(filename); ok {
			e.logger.Debug("cache hit", zap.String("file", filename))
			return e.apply(filename, issues), nil
		}
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}
	// cached entries must serve runs with any engine options, so undecided
	// predicates are always collected and dropped later by apply.
	res, err := e.analyzeSource(filename, data, e.reportUndecided || e.cache != nil)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(filename, res.suppressed); err != nil {
			e.logger.Warn("failed to cache result", zap.String("file", filename), zap.Error(err))
		}
	}
	return res.Issues, nil
}

// RunSource analyzes manifest content that has no file.
func (e *Engine) RunSource(source []byte) ([]tt.Issue, error) {
	res, err := e.analyzeSource("", source, e.reportUndecided)
	if err != nil {
		return nil, err
	}
	return res.Issues, nil
}

func (e *Engine) analyzeSource(filename string, source []byte, reportUndecided bool) (*Result, error) {
	m, err := ParseManifest(source)
	if err != nil {
		if filename != "" {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		return nil, err
	}
	return e.analyze(filename, m, reportUndecided)
}

// Analyze runs a manifest through every phase and checks its invocations.
// Structural errors of the model are reported as issues; only errors the
// manifest itself cannot express are returned.
func (e *Engine) Analyze(filename string, m *Manifest) (*Result, error) {
	return e.analyze(filename, m, e.reportUndecided)
}

func (e *Engine) analyze(filename string, m *Manifest, reportUndecided bool) (*Result, error) {
	res := &Result{Manifest: m}
	fail := func(err error, typ, member string) (*Result, error) {
		issue, ok := structuralIssue(err)
		if !ok {
			return nil, err
		}
		issue.Type = typ
		issue.Member = member
		res.finish(e, filename, append(res.Issues, issue))
		return res, nil
	}

	model, err := m.Build()
	if err != nil {
		return fail(err, "", "")
	}

	run := NewRun(model, e.logger)
	run.SetReportUndecided(reportUndecided)
	res.Run = run

	hm, err := run.Resolve()
	if err != nil {
		return fail(err, "", "")
	}
	res.Issues = append(res.Issues, hm.Diagnostics...)

	if _, err := run.Propagate(); err != nil {
		return fail(err, "", "")
	}

	for _, inv := range m.Invocations {
		before, after := inv.Snapshots()
		violations, err := run.Check(inv.Type, inv.Member, before, after)
		if err != nil {
			issue, ok := structuralIssue(err)
			if !ok {
				return nil, err
			}
			issue.Type = inv.Type
			issue.Member = inv.Label()
			res.Issues = append(res.Issues, issue)
			continue
		}
		for _, v := range violations {
			issue := v.Issue()
			if inv.Name != "" {
				issue.Message = inv.Name + ": " + issue.Message
			}
			res.Issues = append(res.Issues, issue)
		}
	}

	e.logger.Debug("manifest analyzed",
		zap.String("file", filename),
		zap.String("name", m.Name),
		zap.Int("invocations", len(m.Invocations)),
		zap.Int("issues", len(res.Issues)),
	)
	res.finish(e, filename, res.Issues)
	return res, nil
}

// suppress drops the issues silenced by nolint entries of the manifest.
func (e *Engine) suppress(filename string, m *Manifest, issues []tt.Issue) []tt.Issue {
	mgr, err := m.Suppressions()
	if err != nil {
		e.logger.Warn("invalid nolint entry", zap.String("file", filename), zap.Error(err))
		return issues
	}
	return mgr.Filter(issues)
}

// apply drops ignored rules and undecided predicates unless requested,
// applies severity overrides, and stamps the file name.
func (e *Engine) apply(filename string, issues []tt.Issue) []tt.Issue {
	out := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if e.ignoredRules[issue.Code] {
			continue
		}
		if !e.reportUndecided && issue.Code == checker.CodePredicateUndecided {
			continue
		}
		if rule, ok := e.rules[issue.Code]; ok {
			issue.Severity = rule.Severity
		}
		issue.Filename = filename
		out = append(out, issue)
	}
	return out
}

func structuralIssue(err error) (tt.Issue, bool) {
	var ae *contract.AnalysisError
	if !errors.As(err, &ae) {
		return tt.Issue{}, false
	}
	return tt.Issue{
		Code:     string(ae.Code),
		Category: tt.CategoryStructural,
		Severity: tt.SeverityError,
		Message:  err.Error(),
	}, true
}
