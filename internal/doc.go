// Package internal drives contract analysis runs for the command line tool.
//
// A run reads a contract manifest, a YAML description of interfaces,
// contract classes, classes and observed invocations, registers it into a
// contract.Model and moves it through resolution, propagation and
// checking:
//
//	Unresolved -> Resolved -> Propagated -> Checked
//
// Key components:
//
// Engine: analyzes manifests and turns resolver diagnostics, structural
// errors and contract violations into issues, applying severity overrides,
// ignored codes and nolint suppressions.
//
// Run: the per-manifest state machine. Calling a step out of order fails
// with an INVALID_PHASE analysis error.
//
// Manifest: the YAML front end. Predicates use the minilogic syntax, for
// example `old(CurrentColumn) == CurrentColumn`.
//
// Cache: an on-disk result cache keyed by manifest content.
//
// Watcher: re-analyzes manifests when they change.
//
// Usage:
//
//	engine := internal.NewEngine(config.Rules, logger)
//	issues, err := engine.Run("testdata/ContractClassFor001.contracts.yaml")
//	if err != nil {
//	    // handle error
//	}
//	for _, issue := range issues {
//	    fmt.Printf("%s: %s\n", issue.Code, issue.Message)
//	}
package internal
