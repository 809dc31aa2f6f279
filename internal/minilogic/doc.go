// Package minilogic implements the predicate language used by contract
// clauses.
//
// A predicate is a small side-effect-free expression evaluated against
// state snapshots. Preconditions and invariants read a single snapshot;
// postconditions read the after-state and may refer to the before-state
// through old(e).
//
// Supported forms:
//   - integer, boolean, string and nil literals
//   - identifiers (dotted names such as Foo.TotalColumns are a single name)
//   - arithmetic: + - * / %
//   - comparison: == != < <= > >=
//   - logic: && || !
//   - old(e)
//
// Evaluation never panics. Whenever a value cannot be determined (unknown
// name, type mismatch, division by zero) the result is a SymbolicValue and
// the predicate is undecided.
package minilogic
