package nolint

import (
	"strings"

	tt "github.com/gnolang/ccheck/internal/types"
)

// All suppresses every diagnostic code in its scope.
const All = "all"

// Scope selects the issues a suppression applies to. An empty Member
// covers the whole type.
type Scope struct {
	Type   string
	Member string
}

func (s Scope) covers(issue tt.Issue) bool {
	if s.Type != issue.Type {
		return false
	}
	return s.Member == "" || s.Member == issue.Member
}

// Manager manages nolint scopes and checks if an issue is suppressed.
type Manager struct {
	scopes []nolintScope
}

type nolintScope struct {
	scope Scope
	// codes is empty when every code is suppressed.
	codes map[string]struct{}
}

// NewManager returns a manager without scopes.
func NewManager() *Manager {
	return &Manager{}
}

// Add suppresses codes within scope. Without codes, Add does nothing; use
// All to suppress everything.
func (m *Manager) Add(scope Scope, codes ...string) {
	if len(codes) == 0 {
		return
	}
	ns := nolintScope{scope: scope, codes: parseCodes(codes)}
	m.scopes = append(m.scopes, ns)
}

// parseCodes normalizes the code list. A list containing All yields an
// empty set.
func parseCodes(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if strings.EqualFold(code, All) {
			return map[string]struct{}{}
		}
		set[strings.ToUpper(code)] = struct{}{}
	}
	return set
}

// IsNolint reports whether issue is suppressed.
func (m *Manager) IsNolint(issue tt.Issue) bool {
	if m == nil {
		return false
	}
	for _, ns := range m.scopes {
		if !ns.scope.covers(issue) {
			continue
		}
		if len(ns.codes) == 0 {
			return true
		}
		if _, ok := ns.codes[issue.Code]; ok {
			return true
		}
	}
	return false
}

// Filter returns the issues that are not suppressed.
func (m *Manager) Filter(issues []tt.Issue) []tt.Issue {
	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if !m.IsNolint(issue) {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}
