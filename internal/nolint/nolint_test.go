package nolint

import (
	"testing"

	tt "github.com/gnolang/ccheck/internal/types"
)

func TestParseCodes(t *testing.T) {
	t.Parallel()
	result := parseCodes([]string{"invariant_violated", " ENSURES_VIOLATED ", ""})
	expected := []string{"INVARIANT_VIOLATED", "ENSURES_VIOLATED"}
	if len(result) != len(expected) {
		t.Errorf("Expected %d codes, got %d", len(expected), len(result))
	}
	for _, code := range expected {
		if _, exists := result[code]; !exists {
			t.Errorf("Expected code %s not found", code)
		}
	}

	if all := parseCodes([]string{"REQUIRES_VIOLATED", "all"}); len(all) != 0 {
		t.Errorf("Expected all to clear the code set, got %v", all)
	}
}

func TestIsNolint(t *testing.T) {
	t.Parallel()
	mgr := NewManager()
	mgr.Add(Scope{Type: "Foo", Member: "Foo::Bar()"}, "ENSURES_VIOLATED")
	mgr.Add(Scope{Type: "Legacy"}, All)
	mgr.Add(Scope{Type: "Baz"})

	tests := []struct {
		name  string
		issue tt.Issue
		want  bool
	}{
		{"member code", tt.Issue{Code: "ENSURES_VIOLATED", Type: "Foo", Member: "Foo::Bar()"}, true},
		{"member other code", tt.Issue{Code: "INVARIANT_VIOLATED", Type: "Foo", Member: "Foo::Bar()"}, false},
		{"other member", tt.Issue{Code: "ENSURES_VIOLATED", Type: "Foo", Member: "Foo::.ctor()"}, false},
		{"whole type", tt.Issue{Code: "INVARIANT_VIOLATED", Type: "Legacy", Member: "Legacy::Run()"}, true},
		{"empty add", tt.Issue{Code: "INVARIANT_VIOLATED", Type: "Baz"}, false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := mgr.IsNolint(tc.issue); got != tc.want {
				t.Errorf("IsNolint(%+v) = %v, want %v", tc.issue, got, tc.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()
	var nilMgr *Manager
	issues := []tt.Issue{{Code: "A", Type: "T"}, {Code: "B", Type: "T"}}
	if got := nilMgr.Filter(issues); len(got) != 2 {
		t.Errorf("nil manager filtered issues: %v", got)
	}

	mgr := NewManager()
	mgr.Add(Scope{Type: "T"}, "a")
	got := mgr.Filter(issues)
	if len(got) != 1 || got[0].Code != "B" {
		t.Errorf("unexpected filter result: %v", got)
	}
}
