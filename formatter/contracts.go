package formatter

import (
	"strings"

	"github.com/gnolang/ccheck/internal/contract"
	"github.com/gnolang/ccheck/internal/propagate"
)

// FormatEffective renders the effective contract of one member, one clause
// per line in evaluation order, each followed by its origin.
func FormatEffective(ec *propagate.EffectiveContract) string {
	var b strings.Builder
	b.WriteString(fileStyle.Sprintf("%s", ec.Key()))
	b.WriteString(lineStyle.Sprintf(" (%s)\n", ec.Member.Kind))

	clauses := ec.Clauses()
	if len(clauses) == 0 {
		b.WriteString(lineStyle.Sprintf("  |"))
		b.WriteString(" no clauses\n")
		return b.String()
	}

	width := 0
	for _, c := range clauses {
		if n := len(c.Predicate.String()); n > width {
			width = n
		}
	}

	writeClauses(&b, "requires", ec.Requires, width)
	writeClauses(&b, "ensures", ec.Ensures, width)
	writeClauses(&b, "invariant@entry", ec.EntryInvariants, width)
	writeClauses(&b, "invariant", ec.Invariants, width)
	return b.String()
}

func writeClauses(b *strings.Builder, label string, clauses []contract.Clause, width int) {
	for _, c := range clauses {
		pred := c.Predicate.String()
		b.WriteString(lineStyle.Sprintf("  | "))
		b.WriteString(ruleStyle.Sprintf("%-15s ", label))
		b.WriteString(pred)
		b.WriteString(strings.Repeat(" ", width-len(pred)))
		b.WriteString(suggestionStyle.Sprintf("  [%s]\n", c.Origin))
	}
}
