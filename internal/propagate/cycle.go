package propagate

import (
	"sort"

	"github.com/gnolang/ccheck/internal/contract"
	"github.com/gnolang/ccheck/internal/hierarchy"
)

// abbrevCycle finds abbreviator call cycles over the whole call graph,
// including abbreviators no member reaches.
type abbrevCycle struct {
	dependencies map[string][]string
	visited      map[string]bool
	stack        []string
}

func newAbbrevCycle(hm *hierarchy.Map) *abbrevCycle {
	c := &abbrevCycle{
		dependencies: make(map[string][]string),
		visited:      make(map[string]bool),
	}
	for _, e := range hm.Edges {
		if !hm.Model.IsAbbreviator(e.Caller) {
			continue
		}
		c.dependencies[e.Caller.ID()] = append(c.dependencies[e.Caller.ID()], e.Callee.ID())
	}
	return c
}

// detect returns an AbbreviatorCycleError for the first cycle found, in a
// deterministic order.
func (c *abbrevCycle) detect() error {
	names := make([]string, 0, len(c.dependencies))
	for name := range c.dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if c.visited[name] {
			continue
		}
		if cycle := c.dfs(name); cycle != nil {
			return contract.NewAbbreviatorCycleError(cycle)
		}
	}
	return nil
}

func (c *abbrevCycle) dfs(name string) []string {
	c.visited[name] = true
	c.stack = append(c.stack, name)
	defer func() { c.stack = c.stack[:len(c.stack)-1] }()

	for _, dep := range c.dependencies[name] {
		if i := indexOf(c.stack, dep); i >= 0 {
			cycle := append([]string(nil), c.stack[i:]...)
			return append(cycle, dep)
		}
		if !c.visited[dep] {
			if cycle := c.dfs(dep); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

func indexOf(slice []string, item string) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}
