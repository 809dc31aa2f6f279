package graphexport

import (
	"github.com/gnolang/ccheck/internal/contract"
	"github.com/gnolang/ccheck/internal/hierarchy"
)

// Collect builds the graph of a resolved hierarchy. Nodes and edges follow
// the declaration order of the model.
func Collect(hm *hierarchy.Map) *Graph {
	model := hm.Model
	g := &Graph{}

	for _, decl := range model.Types() {
		g.Types = append(g.Types, TypeNode{
			Name:       decl.Name,
			Kind:       decl.Kind.String(),
			Invariants: len(model.Invariants(decl.Name)),
		})

		switch decl.Kind {
		case contract.TypeContractClass:
			for _, iface := range decl.Implements {
				if bound, ok := model.ContractClassFor(iface); ok && bound == decl.Name {
					g.ContractFor = append(g.ContractFor, TypeEdge{From: decl.Name, To: iface})
				}
			}
		case contract.TypeClass:
			for _, iface := range decl.Implements {
				g.Implements = append(g.Implements, TypeEdge{From: decl.Name, To: iface})
			}
		}

		for _, m := range model.Members(decl.Name) {
			node := MemberNode{
				ID:        m.ID(),
				Owner:     m.Owner,
				Signature: m.Signature(),
				Kind:      m.Kind.String(),
				Private:   m.Private,
			}
			if body, ok := model.Abbreviator(m); ok {
				node.Abbreviator = true
				node.Clauses = len(body)
			} else {
				node.Clauses = len(model.Contracts(m))
			}
			g.Members = append(g.Members, node)
		}
	}

	for _, res := range hm.Types {
		for _, c := range res.Members {
			if c.Contract == nil {
				continue
			}
			g.Correspondences = append(g.Correspondences, MemberEdge{
				From: c.Impl.ID(),
				To:   c.Contract.ID(),
			})
		}
	}

	for _, e := range hm.Edges {
		g.Calls = append(g.Calls, MemberEdge{From: e.Caller.ID(), To: e.Callee.ID()})
	}
	return g
}
