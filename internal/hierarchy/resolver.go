package hierarchy

import (
	"fmt"

	"github.com/gnolang/ccheck/internal/contract"
	"github.com/gnolang/ccheck/internal/minilogic"
	tt "github.com/gnolang/ccheck/internal/types"
)

// Diagnostic codes emitted by the resolver. None of them is fatal.
const (
	CodePreconditionStrengthened   = "PRECONDITION_STRENGTHENED"
	CodeContractClassForeignMember = "CONTRACT_CLASS_FOREIGN_MEMBER"
	CodeUnusedAbbreviator          = "UNUSED_ABBREVIATOR"
)

type resolver struct {
	model *contract.Model
	out   *Map
}

// Resolve freezes model and builds the member-correspondence map of every
// class and contract class it declares.
func Resolve(model *contract.Model) (*Map, error) {
	model.Freeze()
	r := &resolver{
		model: model,
		out: &Map{
			Model:   model,
			index:   make(map[string]*TypeResolution),
			callees: make(map[string][]contract.Member),
		},
	}

	if err := r.resolveCalls(); err != nil {
		return nil, err
	}
	for _, decl := range model.Types() {
		var (
			res *TypeResolution
			err error
		)
		switch decl.Kind {
		case contract.TypeClass:
			res, err = r.resolveClass(decl)
		case contract.TypeContractClass:
			res, err = r.resolveContractClass(decl)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", decl.Name, err)
		}
		r.out.Types = append(r.out.Types, res)
		r.out.index[res.Type] = res
	}
	r.reportUnusedAbbreviators()
	return r.out, nil
}

// resolveCalls turns the abbreviator names recorded by DeclareCall into
// members, producing the call edges.
func (r *resolver) resolveCalls() error {
	for _, decl := range r.model.Types() {
		for _, caller := range r.model.Members(decl.Name) {
			for _, name := range r.model.Calls(caller) {
				callee, ok := r.model.FindAbbreviator(caller.Owner, name)
				if !ok {
					return contract.NewAnalysisError(contract.CodeUnresolvedMember,
						"%s calls %s, which is not an abbreviator of %s", caller.ID(), name, caller.Owner)
				}
				r.out.Edges = append(r.out.Edges, Edge{Caller: caller, Callee: callee})
				r.out.callees[caller.ID()] = append(r.out.callees[caller.ID()], callee)
			}
		}
	}
	return nil
}

func (r *resolver) resolveClass(decl *contract.TypeDecl) (*TypeResolution, error) {
	res := &TypeResolution{
		Type:        decl.Name,
		Kind:        decl.Kind,
		Interfaces:  decl.Implements,
		bySignature: make(map[string]*Correspondence),
	}
	res.Invariants = appendUnique(res.Invariants, r.model.Invariants(decl.Name)...)

	for _, iface := range decl.Implements {
		idecl, ok := r.model.Type(iface)
		if !ok || idecl.Kind != contract.TypeInterface {
			return nil, contract.NewAnalysisError(contract.CodeUnknownType,
				"%s implements %q, which is not a declared interface", decl.Name, iface)
		}
		contractClass, bound := r.model.ContractClassFor(iface)

		for _, im := range r.model.Members(iface) {
			sig := im.Signature()
			if prev, dup := res.Member(sig); dup {
				return nil, contract.NewAnalysisError(contract.CodeAmbiguousMember,
					"%s receives %s from both %s and %s", decl.Name, sig, prev.Interface, iface)
			}

			impl, ok := r.model.Lookup(decl.Name, sig)
			if !ok {
				return nil, contract.NewMissingImplementationError(decl.Name, iface, sig)
			}
			corr := &Correspondence{Interface: iface, Signature: sig, Impl: impl}

			if bound {
				cm, ok := r.model.Lookup(contractClass, sig)
				if !ok {
					return nil, contract.NewMissingContractMemberError(iface, contractClass, sig)
				}
				corr.Contract = &cm
				corr.Synthesized = append(corr.Synthesized, synthesize(cm)...)
			}
			corr.Synthesized = appendUnique(corr.Synthesized, synthesize(impl)...)

			if hasRequires(r.model.Contracts(impl)) {
				r.diag(tt.Issue{
					Code:     CodePreconditionStrengthened,
					Severity: tt.SeverityWarning,
					Type:     decl.Name,
					Member:   impl.ID(),
					Message:  fmt.Sprintf("%s adds preconditions to %s inherited from %s", impl.ID(), sig, iface),
					Note:     "implementations may weaken but not strengthen inherited preconditions",
				})
			}
			res.add(corr)
		}

		res.Invariants = appendUnique(res.Invariants, r.model.Invariants(iface)...)
		if bound {
			res.Invariants = appendUnique(res.Invariants, r.model.Invariants(contractClass)...)
		}
	}

	r.addOwnMembers(res)
	return res, nil
}

// resolveContractClass records the contract class's own accessors and
// methods so its invariants attach to them as well.
func (r *resolver) resolveContractClass(decl *contract.TypeDecl) (*TypeResolution, error) {
	res := &TypeResolution{
		Type:        decl.Name,
		Kind:        decl.Kind,
		Interfaces:  decl.Implements,
		bySignature: make(map[string]*Correspondence),
	}
	res.Invariants = appendUnique(res.Invariants, r.model.Invariants(decl.Name)...)

	var boundTo []string
	for _, iface := range decl.Implements {
		if c, ok := r.model.ContractClassFor(iface); ok && c == decl.Name {
			boundTo = append(boundTo, iface)
		}
	}

	for _, m := range r.model.Members(decl.Name) {
		if r.model.IsAbbreviator(m) {
			continue
		}
		iface := declaringInterface(r.model, boundTo, m.Signature())
		if iface == "" && len(r.model.Contracts(m)) > 0 {
			// abbreviators were skipped above, so this is a genuinely
			// unrelated member carrying contracts
			r.diag(tt.Issue{
				Code:     CodeContractClassForeignMember,
				Severity: tt.SeverityWarning,
				Type:     decl.Name,
				Member:   m.ID(),
				Message:  fmt.Sprintf("contract class %s declares contracts on %s, which is not part of the annotated interface", decl.Name, m.Signature()),
			})
		}
		res.add(&Correspondence{
			Interface:   iface,
			Signature:   m.Signature(),
			Impl:        m,
			Synthesized: synthesize(m),
		})
	}
	return res, nil
}

func (r *resolver) addOwnMembers(res *TypeResolution) {
	for _, m := range r.model.Members(res.Type) {
		if _, done := res.Member(m.Signature()); done {
			continue
		}
		if r.model.IsAbbreviator(m) {
			continue
		}
		res.add(&Correspondence{
			Signature:   m.Signature(),
			Impl:        m,
			Synthesized: synthesize(m),
		})
	}
}

func (r *resolver) reportUnusedAbbreviators() {
	called := make(map[string]bool, len(r.out.Edges))
	for _, e := range r.out.Edges {
		called[e.Callee.ID()] = true
	}
	for _, decl := range r.model.Types() {
		for _, m := range r.model.Members(decl.Name) {
			if r.model.IsAbbreviator(m) && !called[m.ID()] {
				r.diag(tt.Issue{
					Code:     CodeUnusedAbbreviator,
					Severity: tt.SeverityInfo,
					Type:     decl.Name,
					Member:   m.ID(),
					Message:  fmt.Sprintf("abbreviator %s is never invoked", m.ID()),
				})
			}
		}
	}
}

func (r *resolver) diag(issue tt.Issue) {
	issue.Category = tt.CategoryHierarchy
	r.out.Diagnostics = append(r.out.Diagnostics, issue)
}

func declaringInterface(model *contract.Model, ifaces []string, signature string) string {
	for _, iface := range ifaces {
		if _, ok := model.Lookup(iface, signature); ok {
			return iface
		}
	}
	return ""
}

// synthesize returns the identity contract of an auto-implemented accessor:
// a getter returns the property value, a setter stores its argument.
func synthesize(m contract.Member) []contract.Clause {
	if !m.Auto {
		return nil
	}
	var pred minilogic.Expr
	switch m.Kind {
	case contract.MemberGetter:
		pred = minilogic.Eq(minilogic.Var(ResultName), minilogic.Var(m.Name))
	case contract.MemberSetter:
		pred = minilogic.Eq(minilogic.Var(m.Name), minilogic.Var(ValueName))
	default:
		return nil
	}
	return []contract.Clause{{
		Kind:      contract.Ensures,
		Predicate: contract.Expr(pred),
		Origin:    contract.Origin{Kind: contract.OriginSynthesized, Source: m.ID()},
	}}
}

// Snapshot names used by synthesized accessor contracts.
const (
	ResultName = "result"
	ValueName  = "value"
)

func hasRequires(clauses []contract.Clause) bool {
	for _, c := range clauses {
		if c.Kind == contract.Requires {
			return true
		}
	}
	return false
}

func appendUnique(dst []contract.Clause, src ...contract.Clause) []contract.Clause {
	for _, c := range src {
		dup := false
		for _, d := range dst {
			if d.Identity() == c.Identity() {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, c)
		}
	}
	return dst
}
