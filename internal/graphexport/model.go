package graphexport

// TypeNode is a declared interface, class or contract class.
type TypeNode struct {
	Name       string
	Kind       string
	Invariants int
}

// MemberNode is a member of a declared type.
type MemberNode struct {
	ID          string // Owner::Signature
	Owner       string
	Signature   string
	Kind        string
	Abbreviator bool
	Private     bool
	Clauses     int
}

// TypeEdge links two types, for IMPLEMENTS and CONTRACT_FOR.
type TypeEdge struct {
	From string
	To   string
}

// MemberEdge links two members, for CORRESPONDS_TO and CALLS.
type MemberEdge struct {
	From string
	To   string
}

// Graph is the node and edge set of one resolved hierarchy.
type Graph struct {
	Types       []TypeNode
	Members     []MemberNode
	Implements  []TypeEdge
	ContractFor []TypeEdge

	// Correspondences link an implementing member to the contract-class
	// member that carries its contracts.
	Correspondences []MemberEdge
	Calls           []MemberEdge
}
