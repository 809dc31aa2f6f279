package contract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFooModel(t *testing.T) *Model {
	t.Helper()
	m := NewModel()
	require.NoError(t, m.DeclareType("IFoo", TypeInterface))
	require.NoError(t, m.DeclareType("ContractsForIFoo", TypeContractClass, "IFoo"))
	require.NoError(t, m.DeclareType("Foo", TypeClass, "IFoo"))
	return m
}

func TestDeclareInvariantRejectsDuplicates(t *testing.T) {
	t.Parallel()
	m := newFooModel(t)

	require.NoError(t, m.DeclareInvariant("ContractsForIFoo", MustPredicate("TotalColumns == 80")))
	require.NoError(t, m.DeclareInvariant("ContractsForIFoo", MustPredicate("CurrentColumn >= 0")))

	err := m.DeclareInvariant("ContractsForIFoo", MustPredicate("TotalColumns == 80"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateDeclaration))

	var dup *DuplicateDeclarationError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "ContractsForIFoo", dup.Subject)

	assert.Len(t, m.Invariants("ContractsForIFoo"), 2)
}

func TestDeclareInvariantUnknownType(t *testing.T) {
	t.Parallel()
	m := NewModel()
	err := m.DeclareInvariant("Nope", MustPredicate("x == 1"))
	assert.Equal(t, CodeUnknownType, CodeOf(err))
}

func TestInvariantCannotReferToOld(t *testing.T) {
	t.Parallel()
	m := newFooModel(t)
	err := m.DeclareInvariant("Foo", MustPredicate("old(x) == x"))
	assert.True(t, errors.Is(err, ErrInvalidPredicate))
}

func TestDeclareContract(t *testing.T) {
	t.Parallel()
	m := newFooModel(t)
	bar := Method("ContractsForIFoo", "Bar")

	require.NoError(t, m.DeclareContract(bar, Requires, MustPredicate("CurrentColumn == 0"), false))
	require.NoError(t, m.DeclareContract(bar, Ensures, MustPredicate("old(CurrentColumn) == CurrentColumn"), false))

	clauses := m.Contracts(bar)
	require.Len(t, clauses, 2)
	assert.Equal(t, Requires, clauses[0].Kind)
	assert.False(t, clauses[0].RefersToOld)
	assert.True(t, clauses[1].RefersToOld, "old() must set the flag even when the caller did not")
	assert.Equal(t, Origin{Kind: OriginDeclared, Source: "ContractsForIFoo::Bar()"}, clauses[1].Origin)

	// member is declared implicitly
	_, ok := m.Lookup("ContractsForIFoo", "Bar()")
	assert.True(t, ok)

	err := m.DeclareContract(bar, Ensures, MustPredicate("old(CurrentColumn) == CurrentColumn"), true)
	assert.True(t, errors.Is(err, ErrDuplicateDeclaration))

	err = m.DeclareContract(bar, Invariant, MustPredicate("x == 1"), false)
	assert.Equal(t, CodeInvalidPredicate, CodeOf(err))

	err = m.DeclareContract(bar, Requires, MustPredicate("old(x) == 1"), false)
	assert.Equal(t, CodeInvalidPredicate, CodeOf(err))
}

func TestDeclareAbbreviator(t *testing.T) {
	t.Parallel()

	unchanged, err := NewClause(Ensures, "old(CurrentColumn) == CurrentColumn")
	require.NoError(t, err)

	tests := []struct {
		name    string
		setup   func(m *Model) error
		member  Member
		clauses []Clause
		code    Code
	}{
		{
			name:    "valid",
			member:  Method("ContractsForIFoo", "ValidateColumnUnchanged"),
			clauses: []Clause{unchanged},
		},
		{
			name: "member already has contracts",
			setup: func(m *Model) error {
				return m.DeclareContract(Method("ContractsForIFoo", "Check"), Ensures, MustPredicate("x == 1"), false)
			},
			member:  Method("ContractsForIFoo", "Check"),
			clauses: []Clause{unchanged},
			code:    CodeInvalidAbbreviator,
		},
		{
			name:   "empty body",
			member: Method("ContractsForIFoo", "Empty"),
			code:   CodeInvalidAbbreviator,
		},
		{
			name:   "invariant in body",
			member: Method("ContractsForIFoo", "WithInvariant"),
			clauses: []Clause{
				{Kind: Invariant, Predicate: MustPredicate("x == 1")},
			},
			code: CodeInvalidAbbreviator,
		},
		{
			name:    "not a method",
			member:  Getter("ContractsForIFoo", "TotalColumns"),
			clauses: []Clause{unchanged},
			code:    CodeInvalidAbbreviator,
		},
		{
			name: "declared twice",
			setup: func(m *Model) error {
				return m.DeclareAbbreviator(Method("ContractsForIFoo", "Twice"), []Clause{unchanged})
			},
			member:  Method("ContractsForIFoo", "Twice"),
			clauses: []Clause{unchanged},
			code:    CodeDuplicateDeclaration,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := newFooModel(t)
			if tt.setup != nil {
				require.NoError(t, tt.setup(m))
			}
			err := m.DeclareAbbreviator(tt.member, tt.clauses)
			if tt.code == "" {
				require.NoError(t, err)
				body, ok := m.Abbreviator(tt.member)
				require.True(t, ok)
				require.Len(t, body, len(tt.clauses))
				assert.Equal(t, OriginAbbreviator, body[0].Origin.Kind)
				return
			}
			assert.Equal(t, tt.code, CodeOf(err), "got %v", err)
		})
	}
}

func TestContractOnAbbreviatorIsRejected(t *testing.T) {
	t.Parallel()
	m := newFooModel(t)
	abbrev := Method("ContractsForIFoo", "ValidateColumnUnchanged")
	require.NoError(t, m.DeclareAbbreviator(abbrev, []Clause{
		{Kind: Ensures, Predicate: MustPredicate("old(CurrentColumn) == CurrentColumn")},
	}))

	err := m.DeclareContract(abbrev, Ensures, MustPredicate("x == 1"), false)
	var invalid *InvalidAbbreviatorError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, abbrev.ID(), invalid.Member)

	found, ok := m.FindAbbreviator("ContractsForIFoo", "ValidateColumnUnchanged")
	require.True(t, ok)
	assert.Equal(t, abbrev, found)
}

func TestDeclareMemberAfterImplicitDeclaration(t *testing.T) {
	t.Parallel()
	m := newFooModel(t)

	snapshot := Method("Foo", "Snapshot")
	require.NoError(t, m.DeclareContract(snapshot, Ensures, MustPredicate("result == 1"), false))
	require.NoError(t, m.DeclareCall(Method("Foo", "Reset"), "Abbrev"))

	snapshot.Pure = true
	require.NoError(t, m.DeclareMember(snapshot))
	got, ok := m.Lookup("Foo", "Snapshot()")
	require.True(t, ok)
	assert.True(t, got.Pure)
	assert.Len(t, m.Contracts(got), 1)

	reset := Method("Foo", "Reset")
	reset.Private = true
	require.NoError(t, m.DeclareMember(reset))
	got, ok = m.Lookup("Foo", "Reset()")
	require.True(t, ok)
	assert.True(t, got.Private)
	assert.Equal(t, []string{"Abbrev"}, m.Calls(got))

	var ids []string
	for _, member := range m.Members("Foo") {
		ids = append(ids, member.ID())
	}
	assert.Equal(t, 1, countOf(ids, "Foo::Snapshot()"))
	assert.Equal(t, 1, countOf(ids, "Foo::Reset()"))

	err := m.DeclareMember(snapshot)
	assert.True(t, errors.Is(err, ErrDuplicateDeclaration))
}

func countOf(ids []string, id string) int {
	n := 0
	for _, s := range ids {
		if s == id {
			n++
		}
	}
	return n
}

func TestBindContractClass(t *testing.T) {
	t.Parallel()
	m := newFooModel(t)
	require.NoError(t, m.DeclareType("OtherContracts", TypeContractClass, "IFoo"))

	require.NoError(t, m.BindContractClass("IFoo", "ContractsForIFoo"))
	require.NoError(t, m.BindContractClass("IFoo", "ContractsForIFoo"), "rebinding to the same class is a no-op")

	err := m.BindContractClass("IFoo", "OtherContracts")
	var conflict *ConflictingBindingError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "ContractsForIFoo", conflict.Existing)
	assert.Equal(t, "OtherContracts", conflict.Requested)

	c, ok := m.ContractClassFor("IFoo")
	assert.True(t, ok)
	assert.Equal(t, "ContractsForIFoo", c)

	assert.Equal(t, CodeUnknownType, CodeOf(m.BindContractClass("Foo", "ContractsForIFoo")))
}

func TestBindContractClassKinds(t *testing.T) {
	t.Parallel()
	m := NewModel()
	require.NoError(t, m.DeclareType("IQ", TypeInterface))
	require.NoError(t, m.DeclareType("Q", TypeClass, "IQ"))
	require.NoError(t, m.DeclareType("QC", TypeContractClass))

	assert.Equal(t, CodeUnknownType, CodeOf(m.BindContractClass("IQ", "Q")))
	_, bound := m.ContractClassFor("IQ")
	assert.False(t, bound)

	require.NoError(t, m.BindContractClass("IQ", "QC"))
	require.NoError(t, m.BindContractClass("IQ", "QC"))
	qc, ok := m.Type("QC")
	require.True(t, ok)
	assert.Equal(t, []string{"IQ"}, qc.Implements)
}

func TestFrozenModelRejectsDeclarations(t *testing.T) {
	t.Parallel()
	m := newFooModel(t)
	m.Freeze()

	errs := []error{
		m.DeclareType("Bar", TypeClass),
		m.DeclareMember(Getter("Foo", "X")),
		m.DeclareInvariant("Foo", MustPredicate("x == 1")),
		m.DeclareContract(Method("Foo", "Bar"), Ensures, MustPredicate("x == 1"), false),
		m.DeclareCall(Method("Foo", "Bar"), "Abbrev"),
		m.BindContractClass("IFoo", "ContractsForIFoo"),
	}
	for i, err := range errs {
		assert.True(t, errors.Is(err, ErrModelFrozen), "declaration %d: %v", i, err)
	}
}

func TestWrappedErrorKeepsCode(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("loading manifest: %w", NewAbbreviatorCycleError([]string{"A", "B", "A"}))
	assert.Equal(t, CodeAbbreviatorCycle, CodeOf(err))
	assert.True(t, errors.Is(err, ErrAbbreviatorCycle))
	assert.Contains(t, err.Error(), "A -> B -> A")
}

func TestMemberSignatures(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "CurrentColumn.get", Getter("IFoo", "CurrentColumn").Signature())
	assert.Equal(t, "CurrentColumn.set", Setter("IFoo", "CurrentColumn").Signature())
	assert.Equal(t, "Bar()", Method("IFoo", "Bar").Signature())
	assert.Equal(t, ".ctor()", Constructor("Foo").Signature())
	assert.Equal(t, "Foo::Bar()", Method("IFoo", "Bar").On("Foo").ID())

	assert.True(t, Setter("Foo", "X").Mutating())
	assert.False(t, Getter("Foo", "X").Mutating())
	assert.False(t, Member{Owner: "Foo", Name: "Peek", Kind: MemberMethod, Pure: true}.Mutating())
	assert.False(t, Constructor("Foo").EntryPoint())
}
