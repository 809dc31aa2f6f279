// Package contracttest builds contract models shared by tests.
package contracttest

import (
	"github.com/gnolang/ccheck/internal/contract"
)

// Names used by the IFoo model.
const (
	IFoo             = "IFoo"
	ContractsForIFoo = "ContractsForIFoo"
	Foo              = "Foo"

	TotalColumns            = "TotalColumns"
	CurrentColumn           = "CurrentColumn"
	Bar                     = "Bar"
	ValidateColumnUnchanged = "ValidateColumnUnchanged"
)

// Invariants declared by ContractsForIFoo.
var FooInvariants = []string{
	"TotalColumns == 80",
	"CurrentColumn >= 0",
	"CurrentColumn < TotalColumns",
}

// ColumnUnchanged is the body of ValidateColumnUnchanged.
const ColumnUnchanged = "old(CurrentColumn) == CurrentColumn"

// FooModel declares:
//
//	interface IFoo { int TotalColumns { get; } int CurrentColumn { get; set; } void Bar(); }
//
// bound to the abstract contract class ContractsForIFoo whose accessors are
// all auto-implemented, which declares FooInvariants and whose Bar() calls
// the abbreviator ValidateColumnUnchanged, and the concrete class Foo with
// explicit accessors, Bar() and a constructor.
func FooModel() (*contract.Model, error) {
	m := contract.NewModel()

	steps := []func() error{
		func() error { return m.DeclareType(IFoo, contract.TypeInterface) },
		func() error { return m.DeclareType(ContractsForIFoo, contract.TypeContractClass, IFoo) },
		func() error { return m.DeclareType(Foo, contract.TypeClass, IFoo) },
		func() error { return m.BindContractClass(IFoo, ContractsForIFoo) },

		func() error { return m.DeclareMember(contract.Getter(IFoo, TotalColumns)) },
		func() error { return m.DeclareMember(contract.Getter(IFoo, CurrentColumn)) },
		func() error { return m.DeclareMember(contract.Setter(IFoo, CurrentColumn)) },
		func() error { return m.DeclareMember(contract.Method(IFoo, Bar)) },

		func() error { return m.DeclareMember(auto(contract.Getter(ContractsForIFoo, TotalColumns))) },
		func() error { return m.DeclareMember(auto(contract.Getter(ContractsForIFoo, CurrentColumn))) },
		func() error { return m.DeclareMember(auto(contract.Setter(ContractsForIFoo, CurrentColumn))) },
		func() error { return m.DeclareMember(contract.Method(ContractsForIFoo, Bar)) },
		func() error {
			c, err := contract.NewClause(contract.Ensures, ColumnUnchanged)
			if err != nil {
				return err
			}
			abbrev := contract.Method(ContractsForIFoo, ValidateColumnUnchanged)
			abbrev.Pure = true
			return m.DeclareAbbreviator(abbrev, []contract.Clause{c})
		},
		func() error {
			return m.DeclareCall(contract.Method(ContractsForIFoo, Bar), ValidateColumnUnchanged)
		},

		func() error { return m.DeclareMember(contract.Getter(Foo, TotalColumns)) },
		func() error {
			setter := contract.Setter(Foo, TotalColumns)
			setter.Private = true
			return m.DeclareMember(setter)
		},
		func() error { return m.DeclareMember(contract.Getter(Foo, CurrentColumn)) },
		func() error { return m.DeclareMember(contract.Setter(Foo, CurrentColumn)) },
		func() error { return m.DeclareMember(contract.Method(Foo, Bar)) },
		func() error { return m.DeclareMember(contract.Constructor(Foo)) },
	}
	for _, inv := range FooInvariants {
		inv := inv
		steps = append(steps, func() error {
			p, err := contract.ParsePredicate(inv)
			if err != nil {
				return err
			}
			return m.DeclareInvariant(ContractsForIFoo, p)
		})
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func auto(m contract.Member) contract.Member {
	m.Auto = true
	return m
}
