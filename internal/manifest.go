package internal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/ccheck/internal/contract"
	"github.com/gnolang/ccheck/internal/minilogic"
	"github.com/gnolang/ccheck/internal/nolint"
)

// ManifestExt is the file suffix of contract manifests.
const ManifestExt = ".contracts.yaml"

// Manifest is the YAML description of a type hierarchy, its contracts and
// the invocations to check against them.
type Manifest struct {
	Name        string       `yaml:"name"`
	Types       []TypeSpec   `yaml:"types"`
	Invocations []Invocation `yaml:"invocations,omitempty"`
}

// TypeSpec declares an interface, class or contract class.
type TypeSpec struct {
	Name       string   `yaml:"name"`
	Kind       string   `yaml:"kind"`
	Implements []string `yaml:"implements,omitempty"`
	// ContractFor binds this contract class to an interface.
	ContractFor string       `yaml:"contract-for,omitempty"`
	Invariants  []string     `yaml:"invariants,omitempty"`
	Members     []MemberSpec `yaml:"members,omitempty"`
	Nolint      []string     `yaml:"nolint,omitempty"`
}

// MemberSpec declares a member together with its contracts.
type MemberSpec struct {
	Name        string   `yaml:"name"`
	Kind        string   `yaml:"kind,omitempty"`
	Params      string   `yaml:"params,omitempty"`
	Auto        bool     `yaml:"auto,omitempty"`
	Pure        bool     `yaml:"pure,omitempty"`
	Private     bool     `yaml:"private,omitempty"`
	Abbreviator bool     `yaml:"abbreviator,omitempty"`
	Requires    []string `yaml:"requires,omitempty"`
	Ensures     []string `yaml:"ensures,omitempty"`
	Calls       []string `yaml:"calls,omitempty"`
	Nolint      []string `yaml:"nolint,omitempty"`
}

// Invocation is one observed call: the member's signature on a type and
// the state snapshots around it.
type Invocation struct {
	Name   string         `yaml:"name,omitempty"`
	Type   string         `yaml:"type"`
	Member string         `yaml:"member"`
	Before map[string]any `yaml:"before,omitempty"`
	After  map[string]any `yaml:"after,omitempty"`
}

// Label names the invocation in diagnostics.
func (inv Invocation) Label() string {
	if inv.Name != "" {
		return inv.Name
	}
	return inv.Type + "::" + inv.Member
}

// Snapshots converts the YAML snapshots into environments.
func (inv Invocation) Snapshots() (before, after *minilogic.Env) {
	return minilogic.EnvFromMap(inv.Before), minilogic.EnvFromMap(inv.After)
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseManifest decodes a manifest, rejecting unknown fields.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty manifest")
		}
		return nil, fmt.Errorf("error parsing manifest: %w", err)
	}
	return &m, nil
}

func (s MemberSpec) member(owner string) (contract.Member, error) {
	kind, err := contract.ParseMemberKind(s.Kind)
	if err != nil {
		return contract.Member{}, err
	}
	m := contract.Member{
		Owner:   owner,
		Name:    s.Name,
		Kind:    kind,
		Params:  s.Params,
		Auto:    s.Auto,
		Pure:    s.Pure,
		Private: s.Private,
	}
	if kind == contract.MemberConstructor && m.Name == "" {
		m.Name = ".ctor"
	}
	return m, nil
}

// Build registers the manifest's declarations into a new model. Types are
// declared first so that members, bindings and calls may refer to types
// declared later in the file.
func (m *Manifest) Build() (*contract.Model, error) {
	model := contract.NewModel()

	for _, ts := range m.Types {
		kind, err := contract.ParseTypeKind(ts.Kind)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", ts.Name, err)
		}
		if err := model.DeclareType(ts.Name, kind, ts.Implements...); err != nil {
			return nil, err
		}
	}

	for _, ts := range m.Types {
		if ts.ContractFor != "" {
			if err := model.BindContractClass(ts.ContractFor, ts.Name); err != nil {
				return nil, err
			}
		}
		for _, src := range ts.Invariants {
			p, err := contract.ParsePredicate(src)
			if err != nil {
				return nil, fmt.Errorf("invariant of %s: %w", ts.Name, err)
			}
			if err := model.DeclareInvariant(ts.Name, p); err != nil {
				return nil, err
			}
		}
		for _, ms := range ts.Members {
			if err := declareMember(model, ts.Name, ms); err != nil {
				return nil, err
			}
		}
	}
	return model, nil
}

func declareMember(model *contract.Model, owner string, ms MemberSpec) error {
	member, err := ms.member(owner)
	if err != nil {
		return fmt.Errorf("member %s of %s: %w", ms.Name, owner, err)
	}

	if ms.Abbreviator {
		var body []contract.Clause
		for _, group := range []struct {
			kind contract.ClauseKind
			srcs []string
		}{{contract.Requires, ms.Requires}, {contract.Ensures, ms.Ensures}} {
			for _, src := range group.srcs {
				c, err := contract.NewClause(group.kind, src)
				if err != nil {
					return fmt.Errorf("%s: %w", member.ID(), err)
				}
				body = append(body, c)
			}
		}
		if err := model.DeclareAbbreviator(member, body); err != nil {
			return err
		}
	} else {
		if err := model.DeclareMember(member); err != nil {
			return err
		}
		for _, src := range ms.Requires {
			if err := declareClause(model, member, contract.Requires, src); err != nil {
				return err
			}
		}
		for _, src := range ms.Ensures {
			if err := declareClause(model, member, contract.Ensures, src); err != nil {
				return err
			}
		}
	}

	for _, name := range ms.Calls {
		if err := model.DeclareCall(member, name); err != nil {
			return err
		}
	}
	return nil
}

func declareClause(model *contract.Model, member contract.Member, kind contract.ClauseKind, src string) error {
	p, err := contract.ParsePredicate(src)
	if err != nil {
		return fmt.Errorf("%s: %w", member.ID(), err)
	}
	return model.DeclareContract(member, kind, p, false)
}

// Suppressions collects the nolint lists of the manifest.
func (m *Manifest) Suppressions() (*nolint.Manager, error) {
	mgr := nolint.NewManager()
	for _, ts := range m.Types {
		mgr.Add(nolint.Scope{Type: ts.Name}, ts.Nolint...)
		for _, ms := range ts.Members {
			if len(ms.Nolint) == 0 {
				continue
			}
			member, err := ms.member(ts.Name)
			if err != nil {
				return nil, fmt.Errorf("member %s of %s: %w", ms.Name, ts.Name, err)
			}
			mgr.Add(nolint.Scope{Type: ts.Name, Member: member.ID()}, ms.Nolint...)
		}
	}
	return mgr, nil
}
