package formula

import (
	"fmt"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/internalerr"
)

// TermState classifies how a term is quantified. Symbol marks a grounded
// constant rather than a variable. The numeric values are the wire values
// of the ldict "state" field.
type TermState int

const (
	Existential TermState = 1
	Free        TermState = 2
	Universal   TermState = 3
	Symbol      TermState = 4
)

// String returns the lowercase name of the state.
func (s TermState) String() string {
	switch s {
	case Existential:
		return "existential"
	case Free:
		return "free"
	case Universal:
		return "universal"
	case Symbol:
		return "symbol"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Term is a logical variable or constant appearing in an atomic formula.
// Name is the uniqueness key within a formula.
type Term struct {
	Name  string
	State TermState

	// EntityIDs carries grounded entity ids when the wire form supplies
	// them. Grounding bookkeeping otherwise lives in the query object,
	// not on the term.
	EntityIDs []int64

	// parent is the atomic this term appears in. Non-owning, set at
	// construction or parse time.
	parent *Atomic
}

// NewTerm creates a term with the given quantifier state and name.
func NewTerm(state TermState, name string) *Term {
	return &Term{State: state, Name: name}
}

// Parent returns the atomic this term appears in, or nil if the term is
// not attached to one.
func (t *Term) Parent() *Atomic { return t.parent }

// String returns the canonical form of the term, which is its name.
func (t *Term) String() string { return t.Name }

func (t *Term) IsExistential() bool { return t.State == Existential }
func (t *Term) IsFree() bool        { return t.State == Free }
func (t *Term) IsUniversal() bool   { return t.State == Universal }

// IsSymbol reports whether the term is a grounded constant.
func (t *Term) IsSymbol() bool { return t.State == Symbol }

// ToLDict returns the nested-map wire form of the term.
func (t *Term) ToLDict() map[string]any {
	ids := t.EntityIDs
	if ids == nil {
		ids = []int64{}
	}
	return map[string]any{
		"op": OpTerm,
		"args": map[string]any{
			"state":          int(t.State),
			"name":           t.Name,
			"entity_id_list": ids,
		},
	}
}

func parseTerm(ldict map[string]any) (*Term, error) {
	if err := CheckLDict(ldict); err != nil {
		return nil, err
	}
	op, args, _ := opArgs(ldict)
	if op != OpTerm {
		return nil, fmt.Errorf("%w: expected %q, got %q", internalerr.ErrMalformedLDict, OpTerm, op)
	}

	name, err := stringArg(args, "name")
	if err != nil {
		return nil, err
	}
	state, err := intArg(args, "state")
	if err != nil {
		return nil, err
	}
	ids, err := int64ListArg(args, "entity_id_list")
	if err != nil {
		return nil, err
	}

	term := NewTerm(TermState(state), name)
	term.EntityIDs = ids
	return term, nil
}
