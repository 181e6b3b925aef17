// Package formula models existential first-order formulas in disjunctive
// normal form over a relational universe. A formula tree is built from
// Atomic leaves combined by Negation, Conjunction and Disjunction nodes,
// and round-trips through a nested-map ("ldict") wire form.
//
// The DNF shape, existential-only quantification and negation applied
// directly to atomics are caller assumptions; the data model itself does
// not reject other tree shapes.
package formula

import (
	"fmt"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/internalerr"
)

// Wire tags for the ldict form.
const (
	OpTerm = "term"
	OpPred = "pred"
	OpNeg  = "neg"
	OpConj = "conj"
	OpDisj = "disj"
)

// Formula is a node of a formula tree. Atomic is the only leaf; Negation,
// Conjunction and Disjunction compose sub-formulas.
type Formula interface {
	// Op returns the ldict tag of the node.
	Op() string

	// String returns the canonical human-readable form. This string is
	// also the uniqueness key used for indexing atomics.
	String() string

	// ToLDict returns the nested-map wire form of the subtree.
	ToLDict() map[string]any

	// Atomics maps each atomic's canonical string to the atomic itself.
	// Duplicate canonical strings overwrite; callers needing collision
	// detection walk the tree with EachAtomic.
	Atomics() map[string]*Atomic

	// EachAtomic visits every atomic leaf in deterministic left-to-right
	// declaration order.
	EachAtomic(fn func(*Atomic))

	// NumAtomics counts the atomic leaves of the subtree.
	NumAtomics() int
}

// Parse reconstructs a formula tree from its ldict form, dispatching on
// the "op" tag. The input is validated with CheckLDict first. An
// unrecognized tag (including "term", which is not a formula by itself)
// is an ErrUnsupportedOp.
func Parse(ldict map[string]any) (Formula, error) {
	if err := CheckLDict(ldict); err != nil {
		return nil, err
	}
	op, _, err := opArgs(ldict)
	if err != nil {
		return nil, err
	}
	switch op {
	case OpPred:
		return parseAtomic(ldict)
	case OpNeg:
		return parseNegation(ldict)
	case OpConj:
		return parseConjunction(ldict)
	case OpDisj:
		return parseDisjunction(ldict)
	default:
		return nil, fmt.Errorf("%w: %q", internalerr.ErrUnsupportedOp, op)
	}
}
