package formula

import (
	"fmt"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/internalerr"
)

// Atomic is the leaf of a formula tree: a binary relation applied to two
// terms, i.e. one edge of the query graph. Its canonical string
// "relation(head,tail)" is the uniqueness key used for indexing.
type Atomic struct {
	Relation string
	Head     *Term
	Tail     *Term

	// Negated is set when a negation wraps this atomic directly. It is
	// used downstream to select negated evaluation semantics.
	Negated bool

	// RelationIDs carries grounded relation ids when the wire form
	// supplies them.
	RelationIDs []int64
}

// NewAtomic creates an atomic formula relation(head,tail) and links both
// terms back to it.
func NewAtomic(relation string, head, tail *Term) *Atomic {
	a := &Atomic{Relation: relation, Head: head, Tail: tail}
	head.parent = a
	tail.parent = a
	return a
}

// Op returns the ldict tag of an atomic formula.
func (a *Atomic) Op() string { return OpPred }

// String returns the canonical form "relation(head,tail)".
func (a *Atomic) String() string {
	return fmt.Sprintf("%s(%s,%s)", a.Relation, a.Head.Name, a.Tail.Name)
}

// Terms returns the head and tail terms, in that order.
func (a *Atomic) Terms() []*Term { return []*Term{a.Head, a.Tail} }

// Atomics returns the single-entry map keyed by the canonical string.
func (a *Atomic) Atomics() map[string]*Atomic {
	return map[string]*Atomic{a.String(): a}
}

// EachAtomic visits the atomic itself.
func (a *Atomic) EachAtomic(fn func(*Atomic)) { fn(a) }

// NumAtomics returns 1.
func (a *Atomic) NumAtomics() int { return 1 }

// ToLDict returns the nested-map wire form of the atomic.
func (a *Atomic) ToLDict() map[string]any {
	ids := a.RelationIDs
	if ids == nil {
		ids = []int64{}
	}
	return map[string]any{
		"op": OpPred,
		"args": map[string]any{
			"name":             a.Relation,
			"relation_id_list": ids,
			"head":             a.Head.ToLDict(),
			"tail":             a.Tail.ToLDict(),
		},
	}
}

func parseAtomic(ldict map[string]any) (Formula, error) {
	op, args, err := opArgs(ldict)
	if err != nil {
		return nil, err
	}
	if op != OpPred {
		return nil, fmt.Errorf("%w: expected %q, got %q", internalerr.ErrMalformedLDict, OpPred, op)
	}

	relation, err := stringArg(args, "name")
	if err != nil {
		return nil, err
	}
	ids, err := int64ListArg(args, "relation_id_list")
	if err != nil {
		return nil, err
	}
	headDict, err := mapArg(args, "head")
	if err != nil {
		return nil, err
	}
	tailDict, err := mapArg(args, "tail")
	if err != nil {
		return nil, err
	}

	head, err := parseTerm(headDict)
	if err != nil {
		return nil, fmt.Errorf("head of %s: %w", relation, err)
	}
	tail, err := parseTerm(tailDict)
	if err != nil {
		return nil, fmt.Errorf("tail of %s: %w", relation, err)
	}

	a := NewAtomic(relation, head, tail)
	a.RelationIDs = ids
	return a, nil
}
