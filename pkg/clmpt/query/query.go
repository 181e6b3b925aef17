// Package query indexes one EFO-1 formula skeleton and accumulates its
// grounded instances: per-relation and per-symbol id lists plus the
// parallel easy/hard/noisy answer sets, one entry per sampled grounding.
package query

import (
	"fmt"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/formula"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/internalerr"
)

// AnswerSet maps a free-variable name to the entity ids answering it
// under one grounding instance.
type AnswerSet map[string][]int64

// Query is the grounded, indexed view of one formula skeleton across many
// sampled instances. It is not safe for concurrent mutation; callers
// accumulating groundings from several workers must serialize externally.
type Query struct {
	f formula.Formula

	atomicOrder []string
	atomics     map[string]*formula.Atomic

	termOrder []string
	terms     map[string]*formula.Term

	relOrder []string
	relIDs   map[string][]int64

	termIDs map[string][]int64

	// termAtomics is the term/atomic adjacency: term name to the atomic
	// keys it appears in, in atomic declaration order. A term appearing
	// as both head and tail of one atomic lists that atomic twice.
	termAtomics map[string][]string

	easy  []AnswerSet
	hard  []AnswerSet
	noisy []AnswerSet
}

// New indexes the formula. Two structurally distinct atomics sharing a
// canonical string are rejected with ErrDuplicateAtomic; the same atomic
// object reappearing (a shared edge across disjuncts) is indexed once.
func New(f formula.Formula) (*Query, error) {
	q := &Query{
		f:           f,
		atomics:     map[string]*formula.Atomic{},
		terms:       map[string]*formula.Term{},
		relIDs:      map[string][]int64{},
		termIDs:     map[string][]int64{},
		termAtomics: map[string][]string{},
	}

	var indexErr error
	f.EachAtomic(func(a *formula.Atomic) {
		if indexErr != nil {
			return
		}
		key := a.String()
		if existing, ok := q.atomics[key]; ok {
			if existing != a {
				indexErr = fmt.Errorf("%w: %q", internalerr.ErrDuplicateAtomic, key)
			}
			return
		}
		q.atomics[key] = a
		q.atomicOrder = append(q.atomicOrder, key)

		if _, ok := q.relIDs[a.Relation]; !ok {
			q.relIDs[a.Relation] = []int64{}
			q.relOrder = append(q.relOrder, a.Relation)
		}

		for _, term := range a.Terms() {
			if _, ok := q.terms[term.Name]; !ok {
				q.termOrder = append(q.termOrder, term.Name)
				q.termIDs[term.Name] = []int64{}
			}
			q.terms[term.Name] = term
		}
	})
	if indexErr != nil {
		return nil, indexErr
	}

	for _, key := range q.atomicOrder {
		a := q.atomics[key]
		q.termAtomics[a.Head.Name] = append(q.termAtomics[a.Head.Name], key)
		q.termAtomics[a.Tail.Name] = append(q.termAtomics[a.Tail.Name], key)
	}

	return q, nil
}

// Formula returns the owned formula tree.
func (q *Query) Formula() formula.Formula { return q.f }

// String returns the canonical string of the owned formula.
func (q *Query) String() string { return q.f.String() }

// Atomics returns the atomic index keyed by canonical string. The map is
// shared; callers must not mutate it.
func (q *Query) Atomics() map[string]*formula.Atomic { return q.atomics }

// AtomicKeys returns the canonical atomic strings in declaration order.
func (q *Query) AtomicKeys() []string { return q.atomicOrder }

// Term returns the term with the given name.
func (q *Query) Term(name string) (*formula.Term, bool) {
	t, ok := q.terms[name]
	return t, ok
}

// TermNames returns all term names in first-appearance order.
func (q *Query) TermNames() []string { return q.termOrder }

// TermAtomics returns the canonical strings of the atomics the named term
// appears in, in declaration order.
func (q *Query) TermAtomics(name string) []string { return q.termAtomics[name] }

// AppendRelationAndSymbols appends one grounded id per key. A key naming
// a known term receives an entity id; any other key must name a known
// relation and receives a relation id — term names take precedence. The
// whole map is validated before any list is touched, so a failed call
// leaves the query unchanged.
func (q *Query) AppendRelationAndSymbols(appendDict map[string]int64) error {
	for k := range appendDict {
		if _, ok := q.terms[k]; ok {
			continue
		}
		if _, ok := q.relIDs[k]; ok {
			continue
		}
		return fmt.Errorf("%w: %q", internalerr.ErrUnknownName, k)
	}
	for k, v := range appendDict {
		if _, ok := q.terms[k]; ok {
			q.termIDs[k] = append(q.termIDs[k], v)
			continue
		}
		q.relIDs[k] = append(q.relIDs[k], v)
	}
	return nil
}

// AppendQAInstance records one grounding instance: the grounded ids plus
// one entry on each of the easy/hard/noisy answer lists. Nil answer sets
// are stored as empty. The call is all-or-nothing: a rejected appendDict
// leaves every list untouched.
func (q *Query) AppendQAInstance(appendDict map[string]int64, easy, hard, noisy AnswerSet) error {
	if err := q.AppendRelationAndSymbols(appendDict); err != nil {
		return err
	}
	if easy == nil {
		easy = AnswerSet{}
	}
	if hard == nil {
		hard = AnswerSet{}
	}
	if noisy == nil {
		noisy = AnswerSet{}
	}
	q.easy = append(q.easy, easy)
	q.hard = append(q.hard, hard)
	q.noisy = append(q.noisy, noisy)
	return nil
}

// HasTermGroundedEntityIDs reports whether the named term has at least
// one grounded entity id.
func (q *Query) HasTermGroundedEntityIDs(name string) bool {
	return len(q.termIDs[name]) > 0
}

// TermGroundedEntityIDs returns the grounded entity ids of the named
// term, one per instance.
func (q *Query) TermGroundedEntityIDs(name string) ([]int64, error) {
	ids, ok := q.termIDs[name]
	if !ok {
		return nil, fmt.Errorf("%w: term %q", internalerr.ErrUnknownName, name)
	}
	return ids, nil
}

// HasPredGroundedRelationIDs reports whether the named relation has at
// least one grounded relation id.
func (q *Query) HasPredGroundedRelationIDs(rel string) bool {
	return len(q.relIDs[rel]) > 0
}

// PredGroundedRelationIDs returns the grounded relation ids of the named
// relation, one per instance.
func (q *Query) PredGroundedRelationIDs(rel string) ([]int64, error) {
	ids, ok := q.relIDs[rel]
	if !ok {
		return nil, fmt.Errorf("%w: relation %q", internalerr.ErrUnknownName, rel)
	}
	return ids, nil
}

// EasyAnswers returns the per-instance easy answer sets.
func (q *Query) EasyAnswers() []AnswerSet { return q.easy }

// HardAnswers returns the per-instance hard answer sets.
func (q *Query) HardAnswers() []AnswerSet { return q.hard }

// NoisyAnswers returns the per-instance noisy answer sets.
func (q *Query) NoisyAnswers() []AnswerSet { return q.noisy }

// FreeVariables returns the terms with free state, keyed by name.
func (q *Query) FreeVariables() map[string]*formula.Term {
	return q.filterTerms(formula.Free)
}

// ExistentialVariables returns the terms with existential state.
func (q *Query) ExistentialVariables() map[string]*formula.Term {
	return q.filterTerms(formula.Existential)
}

// UniversalVariables returns the terms with universal state.
func (q *Query) UniversalVariables() map[string]*formula.Term {
	return q.filterTerms(formula.Universal)
}

// Symbols returns the grounded-constant terms.
func (q *Query) Symbols() map[string]*formula.Term {
	return q.filterTerms(formula.Symbol)
}

func (q *Query) filterTerms(state formula.TermState) map[string]*formula.Term {
	out := map[string]*formula.Term{}
	for name, term := range q.terms {
		if term.State == state {
			out[name] = term
		}
	}
	return out
}

// IsSentence reports whether the formula is closed: no free variables
// means verification, any free variable means answering.
func (q *Query) IsSentence() bool {
	return len(q.FreeVariables()) == 0
}

// QuantifierRank counts the quantified and free variables, excluding
// symbols.
func (q *Query) QuantifierRank() int {
	return len(q.ExistentialVariables()) +
		len(q.UniversalVariables()) +
		len(q.FreeVariables())
}

// NumPredicates counts the atomic leaves of the formula.
func (q *Query) NumPredicates() int { return q.f.NumAtomics() }

// NumInstances returns the common length of the answer lists and of every
// symbol's and relation's grounded-id list. A length mismatch means the
// grounding ingestion broke the per-instance invariant and is reported as
// ErrInconsistentInstances.
func (q *Query) NumInstances() (int, error) {
	n := len(q.easy)
	if len(q.hard) != n {
		return 0, fmt.Errorf("%w: %d easy answers vs %d hard answers",
			internalerr.ErrInconsistentInstances, n, len(q.hard))
	}
	for name := range q.Symbols() {
		if got := len(q.termIDs[name]); got != n {
			return 0, fmt.Errorf("%w: symbol %q has %d grounded ids, want %d",
				internalerr.ErrInconsistentInstances, name, got, n)
		}
	}
	for _, key := range q.atomicOrder {
		rel := q.atomics[key].Relation
		if got := len(q.relIDs[rel]); got != n {
			return 0, fmt.Errorf("%w: relation %q has %d grounded ids, want %d",
				internalerr.ErrInconsistentInstances, rel, got, n)
		}
	}
	return n, nil
}

// AllGroundedIDs flattens every term's entity ids and every relation's
// relation ids, each concatenated in index order across all instances.
func (q *Query) AllGroundedIDs() (entityIDs, relationIDs []int64) {
	for _, name := range q.termOrder {
		entityIDs = append(entityIDs, q.termIDs[name]...)
	}
	for _, rel := range q.relOrder {
		relationIDs = append(relationIDs, q.relIDs[rel]...)
	}
	return entityIDs, relationIDs
}
