// Package clmpt ties the formula model to a knowledge graph: it verifies
// closed EFO-1 sentences and answers open queries by combining relation
// scores with fuzzy logical operators.
package clmpt

import (
	"context"
	"fmt"
	"sort"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/formula"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/predicate"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/query"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/store"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/tnorm"
)

// Engine is the main evaluation facade
type Engine struct {
	store     store.Store
	norm      tnorm.Tnorm
	scorer    predicate.Scorer
	threshold float64
}

// Options configures an Engine instance
type Options struct {
	Store  store.Store
	Tnorm  tnorm.Tnorm
	Scorer predicate.Scorer

	// Threshold is the minimum truth value for an entity to count as an
	// answer. Defaults to 0.5.
	Threshold float64
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	if opts.Tnorm == nil {
		opts.Tnorm = tnorm.Product{}
	}
	if opts.Scorer == nil && opts.Store != nil {
		opts.Scorer = predicate.NewGraphScorer(opts.Store)
	}
	if opts.Threshold <= 0 {
		opts.Threshold = 0.5
	}
	return &Engine{
		store:     opts.Store,
		norm:      opts.Tnorm,
		scorer:    opts.Scorer,
		threshold: opts.Threshold,
	}
}

// Close cleanly shuts down the engine
func (e *Engine) Close() error {
	return e.store.Close()
}

// ScoredEntity is one answer candidate with its truth value.
type ScoredEntity struct {
	Entity int64
	Score  float64
}

// Verify computes the truth value of a closed formula (sentence) under
// grounding instance idx, maximizing over existential variables by exact
// enumeration of the store's entities. Exponential in the quantifier
// rank; intended for the small graphs used in sampling and evaluation.
func (e *Engine) Verify(ctx context.Context, q *query.Query, idx int) (float64, error) {
	if !q.IsSentence() {
		return 0, fmt.Errorf("verify %s: formula has free variables", q)
	}
	relByAtomic, assignment, err := e.instanceGrounding(q, idx)
	if err != nil {
		return 0, err
	}
	vars, err := e.variableOrder(q)
	if err != nil {
		return 0, err
	}
	entities, err := e.store.Entities(ctx)
	if err != nil {
		return 0, err
	}
	return e.maximize(ctx, q.Formula(), relByAtomic, assignment, vars, entities)
}

// Answer computes the truth value of the query for every candidate
// binding of its free variable under grounding instance idx, and returns
// the candidates at or above the engine threshold, best first.
func (e *Engine) Answer(ctx context.Context, q *query.Query, idx int) ([]ScoredEntity, error) {
	free := q.FreeVariables()
	if len(free) != 1 {
		return nil, fmt.Errorf("answer %s: want exactly one free variable, have %d", q, len(free))
	}
	var freeName string
	for name := range free {
		freeName = name
	}

	relByAtomic, assignment, err := e.instanceGrounding(q, idx)
	if err != nil {
		return nil, err
	}
	vars, err := e.variableOrder(q)
	if err != nil {
		return nil, err
	}
	// The free variable is pinned per candidate, not enumerated.
	existentials := vars[:0:0]
	for _, v := range vars {
		if v != freeName {
			existentials = append(existentials, v)
		}
	}

	entities, err := e.store.Entities(ctx)
	if err != nil {
		return nil, err
	}

	var answers []ScoredEntity
	for _, candidate := range entities {
		assignment[freeName] = candidate
		score, err := e.maximize(ctx, q.Formula(), relByAtomic, assignment, existentials, entities)
		if err != nil {
			return nil, err
		}
		if score >= e.threshold {
			answers = append(answers, ScoredEntity{Entity: candidate, Score: score})
		}
	}
	delete(assignment, freeName)

	sort.Slice(answers, func(i, j int) bool {
		if answers[i].Score != answers[j].Score {
			return answers[i].Score > answers[j].Score
		}
		return answers[i].Entity < answers[j].Entity
	})
	return answers, nil
}

// instanceGrounding resolves instance idx into a relation id per atomic
// and an initial assignment holding the grounded symbols.
func (e *Engine) instanceGrounding(q *query.Query, idx int) (map[string]int64, map[string]int64, error) {
	n, err := q.NumInstances()
	if err != nil {
		return nil, nil, err
	}
	if idx < 0 || idx >= n {
		return nil, nil, fmt.Errorf("instance %d out of range, have %d", idx, n)
	}

	relByAtomic := make(map[string]int64)
	for _, key := range q.AtomicKeys() {
		rel := q.Atomics()[key].Relation
		ids, err := q.PredGroundedRelationIDs(rel)
		if err != nil {
			return nil, nil, err
		}
		relByAtomic[key] = ids[idx]
	}

	assignment := make(map[string]int64)
	for name := range q.Symbols() {
		ids, err := q.TermGroundedEntityIDs(name)
		if err != nil {
			return nil, nil, err
		}
		assignment[name] = ids[idx]
	}
	return relByAtomic, assignment, nil
}

// variableOrder plans the enumeration order of the non-symbol variables:
// BFS levels from the free variable when there is one, falling back to
// the first variable in index order, with any disconnected variables
// appended at the end.
func (e *Engine) variableOrder(q *query.Query) ([]string, error) {
	if len(q.UniversalVariables()) > 0 {
		return nil, fmt.Errorf("universal quantification is not supported in EFO-1 evaluation")
	}

	source := ""
	for _, name := range q.TermNames() {
		term, _ := q.Term(name)
		if term.IsSymbol() {
			continue
		}
		if source == "" {
			source = name
		}
		if term.IsFree() {
			source = name
			break
		}
	}
	if source == "" {
		return nil, nil // all terms grounded
	}

	seen := map[string]bool{}
	var order []string
	for _, level := range q.BFSVariableOrdering(source) {
		for _, rv := range level {
			seen[rv.Name] = true
			order = append(order, rv.Name)
		}
	}
	for _, name := range q.TermNames() {
		term, _ := q.Term(name)
		if term.IsSymbol() || seen[name] {
			continue
		}
		order = append(order, name)
	}
	return order, nil
}

// maximize existentially enumerates the remaining variables and returns
// the best truth value of the formula.
func (e *Engine) maximize(ctx context.Context, f formula.Formula, relByAtomic map[string]int64, assignment map[string]int64, vars []string, entities []int64) (float64, error) {
	if len(vars) == 0 {
		return e.evalFormula(ctx, f, relByAtomic, assignment)
	}

	name := vars[0]
	if _, pinned := assignment[name]; pinned {
		return e.maximize(ctx, f, relByAtomic, assignment, vars[1:], entities)
	}

	best := 0.0
	for _, ent := range entities {
		assignment[name] = ent
		v, err := e.maximize(ctx, f, relByAtomic, assignment, vars[1:], entities)
		if err != nil {
			delete(assignment, name)
			return 0, err
		}
		if v > best {
			best = v
		}
	}
	delete(assignment, name)
	return best, nil
}

func (e *Engine) evalFormula(ctx context.Context, f formula.Formula, relByAtomic map[string]int64, assignment map[string]int64) (float64, error) {
	switch node := f.(type) {
	case *formula.Atomic:
		head, ok := assignment[node.Head.Name]
		if !ok {
			return 0, fmt.Errorf("atomic %s: unbound term %q", node, node.Head.Name)
		}
		tail, ok := assignment[node.Tail.Name]
		if !ok {
			return 0, fmt.Errorf("atomic %s: unbound term %q", node, node.Tail.Name)
		}
		return e.scorer.Score(ctx, head, relByAtomic[node.String()], tail)
	case *formula.Negation:
		v, err := e.evalFormula(ctx, node.Formula, relByAtomic, assignment)
		if err != nil {
			return 0, err
		}
		return e.norm.Neg(v), nil
	case *formula.Conjunction:
		out := 1.0
		for _, sub := range node.Formulas {
			v, err := e.evalFormula(ctx, sub, relByAtomic, assignment)
			if err != nil {
				return 0, err
			}
			out = e.norm.Conj(out, v)
		}
		return out, nil
	case *formula.Disjunction:
		out := 0.0
		for _, sub := range node.Formulas {
			v, err := e.evalFormula(ctx, sub, relByAtomic, assignment)
			if err != nil {
				return 0, err
			}
			out = e.norm.Disj(out, v)
		}
		return out, nil
	default:
		return 0, fmt.Errorf("unknown formula node %T", f)
	}
}
