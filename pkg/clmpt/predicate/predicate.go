// Package predicate defines the relation-scoring seam between the formula
// model and whatever backend judges triples: a truth value in [0,1] for
// each (head, relation, tail).
package predicate

import (
	"context"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/store"
)

// Scorer maps a grounded triple to a truth or plausibility value in
// [0,1]. This interface allows swapping backends (exact graph lookup,
// learned embedding scorers, remote services) without touching the
// evaluation logic.
type Scorer interface {
	Score(ctx context.Context, head, relation, tail int64) (float64, error)
}

// GraphScorer scores triples by exact membership in a knowledge-graph
// store: 1 when the edge is present, 0 otherwise. It is the
// deterministic stand-in for a learned backend.
type GraphScorer struct {
	store store.Store
}

// NewGraphScorer creates a scorer backed by the given store.
func NewGraphScorer(s store.Store) *GraphScorer {
	return &GraphScorer{store: s}
}

// Score implements Scorer.
func (g *GraphScorer) Score(ctx context.Context, head, relation, tail int64) (float64, error) {
	ok, err := g.store.HasTriple(ctx, head, relation, tail)
	if err != nil {
		return 0, err
	}
	if ok {
		return 1, nil
	}
	return 0, nil
}
