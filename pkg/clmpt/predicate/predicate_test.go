package predicate

import (
	"context"
	"testing"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/store"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/store/memstore"
)

func TestGraphScorer(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	defer s.Close()

	if err := s.AddTriple(ctx, store.Triple{Head: 1, Relation: 2, Tail: 3}); err != nil {
		t.Fatalf("AddTriple: %v", err)
	}

	scorer := NewGraphScorer(s)

	got, err := scorer.Score(ctx, 1, 2, 3)
	if err != nil || got != 1 {
		t.Errorf("Score(present) = %v, %v; want 1", got, err)
	}
	got, err = scorer.Score(ctx, 3, 2, 1)
	if err != nil || got != 0 {
		t.Errorf("Score(absent) = %v, %v; want 0", got, err)
	}
}
