package query

import (
	"testing"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/formula"
)

func TestBFSOrderingChain(t *testing.T) {
	q := chain(t)

	levels := q.BFSVariableOrdering(DefaultOrderingSource)
	want := [][]RankedVar{
		{{Name: "f", Order: 0}},
		{{Name: "e1", Order: 1}},
		{{Name: "e2", Order: 2}},
	}

	if len(levels) != len(want) {
		t.Fatalf("got %d levels, want %d: %v", len(levels), len(want), levels)
	}
	for i := range want {
		if len(levels[i]) != len(want[i]) {
			t.Fatalf("level %d = %v, want %v", i, levels[i], want[i])
		}
		for j := range want[i] {
			if levels[i][j] != want[i][j] {
				t.Errorf("level[%d][%d] = %v, want %v", i, j, levels[i][j], want[i][j])
			}
		}
	}
}

func TestBFSOrderingSkipsSymbols(t *testing.T) {
	q := grounded(t)

	levels := q.BFSVariableOrdering("f")
	for _, level := range levels {
		for _, rv := range level {
			if rv.Name == "s1" {
				t.Errorf("symbol s1 must not be traversed: %v", levels)
			}
		}
	}
	if len(levels) != 2 {
		t.Errorf("got %d levels, want 2 (f, e1): %v", len(levels), levels)
	}
}

func TestBFSOrderingFanOut(t *testing.T) {
	// f connects to e1 and e2 directly; both land on level 1 even though
	// they come from different atomics.
	f := formula.NewConjunction([]formula.Formula{
		formula.NewAtomic("r1", formula.NewTerm(formula.Free, "f"), formula.NewTerm(formula.Existential, "e1")),
		formula.NewAtomic("r2", formula.NewTerm(formula.Free, "f"), formula.NewTerm(formula.Existential, "e2")),
		formula.NewAtomic("r3", formula.NewTerm(formula.Existential, "e2"), formula.NewTerm(formula.Existential, "e3")),
	})
	q, err := New(f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	levels := q.BFSVariableOrdering("f")
	if len(levels) != 3 {
		t.Fatalf("got %d levels, want 3: %v", len(levels), levels)
	}
	if len(levels[1]) != 2 {
		t.Errorf("level 1 = %v, want both e1 and e2", levels[1])
	}
	if len(levels[2]) != 1 || levels[2][0].Name != "e3" {
		t.Errorf("level 2 = %v, want e3", levels[2])
	}
}

func TestBFSOrderingIsolatedSource(t *testing.T) {
	q := chain(t)

	levels := q.BFSVariableOrdering("lonely")
	if len(levels) != 1 {
		t.Fatalf("got %d levels, want 1: %v", len(levels), levels)
	}
	if len(levels[0]) != 1 || levels[0][0] != (RankedVar{Name: "lonely", Order: 0}) {
		t.Errorf("level 0 = %v", levels[0])
	}
}

func TestBFSOrderingMultiCharSource(t *testing.T) {
	// A multi-character source name is one identifier, not a character
	// set: e1 must still be discovered from "f1".
	f := formula.NewConjunction([]formula.Formula{
		formula.NewAtomic("r1", formula.NewTerm(formula.Free, "f1"), formula.NewTerm(formula.Existential, "e1")),
	})
	q, err := New(f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	levels := q.BFSVariableOrdering("f1")
	if len(levels) != 2 {
		t.Fatalf("got %d levels, want 2: %v", len(levels), levels)
	}
	if levels[1][0].Name != "e1" {
		t.Errorf("level 1 = %v, want e1", levels[1])
	}
}

func TestBFSOrderingUnreachableComponent(t *testing.T) {
	f := formula.NewConjunction([]formula.Formula{
		formula.NewAtomic("r1", formula.NewTerm(formula.Free, "f"), formula.NewTerm(formula.Existential, "e1")),
		formula.NewAtomic("r2", formula.NewTerm(formula.Existential, "e2"), formula.NewTerm(formula.Existential, "e3")),
	})
	q, err := New(f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	levels := q.BFSVariableOrdering("f")
	seen := map[string]bool{}
	for _, level := range levels {
		for _, rv := range level {
			seen[rv.Name] = true
		}
	}
	if seen["e2"] || seen["e3"] {
		t.Errorf("disconnected component must not appear: %v", levels)
	}
	if !seen["f"] || !seen["e1"] {
		t.Errorf("connected component missing: %v", levels)
	}
}
