package query

import (
	"errors"
	"testing"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/formula"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/internalerr"
)

// chain builds r1(f,e1) & r2(e1,e2): one free variable and a two-hop
// existential chain.
func chain(t *testing.T) *Query {
	t.Helper()
	f := formula.NewConjunction([]formula.Formula{
		formula.NewAtomic("r1", formula.NewTerm(formula.Free, "f"), formula.NewTerm(formula.Existential, "e1")),
		formula.NewAtomic("r2", formula.NewTerm(formula.Existential, "e1"), formula.NewTerm(formula.Existential, "e2")),
	})
	q, err := New(f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return q
}

// grounded builds r1(f,e1) & r2(e1,s1): one symbol to ground per instance.
func grounded(t *testing.T) *Query {
	t.Helper()
	f := formula.NewConjunction([]formula.Formula{
		formula.NewAtomic("r1", formula.NewTerm(formula.Free, "f"), formula.NewTerm(formula.Existential, "e1")),
		formula.NewAtomic("r2", formula.NewTerm(formula.Existential, "e1"), formula.NewTerm(formula.Symbol, "s1")),
	})
	q, err := New(f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return q
}

func TestIndexing(t *testing.T) {
	q := chain(t)

	wantAtomics := []string{"r1(f,e1)", "r2(e1,e2)"}
	keys := q.AtomicKeys()
	if len(keys) != len(wantAtomics) {
		t.Fatalf("AtomicKeys = %v, want %v", keys, wantAtomics)
	}
	for i, key := range wantAtomics {
		if keys[i] != key {
			t.Errorf("AtomicKeys[%d] = %q, want %q", i, keys[i], key)
		}
		if q.Atomics()[key] == nil {
			t.Errorf("atomic index missing %q", key)
		}
	}

	wantTerms := []string{"f", "e1", "e2"}
	names := q.TermNames()
	if len(names) != len(wantTerms) {
		t.Fatalf("TermNames = %v, want %v", names, wantTerms)
	}
	for i, name := range wantTerms {
		if names[i] != name {
			t.Errorf("TermNames[%d] = %q, want %q", i, names[i], name)
		}
	}

	// e1 appears in both atomics, in declaration order.
	adj := q.TermAtomics("e1")
	if len(adj) != 2 || adj[0] != "r1(f,e1)" || adj[1] != "r2(e1,e2)" {
		t.Errorf("TermAtomics(e1) = %v", adj)
	}
}

func TestSelfLoopAdjacency(t *testing.T) {
	loop := formula.NewAtomic("r1",
		formula.NewTerm(formula.Existential, "e1"),
		formula.NewTerm(formula.Existential, "e1"))
	q, err := New(loop)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if adj := q.TermAtomics("e1"); len(adj) != 2 {
		t.Errorf("self-loop term should list its atomic twice, got %v", adj)
	}
}

func TestDuplicateAtomicRejected(t *testing.T) {
	// Two distinct objects with the same canonical string.
	f := formula.NewConjunction([]formula.Formula{
		formula.NewAtomic("r1", formula.NewTerm(formula.Free, "f"), formula.NewTerm(formula.Existential, "e1")),
		formula.NewAtomic("r1", formula.NewTerm(formula.Free, "f"), formula.NewTerm(formula.Existential, "e1")),
	})
	if _, err := New(f); !errors.Is(err, internalerr.ErrDuplicateAtomic) {
		t.Errorf("New = %v, want ErrDuplicateAtomic", err)
	}
}

func TestSharedAtomicAcrossDisjunctsAllowed(t *testing.T) {
	shared := formula.NewAtomic("r1",
		formula.NewTerm(formula.Free, "f"), formula.NewTerm(formula.Existential, "e1"))
	other := formula.NewAtomic("r2",
		formula.NewTerm(formula.Existential, "e1"), formula.NewTerm(formula.Symbol, "s1"))

	f := formula.NewDisjunction([]formula.Formula{
		formula.NewConjunction([]formula.Formula{shared, other}),
		shared,
	})
	q, err := New(f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(q.AtomicKeys()) != 2 {
		t.Errorf("shared atomic should be indexed once, got %v", q.AtomicKeys())
	}
	// Indexed once means listed once per slot in the adjacency too.
	if adj := q.TermAtomics("f"); len(adj) != 1 {
		t.Errorf("TermAtomics(f) = %v, want one entry", adj)
	}
}

func TestAppendPrecedenceAndUnknownKey(t *testing.T) {
	q := grounded(t)

	// s1 is a term, r1/r2 are relations.
	err := q.AppendRelationAndSymbols(map[string]int64{"s1": 11, "r1": 3, "r2": 4})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	ids, err := q.TermGroundedEntityIDs("s1")
	if err != nil || len(ids) != 1 || ids[0] != 11 {
		t.Errorf("s1 entity ids = %v (%v), want [11]", ids, err)
	}
	rids, err := q.PredGroundedRelationIDs("r1")
	if err != nil || len(rids) != 1 || rids[0] != 3 {
		t.Errorf("r1 relation ids = %v (%v), want [3]", rids, err)
	}

	if !q.HasTermGroundedEntityIDs("s1") {
		t.Error("HasTermGroundedEntityIDs(s1) = false")
	}
	if q.HasTermGroundedEntityIDs("e1") {
		t.Error("HasTermGroundedEntityIDs(e1) = true, nothing appended")
	}

	err = q.AppendRelationAndSymbols(map[string]int64{"nope": 1})
	if !errors.Is(err, internalerr.ErrUnknownName) {
		t.Errorf("unknown key: %v, want ErrUnknownName", err)
	}
}

func TestTermPrecedenceOverRelation(t *testing.T) {
	// A term deliberately named like a relation: the id must land on the
	// term's list.
	f := formula.NewAtomic("r1",
		formula.NewTerm(formula.Symbol, "r1"),
		formula.NewTerm(formula.Free, "f"))
	q, err := New(f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := q.AppendRelationAndSymbols(map[string]int64{"r1": 42}); err != nil {
		t.Fatalf("append: %v", err)
	}
	ids, _ := q.TermGroundedEntityIDs("r1")
	if len(ids) != 1 || ids[0] != 42 {
		t.Errorf("term r1 entity ids = %v, want [42]", ids)
	}
	rids, _ := q.PredGroundedRelationIDs("r1")
	if len(rids) != 0 {
		t.Errorf("relation r1 ids = %v, want empty", rids)
	}
}

func TestAppendAllOrNothing(t *testing.T) {
	q := grounded(t)

	err := q.AppendQAInstance(map[string]int64{"r1": 1, "bogus": 2}, nil, nil, nil)
	if !errors.Is(err, internalerr.ErrUnknownName) {
		t.Fatalf("append with bogus key: %v, want ErrUnknownName", err)
	}
	if q.HasPredGroundedRelationIDs("r1") {
		t.Error("failed append must not partially ground r1")
	}
	if n, err := q.NumInstances(); err != nil || n != 0 {
		t.Errorf("NumInstances = %d, %v; want 0 after failed append", n, err)
	}
}

func TestNumInstancesInvariant(t *testing.T) {
	q := grounded(t)

	for i := 0; i < 3; i++ {
		err := q.AppendQAInstance(
			map[string]int64{"r1": int64(i), "r2": int64(i), "s1": int64(100 + i)},
			AnswerSet{"f": {int64(i)}},
			AnswerSet{"f": {int64(i + 1)}},
			nil,
		)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	n, err := q.NumInstances()
	if err != nil {
		t.Fatalf("NumInstances: %v", err)
	}
	if n != 3 {
		t.Errorf("NumInstances = %d, want 3", n)
	}

	// A bare relation/symbol append without answers breaks the invariant.
	if err := q.AppendRelationAndSymbols(map[string]int64{"r1": 9, "r2": 9, "s1": 9}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := q.NumInstances(); !errors.Is(err, internalerr.ErrInconsistentInstances) {
		t.Errorf("NumInstances after skewed append = %v, want ErrInconsistentInstances", err)
	}
}

func TestVariableClassification(t *testing.T) {
	q := grounded(t)

	if got := len(q.FreeVariables()); got != 1 {
		t.Errorf("free = %d, want 1", got)
	}
	if got := len(q.ExistentialVariables()); got != 1 {
		t.Errorf("existential = %d, want 1", got)
	}
	if got := len(q.UniversalVariables()); got != 0 {
		t.Errorf("universal = %d, want 0", got)
	}
	if got := len(q.Symbols()); got != 1 {
		t.Errorf("symbols = %d, want 1", got)
	}
	if got := q.QuantifierRank(); got != 2 {
		t.Errorf("QuantifierRank = %d, want 2", got)
	}
	if q.IsSentence() {
		t.Error("query with a free variable is not a sentence")
	}

	sentence := formula.NewAtomic("r1",
		formula.NewTerm(formula.Symbol, "s1"),
		formula.NewTerm(formula.Existential, "e1"))
	sq, err := New(sentence)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !sq.IsSentence() {
		t.Error("closed formula should be a sentence")
	}
}

func TestQuantifierRankMixed(t *testing.T) {
	// 1 free, 2 existential, 1 symbol.
	f := formula.NewConjunction([]formula.Formula{
		formula.NewAtomic("r1", formula.NewTerm(formula.Free, "f"), formula.NewTerm(formula.Existential, "e1")),
		formula.NewAtomic("r2", formula.NewTerm(formula.Existential, "e1"), formula.NewTerm(formula.Existential, "e2")),
		formula.NewAtomic("r3", formula.NewTerm(formula.Existential, "e2"), formula.NewTerm(formula.Symbol, "s1")),
	})
	q, err := New(f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := q.QuantifierRank(); got != 3 {
		t.Errorf("QuantifierRank = %d, want 3", got)
	}
	if got := len(q.Symbols()); got != 1 {
		t.Errorf("symbols = %d, want 1", got)
	}
	if got := q.NumPredicates(); got != 3 {
		t.Errorf("NumPredicates = %d, want 3", got)
	}
}

func TestAllGroundedIDs(t *testing.T) {
	q := grounded(t)
	for i := 0; i < 2; i++ {
		err := q.AppendQAInstance(
			map[string]int64{"r1": int64(10 + i), "r2": int64(20 + i), "s1": int64(30 + i)},
			nil, nil, nil)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entityIDs, relationIDs := q.AllGroundedIDs()
	// Term order is f, e1, s1; only s1 has ids.
	if len(entityIDs) != 2 || entityIDs[0] != 30 || entityIDs[1] != 31 {
		t.Errorf("entityIDs = %v, want [30 31]", entityIDs)
	}
	// Relation order is r1, r2.
	want := []int64{10, 11, 20, 21}
	if len(relationIDs) != len(want) {
		t.Fatalf("relationIDs = %v, want %v", relationIDs, want)
	}
	for i := range want {
		if relationIDs[i] != want[i] {
			t.Errorf("relationIDs[%d] = %d, want %d", i, relationIDs[i], want[i])
		}
	}
}
