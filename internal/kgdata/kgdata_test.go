package kgdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/store/memstore"
)

func writeTriples(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triples.tsv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write triples: %v", err)
	}
	return path
}

func TestLoadTriples(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	defer st.Close()

	path := writeTriples(t, "alice\tknows\tbob\n\n# comment\nbob\tknows\tcarol\nalice\tlikes\tcarol\n")
	vocab := NewVocab()
	n, err := LoadTriples(ctx, st, vocab, path)
	if err != nil {
		t.Fatalf("LoadTriples: %v", err)
	}
	if n != 3 {
		t.Fatalf("added = %d, want 3", n)
	}

	total, err := st.NumTriples(ctx)
	if err != nil {
		t.Fatalf("NumTriples: %v", err)
	}
	if total != 3 {
		t.Errorf("store triples = %d, want 3", total)
	}

	if vocab.Entities["alice"] != 0 || vocab.Entities["bob"] != 1 || vocab.Entities["carol"] != 2 {
		t.Errorf("entity ids = %v", vocab.Entities)
	}
	if vocab.Relations["knows"] != 0 || vocab.Relations["likes"] != 1 {
		t.Errorf("relation ids = %v", vocab.Relations)
	}

	ok, err := st.HasTriple(ctx, 0, 1, 2)
	if err != nil || !ok {
		t.Errorf("HasTriple(alice,likes,carol) = %v, %v", ok, err)
	}

	name, err := st.EntityName(ctx, 1)
	if err != nil || name != "bob" {
		t.Errorf("EntityName(1) = %q, %v", name, err)
	}
}

func TestLoadTriplesSharedVocab(t *testing.T) {
	ctx := context.Background()
	observed := memstore.New()
	full := memstore.New()
	defer observed.Close()
	defer full.Close()

	vocab := NewVocab()
	if _, err := LoadTriples(ctx, observed, vocab, writeTriples(t, "alice\tknows\tbob\n")); err != nil {
		t.Fatalf("observed: %v", err)
	}
	if _, err := LoadTriples(ctx, full, vocab, writeTriples(t, "alice\tknows\tbob\nalice\tknows\tcarol\n")); err != nil {
		t.Fatalf("full: %v", err)
	}
	if vocab.Entities["alice"] != 0 {
		t.Errorf("alice id changed across files: %v", vocab.Entities)
	}
	if len(vocab.Entities) != 3 {
		t.Errorf("entity count = %d, want 3", len(vocab.Entities))
	}
}

func TestLoadTriplesBadLine(t *testing.T) {
	st := memstore.New()
	defer st.Close()
	path := writeTriples(t, "alice\tknows\n")
	if _, err := LoadTriples(context.Background(), st, NewVocab(), path); err == nil {
		t.Fatal("expected error for short line")
	}
}
