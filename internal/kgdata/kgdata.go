// Package kgdata loads tab-separated knowledge-graph triple files into a
// store, assigning integer ids to entity and relation names as they appear.
package kgdata

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/store"
)

// Vocab maps entity and relation names to the ids assigned during loading.
type Vocab struct {
	Entities  map[string]int64
	Relations map[string]int64
}

// NewVocab returns an empty vocabulary.
func NewVocab() *Vocab {
	return &Vocab{
		Entities:  make(map[string]int64),
		Relations: make(map[string]int64),
	}
}

// EntityID returns the id for name, assigning the next free id on first use.
func (v *Vocab) EntityID(name string) int64 {
	if id, ok := v.Entities[name]; ok {
		return id
	}
	id := int64(len(v.Entities))
	v.Entities[name] = id
	return id
}

// RelationID returns the id for name, assigning the next free id on first use.
func (v *Vocab) RelationID(name string) int64 {
	if id, ok := v.Relations[name]; ok {
		return id
	}
	id := int64(len(v.Relations))
	v.Relations[name] = id
	return id
}

// LoadTriples reads a head<TAB>relation<TAB>tail file into st, sharing ids
// through vocab so several files can be loaded over one vocabulary. Blank
// lines and lines starting with '#' are skipped. It returns the number of
// triples added.
func LoadTriples(ctx context.Context, st store.Store, vocab *Vocab, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open triples %s: %w", path, err)
	}
	defer f.Close()

	added := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return added, fmt.Errorf("%s:%d: want 3 tab-separated fields, got %d", path, lineno, len(fields))
		}

		head := vocab.EntityID(fields[0])
		rel := vocab.RelationID(fields[1])
		tail := vocab.EntityID(fields[2])

		if err := st.UpsertEntity(ctx, head, fields[0]); err != nil {
			return added, fmt.Errorf("%s:%d: %w", path, lineno, err)
		}
		if err := st.UpsertEntity(ctx, tail, fields[2]); err != nil {
			return added, fmt.Errorf("%s:%d: %w", path, lineno, err)
		}
		if err := st.UpsertRelation(ctx, rel, fields[1]); err != nil {
			return added, fmt.Errorf("%s:%d: %w", path, lineno, err)
		}
		if err := st.AddTriple(ctx, store.Triple{Head: head, Relation: rel, Tail: tail}); err != nil {
			return added, fmt.Errorf("%s:%d: %w", path, lineno, err)
		}
		added++
	}
	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("read triples %s: %w", path, err)
	}
	return added, nil
}
