package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/internalerr"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/store"
)

// Store is an in-memory implementation of store.Store for tests and
// small sampled graphs.
type Store struct {
	mu        sync.RWMutex
	triples   map[store.Triple]struct{}
	entities  map[int64]string
	relations map[int64]string
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		triples:   make(map[store.Triple]struct{}),
		entities:  make(map[int64]string),
		relations: make(map[int64]string),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// AddTriple records the triple and registers both endpoints and the
// relation in the vocabularies if they are new.
func (s *Store) AddTriple(ctx context.Context, t store.Triple) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.triples[t] = struct{}{}
	if _, ok := s.entities[t.Head]; !ok {
		s.entities[t.Head] = ""
	}
	if _, ok := s.entities[t.Tail]; !ok {
		s.entities[t.Tail] = ""
	}
	if _, ok := s.relations[t.Relation]; !ok {
		s.relations[t.Relation] = ""
	}
	return nil
}

// HasTriple reports whether the triple is present.
func (s *Store) HasTriple(ctx context.Context, head, relation, tail int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.triples[store.Triple{Head: head, Relation: relation, Tail: tail}]
	return ok, nil
}

// Objects returns the tails t with relation(head, t), sorted by id.
func (s *Store) Objects(ctx context.Context, head, relation int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []int64
	for t := range s.triples {
		if t.Head == head && t.Relation == relation {
			out = append(out, t.Tail)
		}
	}
	sortIDs(out)
	return out, nil
}

// Subjects returns the heads h with relation(h, tail), sorted by id.
func (s *Store) Subjects(ctx context.Context, relation, tail int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []int64
	for t := range s.triples {
		if t.Relation == relation && t.Tail == tail {
			out = append(out, t.Head)
		}
	}
	sortIDs(out)
	return out, nil
}

// TriplesByRelation returns up to limit triples with the given relation.
func (s *Store) TriplesByRelation(ctx context.Context, relation int64, limit int) ([]store.Triple, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	var out []store.Triple
	for t := range s.triples {
		if t.Relation == relation {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Head != out[j].Head {
			return out[i].Head < out[j].Head
		}
		return out[i].Tail < out[j].Tail
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// NumTriples returns the triple count.
func (s *Store) NumTriples(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.triples)), nil
}

// UpsertEntity registers or renames an entity.
func (s *Store) UpsertEntity(ctx context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[id] = name
	return nil
}

// UpsertRelation registers or renames a relation.
func (s *Store) UpsertRelation(ctx context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relations[id] = name
	return nil
}

// EntityName returns the name registered for an entity id.
func (s *Store) EntityName(ctx context.Context, id int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, ok := s.entities[id]
	if !ok {
		return "", fmt.Errorf("%w: entity %d", internalerr.ErrNotFound, id)
	}
	return name, nil
}

// RelationName returns the name registered for a relation id.
func (s *Store) RelationName(ctx context.Context, id int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, ok := s.relations[id]
	if !ok {
		return "", fmt.Errorf("%w: relation %d", internalerr.ErrNotFound, id)
	}
	return name, nil
}

// Entities returns all entity ids, sorted.
func (s *Store) Entities(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int64, 0, len(s.entities))
	for id := range s.entities {
		out = append(out, id)
	}
	sortIDs(out)
	return out, nil
}

// Relations returns all relation ids, sorted.
func (s *Store) Relations(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int64, 0, len(s.relations))
	for id := range s.relations {
		out = append(out, id)
	}
	sortIDs(out)
	return out, nil
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
