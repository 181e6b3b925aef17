package store

import "context"

// Triple is one directed knowledge-graph edge: relation(head, tail) over
// integer-coded entities and relations.
type Triple struct {
	Head     int64
	Relation int64
	Tail     int64
}

// Store is the main interface for persisting and querying a knowledge
// graph used to ground and answer queries.
type Store interface {
	Close() error

	// Triples
	AddTriple(ctx context.Context, t Triple) error
	HasTriple(ctx context.Context, head, relation, tail int64) (bool, error)
	Objects(ctx context.Context, head, relation int64) ([]int64, error)
	Subjects(ctx context.Context, relation, tail int64) ([]int64, error)
	TriplesByRelation(ctx context.Context, relation int64, limit int) ([]Triple, error)
	NumTriples(ctx context.Context) (int64, error)

	// Vocabulary
	UpsertEntity(ctx context.Context, id int64, name string) error
	UpsertRelation(ctx context.Context, id int64, name string) error
	EntityName(ctx context.Context, id int64) (string, error)
	RelationName(ctx context.Context, id int64) (string, error)
	Entities(ctx context.Context) ([]int64, error)
	Relations(ctx context.Context) ([]int64, error)
}
