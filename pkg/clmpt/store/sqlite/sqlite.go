package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/internalerr"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite-backed knowledge-graph store with WAL mode enabled.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS triples (
	head INTEGER NOT NULL,
	relation INTEGER NOT NULL,
	tail INTEGER NOT NULL,
	PRIMARY KEY(head, relation, tail)
);

CREATE INDEX IF NOT EXISTS idx_triples_relation ON triples(relation);
CREATE INDEX IF NOT EXISTS idx_triples_tail ON triples(relation, tail);

CREATE TABLE IF NOT EXISTS entities (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS relations (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL DEFAULT ''
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// AddTriple inserts the triple and registers both endpoints and the
// relation in the vocabulary tables.
func (s *sqliteStore) AddTriple(ctx context.Context, t store.Triple) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO triples (head, relation, tail) VALUES (?, ?, ?);
`, t.Head, t.Relation, t.Tail); err != nil {
		return err
	}

	for _, id := range []int64{t.Head, t.Tail} {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO entities (id) VALUES (?)`, id); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO relations (id) VALUES (?)`, t.Relation); err != nil {
		return err
	}

	return tx.Commit()
}

// HasTriple reports whether the triple is present.
func (s *sqliteStore) HasTriple(ctx context.Context, head, relation, tail int64) (bool, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM triples WHERE head=? AND relation=? AND tail=?;
`, head, relation, tail).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Objects returns the tails t with relation(head, t), in id order.
func (s *sqliteStore) Objects(ctx context.Context, head, relation int64) ([]int64, error) {
	return s.loadIDColumn(ctx, `
SELECT tail FROM triples WHERE head=? AND relation=? ORDER BY tail;
`, head, relation)
}

// Subjects returns the heads h with relation(h, tail), in id order.
func (s *sqliteStore) Subjects(ctx context.Context, relation, tail int64) ([]int64, error) {
	return s.loadIDColumn(ctx, `
SELECT head FROM triples WHERE relation=? AND tail=? ORDER BY head;
`, relation, tail)
}

// TriplesByRelation returns up to limit triples with the given relation.
func (s *sqliteStore) TriplesByRelation(ctx context.Context, relation int64, limit int) ([]store.Triple, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT head, relation, tail FROM triples
WHERE relation = ?
ORDER BY head, tail
LIMIT ?;
`, relation, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var triples []store.Triple
	for rows.Next() {
		var t store.Triple
		if err := rows.Scan(&t.Head, &t.Relation, &t.Tail); err != nil {
			return nil, err
		}
		triples = append(triples, t)
	}
	return triples, rows.Err()
}

// NumTriples returns the triple count.
func (s *sqliteStore) NumTriples(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM triples`).Scan(&total)
	return total, err
}

// UpsertEntity registers or renames an entity.
func (s *sqliteStore) UpsertEntity(ctx context.Context, id int64, name string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO entities (id, name) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET name=excluded.name;
`, id, name)
	return err
}

// UpsertRelation registers or renames a relation.
func (s *sqliteStore) UpsertRelation(ctx context.Context, id int64, name string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO relations (id, name) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET name=excluded.name;
`, id, name)
	return err
}

// EntityName returns the name registered for an entity id.
func (s *sqliteStore) EntityName(ctx context.Context, id int64) (string, error) {
	return s.lookupName(ctx, `SELECT name FROM entities WHERE id=?`, "entity", id)
}

// RelationName returns the name registered for a relation id.
func (s *sqliteStore) RelationName(ctx context.Context, id int64) (string, error) {
	return s.lookupName(ctx, `SELECT name FROM relations WHERE id=?`, "relation", id)
}

// Entities returns all entity ids in id order.
func (s *sqliteStore) Entities(ctx context.Context) ([]int64, error) {
	return s.loadIDColumn(ctx, `SELECT id FROM entities ORDER BY id`)
}

// Relations returns all relation ids in id order.
func (s *sqliteStore) Relations(ctx context.Context) ([]int64, error) {
	return s.loadIDColumn(ctx, `SELECT id FROM relations ORDER BY id`)
}

func (s *sqliteStore) lookupName(ctx context.Context, query, kind string, id int64) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&name)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %s %d", internalerr.ErrNotFound, kind, id)
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (s *sqliteStore) loadIDColumn(ctx context.Context, query string, args ...interface{}) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	return result, rows.Err()
}
