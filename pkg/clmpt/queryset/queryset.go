// Package queryset persists grounded query sets as JSON files: each
// record keeps the formula's ldict, every grounding instance and the
// classified answer sets, under a ULID identifier.
package queryset

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"

	"github.com/oklog/ulid/v2"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/formula"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/query"
)

// File is the top-level layout of a query-set file.
type File struct {
	Queries []Record `json:"queries"`
}

// Record is one persisted query skeleton with all its instances.
type Record struct {
	ID      string         `json:"id"`
	Lstr    string         `json:"lstr"`
	Formula map[string]any `json:"formula"`
	Inst    []Instance     `json:"instances"`
}

// Instance is one grounding with its answer sets.
type Instance struct {
	Grounding map[string]int64 `json:"grounding"`
	Easy      query.AnswerSet  `json:"easy_answers"`
	Hard      query.AnswerSet  `json:"hard_answers"`
	Noisy     query.AnswerSet  `json:"noisy_answers"`
}

// Writer assigns ULIDs and serializes query sets.
type Writer struct {
	entropy *ulid.MonotonicEntropy
}

// NewWriter creates a query-set writer.
func NewWriter() *Writer {
	return &Writer{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Build converts a query into its persisted record.
func (w *Writer) Build(q *query.Query) (Record, error) {
	n, err := q.NumInstances()
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:      ulid.MustNew(ulid.Now(), w.entropy).String(),
		Lstr:    q.String(),
		Formula: q.Formula().ToLDict(),
	}

	for i := 0; i < n; i++ {
		inst := Instance{
			Grounding: map[string]int64{},
			Easy:      q.EasyAnswers()[i],
			Hard:      q.HardAnswers()[i],
			Noisy:     q.NoisyAnswers()[i],
		}
		seenRel := map[string]bool{}
		for _, key := range q.AtomicKeys() {
			rel := q.Atomics()[key].Relation
			if seenRel[rel] {
				continue
			}
			seenRel[rel] = true
			ids, err := q.PredGroundedRelationIDs(rel)
			if err != nil {
				return Record{}, err
			}
			inst.Grounding[rel] = ids[i]
		}
		for _, name := range q.TermNames() {
			ids, err := q.TermGroundedEntityIDs(name)
			if err != nil {
				return Record{}, err
			}
			// Only lists that kept pace with the instances are
			// per-instance groundings.
			if len(ids) == n {
				inst.Grounding[name] = ids[i]
			}
		}
		rec.Inst = append(rec.Inst, inst)
	}
	return rec, nil
}

// Write persists the queries to path.
func (w *Writer) Write(path string, queries []*query.Query) error {
	file := File{}
	for _, q := range queries {
		rec, err := w.Build(q)
		if err != nil {
			return fmt.Errorf("query %s: %w", q, err)
		}
		file.Queries = append(file.Queries, rec)
	}

	data, err := json.MarshalIndent(file, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Restore rebuilds a query from its record, replaying every instance
// through the append protocol so the length invariant is re-validated.
func Restore(rec Record) (*query.Query, error) {
	f, err := formula.Parse(rec.Formula)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	q, err := query.New(f)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	for i, inst := range rec.Inst {
		if err := q.AppendQAInstance(inst.Grounding, inst.Easy, inst.Hard, inst.Noisy); err != nil {
			return nil, fmt.Errorf("record %s instance %d: %w", rec.ID, i, err)
		}
	}
	if _, err := q.NumInstances(); err != nil {
		return nil, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	return q, nil
}

// Load reads a query-set file and rebuilds every query.
func Load(path string) ([]*query.Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	queries := make([]*query.Query, 0, len(file.Queries))
	for _, rec := range file.Queries {
		q, err := Restore(rec)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, nil
}
