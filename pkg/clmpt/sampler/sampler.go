// Package sampler generates grounded instances for a query skeleton:
// random relation and symbol bindings against an observed graph, with
// answer sets classified by searching the observed and full graphs.
package sampler

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/qianlima-lab/clmpt/pkg/clmpt"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/query"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/store"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/tnorm"
)

// Sampler grounds query skeletons. Easy answers are derivable from the
// observed graph alone, hard answers additionally need edges only the
// full graph has, and noisy answers hold in the observed graph but are
// invalidated by the full one.
type Sampler struct {
	observed store.Store
	full     store.Store
	obsEng   *clmpt.Engine
	fullEng  *clmpt.Engine
	rng      *rand.Rand
}

// Options configures a Sampler.
type Options struct {
	// Observed is the partial graph groundings are drawn from.
	Observed store.Store

	// Full is the completed graph used to classify hard and noisy
	// answers. Defaults to Observed.
	Full store.Store

	Tnorm     tnorm.Tnorm
	Threshold float64

	// Seed fixes the random source; 0 seeds from the clock.
	Seed int64
}

// New creates a Sampler.
func New(opts Options) *Sampler {
	if opts.Full == nil {
		opts.Full = opts.Observed
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	return &Sampler{
		observed: opts.Observed,
		full:     opts.Full,
		obsEng: clmpt.New(clmpt.Options{
			Store: opts.Observed, Tnorm: opts.Tnorm, Threshold: opts.Threshold,
		}),
		fullEng: clmpt.New(clmpt.Options{
			Store: opts.Full, Tnorm: opts.Tnorm, Threshold: opts.Threshold,
		}),
		rng: rand.New(rand.NewSource(opts.Seed)),
	}
}

// Run appends n grounded instances to the query.
func (s *Sampler) Run(ctx context.Context, q *query.Query, n int) error {
	for i := 0; i < n; i++ {
		if err := s.GroundInstance(ctx, q); err != nil {
			return fmt.Errorf("instance %d: %w", i, err)
		}
	}
	return nil
}

// GroundInstance draws one grounding for the skeleton, computes its
// answer sets and appends everything to the query in a single call, so
// the per-instance length invariant holds afterwards.
func (s *Sampler) GroundInstance(ctx context.Context, q *query.Query) error {
	relationIDs, err := s.observed.Relations(ctx)
	if err != nil {
		return err
	}
	entityIDs, err := s.observed.Entities(ctx)
	if err != nil {
		return err
	}
	if len(relationIDs) == 0 || len(entityIDs) == 0 {
		return fmt.Errorf("observed graph is empty")
	}

	appendDict := make(map[string]int64)
	for _, rel := range relationNames(q) {
		appendDict[rel] = relationIDs[s.rng.Intn(len(relationIDs))]
	}
	for _, name := range symbolNames(q) {
		appendDict[name] = entityIDs[s.rng.Intn(len(entityIDs))]
	}

	if q.IsSentence() {
		return q.AppendQAInstance(appendDict, nil, nil, nil)
	}

	easy, hard, noisy, err := s.classifyAnswers(ctx, q, appendDict)
	if err != nil {
		return err
	}
	return q.AppendQAInstance(appendDict, easy, hard, noisy)
}

// classifyAnswers evaluates the grounding on a scratch copy of the query
// so the target query is only touched by the final atomic append.
func (s *Sampler) classifyAnswers(ctx context.Context, q *query.Query, appendDict map[string]int64) (easy, hard, noisy query.AnswerSet, err error) {
	scratch, err := query.New(q.Formula())
	if err != nil {
		return nil, nil, nil, err
	}
	if err := scratch.AppendQAInstance(appendDict, nil, nil, nil); err != nil {
		return nil, nil, nil, err
	}

	var freeName string
	for name := range q.FreeVariables() {
		freeName = name
	}

	observedAnswers, err := s.obsEng.Answer(ctx, scratch, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	fullAnswers, err := s.fullEng.Answer(ctx, scratch, 0)
	if err != nil {
		return nil, nil, nil, err
	}

	observedSet := entitySet(observedAnswers)
	fullSet := entitySet(fullAnswers)

	easy = query.AnswerSet{freeName: {}}
	hard = query.AnswerSet{freeName: {}}
	noisy = query.AnswerSet{freeName: {}}
	for _, a := range observedAnswers {
		easy[freeName] = append(easy[freeName], a.Entity)
		if !fullSet[a.Entity] {
			noisy[freeName] = append(noisy[freeName], a.Entity)
		}
	}
	for _, a := range fullAnswers {
		if !observedSet[a.Entity] {
			hard[freeName] = append(hard[freeName], a.Entity)
		}
	}
	return easy, hard, noisy, nil
}

func relationNames(q *query.Query) []string {
	var names []string
	seen := map[string]bool{}
	for _, key := range q.AtomicKeys() {
		rel := q.Atomics()[key].Relation
		if seen[rel] {
			continue
		}
		seen[rel] = true
		names = append(names, rel)
	}
	return names
}

func symbolNames(q *query.Query) []string {
	var names []string
	for _, name := range q.TermNames() {
		if term, ok := q.Term(name); ok && term.IsSymbol() {
			names = append(names, name)
		}
	}
	return names
}

func entitySet(answers []clmpt.ScoredEntity) map[int64]bool {
	out := make(map[int64]bool, len(answers))
	for _, a := range answers {
		out[a.Entity] = true
	}
	return out
}
