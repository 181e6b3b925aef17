// Command answer-queries loads a query-set file, answers each grounded
// instance against a knowledge graph, and prints the results as JSON lines.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/qianlima-lab/clmpt/internal/kgdata"
	"github.com/qianlima-lab/clmpt/pkg/clmpt"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/config"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/queryset"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/store"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/store/memstore"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/store/sqlite"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/tnorm"
)

type result struct {
	Query    string  `json:"query"`
	Instance int     `json:"instance"`
	Truth    float64 `json:"truth,omitempty"`
	Answers  []int64 `json:"answers,omitempty"`
}

func main() {
	var (
		queriesPath = flag.String("queries", "", "Path to query-set JSON file (required)")
		graphPath   = flag.String("graph", "", "Path to graph TSV file (required unless --db)")
		dbPath      = flag.String("db", "", "Path to SQLite graph database")
		cfgPath     = flag.String("config", "", "Optional YAML config file")
	)
	flag.Parse()

	if *queriesPath == "" {
		log.Fatal("--queries required")
	}
	if *graphPath == "" && *dbPath == "" {
		log.Fatal("--graph or --db required")
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	ctx := context.Background()

	var st store.Store
	if *dbPath != "" {
		db, err := sqlite.Open(ctx, *dbPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		st = db
	} else {
		mem := memstore.New()
		n, err := kgdata.LoadTriples(ctx, mem, kgdata.NewVocab(), *graphPath)
		if err != nil {
			log.Fatalf("Failed to load graph: %v", err)
		}
		log.Printf("Loaded %d triples from %s", n, *graphPath)
		st = mem
	}
	defer st.Close()

	queries, err := queryset.Load(*queriesPath)
	if err != nil {
		log.Fatalf("Failed to load queries: %v", err)
	}
	log.Printf("Loaded %d queries from %s", len(queries), *queriesPath)

	norm, err := tnorm.FromName(cfg.Tnorm)
	if err != nil {
		log.Fatalf("Bad tnorm: %v", err)
	}
	engine := clmpt.New(clmpt.Options{Store: st, Tnorm: norm, Threshold: cfg.Threshold})

	encoder := json.NewEncoder(os.Stdout)
	answered := 0
	for _, q := range queries {
		n, err := q.NumInstances()
		if err != nil {
			log.Fatalf("Inconsistent query %s: %v", q.String(), err)
		}
		for i := 0; i < n; i++ {
			res := result{Query: q.String(), Instance: i}
			if q.IsSentence() {
				truth, err := engine.Verify(ctx, q, i)
				if err != nil {
					log.Fatalf("Verify %s[%d]: %v", q.String(), i, err)
				}
				res.Truth = truth
			} else {
				answers, err := engine.Answer(ctx, q, i)
				if err != nil {
					log.Fatalf("Answer %s[%d]: %v", q.String(), i, err)
				}
				for _, a := range answers {
					res.Answers = append(res.Answers, a.Entity)
				}
			}
			if err := encoder.Encode(res); err != nil {
				log.Fatalf("Failed to encode result: %v", err)
			}
			answered++
		}
	}
	log.Printf("✓ Answered %d instances", answered)
}
