// Command sample-queries grounds a query skeleton against an observed and a
// full knowledge graph and writes the resulting instances, with their easy,
// hard, and noisy answer sets, to a JSON query-set file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/qianlima-lab/clmpt/internal/kgdata"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/config"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/formula"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/query"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/queryset"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/sampler"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/store/memstore"
	"github.com/qianlima-lab/clmpt/pkg/clmpt/tnorm"
)

func main() {
	var (
		observedPath = flag.String("observed", "", "Path to observed-graph TSV file (required)")
		fullPath     = flag.String("full", "", "Path to full-graph TSV file (defaults to observed)")
		formulaPath  = flag.String("formula", "", "Path to formula JSON file (required)")
		cfgPath      = flag.String("config", "", "Optional YAML config file")
		instances    = flag.Int("n", 0, "Instances to sample (overrides config)")
		seed         = flag.Int64("seed", 0, "Random seed (overrides config)")
		outPath      = flag.String("out", "queries.json", "Output query-set file")
	)
	flag.Parse()

	if *observedPath == "" {
		log.Fatal("--observed required")
	}
	if *formulaPath == "" {
		log.Fatal("--formula required")
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *instances > 0 {
		cfg.Sampler.Instances = *instances
	}
	if *seed != 0 {
		cfg.Sampler.Seed = *seed
	}

	ctx := context.Background()

	observed := memstore.New()
	defer observed.Close()
	vocab := kgdata.NewVocab()
	n, err := kgdata.LoadTriples(ctx, observed, vocab, *observedPath)
	if err != nil {
		log.Fatalf("Failed to load observed graph: %v", err)
	}
	log.Printf("Loaded %d observed triples from %s", n, *observedPath)

	full := observed
	if *fullPath != "" {
		fullStore := memstore.New()
		defer fullStore.Close()
		n, err := kgdata.LoadTriples(ctx, fullStore, vocab, *fullPath)
		if err != nil {
			log.Fatalf("Failed to load full graph: %v", err)
		}
		log.Printf("Loaded %d full triples from %s", n, *fullPath)
		full = fullStore
	}

	data, err := os.ReadFile(*formulaPath)
	if err != nil {
		log.Fatalf("Failed to read formula: %v", err)
	}
	var ldict map[string]any
	if err := json.Unmarshal(data, &ldict); err != nil {
		log.Fatalf("Failed to decode formula JSON: %v", err)
	}
	f, err := formula.Parse(ldict)
	if err != nil {
		log.Fatalf("Failed to parse formula: %v", err)
	}
	q, err := query.New(f)
	if err != nil {
		log.Fatalf("Failed to index query: %v", err)
	}
	log.Printf("Sampling %d instances of %s", cfg.Sampler.Instances, q.String())

	norm, err := tnorm.FromName(cfg.Tnorm)
	if err != nil {
		log.Fatalf("Bad tnorm: %v", err)
	}
	s := sampler.New(sampler.Options{
		Observed:  observed,
		Full:      full,
		Tnorm:     norm,
		Threshold: cfg.Threshold,
		Seed:      cfg.Sampler.Seed,
	})

	if err := s.Run(ctx, q, cfg.Sampler.Instances); err != nil {
		log.Fatalf("Sampling failed: %v", err)
	}

	writer := queryset.NewWriter()
	if err := writer.Write(*outPath, []*query.Query{q}); err != nil {
		log.Fatalf("Failed to write query set: %v", err)
	}
	log.Printf("✓ Wrote %d instances to %s", cfg.Sampler.Instances, *outPath)
}
