// Command validate performs integrity checks on a dataset fixture: schema and
// structural invariants, metric-catalog alignment, and derived-index
// consistency against a brute-force rescan.
//
// Usage:
//
//	go run ./cmd/validate -dataset data/mock/sites_240601.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/couchcryptid/site-view-service/internal/domain"
	"github.com/couchcryptid/site-view-service/internal/viewindex"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	datasetPath := flag.String("dataset", "", "path to the dataset fixture JSON")
	flag.Parse()

	if *datasetPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*datasetPath); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	fmt.Println("=== Site Dataset Integrity Validation ===")
	fmt.Println()

	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read fixture: %v\n", err)
		return 1
	}

	var payload struct {
		Sites []domain.Site `json:"sites"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: decode fixture: %v\n", err)
		return 1
	}
	ds := domain.Dataset{Sites: payload.Sites, Version: "fixture"}

	phases := []*phase{
		validateSchema(ds),
		validateCatalog(ds),
		validateIndex(ds),
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	fmt.Println()
	if failed > 0 {
		fmt.Printf("%d/%d phases failed\n", failed, len(phases))
		return 1
	}
	fmt.Printf("all %d phases passed (%d sites)\n", len(phases), len(ds.Sites))
	return 0
}

// validateSchema applies the domain structural invariants.
func validateSchema(ds domain.Dataset) *phase {
	p := &phase{name: "schema"}
	if err := domain.ValidateDataset(ds); err != nil {
		p.errorf("%v", err)
	}
	if len(ds.Sites) == 0 {
		p.errorf("fixture contains no sites")
	}
	return p
}

// validateCatalog checks metric-catalog alignment: every score vector is
// exactly as long as the catalog and no date appears twice within a site.
func validateCatalog(ds domain.Dataset) *phase {
	p := &phase{name: "catalog alignment"}
	for _, s := range ds.Sites {
		seen := map[string]bool{}
		for _, pred := range s.Predictions {
			if len(pred.Scores) != len(domain.Metrics) {
				p.errorf("site %s %s: %d scores for %d metrics", s.ID, pred.Date, len(pred.Scores), len(domain.Metrics))
			}
			if seen[pred.Date] {
				p.errorf("site %s: duplicate date %s", s.ID, pred.Date)
			}
			seen[pred.Date] = true
		}
	}
	return p
}

// validateIndex builds the derived index for every metric over all dates in
// the fixture and cross-checks membership and ordering against a brute-force
// scan of the dataset.
func validateIndex(ds domain.Dataset) *phase {
	p := &phase{name: "derived index consistency"}

	dateSet := map[string]bool{}
	for _, s := range ds.Sites {
		for _, pred := range s.Predictions {
			dateSet[pred.Date] = true
		}
	}
	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for m := range domain.Metrics {
		idx := viewindex.Build(ds.Sites, m, dates)
		for _, date := range dates {
			var want []string
			for _, s := range ds.Sites {
				if pred, ok := s.PredictionFor(date); ok {
					if _, present := pred.Score(m); present {
						want = append(want, s.ID)
					}
				}
			}

			got := make([]string, 0, len(idx[date]))
			for _, s := range idx[date] {
				got = append(got, s.ID)
			}

			if len(got) != len(want) {
				p.errorf("metric %d date %s: index has %d sites, scan found %d", m, date, len(got), len(want))
				continue
			}
			for i := range want {
				if got[i] != want[i] {
					p.errorf("metric %d date %s: position %d is %s, scan found %s (order must follow the dataset)",
						m, date, i, got[i], want[i])
					break
				}
			}
		}
	}
	return p
}
