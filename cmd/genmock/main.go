// Command genmock generates a mock site-forecast dataset fixture in the
// forecast API response shape. It uses the actual domain package so the
// fixture passes the same validation as real API payloads, and a fixed seed
// and clock so regeneration is reproducible.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/sites_240601.json -sites 25 -days 7
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/site-view-service/internal/domain"
)

// Mock sites are scattered over the continental US.
var region = domain.Bounds{North: 48.5, South: 26.0, East: -67.0, West: -124.5}

var siteNames = []string{
	"Cedar Ridge", "Bluff Point", "Granite Flats", "Willow Bend", "Mesa Verde",
	"Pine Hollow", "Falcon Crest", "Juniper Gap", "Salt Fork", "Prairie View",
	"Eagle Rock", "Dry Creek", "Lone Butte", "Aspen Draw", "Clearwater",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the dataset fixture")
	sites := flag.Int("sites", 25, "number of sites to generate")
	days := flag.Int("days", 7, "number of forecast days per site")
	start := flag.String("start", "2024-06-01", "first forecast date (YYYY-MM-DD)")
	seed := flag.Int64("seed", 240601, "deterministic RNG seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}

	// Fixed clock for a reproducible FetchedAt stamp.
	clock := clockwork.NewFakeClockAt(startDate.Add(6 * time.Hour))

	rng := rand.New(rand.NewSource(*seed))
	dataset := generate(rng, clock, *sites, *days, startDate)

	if err := domain.ValidateDataset(dataset); err != nil {
		return fmt.Errorf("generated dataset failed validation: %w", err)
	}

	if err := writeJSON(*out, map[string]any{"sites": dataset.Sites}); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s (%d sites, %d days)", *out, *sites, *days)

	printStats(dataset)
	return nil
}

func generate(rng *rand.Rand, clock clockwork.Clock, siteCount, days int, start time.Time) domain.Dataset {
	ds := domain.Dataset{FetchedAt: clock.Now().UTC()}

	for i := 0; i < siteCount; i++ {
		site := domain.Site{
			ID:   fmt.Sprintf("s-%03d", i+1),
			Name: fmt.Sprintf("%s %d", siteNames[i%len(siteNames)], i/len(siteNames)+1),
			Geo: domain.Geo{
				Lat: region.South + rng.Float64()*region.Height(),
				Lon: region.West + rng.Float64()*region.Width(),
			},
		}

		// Base quality per site so the ladder thins out realistically.
		base := 0.3 + rng.Float64()*0.6

		for d := 0; d < days; d++ {
			p := domain.Prediction{
				Date:   start.AddDate(0, 0, d).Format("2006-01-02"),
				Scores: make([]domain.Score, len(domain.Metrics)),
			}
			for m := range domain.Metrics {
				// Each rung of the ladder is harder to clear, and the model
				// leaves some rungs unscored entirely.
				v := base - 0.2*float64(m) + (rng.Float64()-0.5)*0.2
				if v < 0 || rng.Float64() < 0.1 {
					continue // absent
				}
				p.Scores[m] = domain.Score{Value: round2(v), Present: true}
			}
			site.Predictions = append(site.Predictions, p)
		}
		ds.Sites = append(ds.Sites, site)
	}
	return ds
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printStats(ds domain.Dataset) {
	present := make([]int, len(domain.Metrics))
	total := 0
	for _, s := range ds.Sites {
		for _, p := range s.Predictions {
			total++
			for m := range domain.Metrics {
				if _, ok := p.Score(m); ok {
					present[m]++
				}
			}
		}
	}

	log.Printf("predictions: %d", total)
	for m, id := range domain.Metrics {
		log.Printf("  %-12s present in %d/%d", id, present[m], total)
	}
}
