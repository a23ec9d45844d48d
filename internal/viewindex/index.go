// Package viewindex precomputes per-date site groupings so that many
// subordinate views can look their slice up in O(1) instead of each scanning
// the full dataset.
package viewindex

import "github.com/couchcryptid/site-view-service/internal/domain"

// Index maps an ISO date to the sites whose prediction for that date has a
// present score at the selected metric. Built once per (dataset, metric,
// dates) selection and never mutated afterwards.
type Index map[string][]domain.Site

// Build groups sites by date for one metric selection. For each date the
// group contains every site whose prediction on that date exists and has a
// present score at metricIndex, in dataset order. Empty sites or dates are
// fine; an out-of-range metricIndex yields empty groups.
func Build(sites []domain.Site, metricIndex int, dates []string) Index {
	idx := make(Index, len(dates))
	for _, date := range dates {
		// Pre-create the key so consumers can distinguish "no sites match"
		// from "date not requested".
		idx[date] = nil
	}
	if len(sites) == 0 || len(dates) == 0 {
		return idx
	}

	for _, site := range sites {
		for _, date := range dates {
			p, ok := site.PredictionFor(date)
			if !ok {
				continue
			}
			if _, present := p.Score(metricIndex); !present {
				continue
			}
			idx[date] = append(idx[date], site)
		}
	}
	return idx
}
