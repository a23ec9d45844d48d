package domain

import "fmt"

// ValidateDataset checks the structural invariants of a fetched dataset:
// unique non-empty site IDs, coordinates in range, score vectors aligned with
// the metric catalog, and prediction dates in ascending order.
func ValidateDataset(d Dataset) error {
	seen := make(map[string]struct{}, len(d.Sites))
	for i, s := range d.Sites {
		if s.ID == "" {
			return fmt.Errorf("site %d: empty ID", i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("site %q: duplicate ID", s.ID)
		}
		seen[s.ID] = struct{}{}

		if s.Geo.Lat < -90 || s.Geo.Lat > 90 {
			return fmt.Errorf("site %q: latitude %v out of range", s.ID, s.Geo.Lat)
		}
		if s.Geo.Lon < -180 || s.Geo.Lon > 180 {
			return fmt.Errorf("site %q: longitude %v out of range", s.ID, s.Geo.Lon)
		}

		prevDate := ""
		for j, p := range s.Predictions {
			if len(p.Scores) != len(Metrics) {
				return fmt.Errorf("site %q: prediction %q has %d scores, catalog has %d",
					s.ID, p.Date, len(p.Scores), len(Metrics))
			}
			if p.Date == "" {
				return fmt.Errorf("site %q: prediction %d has empty date", s.ID, j)
			}
			if prevDate != "" && p.Date <= prevDate {
				return fmt.Errorf("site %q: prediction dates out of order (%q after %q)",
					s.ID, p.Date, prevDate)
			}
			prevDate = p.Date
		}
	}
	return nil
}
