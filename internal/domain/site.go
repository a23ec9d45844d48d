package domain

import (
	"encoding/json"
	"time"
)

// Metrics is the process-wide metric catalog. Prediction score vectors are
// positionally aligned with it. Never mutated at runtime.
var Metrics = []string{"usable", "good", "great", "exceptional"}

// MetricIndex returns the catalog position of a metric identifier, or -1 if
// the identifier is not in the catalog.
func MetricIndex(id string) int {
	for i, m := range Metrics {
		if m == id {
			return i
		}
	}
	return -1
}

// Score is one predicted value. Present is false when the upstream model
// produced no value for that metric; the zero Value is meaningless then.
type Score struct {
	Value   float64
	Present bool
}

// MarshalJSON encodes an absent score as JSON null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Present {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON decodes JSON null as an absent score.
func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Score{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Score{Value: v, Present: true}
	return nil
}

// Prediction is one forecast day for a site. Scores is exactly
// len(Metrics) long; Scores[i] corresponds to Metrics[i].
type Prediction struct {
	Date   string  `json:"date"` // ISO calendar day, e.g. "2024-06-01"
	Scores []Score `json:"scores"`
}

// Score returns the value at the given catalog position. The second return
// is false for an absent score or an out-of-range index.
func (p Prediction) Score(metricIndex int) (float64, bool) {
	if metricIndex < 0 || metricIndex >= len(p.Scores) {
		return 0, false
	}
	s := p.Scores[metricIndex]
	return s.Value, s.Present
}

// Site is one candidate location with its forecast. Immutable after fetch
// resolution; derived state must be computed into new structures.
type Site struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Geo         Geo          `json:"geo"`
	Predictions []Prediction `json:"predictions"`
}

// PredictionFor returns the site's prediction for an ISO date, if any.
func (s Site) PredictionFor(date string) (Prediction, bool) {
	for _, p := range s.Predictions {
		if p.Date == date {
			return p, true
		}
	}
	return Prediction{}, false
}

// Dataset is one resolved fetch of the full site list.
type Dataset struct {
	Sites     []Site    `json:"sites"`
	Version   string    `json:"version"` // SHA-256 of the raw payload
	FetchedAt time.Time `json:"fetched_at"`
}
