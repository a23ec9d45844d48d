package viewindex_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/site-view-service/internal/domain"
	"github.com/couchcryptid/site-view-service/internal/observability"
	"github.com/couchcryptid/site-view-service/internal/viewindex"
)

func score(v float64) domain.Score { return domain.Score{Value: v, Present: true} }

func absent() domain.Score { return domain.Score{} }

// site builds a test site with one prediction per date; scores[i] applies to
// dates[i].
func site(id string, dates []string, scores [][]domain.Score) domain.Site {
	s := domain.Site{ID: id, Name: id, Geo: domain.Geo{Lat: 40, Lon: -100}}
	for i, d := range dates {
		s.Predictions = append(s.Predictions, domain.Prediction{Date: d, Scores: scores[i]})
	}
	return s
}

func fullScores(v float64) []domain.Score {
	out := make([]domain.Score, len(domain.Metrics))
	for i := range out {
		out[i] = score(v)
	}
	return out
}

func absentAt(metricIndex int) []domain.Score {
	out := fullScores(0.5)
	out[metricIndex] = absent()
	return out
}

func TestBuild_MembershipByPresence(t *testing.T) {
	const date = "2024-06-01"
	a := site("A", []string{date}, [][]domain.Score{fullScores(0.9)})
	b := site("B", []string{date}, [][]domain.Score{absentAt(0)})
	c := site("C", []string{date}, [][]domain.Score{absentAt(0)})

	idx := viewindex.Build([]domain.Site{a, b, c}, 0, []string{date})

	require.Len(t, idx[date], 1)
	assert.Equal(t, "A", idx[date][0].ID)
}

func TestBuild_KeepsDatasetOrder(t *testing.T) {
	const date = "2024-06-02"
	sites := []domain.Site{
		site("zulu", []string{date}, [][]domain.Score{fullScores(0.1)}),
		site("alpha", []string{date}, [][]domain.Score{fullScores(0.9)}),
		site("mike", []string{date}, [][]domain.Score{fullScores(0.5)}),
	}

	idx := viewindex.Build(sites, 1, []string{date})

	require.Len(t, idx[date], 3)
	assert.Equal(t, "zulu", idx[date][0].ID)
	assert.Equal(t, "alpha", idx[date][1].ID)
	assert.Equal(t, "mike", idx[date][2].ID)
}

func TestBuild_Deterministic(t *testing.T) {
	dates := []string{"2024-06-01", "2024-06-02"}
	sites := []domain.Site{
		site("A", dates, [][]domain.Score{fullScores(0.9), absentAt(2)}),
		site("B", dates, [][]domain.Score{absentAt(2), fullScores(0.4)}),
	}

	first := viewindex.Build(sites, 2, dates)
	second := viewindex.Build(sites, 2, dates)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated builds differ (-first +second):\n%s", diff)
	}
}

func TestBuild_EmptyInputs(t *testing.T) {
	assert.Empty(t, viewindex.Build(nil, 0, nil))

	idx := viewindex.Build(nil, 0, []string{"2024-06-01"})
	require.Contains(t, idx, "2024-06-01")
	assert.Empty(t, idx["2024-06-01"])

	sites := []domain.Site{site("A", []string{"2024-06-01"}, [][]domain.Score{fullScores(1)})}
	assert.Empty(t, viewindex.Build(sites, 0, nil))
}

func TestBuild_MissingDateAndOutOfRangeMetric(t *testing.T) {
	sites := []domain.Site{site("A", []string{"2024-06-01"}, [][]domain.Score{fullScores(1)})}

	idx := viewindex.Build(sites, 0, []string{"2024-07-15"})
	assert.Empty(t, idx["2024-07-15"], "no prediction for the requested date")

	idx = viewindex.Build(sites, len(domain.Metrics)+3, []string{"2024-06-01"})
	assert.Empty(t, idx["2024-06-01"], "out-of-range metric never matches")
}

func TestCache_HitOnIdenticalSelection(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	cache, err := viewindex.NewCache(8, metrics)
	require.NoError(t, err)

	dates := []string{"2024-06-01"}
	ds := domain.Dataset{
		Version: "v1",
		Sites:   []domain.Site{site("A", dates, [][]domain.Score{fullScores(0.9)})},
	}

	first := cache.Get(ds, 0, dates)
	second := cache.Get(ds, 0, dates)

	require.Len(t, first["2024-06-01"], 1)
	// Memoized: the identical Index value, not a rebuild.
	assert.Same(t, &first["2024-06-01"][0], &second["2024-06-01"][0])
}

func TestCache_MissOnChangedSelection(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	cache, err := viewindex.NewCache(8, metrics)
	require.NoError(t, err)

	dates := []string{"2024-06-01"}
	v1 := domain.Dataset{Version: "v1", Sites: []domain.Site{site("A", dates, [][]domain.Score{fullScores(0.9)})}}
	v2 := domain.Dataset{Version: "v2", Sites: []domain.Site{site("A", dates, [][]domain.Score{absentAt(0)})}}

	got := cache.Get(v1, 0, dates)
	require.Len(t, got["2024-06-01"], 1)

	// New dataset version must not serve the stale grouping.
	got = cache.Get(v2, 0, dates)
	assert.Empty(t, got["2024-06-01"])

	// Different metric on the same dataset is its own entry.
	got = cache.Get(v2, 1, dates)
	require.Len(t, got["2024-06-01"], 1)
}
