package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_NullMeansAbsent(t *testing.T) {
	var p Prediction
	data := []byte(`{"date":"2024-06-01","scores":[0.9,null,0.4,null]}`)
	require.NoError(t, json.Unmarshal(data, &p))

	require.Len(t, p.Scores, 4, "null must not truncate the vector")

	v, ok := p.Score(0)
	assert.True(t, ok)
	assert.Equal(t, 0.9, v)

	_, ok = p.Score(1)
	assert.False(t, ok)

	_, ok = p.Score(3)
	assert.False(t, ok)
}

func TestScore_AbsentEncodesAsNull(t *testing.T) {
	p := Prediction{Date: "2024-06-01", Scores: []Score{{Value: 0.5, Present: true}, {}}}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-06-01","scores":[0.5,null]}`, string(data))
}

func TestPrediction_ScoreOutOfRange(t *testing.T) {
	p := Prediction{Scores: []Score{{Value: 1, Present: true}}}
	_, ok := p.Score(-1)
	assert.False(t, ok)
	_, ok = p.Score(5)
	assert.False(t, ok)
}

func TestMetricIndex(t *testing.T) {
	assert.Equal(t, 0, MetricIndex("usable"))
	assert.Equal(t, len(Metrics)-1, MetricIndex(Metrics[len(Metrics)-1]))
	assert.Equal(t, -1, MetricIndex("nonsense"))
}

func TestSite_PredictionFor(t *testing.T) {
	s := Site{Predictions: []Prediction{
		{Date: "2024-06-01"},
		{Date: "2024-06-02"},
	}}

	p, ok := s.PredictionFor("2024-06-02")
	require.True(t, ok)
	assert.Equal(t, "2024-06-02", p.Date)

	_, ok = s.PredictionFor("2024-07-01")
	assert.False(t, ok)
}

func TestClampZoom(t *testing.T) {
	assert.Equal(t, MinZoom, ClampZoom(-5))
	assert.Equal(t, 7, ClampZoom(7))
	assert.Equal(t, MaxZoom, ClampZoom(100))
}

func TestValidateDataset(t *testing.T) {
	valid := func() Dataset {
		scores := make([]Score, len(Metrics))
		return Dataset{Sites: []Site{
			{ID: "a", Name: "A", Geo: Geo{Lat: 40, Lon: -100}, Predictions: []Prediction{
				{Date: "2024-06-01", Scores: scores},
				{Date: "2024-06-02", Scores: scores},
			}},
		}}
	}

	t.Run("valid dataset", func(t *testing.T) {
		assert.NoError(t, ValidateDataset(valid()))
	})

	t.Run("empty ID", func(t *testing.T) {
		ds := valid()
		ds.Sites[0].ID = ""
		assert.ErrorContains(t, ValidateDataset(ds), "empty ID")
	})

	t.Run("duplicate ID", func(t *testing.T) {
		ds := valid()
		ds.Sites = append(ds.Sites, ds.Sites[0])
		assert.ErrorContains(t, ValidateDataset(ds), "duplicate ID")
	})

	t.Run("latitude out of range", func(t *testing.T) {
		ds := valid()
		ds.Sites[0].Geo.Lat = -91
		assert.ErrorContains(t, ValidateDataset(ds), "latitude")
	})

	t.Run("misaligned score vector", func(t *testing.T) {
		ds := valid()
		ds.Sites[0].Predictions[0].Scores = ds.Sites[0].Predictions[0].Scores[:1]
		assert.ErrorContains(t, ValidateDataset(ds), "scores")
	})

	t.Run("dates out of order", func(t *testing.T) {
		ds := valid()
		ds.Sites[0].Predictions[0].Date = "2024-06-03"
		assert.ErrorContains(t, ValidateDataset(ds), "out of order")
	})
}
