package evaluation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesellers/backend/internal/ranking"
	"github.com/codesellers/backend/internal/region"
	"github.com/codesellers/backend/internal/sales"
)

func corpus() []sales.Record {
	return []sales.Record{
		{SeqID: 1, Region: region.Sudeste, Customer: "Ana", Product: "Mesa de Escritório", Quantity: 1, UnitPrice: 300, Profit: 50},
		{SeqID: 2, Region: region.Sul, Customer: "Bruno", Product: "Cadeira Gamer", Quantity: 2, UnitPrice: 899.9, Profit: 120},
		{SeqID: 3, Region: region.Nordeste, Customer: "Carla", Product: "Notebook", Quantity: 1, UnitPrice: 3500, Profit: 700},
	}
}

func TestRunDatasetEvaluation(t *testing.T) {
	e := NewEvaluator(ranking.NewRanker(ranking.DefaultOptions()))

	dataset, err := e.LoadDatasetFromJSON(`{"items": [
		{"query": "cadeira gamer", "expected_products": ["cadeira gamer"]},
		{"query": "notebook", "expected_region": "Nordeste"},
		{"query": "mesa", "expected_products": ["Geladeira"]}
	]}`)
	require.NoError(t, err)
	require.Len(t, dataset.Items, 3)

	report, err := e.RunDatasetEvaluation(corpus(), dataset, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalQueries)
	assert.Equal(t, 2, report.Hits)
	assert.InDelta(t, 2.0/3.0, report.HitRate, 1e-9)
	assert.InDelta(t, 2.0/3.0, report.MRR, 1e-9)
	assert.Equal(t, 0, report.FallbackCount)
	assert.Equal(t, 1, report.Items[0].FirstHit)
	assert.Equal(t, 0, report.Items[2].FirstHit)

	text := e.GenerateReport(report)
	assert.Contains(t, text, "Hit Rate: 66.7% (2 of 3)")
	assert.Contains(t, text, `"mesa": miss`)
}

func TestEvaluateQueryFallbackAndErrors(t *testing.T) {
	e := NewEvaluator(ranking.NewRanker(ranking.DefaultOptions()))

	report, err := e.RunDatasetEvaluation(nil, &EvaluationDataset{Items: []DatasetItem{{Query: "qualquer"}}}, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FallbackCount)
	assert.Equal(t, 0, report.Hits)

	_, err = e.EvaluateQuery(corpus(), DatasetItem{Query: "x", ExpectedRegion: "Atlântida"}, 1)
	assert.True(t, errors.Is(err, sales.ErrInvalidArgument))

	_, err = e.RunDatasetEvaluation(corpus(), &EvaluationDataset{}, 0)
	assert.True(t, errors.Is(err, sales.ErrInvalidArgument))
}

func TestLoadDatasetFromJSONInvalid(t *testing.T) {
	e := NewEvaluator(ranking.NewRanker(ranking.DefaultOptions()))
	_, err := e.LoadDatasetFromJSON("{")
	assert.Error(t, err)
}
