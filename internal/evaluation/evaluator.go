// Package evaluation measures retrieval quality of the ranker against a set
// of labelled questions.
package evaluation

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/codesellers/backend/internal/ranking"
	"github.com/codesellers/backend/internal/region"
	"github.com/codesellers/backend/internal/sales"
	"github.com/codesellers/backend/pkg/logger"
)

type Evaluator struct {
	ranker *ranking.Ranker
}

type EvaluationDataset struct {
	Items []DatasetItem `json:"items"`
}

// DatasetItem is one labelled question. A ranked record is relevant when its
// product is one of ExpectedProducts (if any are given) and it lies in
// ExpectedRegion (if given).
type DatasetItem struct {
	Query            string   `json:"query"`
	ExpectedProducts []string `json:"expected_products,omitempty"`
	ExpectedRegion   string   `json:"expected_region,omitempty"`
}

type ItemResult struct {
	Query      string  `json:"query"`
	FirstHit   int     `json:"first_hit"`
	Reciprocal float64 `json:"reciprocal_rank"`
	Fallback   bool    `json:"fallback"`
	Err        string  `json:"error,omitempty"`
}

type EvaluationReport struct {
	K             int          `json:"k"`
	TotalQueries  int          `json:"total_queries"`
	Hits          int          `json:"hits"`
	HitRate       float64      `json:"hit_rate"`
	MRR           float64      `json:"mrr"`
	FallbackCount int          `json:"fallback_count"`
	ErrorCount    int          `json:"error_count"`
	Items         []ItemResult `json:"items"`
}

func NewEvaluator(ranker *ranking.Ranker) *Evaluator {
	return &Evaluator{ranker: ranker}
}

// EvaluateQuery ranks corpus against item.Query and reports the 1-based
// position of the first relevant record, or 0 when none is in the top k.
func (e *Evaluator) EvaluateQuery(corpus []sales.Record, item DatasetItem, k int) (ItemResult, error) {
	result := ItemResult{Query: item.Query}

	var wantRegion region.Tag
	if item.ExpectedRegion != "" {
		tag, ok := region.Parse(item.ExpectedRegion)
		if !ok {
			return result, fmt.Errorf("%w: unknown expected region %q", sales.ErrInvalidArgument, item.ExpectedRegion)
		}
		wantRegion = tag
	}

	rk, err := e.ranker.Rank(corpus, item.Query, k)
	if err != nil {
		return result, err
	}
	result.Fallback = rk.Fallback

	for i, r := range rk.Results {
		if relevant(r.Record, item.ExpectedProducts, wantRegion) {
			result.FirstHit = i + 1
			result.Reciprocal = 1 / float64(i+1)
			break
		}
	}

	return result, nil
}

func relevant(rec sales.Record, products []string, tag region.Tag) bool {
	if tag != "" && rec.Region != tag {
		return false
	}
	if len(products) == 0 {
		return true
	}
	for _, p := range products {
		if strings.EqualFold(strings.TrimSpace(p), strings.TrimSpace(rec.Product)) {
			return true
		}
	}
	return false
}

func (e *Evaluator) RunDatasetEvaluation(corpus []sales.Record, dataset *EvaluationDataset, k int) (*EvaluationReport, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", sales.ErrInvalidArgument, k)
	}

	logger.Info("Running ranking evaluation", zap.Int("items", len(dataset.Items)), zap.Int("k", k))

	report := &EvaluationReport{
		K:            k,
		TotalQueries: len(dataset.Items),
		Items:        make([]ItemResult, 0, len(dataset.Items)),
	}

	var totalReciprocal float64
	for _, item := range dataset.Items {
		result, err := e.EvaluateQuery(corpus, item, k)
		if err != nil {
			logger.Warn("Failed to evaluate query", zap.String("query", item.Query), zap.Error(err))
			result.Err = err.Error()
			report.ErrorCount++
		}

		if result.FirstHit > 0 {
			report.Hits++
		}
		if result.Fallback {
			report.FallbackCount++
		}
		totalReciprocal += result.Reciprocal
		report.Items = append(report.Items, result)
	}

	if report.TotalQueries > 0 {
		report.HitRate = float64(report.Hits) / float64(report.TotalQueries)
		report.MRR = totalReciprocal / float64(report.TotalQueries)
	}

	logger.Info("Ranking evaluation completed",
		zap.Int("total", report.TotalQueries),
		zap.Int("hits", report.Hits),
		zap.Float64("mrr", report.MRR),
		zap.Int("fallbacks", report.FallbackCount),
	)

	return report, nil
}

func (e *Evaluator) LoadDatasetFromJSON(jsonData string) (*EvaluationDataset, error) {
	var dataset EvaluationDataset
	if err := json.Unmarshal([]byte(jsonData), &dataset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dataset: %w", err)
	}

	return &dataset, nil
}

func (e *Evaluator) GenerateReport(report *EvaluationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, `
Ranking Evaluation Report
=========================

Total Queries: %d
Top-K: %d

Hit Rate: %.1f%% (%d of %d)
Mean Reciprocal Rank: %.3f
Fallback Rankings: %d
Errors: %d
`,
		report.TotalQueries,
		report.K,
		report.HitRate*100, report.Hits, report.TotalQueries,
		report.MRR,
		report.FallbackCount,
		report.ErrorCount,
	)

	if len(report.Items) > 0 {
		b.WriteString("\nPer Query:\n")
		for _, item := range report.Items {
			switch {
			case item.Err != "":
				fmt.Fprintf(&b, "- %q: error (%s)\n", item.Query, item.Err)
			case item.FirstHit == 0:
				fmt.Fprintf(&b, "- %q: miss\n", item.Query)
			default:
				fmt.Fprintf(&b, "- %q: hit at %d\n", item.Query, item.FirstHit)
			}
		}
	}

	return b.String()
}
