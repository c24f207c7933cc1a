// Package ranking orders sales records by TF-IDF cosine similarity to a
// free-text query.
package ranking

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/codesellers/backend/internal/metrics"
	"github.com/codesellers/backend/internal/sales"
	"github.com/codesellers/backend/pkg/logger"
)

type Result struct {
	Record sales.Record `json:"record"`
	Score  float64      `json:"score"`
}

// Ranking is the ordered outcome of one Rank call. Fallback is set when the
// similarity model could not be built and records were taken in sequence
// order instead.
type Ranking struct {
	Results  []Result `json:"results"`
	Fallback bool     `json:"fallback"`
}

// Ranker is stateless; the vector space is rebuilt on every call so the
// vocabulary always reflects the corpus and the query together.
type Ranker struct {
	opts Options
}

func NewRanker(opts Options) *Ranker {
	return &Ranker{opts: opts.withDefaults()}
}

// Document renders a record as the text the ranker indexes.
func Document(r sales.Record) string {
	var b strings.Builder
	b.WriteString("Região: ")
	b.WriteString(string(r.Region))
	b.WriteString(", Cliente: ")
	b.WriteString(r.Customer)
	b.WriteString(", Produto: ")
	b.WriteString(r.Product)
	b.WriteString(", Quantidade: ")
	b.WriteString(strconv.Itoa(r.Quantity))
	b.WriteString(", Preço: ")
	b.WriteString(strconv.FormatFloat(r.UnitPrice, 'f', 2, 64))
	b.WriteString(", Lucro: ")
	b.WriteString(strconv.FormatFloat(r.Profit, 'f', 2, 64))
	return b.String()
}

// Rank returns the min(k, len(corpus)) records most similar to query, by
// descending score and then ascending sequence id. k <= 0 is rejected.
func (r *Ranker) Rank(corpus []sales.Record, query string, k int) (*Ranking, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", sales.ErrInvalidArgument, k)
	}
	start := time.Now()
	defer func() { metrics.RankDuration.Observe(time.Since(start).Seconds()) }()

	if k > len(corpus) {
		k = len(corpus)
	}

	docs := make([]string, len(corpus)+1)
	for i, rec := range corpus {
		docs[i] = Document(rec)
	}
	docs[len(corpus)] = query

	v := &vectorizer{opts: r.opts}
	vectors, err := v.fitTransform(docs)
	if err != nil || len(corpus) == 0 {
		if err != nil {
			logger.Debug("Ranking fell back to sequence order", zap.Error(err))
		}
		metrics.RankTotal.WithLabelValues("fallback").Inc()
		return &Ranking{Results: firstK(corpus, k), Fallback: true}, nil
	}

	q := vectors[len(corpus)]
	results := make([]Result, len(corpus))
	for i, rec := range corpus {
		score := q.dot(vectors[i])
		if score > 1 {
			score = 1
		}
		results[i] = Result{Record: rec, Score: score}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Record.SeqID < results[j].Record.SeqID
	})

	metrics.RankTotal.WithLabelValues("similarity").Inc()
	return &Ranking{Results: results[:k]}, nil
}

func firstK(corpus []sales.Record, k int) []Result {
	ordered := make([]sales.Record, len(corpus))
	copy(ordered, corpus)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].SeqID < ordered[j].SeqID })

	out := make([]Result, k)
	for i := 0; i < k; i++ {
		out[i] = Result{Record: ordered[i]}
	}
	return out
}
