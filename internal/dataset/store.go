// Package dataset owns the process-scoped, immutable sales corpus.
package dataset

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/codesellers/backend/internal/ingestion"
	"github.com/codesellers/backend/internal/metrics"
	"github.com/codesellers/backend/internal/region"
	"github.com/codesellers/backend/internal/sales"
	"github.com/codesellers/backend/pkg/logger"
	"github.com/codesellers/backend/pkg/utils"
)

// Corpus is one loaded dataset. It is never modified after construction.
type Corpus struct {
	Records              []sales.Record
	Partitions           map[region.Tag][]sales.Record
	Skipped              []ingestion.RowFailure
	SubdivisionFallbacks int
	Source               string
	Version              string
	LoadedAt             time.Time
}

func emptyCorpus(source string) *Corpus {
	return &Corpus{
		Partitions: map[region.Tag][]sales.Record{},
		Source:     source,
	}
}

func (c *Corpus) Len() int { return len(c.Records) }

// Region returns the records of one region in sequence order.
func (c *Corpus) Region(tag region.Tag) []sales.Record {
	return c.Partitions[tag]
}

// Stats summarises a load for diagnostics.
type Stats struct {
	Source               string             `json:"source"`
	Version              string             `json:"version"`
	LoadedAt             time.Time          `json:"loaded_at"`
	Loaded               int                `json:"loaded"`
	Skipped              int                `json:"skipped"`
	SkippedByReason      map[string]int     `json:"skipped_by_reason"`
	SubdivisionFallbacks int                `json:"subdivision_fallbacks"`
	PerRegion            map[region.Tag]int `json:"per_region"`
}

func (c *Corpus) Stats() Stats {
	st := Stats{
		Source:               c.Source,
		Version:              c.Version,
		LoadedAt:             c.LoadedAt,
		Loaded:               len(c.Records),
		Skipped:              len(c.Skipped),
		SkippedByReason:      make(map[string]int),
		SubdivisionFallbacks: c.SubdivisionFallbacks,
		PerRegion:            make(map[region.Tag]int, len(region.Tags())),
	}
	for _, f := range c.Skipped {
		st.SkippedByReason[f.Reason]++
	}
	for _, tag := range region.Tags() {
		st.PerRegion[tag] = len(c.Partitions[tag])
	}
	return st
}

type Options struct {
	Latin1Fallback bool
}

// Store hands out corpus snapshots. Loads replace the snapshot atomically so
// readers never see a partially built corpus.
type Store struct {
	current    atomic.Pointer[Corpus]
	normalizer *ingestion.Normalizer
	opts       Options
}

func NewStore(opts Options) *Store {
	s := &Store{
		normalizer: ingestion.NewNormalizer(),
		opts:       opts,
	}
	s.current.Store(emptyCorpus(""))
	return s
}

func (s *Store) Snapshot() *Corpus {
	return s.current.Load()
}

// Load reads and normalizes the file at path. On failure the store is left
// holding an empty corpus and the error is returned.
func (s *Store) Load(path string) (*Corpus, error) {
	header, rows, err := ingestion.ReadFile(path, ingestion.ReadOptions{Latin1Fallback: s.opts.Latin1Fallback})
	if err != nil {
		return nil, s.fail(path, err)
	}
	return s.LoadRows(path, header, rows)
}

// LoadRows normalizes already parsed rows under the given source name.
func (s *Store) LoadRows(source string, header []string, rows [][]string) (*Corpus, error) {
	res, err := s.normalizer.Normalize(header, rows)
	if err != nil {
		return nil, s.fail(source, err)
	}

	loadedAt := time.Now().UTC()
	c := &Corpus{
		Records:              res.Records,
		Partitions:           res.Partitions,
		Skipped:              res.Skipped,
		SubdivisionFallbacks: res.SubdivisionFallbacks,
		Source:               source,
		LoadedAt:             loadedAt,
		Version: utils.HashKey(source, loadedAt.Format(time.RFC3339Nano),
			fmt.Sprint(len(res.Records)), fmt.Sprint(len(res.Skipped)))[:16],
	}
	s.current.Store(c)

	metrics.DatasetLoads.WithLabelValues("success").Inc()
	metrics.RowsLoaded.Set(float64(len(c.Records)))
	metrics.SubdivisionFallbacks.Add(float64(c.SubdivisionFallbacks))
	for _, f := range c.Skipped {
		metrics.RowsSkipped.WithLabelValues(f.Reason).Inc()
	}

	logger.Info("Dataset loaded",
		zap.String("source", source),
		zap.String("version", c.Version),
		zap.Int("records", len(c.Records)),
		zap.Int("skipped", len(c.Skipped)),
		zap.Int("subdivision_fallbacks", c.SubdivisionFallbacks))

	return c, nil
}

func (s *Store) fail(source string, err error) error {
	s.current.Store(emptyCorpus(source))
	metrics.DatasetLoads.WithLabelValues("failure").Inc()
	metrics.RowsLoaded.Set(0)
	logger.Error("Dataset load failed", zap.String("source", source), zap.Error(err))
	return fmt.Errorf("failed to load dataset %s: %w", source, err)
}
