package dataset

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/codesellers/backend/internal/storage/models"
	"github.com/codesellers/backend/pkg/logger"
)

// RunRecorder persists the outcome of a load.
type RunRecorder interface {
	RecordLoadRun(run *models.LoadRun, failures []models.RowFailure) (int, error)
}

// Loader reloads the store from a fixed path and records each attempt.
// Concurrent reloads are serialized.
type Loader struct {
	mu       sync.Mutex
	store    *Store
	path     string
	recorder RunRecorder
	onLoad   []func(ctx context.Context, c *Corpus)
}

// NewLoader builds a loader; recorder may be nil.
func NewLoader(store *Store, path string, recorder RunRecorder) *Loader {
	return &Loader{store: store, path: path, recorder: recorder}
}

// OnLoad registers a hook run after every successful load.
func (l *Loader) OnLoad(fn func(ctx context.Context, c *Corpus)) {
	l.onLoad = append(l.onLoad, fn)
}

func (l *Loader) Path() string { return l.path }

func (l *Loader) Reload(ctx context.Context) (*Corpus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	started := time.Now()
	corpus, err := l.store.Load(l.path)

	run := &models.LoadRun{
		Source:     l.path,
		Status:     "success",
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	var failures []models.RowFailure
	if err != nil {
		run.Status = "failure"
		run.Error = err.Error()
	} else {
		run.Version = corpus.Version
		run.Loaded = corpus.Len()
		run.Skipped = len(corpus.Skipped)
		run.SubdivisionFallbacks = corpus.SubdivisionFallbacks
		failures = make([]models.RowFailure, len(corpus.Skipped))
		for i, f := range corpus.Skipped {
			failures[i] = models.RowFailure{Row: f.Row, Reason: f.Reason, Detail: f.Detail, Fields: f.Fields}
		}
	}

	if l.recorder != nil {
		if _, rerr := l.recorder.RecordLoadRun(run, failures); rerr != nil {
			logger.Warn("Failed to record load run", zap.Error(rerr))
		}
	}

	if err != nil {
		return nil, err
	}

	for _, fn := range l.onLoad {
		fn(ctx, corpus)
	}
	return corpus, nil
}
