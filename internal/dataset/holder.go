package dataset

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Recorder receives dataset metrics. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordDatasetLoad(source, status string, rows int)
	RecordDatasetDrops(reason string, n int)
	RecordSingleflightDedup(module string)
}

// Holder serves the active dataset and replaces it atomically on reload.
// Concurrent reloads share a single load.
type Holder struct {
	current  atomic.Pointer[Dataset]
	source   Source
	group    singleflight.Group
	recorder Recorder
}

type reloadResult struct {
	dataset *Dataset
	stats   LoadStats
}

// NewHolder creates a holder serving an empty dataset until the first Reload.
// recorder may be nil.
func NewHolder(source Source, recorder Recorder) *Holder {
	h := &Holder{source: source, recorder: recorder}
	h.current.Store(Empty(""))
	return h
}

// Current returns the active dataset. It never returns nil.
func (h *Holder) Current() *Dataset {
	return h.current.Load()
}

// Reload loads from the source and installs the result.
//
// A failed load never replaces a non-empty dataset; the previous rows keep
// serving and the error is returned. The returned dataset is the one now
// active.
func (h *Holder) Reload(ctx context.Context) (*Dataset, LoadStats, error) {
	v, err, shared := h.group.Do("reload", func() (any, error) {
		start := time.Now()
		ds, stats, err := h.source.Load(ctx)

		status := "success"
		switch {
		case err != nil:
			status = "error"
		case ds.Len() == 0:
			status = "empty"
		}
		h.record(ds, stats, status)

		if err != nil && h.Current().Len() > 0 {
			slog.WarnContext(ctx, "Dataset reload failed, keeping previous rows",
				"source", h.source.Name(),
				"rows", h.Current().Len(),
				"error", err)
			return reloadResult{dataset: h.Current(), stats: stats}, err
		}

		h.current.Store(ds)
		slog.InfoContext(ctx, "Dataset loaded",
			"source", ds.Source(),
			"rows", ds.Len(),
			"malformed", stats.Malformed,
			"incomplete", stats.Incomplete,
			"duplicates", stats.Duplicates,
			"field_errors", stats.FieldErrors,
			"duration_ms", time.Since(start).Milliseconds())
		return reloadResult{dataset: ds, stats: stats}, err
	})
	if shared && h.recorder != nil {
		h.recorder.RecordSingleflightDedup("dataset")
	}

	res, _ := v.(reloadResult)
	if res.dataset == nil {
		res.dataset = h.Current()
	}
	return res.dataset, res.stats, err
}

func (h *Holder) record(ds *Dataset, stats LoadStats, status string) {
	if h.recorder == nil {
		return
	}
	h.recorder.RecordDatasetLoad(h.source.Name(), status, ds.Len())
	h.recorder.RecordDatasetDrops("malformed", stats.Malformed)
	h.recorder.RecordDatasetDrops("incomplete", stats.Incomplete)
	h.recorder.RecordDatasetDrops("duplicate", stats.Duplicates)
}
