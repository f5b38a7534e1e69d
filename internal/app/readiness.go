package app

import (
	"sync/atomic"
	"time"
)

// readiness tracks whether the first dataset load has finished. After the
// grace period the service reports ready regardless, serving whatever
// dataset it has.
type readiness struct {
	ready     atomic.Bool
	startTime time.Time
	grace     time.Duration
}

// readinessStatus is the /readyz progress payload.
type readinessStatus struct {
	Ready          bool   `json:"ready"`
	Reason         string `json:"reason,omitempty"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	GraceSeconds   int    `json:"grace_seconds"`
}

func newReadiness(grace time.Duration) *readiness {
	return &readiness{startTime: time.Now(), grace: grace}
}

// IsReady reports whether the dataset loaded or the grace period elapsed.
func (r *readiness) IsReady() bool {
	return r.ready.Load() || time.Since(r.startTime) >= r.grace
}

// MarkReady records that the initial dataset load finished.
func (r *readiness) MarkReady() {
	r.ready.Store(true)
}

func (r *readiness) Status() readinessStatus {
	s := readinessStatus{
		Ready:          r.IsReady(),
		ElapsedSeconds: int(time.Since(r.startTime).Seconds()),
		GraceSeconds:   int(r.grace.Seconds()),
	}
	switch {
	case !s.Ready:
		s.Reason = "dataset loading"
	case !r.ready.Load():
		s.Reason = "grace period elapsed (dataset still loading)"
	}
	return s
}
