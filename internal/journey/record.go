// Package journey implements the resumable wizard-journey store: a bounded,
// per-session collection of in-flight multi-step form journeys, with
// capacity-based eviction, guard policies for stale ids, and the
// check-answers routing rules shared by every journey kind.
package journey

import "time"

// Record is one in-flight journey's state. The payload type is specific to
// the journey kind; the surrounding mechanics are generic over it.
type Record[P any] struct {
	ID                string    `json:"id"`
	LastTouched       time.Time `json:"lastTouched"`
	IsCheckingAnswers bool      `json:"isCheckingAnswers"`
	PreviousAnswers   *P        `json:"previousAnswers,omitempty"`
	ReturnPoint       string    `json:"returnPoint,omitempty"`
	Payload           P         `json:"payload"`
}

// Collection maps journey id to record for one journey kind within a session.
type Collection[P any] map[string]*Record[P]

// StartCheckingAnswers flips the journey into checking-answers mode and
// captures the payload snapshot used to detect no-op edits. The snapshot is
// taken once; revisiting the review page must not overwrite it.
func (r *Record[P]) StartCheckingAnswers() {
	if r.IsCheckingAnswers {
		return
	}
	r.IsCheckingAnswers = true
	snapshot := r.Payload
	r.PreviousAnswers = &snapshot
}

// ResetPreviousAnswers re-captures the snapshot. Only the reconciliation of a
// confirmed classification change calls this; everything else leaves the
// snapshot alone.
func (r *Record[P]) ResetPreviousAnswers() {
	snapshot := r.Payload
	r.PreviousAnswers = &snapshot
}
