package policy

import "sync"

// Stats is an atomic snapshot of Recorder's counters.
type Stats struct {
	TotalCommands        int64
	Allowed              int64
	DeniedDangerous      int64
	DeniedNotAllowlisted int64
}

// Recorder accumulates the policy decisions a caller reports to it through
// RecordAllowed and RecordDenied. Validate does not update a Recorder, and
// neither the orchestrator nor the worker command creates or logs one. It
// does not influence Validate or Risk in any way; it is pure bookkeeping.
type Recorder struct {
	mu    sync.Mutex
	stats Stats
}

// NewRecorder returns a zeroed Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordAllowed increments the allowed counter.
func (r *Recorder) RecordAllowed() {
	r.mu.Lock()
	r.stats.TotalCommands++
	r.stats.Allowed++
	r.mu.Unlock()
}

// RecordDenied increments the appropriate denial counter based on reason.
func (r *Recorder) RecordDenied(reason string) {
	r.mu.Lock()
	r.stats.TotalCommands++
	if reason == "dangerous pattern blocked" {
		r.stats.DeniedDangerous++
	} else {
		r.stats.DeniedNotAllowlisted++
	}
	r.mu.Unlock()
}

// Snapshot returns a consistent copy of the current counters.
func (r *Recorder) Snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
