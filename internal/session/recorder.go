package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/relabs-tech/velocity_gauge/internal/motion"
)

var (
	// ErrNotRecording is returned when samples arrive or a stop is
	// requested while no session is active.
	ErrNotRecording = errors.New("not recording")
	// ErrAlreadyRecording is returned by Start during an active session.
	ErrAlreadyRecording = errors.New("already recording")
)

// Sink receives pipeline output. Implementations must not block for long;
// Sample is called on the ingest path.
type Sink interface {
	Sample(Telemetry)
	Summary(Summary)
}

// Recorder drives the session lifecycle: Start creates a fresh State, Push
// feeds it, Stop detaches it and aggregates it off the ingest path.
type Recorder struct {
	params Params
	sinks  []Sink

	mu    sync.Mutex
	state *State
	last  *Summary
}

// NewRecorder returns an idle recorder that fans output out to sinks.
func NewRecorder(p Params, sinks ...Sink) *Recorder {
	return &Recorder{params: p, sinks: sinks}
}

// AddSink registers another sink. It is not safe to call during Push.
func (r *Recorder) AddSink(s Sink) {
	r.mu.Lock()
	r.sinks = append(r.sinks, s)
	r.mu.Unlock()
}

// Start begins a new session and returns its ID.
func (r *Recorder) Start() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != nil {
		return r.state.ID, ErrAlreadyRecording
	}
	r.state = NewState(r.params)
	log.Printf("recorder: session %s started", r.state.ID)
	return r.state.ID, nil
}

// Recording reports whether a session is active, and its ID.
func (r *Recorder) Recording() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return "", false
	}
	return r.state.ID, true
}

// Push feeds a sample to the active session. Rejected samples return the
// pipeline error and are not forwarded to sinks.
func (r *Recorder) Push(sample motion.Sample) error {
	r.mu.Lock()
	st := r.state
	if st == nil {
		r.mu.Unlock()
		return ErrNotRecording
	}
	tel, err := st.Push(sample)
	sinks := r.sinks
	r.mu.Unlock()
	if err != nil {
		return err
	}

	step := r.params.ChartDecimation
	if step > 1 && tel.Index%step != 0 {
		return nil
	}
	for _, s := range sinks {
		s.Sample(tel)
	}
	return nil
}

// Stop ends the active session and aggregates it. The session is detached
// before aggregation starts, so later samples are refused. Sinks receive the
// summary whether or not aggregation succeeded.
func (r *Recorder) Stop(ctx context.Context) (Summary, error) {
	r.mu.Lock()
	st := r.state
	r.state = nil
	sinks := r.sinks
	r.mu.Unlock()
	if st == nil {
		return Summary{}, ErrNotRecording
	}

	sum, err := FinishAsync(ctx, st)
	if err != nil {
		log.Printf("recorder: session %s aggregation failed: %v", st.ID, err)
		sum = failedSummary(st, err)
	} else {
		log.Printf("recorder: session %s finished: %d samples, %d rejected, %d reps",
			sum.SessionID, sum.Samples, sum.Rejected, len(sum.Reps))
	}

	r.mu.Lock()
	r.last = &sum
	r.mu.Unlock()

	for _, s := range sinks {
		s.Summary(sum)
	}
	return sum, err
}

// Last returns the most recent summary, if any.
func (r *Recorder) Last() (Summary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Summary{}, false
	}
	return *r.last, true
}
