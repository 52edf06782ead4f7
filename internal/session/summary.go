package session

import (
	"time"

	"github.com/relabs-tech/velocity_gauge/internal/reps"
)

// Result is the per-repetition figure reported to the user.
type Result struct {
	MaxVelocity  float64 `json:"max_velocity"`
	MeanVelocity float64 `json:"mean_velocity"`
}

// Summary is the end-of-session report. A failed aggregation carries only
// the identity fields and Error.
type Summary struct {
	SessionID    string            `json:"session_id"`
	StartedAt    time.Time         `json:"started_at"`
	Duration     float64           `json:"duration"` // s
	Samples      int               `json:"samples"`
	Rejected     int               `json:"rejected"`
	Reps         []reps.Repetition `json:"reps"`
	PeakVelocity float64           `json:"peak_velocity"`
	Charts       *Charts           `json:"charts,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// Failed reports whether aggregation did not produce results.
func (s Summary) Failed() bool {
	return s.Error != ""
}

// Results returns the (max, mean) pairs in repetition order.
func (s Summary) Results() []Result {
	out := make([]Result, len(s.Reps))
	for i, r := range s.Reps {
		out[i] = Result{MaxVelocity: r.MaxVelocity, MeanVelocity: r.MeanVelocity}
	}
	return out
}

func failedSummary(st *State, err error) Summary {
	return Summary{
		SessionID: st.ID,
		StartedAt: st.Started,
		Samples:   st.Accepted(),
		Rejected:  st.Rejected(),
		Error:     err.Error(),
	}
}
