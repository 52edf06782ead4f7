package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/velocity_gauge/internal/session"
)

func litBytes(pix []byte) int {
	n := 0
	for _, b := range pix {
		if b != 0 {
			n++
		}
	}
	return n
}

func TestRenderScreen(t *testing.T) {
	splash := renderScreen(displaySnapshot{})
	assert.Greater(t, litBytes(splash.Pix), 0)

	recording := renderScreen(displaySnapshot{
		status:        StatusMessage{State: StateRecording, SessionID: "s1"},
		haveStatus:    true,
		telemetry:     session.Telemetry{SessionID: "s1", VerticalVelocity: 0.42, Elapsed: 3},
		haveTelemetry: true,
	})
	recordingOnly := renderScreen(displaySnapshot{
		status:     StatusMessage{State: StateRecording, SessionID: "s1"},
		haveStatus: true,
	})
	assert.Greater(t, litBytes(recording.Pix), litBytes(recordingOnly.Pix))

	results := renderScreen(displaySnapshot{
		status:      StatusMessage{State: StateIdle},
		haveStatus:  true,
		summary:     recordLifts(t, 2),
		haveSummary: true,
	})
	assert.False(t, bytes.Equal(results.Pix, splash.Pix))
	assert.False(t, bytes.Equal(results.Pix, recording.Pix))
}

func TestDisplayDataSnapshot(t *testing.T) {
	d := &DisplayData{}
	d.mu.Lock()
	d.status = StatusMessage{State: StateIdle}
	d.haveStatus = true
	d.mu.Unlock()

	s := d.snapshot()
	assert.True(t, s.haveStatus)
	assert.False(t, s.haveSummary)
	assert.Equal(t, StateIdle, s.status.State)
}
