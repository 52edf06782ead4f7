package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/velocity_gauge/internal/sensors"
	"github.com/relabs-tech/velocity_gauge/internal/session"
)

type captureSink struct {
	mu        sync.Mutex
	samples   []session.Telemetry
	summaries []session.Summary
}

func (c *captureSink) Sample(t session.Telemetry) {
	c.mu.Lock()
	c.samples = append(c.samples, t)
	c.mu.Unlock()
}

func (c *captureSink) Summary(s session.Summary) {
	c.mu.Lock()
	c.summaries = append(c.summaries, s)
	c.mu.Unlock()
}

func quietProfile() sensors.MockProfile {
	p := sensors.DefaultMockProfile(0.01)
	p.Noise = 0
	return p
}

func periodOf(p sensors.MockProfile) int {
	return 2*p.Lift + p.Rest
}

// recordLifts runs n mock lifts through a session and returns its summary.
func recordLifts(t *testing.T, n int) session.Summary {
	t.Helper()
	p := quietProfile()
	src := sensors.NewMockSource(p)
	st := session.NewState(session.DefaultParams())
	for i := 0; i < n*periodOf(p); i++ {
		s, err := src.Next()
		require.NoError(t, err)
		_, err = st.Push(s)
		require.NoError(t, err)
	}
	sum, err := st.Finish()
	require.NoError(t, err)
	return sum
}

func TestControllerSession(t *testing.T) {
	p := quietProfile()
	sink := &captureSink{}
	var statuses []StatusMessage
	c := &controller{
		rec:    session.NewRecorder(session.DefaultParams(), sink),
		src:    sensors.NewMockSource(p),
		status: func(s StatusMessage) { statuses = append(statuses, s) },
	}
	ctx := context.Background()

	require.NoError(t, c.handle(ctx, ActionStart))
	for i := 0; i < 3*periodOf(p); i++ {
		require.NoError(t, c.tick())
	}
	require.NoError(t, c.handle(ctx, ActionStop))

	require.Len(t, statuses, 2)
	assert.Equal(t, StateRecording, statuses[0].State)
	assert.Equal(t, StateIdle, statuses[1].State)
	assert.Equal(t, statuses[0].SessionID, statuses[1].SessionID)

	require.Len(t, sink.summaries, 1)
	sum := sink.summaries[0]
	assert.Len(t, sum.Reps, 3)
	assert.Equal(t, 3*periodOf(p), sum.Samples)
	assert.NotEmpty(t, sink.samples)
}

func TestControllerIdleDiscardsSamples(t *testing.T) {
	sink := &captureSink{}
	c := &controller{
		rec:    session.NewRecorder(session.DefaultParams(), sink),
		src:    sensors.NewMockSource(quietProfile()),
		status: func(StatusMessage) {},
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, c.tick())
	}
	assert.Empty(t, sink.samples)
	assert.Zero(t, c.rejected)
}

func TestControllerErrors(t *testing.T) {
	var statuses []StatusMessage
	c := &controller{
		rec:    session.NewRecorder(session.DefaultParams()),
		src:    sensors.NewMockSource(quietProfile()),
		status: func(s StatusMessage) { statuses = append(statuses, s) },
	}
	ctx := context.Background()

	assert.Error(t, c.handle(ctx, "pause"))

	err := c.handle(ctx, ActionStop)
	assert.True(t, errors.Is(err, session.ErrNotRecording))
	require.Len(t, statuses, 1)
	assert.Equal(t, StateIdle, statuses[0].State)

	require.NoError(t, c.handle(ctx, ActionStart))
	assert.True(t, errors.Is(c.handle(ctx, ActionStart), session.ErrAlreadyRecording))
}

func TestAnalyze(t *testing.T) {
	p := quietProfile()
	src := sensors.NewMockSource(p)

	var lines []string
	for i := 0; i < 2*periodOf(p); i++ {
		s, err := src.Next()
		require.NoError(t, err)
		lines = append(lines, sensors.FormatSampleLine(s))
		if i == 120 {
			lines = append(lines, "garbage")
		}
	}

	sink := &captureSink{}
	sum, err := Analyze(context.Background(),
		sensors.NewReaderSource(strings.NewReader(strings.Join(lines, "\n"))),
		session.DefaultParams(), sink)
	require.NoError(t, err)
	assert.Len(t, sum.Reps, 2)
	assert.Equal(t, 2*periodOf(p), sum.Samples)
	require.Len(t, sink.summaries, 1)
}

func TestAnalyzeEmpty(t *testing.T) {
	_, err := Analyze(context.Background(),
		sensors.NewReaderSource(strings.NewReader("")),
		session.DefaultParams())
	assert.Error(t, err)
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	sink := consoleSink{w: &buf, telemetry: true}

	sink.Sample(session.Telemetry{Elapsed: 1.5, VerticalVelocity: 0.75})
	assert.Contains(t, buf.String(), "[VEL]")
	assert.Contains(t, buf.String(), "0.75 m/s")

	buf.Reset()
	sum := recordLifts(t, 2)
	sink.Summary(sum)
	out := buf.String()
	assert.Contains(t, out, "reps=2")
	assert.Contains(t, out, "[REP  1]")
	assert.Contains(t, out, "[REP  2]")

	buf.Reset()
	sink.Summary(session.Summary{SessionID: "abc", Error: "no samples"})
	assert.Contains(t, buf.String(), "session abc failed: no samples")

	buf.Reset()
	quiet := consoleSink{w: &buf}
	quiet.Sample(session.Telemetry{})
	assert.Empty(t, buf.String())
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, StatusMessage{State: StateIdle})
	printStatus(&buf, StatusMessage{State: StateRecording, SessionID: "s1"})
	assert.Equal(t, "[STAT] idle\n[STAT] recording  session=s1\n", buf.String())
}
