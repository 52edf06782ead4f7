package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/velocity_gauge/internal/motion"
	"github.com/relabs-tech/velocity_gauge/internal/session"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// liftSummary records one lift through a real session.
func liftSummary(t *testing.T) session.Summary {
	t.Helper()
	st := session.NewState(session.DefaultParams())
	var seq uint64
	push := func(up float64, n int) {
		for i := 0; i < n; i++ {
			seq++
			_, err := st.Push(motion.Sample{
				Seq:     seq,
				Accel:   motion.Vec3{Z: -up / 9.81},
				Gravity: motion.Vec3{Z: -1},
			})
			require.NoError(t, err)
		}
	}
	push(2, 50)
	push(-2, 50)
	push(0, 50)

	sum, err := st.Finish()
	require.NoError(t, err)
	require.Len(t, sum.Reps, 1)
	return sum
}

func TestWritePlot(t *testing.T) {
	sum := liftSummary(t)
	var buf bytes.Buffer
	require.NoError(t, WritePlot(&buf, "Velocity", "m/s", sum.Charts.Velocity))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestWritePlots(t *testing.T) {
	sum := liftSummary(t)
	dir := t.TempDir()

	paths, err := WritePlots(dir, sum)
	require.NoError(t, err)
	require.Len(t, paths, 4)

	for _, p := range paths {
		assert.Equal(t, filepath.Join(dir, sum.SessionID), filepath.Dir(p))
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.Equal(t, "velocity.png", filepath.Base(paths[0]))

	raw, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, pngMagic))
}

func TestWritePlotsNoCharts(t *testing.T) {
	_, err := WritePlots(t.TempDir(), session.Summary{SessionID: "x", Error: "boom"})
	assert.True(t, errors.Is(err, ErrNoCharts))
}

func TestRenderCharts(t *testing.T) {
	sum := liftSummary(t)
	var buf bytes.Buffer
	require.NoError(t, RenderCharts(&buf, sum))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Repetitions")
	assert.Contains(t, html, "Velocity")
	assert.Contains(t, html, sum.SessionID)
}

func TestRenderChartsNoCharts(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, errors.Is(RenderCharts(&buf, session.Summary{}), ErrNoCharts))
}

func TestPlotSink(t *testing.T) {
	sum := liftSummary(t)
	dir := t.TempDir()
	sink := PlotSink{Dir: dir}

	sink.Sample(session.Telemetry{})
	sink.Summary(sum)
	_, err := os.Stat(filepath.Join(dir, sum.SessionID, "velocity.png"))
	assert.NoError(t, err)

	sink.Summary(session.Summary{SessionID: "failed", Error: "no samples"})
	_, err = os.Stat(filepath.Join(dir, "failed"))
	assert.True(t, os.IsNotExist(err))
}
