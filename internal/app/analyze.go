package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/relabs-tech/velocity_gauge/internal/config"
	"github.com/relabs-tech/velocity_gauge/internal/motion"
	"github.com/relabs-tech/velocity_gauge/internal/report"
	"github.com/relabs-tech/velocity_gauge/internal/sensors"
	"github.com/relabs-tech/velocity_gauge/internal/session"
)

// Analyze runs every sample of src through one session as fast as it can
// be read. Malformed samples are skipped.
func Analyze(ctx context.Context, src motion.Source, p session.Params, sinks ...session.Sink) (session.Summary, error) {
	rec := session.NewRecorder(p, sinks...)
	c := &controller{rec: rec, src: src, status: func(StatusMessage) {}}

	if err := c.handle(ctx, ActionStart); err != nil {
		return session.Summary{}, err
	}
	for {
		if err := ctx.Err(); err != nil {
			break
		}
		err := c.tick()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, motion.ErrInvalidSample) {
			c.rejected++
			log.Printf("analyze: skipping: %v", err)
			continue
		}
		if err != nil {
			return session.Summary{}, err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), aggregationTimeout)
	defer cancel()
	return rec.Stop(ctx)
}

// RunAnalyze replays a recorded CSV file, prints the repetitions and, when
// outDir is set, writes plots and an HTML chart page there.
func RunAnalyze(path, outDir string) error {
	cfg := config.Get()

	src, err := sensors.NewReplaySource(path)
	if err != nil {
		return err
	}
	defer src.Close()

	sinks := []session.Sink{consoleSink{w: os.Stdout}}
	if outDir != "" {
		sinks = append(sinks, report.PlotSink{Dir: outDir})
	}

	sum, err := Analyze(context.Background(), src, cfg.SessionParams(), sinks...)
	if err != nil {
		return err
	}
	if outDir == "" {
		return nil
	}

	htmlPath := filepath.Join(outDir, sum.SessionID, "charts.html")
	f, err := os.Create(htmlPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := report.RenderCharts(f, sum); err != nil {
		return fmt.Errorf("charts: %w", err)
	}
	log.Printf("analyze: charts written to %s", htmlPath)
	return nil
}
