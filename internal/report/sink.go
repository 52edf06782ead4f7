package report

import (
	"log"

	"github.com/relabs-tech/velocity_gauge/internal/session"
)

// PlotSink archives every successful session summary under Dir.
type PlotSink struct {
	Dir string
}

// Sample is ignored; plots are drawn from the summary.
func (PlotSink) Sample(session.Telemetry) {}

// Summary writes the plots for sum.
func (s PlotSink) Summary(sum session.Summary) {
	if sum.Failed() {
		log.Printf("report: session %s failed, no plots: %s", sum.SessionID, sum.Error)
		return
	}
	paths, err := WritePlots(s.Dir, sum)
	if err != nil {
		log.Printf("report: session %s: %v", sum.SessionID, err)
		return
	}
	log.Printf("report: session %s: wrote %d files", sum.SessionID, len(paths))
}
