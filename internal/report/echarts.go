package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/relabs-tech/velocity_gauge/internal/session"
)

func lineChart(title, subtitle, yName string, traces []session.Trace) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	var x []string
	if len(traces) > 0 {
		x = make([]string, len(traces[0].Points))
		for i, pt := range traces[0].Points {
			x[i] = fmt.Sprintf("%.2f", pt.T)
		}
	}
	line.SetXAxis(x)

	for _, tr := range traces {
		data := make([]opts.LineData, len(tr.Points))
		for i, pt := range tr.Points {
			data[i] = opts.LineData{Value: pt.V}
		}
		line.AddSeries(tr.Name, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	return line
}

func repChart(sum session.Summary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "300px"}),
		charts.WithTitleOpts(opts.Title{Title: "Repetitions", Subtitle: fmt.Sprintf("peak %.2f m/s", sum.PeakVelocity)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "m/s"}),
	)

	x := make([]string, len(sum.Reps))
	maxes := make([]opts.BarData, len(sum.Reps))
	means := make([]opts.BarData, len(sum.Reps))
	for i, r := range sum.Reps {
		x[i] = fmt.Sprintf("#%d", i+1)
		maxes[i] = opts.BarData{Value: r.MaxVelocity}
		means[i] = opts.BarData{Value: r.MeanVelocity}
	}
	bar.SetXAxis(x).
		AddSeries("max", maxes).
		AddSeries("mean", means)
	return bar
}

// RenderCharts writes an HTML page with the repetition results and every
// chart trace of sum.
func RenderCharts(w io.Writer, sum session.Summary) error {
	if sum.Charts == nil {
		return ErrNoCharts
	}
	sub := fmt.Sprintf("session %s, %d samples, %d rejected", sum.SessionID, sum.Samples, sum.Rejected)

	page := components.NewPage()
	page.SetPageTitle("Velocity " + sum.SessionID)
	page.AddCharts(
		repChart(sum),
		lineChart("Velocity", sub, "m/s", sum.Charts.Velocity),
		lineChart("Acceleration", sub, "m/s²", sum.Charts.Acceleration),
		lineChart("Gravity", sub, "g", sum.Charts.Gravity),
		lineChart("Rotation", sub, "rad/s", sum.Charts.Rotation),
	)
	return page.Render(w)
}
