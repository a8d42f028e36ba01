// Package monitor renders calibration output for humans: PNG occupancy
// histograms via gonum/plot and standalone HTML reports via go-echarts.
package monitor

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/depth.report/internal/depthbin"
)

// PlotOccupancy writes a bar chart of bin occupancy to a PNG file. The
// final bar is the invalid/background bin.
func PlotOccupancy(occ depthbin.Occupancy, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Depth Bin Occupancy (%s, %d bins)", occ.Mode, occ.NumBins)
	p.X.Label.Text = "Bin"
	p.Y.Label.Text = "Samples"

	vals := make(plotter.Values, len(occ.Counts))
	for i, c := range occ.Counts {
		vals[i] = float64(c)
	}

	bars, err := plotter.NewBarChart(vals, vg.Points(4))
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save occupancy plot: %w", err)
	}
	return nil
}
