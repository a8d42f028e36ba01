package monitor

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/depth.report/internal/depthbin"
)

// WriteOccupancyReport renders an interactive HTML bar chart of bin
// occupancy. source labels where the depth map came from.
func WriteOccupancyReport(occ depthbin.Occupancy, source, path string) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Depth Bin Occupancy", Width: "100%", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Depth Bin Occupancy",
			Subtitle: fmt.Sprintf("source=%s mode=%s bins=%d invalid=%.1f%%", source, occ.Mode, occ.NumBins, occ.InvalidFraction*100),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	x := make([]string, len(occ.Counts))
	y := make([]opts.BarData, len(occ.Counts))
	for i, c := range occ.Counts {
		if i == occ.NumBins {
			x[i] = "invalid"
		} else {
			x[i] = strconv.Itoa(i)
		}
		y[i] = opts.BarData{Value: c}
	}
	bar.SetXAxis(x).AddSeries("occupancy", y)

	page := components.NewPage()
	page.AddCharts(bar)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render occupancy report: %w", err)
	}
	return nil
}
