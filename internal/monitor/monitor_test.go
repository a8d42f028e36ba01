package monitor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/depth.report/internal/depthbin"
)

func sampleOccupancy() depthbin.Occupancy {
	return depthbin.Occupancy{
		Mode:            depthbin.LID,
		NumBins:         4,
		Counts:          []int64{10, 20, 5, 0, 3},
		Total:           38,
		InvalidCount:    3,
		InvalidFraction: 3.0 / 38.0,
	}
}

func TestPlotOccupancy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "occupancy.png")

	require.NoError(t, PlotOccupancy(sampleOccupancy(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteOccupancyReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "occupancy.html")

	require.NoError(t, WriteOccupancyReport(sampleOccupancy(), "maps/scene_0042.csv", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.True(t, strings.Contains(html, "Depth Bin Occupancy"))
	assert.True(t, strings.Contains(html, "maps/scene_0042.csv"))
	// The invalid bin gets its own axis label.
	assert.True(t, strings.Contains(html, "invalid"))
}

func TestWriteOccupancyReportBadPath(t *testing.T) {
	err := WriteOccupancyReport(sampleOccupancy(), "x", filepath.Join(t.TempDir(), "missing", "out.html"))
	assert.Error(t, err)
}
