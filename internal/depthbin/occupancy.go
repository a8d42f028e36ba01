package depthbin

import (
	"fmt"

	"github.com/banshee-data/depth.report/internal/tensor"
)

// Occupancy summarises how a target-binned depth map populates its
// bins. Counts has numBins+1 entries; the final entry is the
// invalid/background bin.
type Occupancy struct {
	Mode            Mode    `json:"mode"`
	NumBins         int     `json:"num_bins"`
	Counts          []int64 `json:"counts"`
	Total           int64   `json:"total"`
	InvalidCount    int64   `json:"invalid_count"`
	InvalidFraction float64 `json:"invalid_fraction"`
}

// CountOccupancy tallies bin indices produced by BinDepthTargets.
func CountOccupancy(targets *tensor.Int64, mode Mode, numBins int) (Occupancy, error) {
	occ := Occupancy{
		Mode:    mode,
		NumBins: numBins,
		Counts:  make([]int64, numBins+1),
	}
	for _, idx := range targets.Data() {
		if idx < 0 || idx > int64(numBins) {
			return Occupancy{}, fmt.Errorf("bin index %d out of range [0, %d]", idx, numBins)
		}
		occ.Counts[idx]++
		occ.Total++
	}
	occ.InvalidCount = occ.Counts[numBins]
	if occ.Total > 0 {
		occ.InvalidFraction = float64(occ.InvalidCount) / float64(occ.Total)
	}
	return occ, nil
}
