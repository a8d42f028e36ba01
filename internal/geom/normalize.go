package geom

import (
	"fmt"

	"github.com/banshee-data/depth.report/internal/tensor"
)

// NormalizeCoords rescales grid coordinates of shape (..., 3) into
// [-1, 1]. gridShape gives the grid extents in (depth, height, width)
// order; its entries are applied in reverse so the last coordinate axis
// pairs with the first extent, matching the convention of grid
// samplers. Coordinate 0 maps to -1 and extent-1 maps to +1; values
// outside [0, extent-1] are not clamped.
func NormalizeCoords(coords *tensor.Dense, gridShape [3]int) (*tensor.Dense, error) {
	if coords.Rank() < 1 || coords.Dim(-1) != 3 {
		return nil, fmt.Errorf("geom: coords must have shape (..., 3), got %v", coords.Shape())
	}
	rev := [3]int{gridShape[2], gridShape[1], gridShape[0]}
	out := coords.Clone()
	data := out.Data()
	for i := 0; i < len(data); i += 3 {
		for k := 0; k < 3; k++ {
			data[i+k] = data[i+k]/float64(rev[k]-1)*2 - 1
		}
	}
	return out, nil
}
