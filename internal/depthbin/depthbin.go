// Package depthbin converts continuous depth values into discrete bin
// indices under the UD, LID and SID discretisation laws used for depth
// distribution heads in monocular 3D detection.
package depthbin

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/depth.report/internal/tensor"
)

// Mode selects a depth discretisation law.
type Mode string

// Discretisation modes. Anything else is rejected.
const (
	UD  Mode = "UD"  // uniform
	LID Mode = "LID" // linearly increasing bin widths
	SID Mode = "SID" // log-spaced bin widths
)

// ErrUnsupportedMode is returned when a mode outside {UD, LID, SID} is
// requested.
var ErrUnsupportedMode = errors.New("unsupported depth discretisation mode")

// ValidModes contains all valid discretisation modes.
var ValidModes = []Mode{UD, LID, SID}

// IsValid checks if the given mode is in the list of valid modes.
func (m Mode) IsValid() bool {
	for _, valid := range ValidModes {
		if m == valid {
			return true
		}
	}
	return false
}

// ValidModesString returns a comma-separated string of valid modes for
// error messages.
func ValidModesString() string {
	return "UD, LID, SID"
}

// BinDepths maps every depth value to its continuous position in bin
// space. Results may be fractional, out of [0, numBins], or non-finite;
// they are returned as-is. Use BinDepthTargets for clamped integer
// indices suitable as training targets.
func BinDepths(depthMap *tensor.Dense, mode Mode, depthMin, depthMax float64, numBins int) (*tensor.Dense, error) {
	switch mode {
	case UD:
		binSize := (depthMax - depthMin) / float64(numBins)
		return depthMap.AddConst(-depthMin).Scale(1 / binSize), nil
	case LID:
		binSize := 2 * (depthMax - depthMin) / (float64(numBins) * float64(1+numBins))
		return depthMap.Apply(func(d float64) float64 {
			return -0.5 + 0.5*math.Sqrt(1+8*(d-depthMin)/binSize)
		}), nil
	case SID:
		span := math.Log(1+depthMax) - math.Log(1+depthMin)
		return depthMap.Apply(func(d float64) float64 {
			return float64(numBins) * (math.Log(1+d) - math.Log(1+depthMin)) / span
		}), nil
	default:
		return nil, fmt.Errorf("%w %q (valid: %s)", ErrUnsupportedMode, mode, ValidModesString())
	}
}

// BinDepthTargets bins depths as BinDepths does, then replaces any
// index that is negative, above numBins, or non-finite with exactly
// numBins (the invalid/background bin) and truncates to integers.
func BinDepthTargets(depthMap *tensor.Dense, mode Mode, depthMin, depthMax float64, numBins int) (*tensor.Int64, error) {
	bins, err := BinDepths(depthMap, mode, depthMin, depthMax, numBins)
	if err != nil {
		return nil, err
	}
	data := bins.Data()
	out := make([]int64, len(data))
	for i, v := range data {
		if v < 0 || v > float64(numBins) || math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = int64(numBins)
			continue
		}
		out[i] = int64(v)
	}
	return tensor.NewInt64(bins.Shape(), out)
}
