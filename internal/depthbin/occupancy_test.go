package depthbin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/depth.report/internal/tensor"
)

func TestCountOccupancy(t *testing.T) {
	targets, err := tensor.NewInt64([]int{2, 3}, []int64{0, 0, 1, 2, 4, 4})
	require.NoError(t, err)

	occ, err := CountOccupancy(targets, UD, 4)
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 1, 1, 0, 2}, occ.Counts)
	assert.Equal(t, int64(6), occ.Total)
	assert.Equal(t, int64(2), occ.InvalidCount)
	assert.InDelta(t, 2.0/6.0, occ.InvalidFraction, 1e-12)
	assert.Equal(t, UD, occ.Mode)
}

func TestCountOccupancyEmpty(t *testing.T) {
	targets, err := tensor.NewInt64([]int{0}, nil)
	require.NoError(t, err)

	occ, err := CountOccupancy(targets, LID, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(0), occ.Total)
	assert.Zero(t, occ.InvalidFraction)
}

func TestCountOccupancyRejectsOutOfRange(t *testing.T) {
	targets, err := tensor.NewInt64([]int{1}, []int64{5})
	require.NoError(t, err)

	_, err = CountOccupancy(targets, UD, 4)
	assert.Error(t, err)
}

func TestOccupancyFromBinning(t *testing.T) {
	depthMap, err := tensor.New([]int{1, 4}, []float64{0.5, 5.5, 20, -3})
	require.NoError(t, err)

	targets, err := BinDepthTargets(depthMap, UD, 0, 10, 10)
	require.NoError(t, err)

	occ, err := CountOccupancy(targets, UD, 10)
	require.NoError(t, err)

	// 0.5 -> bin 0, 5.5 -> bin 5, 20 and -3 -> invalid bin.
	assert.Equal(t, int64(1), occ.Counts[0])
	assert.Equal(t, int64(1), occ.Counts[5])
	assert.Equal(t, int64(2), occ.InvalidCount)
}
