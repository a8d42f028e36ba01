package geom

import (
	"fmt"

	"github.com/banshee-data/depth.report/internal/tensor"
)

// ProjectToImage projects batched 3D points through batched 3x4
// projection matrices, returning image-plane coordinates of shape
// (..., 2) and per-point depth of shape (...).
//
// project has shape (..., 3, 4) and points shape (..., 3); the batch
// dimensions must broadcast against each other, with the projection
// batch gaining a singleton axis after its first batch dimension so
// that per-point dimensions of the points broadcast against it.
//
// With bmm set, the multiply runs as a flattened batch matrix multiply
// instead: points are flattened to (B, N, 4) and projections to
// (M, 4, 3) with each projection repeated B/M times. B must be an exact
// multiple of M; ProjectToImage returns an error otherwise. The two
// strategies follow different reshape paths and are not guaranteed
// bit-identical.
func ProjectToImage(project, points *tensor.Dense, bmm bool) (img, depth *tensor.Dense, err error) {
	if project.Rank() < 2 || project.Dim(-2) != 3 || project.Dim(-1) != 4 {
		return nil, nil, fmt.Errorf("geom: projection must have shape (..., 3, 4), got %v", project.Shape())
	}
	if points.Rank() < 1 || points.Dim(-1) != 3 {
		return nil, nil, fmt.Errorf("geom: points must have shape (..., 3), got %v", points.Shape())
	}
	hom, err := ToHomogeneous(points)
	if err != nil {
		return nil, nil, err
	}

	var pointsT *tensor.Dense
	if bmm {
		pointsT, depth, err = projectBatched(project, hom)
	} else {
		pointsT, depth, err = projectBroadcast(project, hom)
	}
	if err != nil {
		return nil, nil, err
	}
	img, err = FromHomogeneous(pointsT)
	if err != nil {
		return nil, nil, err
	}
	return img, depth, nil
}

// projectBroadcast applies each 3x4 matrix to each homogeneous point
// under broadcasting. A singleton axis is inserted after the first
// projection batch dimension so per-point axes of the points line up
// against it.
func projectBroadcast(project, hom *tensor.Dense) (pointsT, depth *tensor.Dense, err error) {
	projShape := project.Shape()
	batchM := projShape[:len(projShape)-2]
	batchM1 := batchM
	if len(batchM) >= 1 {
		batchM1 = make([]int, 0, len(batchM)+1)
		batchM1 = append(batchM1, batchM[0], 1)
		batchM1 = append(batchM1, batchM[1:]...)
	}
	homShape := hom.Shape()
	batchP := homShape[:len(homShape)-1]

	outBatch, err := tensor.BroadcastShapes(batchM1, batchP)
	if err != nil {
		return nil, nil, fmt.Errorf("geom: projection and point batches incompatible: %w", err)
	}

	outShape := append(append([]int(nil), outBatch...), 3)
	pointsT = tensor.Zeros(outShape...)
	depth = tensor.Zeros(outBatch...)

	outSt := tensor.Strides(outBatch)
	bsM := tensor.BroadcastStrides(batchM1, outBatch)
	bsP := tensor.BroadcastStrides(batchP, outBatch)

	pm := project.Data()
	ph := hom.Data()
	pt := pointsT.Data()
	pd := depth.Data()

	for i := range pd {
		rem := i
		offM, offP := 0, 0
		for d := 0; d < len(outBatch); d++ {
			idx := rem / outSt[d]
			rem %= outSt[d]
			offM += idx * bsM[d]
			offP += idx * bsP[d]
		}
		m := pm[offM*12 : offM*12+12]
		p := ph[offP*4 : offP*4+4]
		for r := 0; r < 3; r++ {
			pt[i*3+r] = m[r*4]*p[0] + m[r*4+1]*p[1] + m[r*4+2]*p[2] + m[r*4+3]*p[3]
		}
		// The third row carries the homogeneous offset m[2][3]; subtract
		// it back out to recover camera-frame depth.
		pd[i] = pt[i*3+2] - m[11]
	}
	return pointsT, depth, nil
}

// projectBatched flattens points to (B, N, 4) and projections to
// (M, 4, 3), repeats each projection B/M times, and multiplies whole
// batches at once.
func projectBatched(project, hom *tensor.Dense) (pointsT, depth *tensor.Dense, err error) {
	rawShape := hom.Shape()
	if len(rawShape) < 2 {
		return nil, nil, fmt.Errorf("geom: batched projection needs points with at least one batch dimension, got %v", rawShape)
	}
	n := rawShape[len(rawShape)-2]
	flat, err := hom.Reshape(-1, n, 4)
	if err != nil {
		return nil, nil, err
	}

	projFlat, err := project.Reshape(-1, 3, 4)
	if err != nil {
		return nil, nil, err
	}
	projT, err := projFlat.TransposeLast2()
	if err != nil {
		return nil, nil, err
	}

	b := flat.Dim(0)
	m := projT.Dim(0)
	if m == 0 || b%m != 0 {
		return nil, nil, fmt.Errorf("geom: point batch count %d is not a multiple of projection batch count %d", b, m)
	}
	rep, err := projT.RepeatBatch(b / m)
	if err != nil {
		return nil, nil, err
	}

	prod, err := tensor.BatchMatMul(flat, rep)
	if err != nil {
		return nil, nil, err
	}
	outShape := append(rawShape[:len(rawShape)-1:len(rawShape)-1], 3)
	pointsT, err = prod.Reshape(outShape...)
	if err != nil {
		return nil, nil, err
	}

	// Depth subtracts the original projection's [..., 2, 3] term,
	// broadcast against the un-flattened result.
	projShape := project.Shape()
	batchM := projShape[:len(projShape)-2]
	termData := make([]float64, project.Len()/12)
	for i := range termData {
		termData[i] = project.Data()[i*12+11]
	}
	term, err := tensor.New(batchM, termData)
	if err != nil {
		return nil, nil, err
	}
	lastData := make([]float64, pointsT.Len()/3)
	for i := range lastData {
		lastData[i] = pointsT.Data()[i*3+2]
	}
	last, err := tensor.New(outShape[:len(outShape)-1], lastData)
	if err != nil {
		return nil, nil, err
	}
	depth, err = tensor.Sub(last, term)
	if err != nil {
		return nil, nil, fmt.Errorf("geom: depth offset does not broadcast against result batch: %w", err)
	}
	return pointsT, depth, nil
}
