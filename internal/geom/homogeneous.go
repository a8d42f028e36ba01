// Package geom implements the camera-frame geometry used by the depth
// pipeline: homogeneous-coordinate conversion, projection of batched 3D
// points into the image plane, and grid-coordinate normalisation for
// samplers that expect coordinates in [-1, 1].
package geom

import (
	"fmt"

	"github.com/banshee-data/depth.report/internal/tensor"
)

// ToHomogeneous appends a unit coordinate to the last axis:
// (..., N) becomes (..., N+1).
func ToHomogeneous(points *tensor.Dense) (*tensor.Dense, error) {
	if points.Rank() < 1 || points.Dim(-1) < 1 {
		return nil, fmt.Errorf("geom: homogeneous lift needs a non-empty trailing dimension")
	}
	shape := points.Shape()
	n := shape[len(shape)-1]
	outShape := append(shape[:len(shape)-1:len(shape)-1], n+1)
	out := tensor.Zeros(outShape...)
	src := points.Data()
	dst := out.Data()
	rows := len(src) / n
	for i := 0; i < rows; i++ {
		copy(dst[i*(n+1):i*(n+1)+n], src[i*n:(i+1)*n])
		dst[i*(n+1)+n] = 1
	}
	return out, nil
}

// FromHomogeneous divides the leading coordinates by the last one and
// drops it: (..., N+1) becomes (..., N). Division by zero flows through
// as ±Inf or NaN; callers that care filter afterwards.
func FromHomogeneous(points *tensor.Dense) (*tensor.Dense, error) {
	if points.Rank() < 1 || points.Dim(-1) < 2 {
		return nil, fmt.Errorf("geom: homogeneous drop needs a trailing dimension of at least 2")
	}
	shape := points.Shape()
	n := shape[len(shape)-1] - 1
	outShape := append(shape[:len(shape)-1:len(shape)-1], n)
	out := tensor.Zeros(outShape...)
	src := points.Data()
	dst := out.Data()
	rows := len(src) / (n + 1)
	for i := 0; i < rows; i++ {
		w := src[i*(n+1)+n]
		for k := 0; k < n; k++ {
			dst[i*n+k] = src[i*(n+1)+k] / w
		}
	}
	return out, nil
}
