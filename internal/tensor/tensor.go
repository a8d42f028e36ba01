// Package tensor provides a minimal dense float64 N-d array with the
// shape bookkeeping, broadcasting and batched matrix multiplication the
// camera geometry and depth discretisation code needs. It is not a
// general numerics library; anything heavier goes through gonum.
package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Dense is a row-major dense float64 array. The zero value is not
// usable; construct via New or Zeros.
type Dense struct {
	data  []float64
	shape []int
}

// New wraps data in a Dense of the given shape. The data slice is
// retained, not copied. A nil data slice allocates zeros.
func New(shape []int, data []float64) (*Dense, error) {
	n, err := numElems(shape)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = make([]float64, n)
	}
	if len(data) != n {
		return nil, fmt.Errorf("tensor: shape %v needs %d elements, got %d", shape, n, len(data))
	}
	return &Dense{data: data, shape: append([]int(nil), shape...)}, nil
}

// Zeros returns a zero-filled Dense of the given shape.
func Zeros(shape ...int) *Dense {
	d, err := New(shape, nil)
	if err != nil {
		panic(err)
	}
	return d
}

func numElems(shape []int) (int, error) {
	n := 1
	for _, s := range shape {
		if s < 0 {
			return 0, fmt.Errorf("tensor: negative dimension in shape %v", shape)
		}
		n *= s
	}
	return n, nil
}

// Shape returns a copy of the tensor's shape.
func (d *Dense) Shape() []int { return append([]int(nil), d.shape...) }

// Rank returns the number of dimensions.
func (d *Dense) Rank() int { return len(d.shape) }

// Len returns the total number of elements.
func (d *Dense) Len() int { return len(d.data) }

// Data returns the underlying storage. Mutating it mutates the tensor.
func (d *Dense) Data() []float64 { return d.data }

// Dim returns the size of dimension i, counting negative i from the end.
func (d *Dense) Dim(i int) int {
	if i < 0 {
		i += len(d.shape)
	}
	return d.shape[i]
}

// At returns the element at the given multi-index.
func (d *Dense) At(idx ...int) float64 {
	return d.data[d.offset(idx)]
}

// Set stores v at the given multi-index.
func (d *Dense) Set(v float64, idx ...int) {
	d.data[d.offset(idx)] = v
}

func (d *Dense) offset(idx []int) int {
	if len(idx) != len(d.shape) {
		panic(fmt.Sprintf("tensor: index rank %d against shape %v", len(idx), d.shape))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= d.shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", idx, d.shape))
		}
		off = off*d.shape[i] + x
	}
	return off
}

// Clone returns a deep copy.
func (d *Dense) Clone() *Dense {
	data := make([]float64, len(d.data))
	copy(data, d.data)
	return &Dense{data: data, shape: append([]int(nil), d.shape...)}
}

// Reshape returns a view sharing this tensor's storage with a new
// shape. At most one dimension may be -1, in which case it is inferred
// from the element count.
func (d *Dense) Reshape(shape ...int) (*Dense, error) {
	out := append([]int(nil), shape...)
	infer := -1
	known := 1
	for i, s := range out {
		if s == -1 {
			if infer >= 0 {
				return nil, fmt.Errorf("tensor: multiple inferred dimensions in %v", shape)
			}
			infer = i
			continue
		}
		if s < 0 {
			return nil, fmt.Errorf("tensor: negative dimension in shape %v", shape)
		}
		known *= s
	}
	if infer >= 0 {
		if known == 0 || len(d.data)%known != 0 {
			return nil, fmt.Errorf("tensor: cannot infer dimension reshaping %v to %v", d.shape, shape)
		}
		out[infer] = len(d.data) / known
		known *= out[infer]
	}
	if known != len(d.data) {
		return nil, fmt.Errorf("tensor: cannot reshape %v (%d elements) to %v", d.shape, len(d.data), shape)
	}
	return &Dense{data: d.data, shape: out}, nil
}

// Apply returns a new tensor with f applied to every element.
func (d *Dense) Apply(f func(float64) float64) *Dense {
	out := d.Clone()
	for i, v := range out.data {
		out.data[i] = f(v)
	}
	return out
}

// Scale returns a new tensor with every element multiplied by c.
func (d *Dense) Scale(c float64) *Dense {
	out := d.Clone()
	floats.Scale(c, out.data)
	return out
}

// AddConst returns a new tensor with c added to every element.
func (d *Dense) AddConst(c float64) *Dense {
	out := d.Clone()
	floats.AddConst(c, out.data)
	return out
}

// BroadcastShapes returns the shape produced by broadcasting a against
// b under the usual right-aligned rules: trailing dimensions must be
// equal or one of them must be 1.
func BroadcastShapes(a, b []int) ([]int, error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]int, n)
	for i := 1; i <= n; i++ {
		da, db := 1, 1
		if i <= len(a) {
			da = a[len(a)-i]
		}
		if i <= len(b) {
			db = b[len(b)-i]
		}
		switch {
		case da == db:
			out[n-i] = da
		case da == 1:
			out[n-i] = db
		case db == 1:
			out[n-i] = da
		default:
			return nil, fmt.Errorf("tensor: shapes %v and %v are not broadcast-compatible", a, b)
		}
	}
	return out, nil
}

// Strides returns row-major strides for shape.
func Strides(shape []int) []int {
	st := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= shape[i]
	}
	return st
}

// BroadcastStrides returns per-dimension strides for indexing src
// through a multi-index over out, with stride 0 on broadcast (size-1 or
// missing) dimensions.
func BroadcastStrides(src, out []int) []int {
	srcSt := Strides(src)
	bs := make([]int, len(out))
	for i := 1; i <= len(out); i++ {
		if i > len(src) || src[len(src)-i] == 1 {
			bs[len(out)-i] = 0
			continue
		}
		bs[len(out)-i] = srcSt[len(src)-i]
	}
	return bs
}

// Sub returns a - b with broadcasting.
func Sub(a, b *Dense) (*Dense, error) {
	return broadcastBinary(a, b, func(x, y float64) float64 { return x - y })
}

func broadcastBinary(a, b *Dense, f func(x, y float64) float64) (*Dense, error) {
	shape, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		return nil, err
	}
	out := Zeros(shape...)
	outSt := Strides(shape)
	bsA := BroadcastStrides(a.shape, shape)
	bsB := BroadcastStrides(b.shape, shape)
	for i := range out.data {
		rem := i
		offA, offB := 0, 0
		for d := 0; d < len(shape); d++ {
			idx := rem / outSt[d]
			rem %= outSt[d]
			offA += idx * bsA[d]
			offB += idx * bsB[d]
		}
		out.data[i] = f(a.data[offA], b.data[offB])
	}
	return out, nil
}

// BatchMatMul multiplies a (B, N, K) by b (B, K, M) batch by batch,
// producing (B, N, M). Each batch multiply is delegated to gonum.
func BatchMatMul(a, b *Dense) (*Dense, error) {
	if a.Rank() != 3 || b.Rank() != 3 {
		return nil, fmt.Errorf("tensor: batch matmul needs rank-3 operands, got %v and %v", a.shape, b.shape)
	}
	bCount, n, k := a.shape[0], a.shape[1], a.shape[2]
	if b.shape[0] != bCount {
		return nil, fmt.Errorf("tensor: batch counts differ: %d vs %d", bCount, b.shape[0])
	}
	if b.shape[1] != k {
		return nil, fmt.Errorf("tensor: inner dimensions differ: %d vs %d", k, b.shape[1])
	}
	m := b.shape[2]
	out := Zeros(bCount, n, m)
	for i := 0; i < bCount; i++ {
		lhs := mat.NewDense(n, k, a.data[i*n*k:(i+1)*n*k])
		rhs := mat.NewDense(k, m, b.data[i*k*m:(i+1)*k*m])
		dst := mat.NewDense(n, m, out.data[i*n*m:(i+1)*n*m])
		dst.Mul(lhs, rhs)
	}
	return out, nil
}

// TransposeLast2 returns a copy of a rank-3 tensor with its trailing
// two dimensions swapped.
func (d *Dense) TransposeLast2() (*Dense, error) {
	if d.Rank() != 3 {
		return nil, fmt.Errorf("tensor: transpose of trailing dims needs rank 3, got %v", d.shape)
	}
	b, r, c := d.shape[0], d.shape[1], d.shape[2]
	out := Zeros(b, c, r)
	for i := 0; i < b; i++ {
		for j := 0; j < r; j++ {
			for k := 0; k < c; k++ {
				out.data[i*c*r+k*r+j] = d.data[i*r*c+j*c+k]
			}
		}
	}
	return out, nil
}

// RepeatBatch repeats each batch of a rank-3 tensor n times
// consecutively along the batch axis: (B, R, C) becomes (B*n, R, C)
// with batch i of the input occupying batches i*n..i*n+n-1.
func (d *Dense) RepeatBatch(n int) (*Dense, error) {
	if d.Rank() != 3 {
		return nil, fmt.Errorf("tensor: batch repeat needs rank 3, got %v", d.shape)
	}
	if n < 1 {
		return nil, fmt.Errorf("tensor: batch repeat count %d", n)
	}
	b, r, c := d.shape[0], d.shape[1], d.shape[2]
	out := Zeros(b*n, r, c)
	stride := r * c
	for i := 0; i < b; i++ {
		src := d.data[i*stride : (i+1)*stride]
		for j := 0; j < n; j++ {
			copy(out.data[(i*n+j)*stride:(i*n+j+1)*stride], src)
		}
	}
	return out, nil
}
