package tensor

import "fmt"

// Int64 is a row-major dense int64 array, used for discrete bin
// indices and other integer-valued tensors.
type Int64 struct {
	data  []int64
	shape []int
}

// NewInt64 wraps data in an Int64 tensor of the given shape. The data
// slice is retained, not copied. A nil data slice allocates zeros.
func NewInt64(shape []int, data []int64) (*Int64, error) {
	n, err := numElems(shape)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = make([]int64, n)
	}
	if len(data) != n {
		return nil, fmt.Errorf("tensor: shape %v needs %d elements, got %d", shape, n, len(data))
	}
	return &Int64{data: data, shape: append([]int(nil), shape...)}, nil
}

// Shape returns a copy of the tensor's shape.
func (t *Int64) Shape() []int { return append([]int(nil), t.shape...) }

// Len returns the total number of elements.
func (t *Int64) Len() int { return len(t.data) }

// Data returns the underlying storage. Mutating it mutates the tensor.
func (t *Int64) Data() []int64 { return t.data }

// At returns the element at the given multi-index.
func (t *Int64) At(idx ...int) int64 {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("tensor: index rank %d against shape %v", len(idx), t.shape))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", idx, t.shape))
		}
		off = off*t.shape[i] + x
	}
	return t.data[off]
}
