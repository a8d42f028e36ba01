package tensor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewShapeValidation(t *testing.T) {
	tests := []struct {
		name    string
		shape   []int
		data    []float64
		wantErr bool
	}{
		{"matching data", []int{2, 3}, []float64{1, 2, 3, 4, 5, 6}, false},
		{"nil data allocates", []int{2, 2}, nil, false},
		{"short data", []int{2, 3}, []float64{1, 2}, true},
		{"negative dimension", []int{-1, 3}, nil, true},
		{"empty shape is scalar", []int{}, []float64{7}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.shape, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%v) error = %v, wantErr %v", tt.shape, err, tt.wantErr)
			}
			if err == nil && d.Len() == 0 && len(tt.shape) > 0 {
				t.Errorf("New(%v) produced empty tensor", tt.shape)
			}
		})
	}
}

func TestAtSetRowMajor(t *testing.T) {
	d := Zeros(2, 3)
	d.Set(5, 1, 2)
	if got := d.At(1, 2); got != 5 {
		t.Errorf("At(1,2) = %v, want 5", got)
	}
	// Row-major: element (1,2) of a (2,3) tensor is flat index 5.
	if got := d.Data()[5]; got != 5 {
		t.Errorf("Data()[5] = %v, want 5", got)
	}
}

func TestReshape(t *testing.T) {
	d, err := New([]int{2, 6}, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11})
	if err != nil {
		t.Fatal(err)
	}

	r, err := d.Reshape(4, 3)
	if err != nil {
		t.Fatalf("Reshape(4,3) error: %v", err)
	}
	if diff := cmp.Diff([]int{4, 3}, r.Shape()); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}

	// Inferred dimension
	r, err = d.Reshape(-1, 4)
	if err != nil {
		t.Fatalf("Reshape(-1,4) error: %v", err)
	}
	if diff := cmp.Diff([]int{3, 4}, r.Shape()); diff != "" {
		t.Errorf("inferred shape mismatch (-want +got):\n%s", diff)
	}

	// Storage is shared
	r.Data()[0] = 99
	if d.Data()[0] != 99 {
		t.Error("reshape did not share storage")
	}

	if _, err := d.Reshape(5, 5); err == nil {
		t.Error("expected error reshaping 12 elements to 25")
	}
	if _, err := d.Reshape(-1, -1); err == nil {
		t.Error("expected error with two inferred dimensions")
	}
	if _, err := d.Reshape(-1, 5); err == nil {
		t.Error("expected error inferring 12/5")
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []int
		want    []int
		wantErr bool
	}{
		{"equal", []int{2, 3}, []int{2, 3}, []int{2, 3}, false},
		{"scalar against any", []int{}, []int{4, 5}, []int{4, 5}, false},
		{"ones expand", []int{2, 1}, []int{2, 5}, []int{2, 5}, false},
		{"rank extends left", []int{3}, []int{2, 3}, []int{2, 3}, false},
		{"mismatch", []int{2, 4}, []int{2, 5}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BroadcastShapes(tt.a, tt.b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BroadcastShapes(%v, %v) error = %v, wantErr %v", tt.a, tt.b, err, tt.wantErr)
			}
			if err == nil {
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("shape mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestSubBroadcast(t *testing.T) {
	a, _ := New([]int{2, 2}, []float64{10, 20, 30, 40})
	b, _ := New([]int{2}, []float64{1, 2})

	got, err := Sub(a, b)
	if err != nil {
		t.Fatalf("Sub error: %v", err)
	}
	want := []float64{9, 18, 29, 38}
	if diff := cmp.Diff(want, got.Data()); diff != "" {
		t.Errorf("Sub result mismatch (-want +got):\n%s", diff)
	}

	// Column vector against row vector
	col, _ := New([]int{2, 1}, []float64{1, 2})
	got, err = Sub(a, col)
	if err != nil {
		t.Fatalf("Sub error: %v", err)
	}
	want = []float64{9, 19, 28, 38}
	if diff := cmp.Diff(want, got.Data()); diff != "" {
		t.Errorf("Sub column broadcast mismatch (-want +got):\n%s", diff)
	}

	bad, _ := New([]int{3}, []float64{1, 2, 3})
	if _, err := Sub(a, bad); err == nil {
		t.Error("expected error subtracting incompatible shapes")
	}
}

func TestBatchMatMul(t *testing.T) {
	// Two batches: identity and a doubling matrix.
	a, _ := New([]int{2, 1, 2}, []float64{1, 2, 3, 4})
	b, _ := New([]int{2, 2, 2}, []float64{
		1, 0,
		0, 1,
		2, 0,
		0, 2,
	})

	got, err := BatchMatMul(a, b)
	if err != nil {
		t.Fatalf("BatchMatMul error: %v", err)
	}
	if diff := cmp.Diff([]int{2, 1, 2}, got.Shape()); diff != "" {
		t.Fatalf("shape mismatch (-want +got):\n%s", diff)
	}
	want := []float64{1, 2, 6, 8}
	if diff := cmp.Diff(want, got.Data()); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	short, _ := New([]int{1, 2, 2}, nil)
	if _, err := BatchMatMul(a, short); err == nil {
		t.Error("expected error on differing batch counts")
	}
	flat, _ := New([]int{2, 2}, nil)
	if _, err := BatchMatMul(flat, b); err == nil {
		t.Error("expected error on rank-2 operand")
	}
}

func TestTransposeLast2(t *testing.T) {
	d, _ := New([]int{1, 2, 3}, []float64{1, 2, 3, 4, 5, 6})
	got, err := d.TransposeLast2()
	if err != nil {
		t.Fatalf("TransposeLast2 error: %v", err)
	}
	if diff := cmp.Diff([]int{1, 3, 2}, got.Shape()); diff != "" {
		t.Fatalf("shape mismatch (-want +got):\n%s", diff)
	}
	want := []float64{1, 4, 2, 5, 3, 6}
	if diff := cmp.Diff(want, got.Data()); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestRepeatBatch(t *testing.T) {
	d, _ := New([]int{2, 1, 2}, []float64{1, 2, 3, 4})
	got, err := d.RepeatBatch(2)
	if err != nil {
		t.Fatalf("RepeatBatch error: %v", err)
	}
	if diff := cmp.Diff([]int{4, 1, 2}, got.Shape()); diff != "" {
		t.Fatalf("shape mismatch (-want +got):\n%s", diff)
	}
	// Each batch repeats consecutively.
	want := []float64{1, 2, 1, 2, 3, 4, 3, 4}
	if diff := cmp.Diff(want, got.Data()); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}

	if _, err := d.RepeatBatch(0); err == nil {
		t.Error("expected error on zero repeat count")
	}
}

func TestApplyScaleAddConst(t *testing.T) {
	d, _ := New([]int{3}, []float64{1, 2, 3})

	doubled := d.Scale(2)
	if diff := cmp.Diff([]float64{2, 4, 6}, doubled.Data()); diff != "" {
		t.Errorf("Scale mismatch (-want +got):\n%s", diff)
	}

	shifted := d.AddConst(1)
	if diff := cmp.Diff([]float64{2, 3, 4}, shifted.Data()); diff != "" {
		t.Errorf("AddConst mismatch (-want +got):\n%s", diff)
	}

	squared := d.Apply(func(v float64) float64 { return v * v })
	if diff := cmp.Diff([]float64{1, 4, 9}, squared.Data()); diff != "" {
		t.Errorf("Apply mismatch (-want +got):\n%s", diff)
	}

	// Originals are untouched.
	if diff := cmp.Diff([]float64{1, 2, 3}, d.Data()); diff != "" {
		t.Errorf("source mutated (-want +got):\n%s", diff)
	}
}

func TestInt64Tensor(t *testing.T) {
	ti, err := NewInt64([]int{2, 2}, []int64{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if got := ti.At(1, 0); got != 3 {
		t.Errorf("At(1,0) = %d, want 3", got)
	}
	if _, err := NewInt64([]int{2, 2}, []int64{1}); err == nil {
		t.Error("expected error on short data")
	}
}
