package gan_mnist

import (
	"math/rand"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// NormRandDense Return reference to tensor.Dense filled with standard normally distributed float64 values
//
// rng - source of randomness
// batchSize - Simply batch size
// n - Number of elements in each batch
// Resulting dense will have batchSize*n elements
//
func NormRandDense(rng *rand.Rand, batchSize, n int) *tensor.Dense {
	data := make([]float64, batchSize*n)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return tensor.New(tensor.WithShape(batchSize, n), tensor.WithBacking(data))
}

// padRows Returns copy of rows [start; end) of 2-D dense padded with zero rows up to batchSize rows
func padRows(t *tensor.Dense, start, end, batchSize int) (*tensor.Dense, error) {
	data, cols, err := float64Rows(t)
	if err != nil {
		return nil, err
	}
	if start < 0 || end > t.Shape()[0] || end-start > batchSize || start >= end {
		return nil, errors.Errorf("Can't take rows [%d; %d) of %v into batch of %d", start, end, t.Shape(), batchSize)
	}
	chunk := make([]float64, batchSize*cols)
	copy(chunk, data[start*cols:end*cols])
	return tensor.New(tensor.WithShape(batchSize, cols), tensor.WithBacking(chunk)), nil
}

// firstRows Returns copy of first n rows of 2-D dense
func firstRows(t *tensor.Dense, n int) (*tensor.Dense, error) {
	data, cols, err := float64Rows(t)
	if err != nil {
		return nil, err
	}
	if n <= 0 || n > t.Shape()[0] {
		return nil, errors.Errorf("Can't take first %d rows of %v", n, t.Shape())
	}
	rows := make([]float64, n*cols)
	copy(rows, data[:n*cols])
	return tensor.New(tensor.WithShape(n, cols), tensor.WithBacking(rows)), nil
}

func float64Rows(t *tensor.Dense) ([]float64, int, error) {
	if t.Dims() != 2 {
		return nil, 0, errors.Errorf("2-D tensor expected, got shape %v", t.Shape())
	}
	if t.IsView() {
		t = t.Materialize().(*tensor.Dense)
	}
	data, ok := t.Data().([]float64)
	if !ok {
		return nil, 0, errors.Errorf("Float64 tensor expected, got %v", t.Dtype())
	}
	return data, t.Shape()[1], nil
}
