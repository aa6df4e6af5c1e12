package gan_mnist

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// TrainSet Flattened images: TrainData has shape [DataLength, Width*Height]
type TrainSet struct {
	TrainData  *tensor.Dense
	DataLength int
	Width      int
	Height     int
}

// NewTrainSet Wraps rows of flattened images into TrainSet
func NewTrainSet(rows [][]float64, width, height int) (*TrainSet, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("Train set can't be empty")
	}
	rowSize := width * height
	backing := make([]float64, 0, len(rows)*rowSize)
	for i := range rows {
		if len(rows[i]) != rowSize {
			return nil, fmt.Errorf("Row #%d has %d elements, but %d expected", i, len(rows[i]), rowSize)
		}
		backing = append(backing, rows[i]...)
	}
	return &TrainSet{
		TrainData:  tensor.New(tensor.WithShape(len(rows), rowSize), tensor.WithBacking(backing)),
		DataLength: len(rows),
		Width:      width,
		Height:     height,
	}, nil
}

// RowSize Returns number of elements in each sample
func (ts *TrainSet) RowSize() int {
	return ts.Width * ts.Height
}

// RandomBatch Returns n samples picked uniformly with replacement
func (ts *TrainSet) RandomBatch(rng *rand.Rand, n int) (*tensor.Dense, error) {
	if ts.DataLength == 0 {
		return nil, fmt.Errorf("Train set is empty")
	}
	src, ok := ts.TrainData.Data().([]float64)
	if !ok {
		return nil, errors.Errorf("Train data must be float64, got %v", ts.TrainData.Dtype())
	}
	rowSize := ts.RowSize()
	batch := make([]float64, n*rowSize)
	for i := 0; i < n; i++ {
		idx := rng.Intn(ts.DataLength)
		copy(batch[i*rowSize:(i+1)*rowSize], src[idx*rowSize:(idx+1)*rowSize])
	}
	return tensor.New(tensor.WithShape(n, rowSize), tensor.WithBacking(batch)), nil
}
