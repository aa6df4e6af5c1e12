package gan_mnist

import (
	"gonum.org/v1/gonum/floats"
)

// Normalization How raw 8-bit pixels are mapped into floats
type Normalization uint16

const (
	// NormalizeUnit maps [0, 255] => [0, 1]
	NormalizeUnit = Normalization(iota)
	// NormalizeSymmetric maps [0, 255] => [-1, 1] (same range as Generator's tanh output)
	NormalizeSymmetric
)

func normalizePixels(pixels []uint8, norm Normalization) []float64 {
	row := make([]float64, len(pixels))
	for i, p := range pixels {
		row[i] = float64(p)
	}
	switch norm {
	case NormalizeSymmetric:
		floats.Scale(2.0/255.0, row)
		floats.AddConst(-1.0, row)
	default:
		floats.Scale(1.0/255.0, row)
	}
	return row
}
