package gan_mnist

import (
	"fmt"
	"math"
	"math/rand"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// NormalInit Returns weights initializer which draws values from N(mean, stdDev^2) using provided source
func NormalInit(rng *rand.Rand, mean, stdDev float64) gorgonia.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		size := tensor.Shape(s).TotalSize()
		switch dt {
		case tensor.Float64:
			data := make([]float64, size)
			for i := range data {
				data[i] = rng.NormFloat64()*stdDev + mean
			}
			return data
		case tensor.Float32:
			data := make([]float32, size)
			for i := range data {
				data[i] = float32(rng.NormFloat64()*stdDev + mean)
			}
			return data
		default:
			panic(fmt.Sprintf("Dtype %v is not supported by NormalInit", dt))
		}
	}
}

// GlorotUniformInit Returns weights initializer which draws values from U(-limit, limit) where limit = sqrt(6/(fanIn+fanOut))
// Shape is expected to be [fanOut, fanIn] (the way linear layers store weights here)
func GlorotUniformInit(rng *rand.Rand) gorgonia.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		size := tensor.Shape(s).TotalSize()
		fanIn, fanOut := size, size
		if len(s) >= 2 {
			fanOut, fanIn = s[0], s[1]
		}
		limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
		switch dt {
		case tensor.Float64:
			data := make([]float64, size)
			for i := range data {
				data[i] = (2*rng.Float64() - 1) * limit
			}
			return data
		case tensor.Float32:
			data := make([]float32, size)
			for i := range data {
				data[i] = float32((2*rng.Float64() - 1) * limit)
			}
			return data
		default:
			panic(fmt.Sprintf("Dtype %v is not supported by GlorotUniformInit", dt))
		}
	}
}
