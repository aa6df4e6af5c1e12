package gan_mnist

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

// GeneratorNet Abstraction for generator part of GAN. Maps latent vector into flattened image.
type GeneratorNet struct {
	private *Network
}

// Generator Constructor for GeneratorNet
func Generator(Layers ...*Layer) *GeneratorNet {
	return &GeneratorNet{private: &Network{
		Name:   "generator",
		Layers: Layers,
	}}
}

// Out Returns reference to output node
func (net *GeneratorNet) Out() *gorgonia.Node {
	return net.private.out
}

// Learnables Returns learnables nodes
func (net *GeneratorNet) Learnables() gorgonia.Nodes {
	return net.private.Learnables()
}

// Fwd Initializates feedforward for provided input
//
// input - Input node
// batchSize - batch size. If it's >= 2 then broadcast function will be applied
//
func (net *GeneratorNet) Fwd(input *gorgonia.Node, batchSize int) error {
	if err := net.private.Fwd(input, batchSize); err != nil {
		return errors.Wrap(err, "[Generator]")
	}
	return nil
}

// Share Creates generator on graph g bound to the same parameters
func (net *GeneratorNet) Share(g *gorgonia.ExprGraph, suffix string) (*GeneratorNet, error) {
	shared, err := net.private.Share(g, suffix, true)
	if err != nil {
		return nil, errors.Wrap(err, "[Generator]")
	}
	return &GeneratorNet{private: shared}, nil
}

// DefineGenerator Builds generator on graph g:
//
//	latent => linear(h0)+leaky => linear(h1)+leaky => ... => linear(width*height)+tanh
//
// Weights of the first layer are drawn from N(0, cfg.InitStdDev^2), remaining weights are Glorot-uniform, biases are zeros.
func DefineGenerator(g *gorgonia.ExprGraph, cfg TrainConfig, rng *rand.Rand) *GeneratorNet {
	sizes := make([]int, 0, len(cfg.GeneratorHidden)+2)
	sizes = append(sizes, cfg.LatentSize)
	sizes = append(sizes, cfg.GeneratorHidden...)
	sizes = append(sizes, cfg.ImageSize())

	layers := make([]*Layer, 0, len(sizes)-1)
	for i := 1; i < len(sizes); i++ {
		winit := GlorotUniformInit(rng)
		if i == 1 {
			winit = NormalInit(rng, 0, cfg.InitStdDev)
		}
		w := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(sizes[i], sizes[i-1]), gorgonia.WithName(fmt.Sprintf("generator_w%d", i-1)), gorgonia.WithInit(winit))
		b := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, sizes[i]), gorgonia.WithName(fmt.Sprintf("generator_b%d", i-1)), gorgonia.WithInit(gorgonia.Zeroes()))
		activation := LeakyRectify(cfg.LeakySlope)
		if i == len(sizes)-1 {
			activation = Tanh
		}
		layers = append(layers, &Layer{
			WeightNode: w,
			BiasNode:   b,
			Type:       LayerLinear,
			Activation: activation,
		})
	}
	return Generator(layers...)
}
