package gan_mnist

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

// DiscriminatorNet Abstraction for discriminator part of GAN. It's simple neural network actually.
type DiscriminatorNet struct {
	private *Network
}

// Discriminator Constructor for DiscriminatorNet
func Discriminator(Layers ...*Layer) *DiscriminatorNet {
	return &DiscriminatorNet{private: &Network{
		Name:   "discriminator",
		Layers: Layers,
	}}
}

// Out Returns reference to output node
func (net *DiscriminatorNet) Out() *gorgonia.Node {
	return net.private.out
}

// Learnables Returns learnables nodes
func (net *DiscriminatorNet) Learnables() gorgonia.Nodes {
	return net.private.Learnables()
}

// Fwd Initializates feedforward for provided input
//
// input - Input node
// batchSize - batch size. If it's >= 2 then broadcast function will be applied
//
func (net *DiscriminatorNet) Fwd(input *gorgonia.Node, batchSize int) error {
	if err := net.private.Fwd(input, batchSize); err != nil {
		return errors.Wrap(err, "[Discriminator]")
	}
	return nil
}

// Share Creates discriminator on graph g bound to the same parameters
//
// eval - if true then dropout layers are disabled for the copy
//
func (net *DiscriminatorNet) Share(g *gorgonia.ExprGraph, suffix string, eval bool) (*DiscriminatorNet, error) {
	shared, err := net.private.Share(g, suffix, eval)
	if err != nil {
		return nil, errors.Wrap(err, "[Discriminator]")
	}
	return &DiscriminatorNet{private: shared}, nil
}

// DefineDiscriminator Builds discriminator on graph g:
//
//	image => linear(h0)+leaky => dropout => linear(h1)+leaky => dropout => ... => linear(1)+sigmoid
//
func DefineDiscriminator(g *gorgonia.ExprGraph, cfg TrainConfig, rng *rand.Rand) *DiscriminatorNet {
	sizes := make([]int, 0, len(cfg.DiscriminatorHidden)+2)
	sizes = append(sizes, cfg.ImageSize())
	sizes = append(sizes, cfg.DiscriminatorHidden...)
	sizes = append(sizes, 1)

	layers := make([]*Layer, 0, 2*len(sizes))
	for i := 1; i < len(sizes); i++ {
		winit := GlorotUniformInit(rng)
		if i == 1 {
			winit = NormalInit(rng, 0, cfg.InitStdDev)
		}
		w := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(sizes[i], sizes[i-1]), gorgonia.WithName(fmt.Sprintf("discriminator_w%d", i-1)), gorgonia.WithInit(winit))
		b := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, sizes[i]), gorgonia.WithName(fmt.Sprintf("discriminator_b%d", i-1)), gorgonia.WithInit(gorgonia.Zeroes()))
		if i == len(sizes)-1 {
			layers = append(layers, &Layer{
				WeightNode: w,
				BiasNode:   b,
				Type:       LayerLinear,
				Activation: Sigmoid,
			})
			break
		}
		layers = append(layers,
			&Layer{
				WeightNode: w,
				BiasNode:   b,
				Type:       LayerLinear,
				Activation: LeakyRectify(cfg.LeakySlope),
			},
			&Layer{
				Type:        LayerDropout,
				Activation:  NoActivation,
				Probability: cfg.DropoutProb,
			},
		)
	}
	return Discriminator(layers...)
}
