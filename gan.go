package gan_mnist

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

// GAN Composite network: Generator's output is fed into frozen copy of Discriminator.
//
// generatorPart - reference to Generator
// discriminatorPart - reference to Discriminator
// frozenDiscriminator - copy of structure of Discriminator which learnables are never stepped by GAN's solver
//
type GAN struct {
	generatorPart     *GeneratorNet
	discriminatorPart *DiscriminatorNet

	frozenDiscriminator *DiscriminatorNet

	out           *gorgonia.Node
	learnables    gorgonia.Nodes
	learnablesGen gorgonia.Nodes
}

// NewGAN Creates GAN on graph g. Generator must be defined on the same graph.
func NewGAN(g *gorgonia.ExprGraph, definedGenerator *GeneratorNet, definedDiscriminator *DiscriminatorNet) (*GAN, error) {
	if definedGenerator == nil || definedDiscriminator == nil {
		return nil, fmt.Errorf("GAN needs both Generator and Discriminator")
	}
	frozen, err := definedDiscriminator.Share(g, "gan", false)
	if err != nil {
		return nil, errors.Wrap(err, "Can't create frozen Discriminator for GAN")
	}
	definedGAN := GAN{
		generatorPart:       definedGenerator,
		discriminatorPart:   definedDiscriminator,
		frozenDiscriminator: frozen,
		learnablesGen:       definedGenerator.Learnables(),
	}
	definedGAN.learnables = append(definedGAN.learnables, definedGAN.learnablesGen...)
	definedGAN.learnables = append(definedGAN.learnables, frozen.Learnables()...)
	return &definedGAN, nil
}

// Out Returns reference to output node
func (net *GAN) Out() *gorgonia.Node {
	return net.out
}

// Learnables Returns learnables nodes (gradients are needed for all of them to reach Generator)
func (net *GAN) Learnables() gorgonia.Nodes {
	return net.learnables
}

// GeneratorLearnables Returns learnables nodes of generator part. Only these should be passed to solver.
func (net *GAN) GeneratorLearnables() gorgonia.Nodes {
	return net.learnablesGen
}

// Fwd Initializates feedforward for Discriminator part of GAN
//
// batchSize - batch size. If it's >= 2 then broadcast function will be applied
// Note: input node is not needed since input for Discriminator is just Generator's output
//
func (net *GAN) Fwd(batchSize int) error {
	generated := net.generatorPart.Out()
	if generated == nil {
		return fmt.Errorf("Generator's feedforward must be initialized before GAN's one")
	}
	if err := net.frozenDiscriminator.Fwd(generated, batchSize); err != nil {
		return errors.Wrap(err, "[GAN]")
	}
	net.out = net.frozenDiscriminator.Out()
	return nil
}

// SyncDiscriminator Refreshes frozen Discriminator with current values of trainable Discriminator
func (net *GAN) SyncDiscriminator() error {
	if err := syncLearnables(net.frozenDiscriminator.Learnables(), net.discriminatorPart.Learnables()); err != nil {
		return errors.Wrap(err, "[GAN] Can't sync Discriminator")
	}
	return nil
}
