package gan_mnist

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Model Holds every evaluation graph needed for GAN training:
//
// Discriminator in training mode (own graph, dropout enabled, gradients for Discriminator's learnables)
// GAN: Generator + frozen Discriminator (gradients reach Generator, solver steps Generator only)
// Generator in evaluation mode (shares values with Generator of GAN graph)
// Discriminator in evaluation mode (shares values with trainable Discriminator, dropout disabled)
//
type Model struct {
	cfg       TrainConfig
	batchSize int

	generator         *GeneratorNet
	discriminator     *DiscriminatorNet
	gan               *GAN
	generatorEval     *GeneratorNet
	discriminatorEval *DiscriminatorNet

	inputDiscriminatorTrain  *gorgonia.Node
	targetDiscriminatorTrain *gorgonia.Node
	costValDiscriminator     gorgonia.Value
	tmDisTrain               gorgonia.VM
	solverDiscriminator      gorgonia.Solver

	inputGenerator         *gorgonia.Node
	targetDiscriminatorGAN *gorgonia.Node
	generatorTargets       *tensor.Dense
	costValGAN             gorgonia.Value
	tmGAN                  gorgonia.VM
	solverGAN              gorgonia.Solver

	inputGeneratorEval *gorgonia.Node
	generatedSamples   gorgonia.Value
	tmGeneratorEval    gorgonia.VM

	inputDiscriminatorEval *gorgonia.Node
	outputDiscriminator    gorgonia.Value
	tmDiscriminatorEval    gorgonia.VM
}

// NewModel Defines Generator, Discriminator and GAN, prepares tape machines and solvers.
// Parameters are initialized from rng.
func NewModel(cfg TrainConfig, rng *rand.Rand) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Invalid config")
	}
	m := &Model{
		cfg:       cfg,
		batchSize: cfg.BatchSize,
	}
	if err := m.defineDiscriminatorTrain(rng); err != nil {
		return nil, err
	}
	if err := m.defineGAN(rng); err != nil {
		m.Close()
		return nil, err
	}
	if err := m.defineEvaluation(); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

func (m *Model) defineDiscriminatorTrain(rng *rand.Rand) error {
	g := gorgonia.NewGraph()
	m.discriminator = DefineDiscriminator(g, m.cfg, rng)
	m.inputDiscriminatorTrain = gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(2*m.batchSize, m.cfg.ImageSize()), gorgonia.WithName("discriminator_train_input"))
	if err := m.discriminator.Fwd(m.inputDiscriminatorTrain, 2*m.batchSize); err != nil {
		return errors.Wrap(err, "Can't define Discriminator in training mode")
	}
	m.targetDiscriminatorTrain = gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(2*m.batchSize, 1), gorgonia.WithName("discriminator_target"))
	cost, err := BinaryCrossEntropyLoss(m.discriminator.Out(), m.targetDiscriminatorTrain)
	if err != nil {
		return errors.Wrap(err, "Can't define Discriminator's loss")
	}
	gorgonia.WithName("discriminator_loss")(cost)
	if _, err = gorgonia.Grad(cost, m.discriminator.Learnables()...); err != nil {
		return errors.Wrap(err, "Can't define Discriminator's gradients")
	}
	gorgonia.Read(cost, &m.costValDiscriminator)
	m.tmDisTrain = gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(m.discriminator.Learnables()...))
	m.solverDiscriminator = gorgonia.NewAdamSolver(gorgonia.WithLearnRate(m.cfg.LearnRate), gorgonia.WithBeta1(m.cfg.Beta1))
	return nil
}

func (m *Model) defineGAN(rng *rand.Rand) error {
	g := gorgonia.NewGraph()
	m.generator = DefineGenerator(g, m.cfg, rng)
	m.inputGenerator = gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(m.batchSize, m.cfg.LatentSize), gorgonia.WithName("generator_input"))
	if err := m.generator.Fwd(m.inputGenerator, m.batchSize); err != nil {
		return errors.Wrap(err, "Can't define Generator")
	}
	definedGAN, err := NewGAN(g, m.generator, m.discriminator)
	if err != nil {
		return errors.Wrap(err, "Can't define GAN")
	}
	if err = definedGAN.Fwd(m.batchSize); err != nil {
		return errors.Wrap(err, "Can't define GAN's feedforward")
	}
	m.gan = definedGAN

	m.targetDiscriminatorGAN = gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(m.batchSize, 1), gorgonia.WithName("gan_discriminator_target"))
	cost, err := BinaryCrossEntropyLoss(definedGAN.Out(), m.targetDiscriminatorGAN)
	if err != nil {
		return errors.Wrap(err, "Can't define GAN's loss")
	}
	gorgonia.WithName("gan_discriminator_loss")(cost)
	if _, err = gorgonia.Grad(cost, definedGAN.Learnables()...); err != nil {
		return errors.Wrap(err, "Can't define GAN's gradients")
	}
	gorgonia.Read(cost, &m.costValGAN)

	targets := make([]float64, m.batchSize)
	for i := range targets {
		targets[i] = m.cfg.GeneratorTarget
	}
	m.generatorTargets = tensor.New(tensor.WithShape(m.batchSize, 1), tensor.WithBacking(targets))

	m.tmGAN = gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(definedGAN.Learnables()...))
	m.solverGAN = gorgonia.NewAdamSolver(gorgonia.WithLearnRate(m.cfg.LearnRate), gorgonia.WithBeta1(m.cfg.Beta1))
	return nil
}

func (m *Model) defineEvaluation() error {
	var err error

	genGraph := gorgonia.NewGraph()
	m.generatorEval, err = m.generator.Share(genGraph, "eval")
	if err != nil {
		return errors.Wrap(err, "Can't define Generator in evaluation mode")
	}
	m.inputGeneratorEval = gorgonia.NewMatrix(genGraph, gorgonia.Float64, gorgonia.WithShape(m.batchSize, m.cfg.LatentSize), gorgonia.WithName("generator_eval_input"))
	if err = m.generatorEval.Fwd(m.inputGeneratorEval, m.batchSize); err != nil {
		return errors.Wrap(err, "Can't define Generator's feedforward in evaluation mode")
	}
	gorgonia.Read(m.generatorEval.Out(), &m.generatedSamples)
	m.tmGeneratorEval = gorgonia.NewTapeMachine(genGraph)

	disGraph := gorgonia.NewGraph()
	m.discriminatorEval, err = m.discriminator.Share(disGraph, "eval", true)
	if err != nil {
		return errors.Wrap(err, "Can't define Discriminator in evaluation mode")
	}
	m.inputDiscriminatorEval = gorgonia.NewMatrix(disGraph, gorgonia.Float64, gorgonia.WithShape(m.batchSize, m.cfg.ImageSize()), gorgonia.WithName("discriminator_eval_input"))
	if err = m.discriminatorEval.Fwd(m.inputDiscriminatorEval, m.batchSize); err != nil {
		return errors.Wrap(err, "Can't define Discriminator's feedforward in evaluation mode")
	}
	gorgonia.Read(m.discriminatorEval.Out(), &m.outputDiscriminator)
	m.tmDiscriminatorEval = gorgonia.NewTapeMachine(disGraph)
	return nil
}

// Config Returns configuration model was built with
func (m *Model) Config() TrainConfig {
	return m.cfg
}

// Close Releases tape machines
func (m *Model) Close() {
	for _, vm := range []gorgonia.VM{m.tmDisTrain, m.tmGAN, m.tmGeneratorEval, m.tmDiscriminatorEval} {
		if vm != nil {
			vm.Close()
		}
	}
}

// TrainDiscriminator Does single optimization step for Discriminator
//
// samples - [2*batchSize, width*height]
// labels - [2*batchSize, 1]
// Returns Discriminator's loss before the step
//
func (m *Model) TrainDiscriminator(samples, labels *tensor.Dense) (float64, error) {
	if err := gorgonia.Let(m.inputDiscriminatorTrain, samples); err != nil {
		return 0, errors.Wrap(err, "Can't set Discriminator's input")
	}
	if err := gorgonia.Let(m.targetDiscriminatorTrain, labels); err != nil {
		return 0, errors.Wrap(err, "Can't set Discriminator's target")
	}
	defer m.tmDisTrain.Reset()
	if err := m.tmDisTrain.RunAll(); err != nil {
		return 0, errors.Wrap(err, "Can't run Discriminator's VM")
	}
	if err := m.solverDiscriminator.Step(gorgonia.NodesToValueGrads(m.discriminator.Learnables())); err != nil {
		return 0, errors.Wrap(err, "Can't do Discriminator's solver step")
	}
	if err := m.gan.SyncDiscriminator(); err != nil {
		return 0, err
	}
	if err := syncLearnables(m.discriminatorEval.Learnables(), m.discriminator.Learnables()); err != nil {
		return 0, errors.Wrap(err, "Can't sync Discriminator in evaluation mode")
	}
	return scalarValue(m.costValDiscriminator)
}

// TrainGenerator Does single optimization step for Generator through GAN. Discriminator's parameters are left untouched.
//
// latent - [batchSize, latentSize]
// Returns GAN's loss before the step
//
func (m *Model) TrainGenerator(latent *tensor.Dense) (float64, error) {
	if err := gorgonia.Let(m.inputGenerator, latent); err != nil {
		return 0, errors.Wrap(err, "Can't set Generator's input")
	}
	if err := gorgonia.Let(m.targetDiscriminatorGAN, m.generatorTargets); err != nil {
		return 0, errors.Wrap(err, "Can't set GAN's target")
	}
	defer m.tmGAN.Reset()
	if err := m.tmGAN.RunAll(); err != nil {
		return 0, errors.Wrap(err, "Can't run GAN's VM")
	}
	if err := m.solverGAN.Step(gorgonia.NodesToValueGrads(m.gan.GeneratorLearnables())); err != nil {
		return 0, errors.Wrap(err, "Can't do GAN's solver step")
	}
	if err := syncLearnables(m.generatorEval.Learnables(), m.generator.Learnables()); err != nil {
		return 0, errors.Wrap(err, "Can't sync Generator in evaluation mode")
	}
	return scalarValue(m.costValGAN)
}

// Generate Runs Generator for every row of latent ([n, latentSize]) and returns images [n, width*height]
func (m *Model) Generate(latent *tensor.Dense) (*tensor.Dense, error) {
	if latent.Dims() != 2 || latent.Shape()[1] != m.cfg.LatentSize {
		return nil, fmt.Errorf("Latent samples must have shape (n, %d), got %v", m.cfg.LatentSize, latent.Shape())
	}
	return m.evalBatched(latent, m.inputGeneratorEval, m.tmGeneratorEval, &m.generatedSamples)
}

// Discriminate Runs Discriminator (no dropout) for every row of images ([n, width*height]) and returns probabilities [n, 1]
func (m *Model) Discriminate(images *tensor.Dense) (*tensor.Dense, error) {
	if images.Dims() != 2 || images.Shape()[1] != m.cfg.ImageSize() {
		return nil, fmt.Errorf("Images must have shape (n, %d), got %v", m.cfg.ImageSize(), images.Shape())
	}
	return m.evalBatched(images, m.inputDiscriminatorEval, m.tmDiscriminatorEval, &m.outputDiscriminator)
}

// Sample Generates n images from fresh standard normal latent vectors
func (m *Model) Sample(rng *rand.Rand, n int) (*tensor.Dense, error) {
	return m.Generate(NormRandDense(rng, n, m.cfg.LatentSize))
}

// evalBatched Feeds input through VM by chunks of batchSize rows. Last chunk is padded with zeros.
func (m *Model) evalBatched(input *tensor.Dense, inputNode *gorgonia.Node, vm gorgonia.VM, output *gorgonia.Value) (*tensor.Dense, error) {
	n := input.Shape()[0]
	if n == 0 {
		return nil, fmt.Errorf("Input has no rows")
	}
	var (
		collected []float64
		cols      int
	)
	for start := 0; start < n; start += m.batchSize {
		end := start + m.batchSize
		if end > n {
			end = n
		}
		chunk, err := padRows(input, start, end, m.batchSize)
		if err != nil {
			return nil, err
		}
		if err = gorgonia.Let(inputNode, chunk); err != nil {
			return nil, errors.Wrap(err, "Can't init input value")
		}
		if err = vm.RunAll(); err != nil {
			vm.Reset()
			return nil, errors.Wrap(err, "Can't run VM")
		}
		vm.Reset()
		out, ok := (*output).(*tensor.Dense)
		if !ok {
			return nil, fmt.Errorf("Unexpected output type %T", *output)
		}
		// Output buffer is reused by the next run, so rows are copied out
		out, err = firstRows(out, end-start)
		if err != nil {
			return nil, err
		}
		cols = out.Shape()[1]
		collected = append(collected, out.Data().([]float64)...)
	}
	return tensor.New(tensor.WithShape(n, cols), tensor.WithBacking(collected)), nil
}

func scalarValue(v gorgonia.Value) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("Value has not been computed")
	}
	switch data := v.Data().(type) {
	case float64:
		return data, nil
	case []float64:
		if len(data) == 1 {
			return data[0], nil
		}
	}
	return 0, fmt.Errorf("Can't treat %v as scalar", v)
}
