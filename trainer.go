package gan_mnist

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// EpochStats Losses of last batch in epoch and time taken by epoch
type EpochStats struct {
	Epoch             int
	DiscriminatorLoss float64
	GeneratorLoss     float64
	Duration          time.Duration
}

// Trainer Alternates Discriminator and Generator optimization steps over mini-batches of train set
type Trainer struct {
	cfg   TrainConfig
	model *Model
	data  *TrainSet
	rng   *rand.Rand
	out   io.Writer

	History []EpochStats
}

// NewTrainer Creates trainer. Progress is printed into out (nil means no output).
func NewTrainer(model *Model, data *TrainSet, rng *rand.Rand, out io.Writer) (*Trainer, error) {
	cfg := model.Config()
	if data == nil || data.DataLength == 0 {
		return nil, fmt.Errorf("Train set is empty")
	}
	if data.RowSize() != cfg.ImageSize() {
		return nil, fmt.Errorf("Train set has rows of %d elements, but model expects %d", data.RowSize(), cfg.ImageSize())
	}
	if data.DataLength < cfg.BatchSize {
		return nil, fmt.Errorf("Train set (%d samples) is smaller than batch size (%d)", data.DataLength, cfg.BatchSize)
	}
	if out == nil {
		out = io.Discard
	}
	return &Trainer{
		cfg:   cfg,
		model: model,
		data:  data,
		rng:   rng,
		out:   out,
	}, nil
}

// DiscriminatorBatch Concatenates real and generated samples (real ones first) and labels them
// with realLabel and fakeLabel respectively.
func DiscriminatorBatch(realSamples, fakeSamples *tensor.Dense, realLabel, fakeLabel float64) (*tensor.Dense, *tensor.Dense, error) {
	concatenated, err := tensor.Concat(0, realSamples, fakeSamples)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Can't concat real %v and fake %v samples", realSamples.Shape(), fakeSamples.Shape())
	}
	allSamples, ok := concatenated.(*tensor.Dense)
	if !ok {
		return nil, nil, fmt.Errorf("Concatenated samples must be *tensor.Dense, got %T", concatenated)
	}
	nReal, nFake := realSamples.Shape()[0], fakeSamples.Shape()[0]
	labels := make([]float64, nReal+nFake)
	for i := range labels {
		if i < nReal {
			labels[i] = realLabel
		} else {
			labels[i] = fakeLabel
		}
	}
	return allSamples, tensor.New(tensor.WithShape(nReal+nFake, 1), tensor.WithBacking(labels)), nil
}

// Step Does one Discriminator update followed by one Generator update
func (t *Trainer) Step() (float64, float64, error) {
	// Get a random set of input noise and images
	latentSpaceSamples := NormRandDense(t.rng, t.cfg.BatchSize, t.cfg.LatentSize)
	realSamples, err := t.data.RandomBatch(t.rng, t.cfg.BatchSize)
	if err != nil {
		return 0, 0, errors.Wrap(err, "Can't sample real data")
	}
	generatedSamples, err := t.model.Generate(latentSpaceSamples)
	if err != nil {
		return 0, 0, errors.Wrap(err, "Can't generate fake data")
	}
	allSamples, allLabels, err := DiscriminatorBatch(realSamples, generatedSamples, t.cfg.RealLabel, t.cfg.FakeLabel)
	if err != nil {
		return 0, 0, err
	}
	dLoss, err := t.model.TrainDiscriminator(allSamples, allLabels)
	if err != nil {
		return 0, 0, errors.Wrap(err, "Discriminator's step failed")
	}
	// Fresh noise for Generator
	latentSpaceSamplesGenerated := NormRandDense(t.rng, t.cfg.BatchSize, t.cfg.LatentSize)
	gLoss, err := t.model.TrainGenerator(latentSpaceSamplesGenerated)
	if err != nil {
		return 0, 0, errors.Wrap(err, "Generator's step failed")
	}
	return dLoss, gLoss, nil
}

// Run Trains for configured number of epochs. Samples are plotted after epoch 1 and every PlotEvery epochs,
// loss curves are plotted after the last epoch.
func (t *Trainer) Run() error {
	if err := os.MkdirAll(t.cfg.OutputDir, 0755); err != nil {
		return errors.Wrapf(err, "Can't create output directory '%s'", t.cfg.OutputDir)
	}
	// baches_num = train_data_num / batch_size
	batches := t.data.DataLength / t.cfg.BatchSize
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		st := time.Now()
		stats := EpochStats{Epoch: epoch}
		for b := 0; b < batches; b++ {
			dLoss, gLoss, err := t.Step()
			if err != nil {
				return errors.Wrapf(err, "Epoch %d, batch %d", epoch, b)
			}
			stats.DiscriminatorLoss, stats.GeneratorLoss = dLoss, gLoss
		}
		stats.Duration = time.Since(st)
		t.History = append(t.History, stats)
		fmt.Fprintf(t.out, "Epoch %d:\n", epoch)
		fmt.Fprintf(t.out, "\tDiscriminator's loss: %v\n", stats.DiscriminatorLoss)
		fmt.Fprintf(t.out, "\tGenerator's loss: %v\n", stats.GeneratorLoss)
		fmt.Fprintf(t.out, "\tTaken time: %v\n", stats.Duration)
		if epoch == 1 || epoch%t.cfg.PlotEvery == 0 {
			fname, err := t.PlotEpoch(epoch)
			if err != nil {
				return err
			}
			fmt.Fprintf(t.out, "\tSamples: %s\n", fname)
		}
	}
	lossFname := filepath.Join(t.cfg.OutputDir, "GAN_loss.png")
	if err := PlotLosses(t.History, lossFname); err != nil {
		return errors.Wrap(err, "Can't plot losses")
	}
	return nil
}

// PlotEpoch Generates PlotSamples images and saves them as grid into GAN_image_epoch_<epoch>.png
func (t *Trainer) PlotEpoch(epoch int) (string, error) {
	samples, err := t.model.Sample(t.rng, t.cfg.PlotSamples)
	if err != nil {
		return "", errors.Wrapf(err, "Can't generate samples for epoch %d", epoch)
	}
	fname := filepath.Join(t.cfg.OutputDir, fmt.Sprintf("GAN_image_epoch_%d.png", epoch))
	if err = PlotSamples(samples, t.cfg.PlotRows, t.cfg.PlotCols, t.cfg.ImgWidth, t.cfg.ImgHeight, fname); err != nil {
		return "", errors.Wrapf(err, "Can't plot samples for epoch %d", epoch)
	}
	return fname, nil
}
