package gan_mnist

import (
	"fmt"
)

// TrainConfig Hyperparameters and output settings for single training run
type TrainConfig struct {
	Epochs     int
	BatchSize  int
	LatentSize int
	ImgWidth   int
	ImgHeight  int

	GeneratorHidden     []int
	DiscriminatorHidden []int
	LeakySlope          float64
	DropoutProb         float64
	InitStdDev          float64

	// Adam solver
	LearnRate float64
	Beta1     float64

	// Targets: real samples get RealLabel (one-sided label smoothing), generated ones get FakeLabel.
	// Generator is trained against GeneratorTarget.
	RealLabel       float64
	FakeLabel       float64
	GeneratorTarget float64

	// Plot samples after first epoch and then every PlotEvery epochs
	PlotEvery   int
	PlotSamples int
	PlotRows    int
	PlotCols    int
	OutputDir   string

	Seed int64
}

// DefaultTrainConfig Returns configuration of reference MNIST run: 40 epochs, batch size 128
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Epochs:              40,
		BatchSize:           128,
		LatentSize:          120,
		ImgWidth:            28,
		ImgHeight:           28,
		GeneratorHidden:     []int{256, 512, 1024},
		DiscriminatorHidden: []int{1024, 512, 256},
		LeakySlope:          0.2,
		DropoutProb:         0.3,
		InitStdDev:          0.02,
		LearnRate:           0.0002,
		Beta1:               0.5,
		RealLabel:           0.9,
		FakeLabel:           0.0,
		GeneratorTarget:     1.0,
		PlotEvery:           20,
		PlotSamples:         100,
		PlotRows:            10,
		PlotCols:            10,
		OutputDir:           ".",
		Seed:                10,
	}
}

// ImageSize Returns number of elements in flattened image
func (cfg TrainConfig) ImageSize() int {
	return cfg.ImgWidth * cfg.ImgHeight
}

// Validate Checks if configuration is runnable
func (cfg TrainConfig) Validate() error {
	positives := []struct {
		name  string
		value int
	}{
		{"Epochs", cfg.Epochs},
		{"BatchSize", cfg.BatchSize},
		{"LatentSize", cfg.LatentSize},
		{"ImgWidth", cfg.ImgWidth},
		{"ImgHeight", cfg.ImgHeight},
		{"PlotEvery", cfg.PlotEvery},
		{"PlotSamples", cfg.PlotSamples},
		{"PlotRows", cfg.PlotRows},
		{"PlotCols", cfg.PlotCols},
	}
	for _, p := range positives {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.value)
		}
	}
	for i, h := range cfg.GeneratorHidden {
		if h <= 0 {
			return fmt.Errorf("GeneratorHidden[%d] must be positive, got %d", i, h)
		}
	}
	for i, h := range cfg.DiscriminatorHidden {
		if h <= 0 {
			return fmt.Errorf("DiscriminatorHidden[%d] must be positive, got %d", i, h)
		}
	}
	if cfg.DropoutProb < 0 || cfg.DropoutProb >= 1 {
		return fmt.Errorf("DropoutProb must be in [0, 1), got %f", cfg.DropoutProb)
	}
	if cfg.LearnRate <= 0 {
		return fmt.Errorf("LearnRate must be positive, got %f", cfg.LearnRate)
	}
	if cfg.Beta1 < 0 || cfg.Beta1 >= 1 {
		return fmt.Errorf("Beta1 must be in [0, 1), got %f", cfg.Beta1)
	}
	for _, l := range []float64{cfg.RealLabel, cfg.FakeLabel, cfg.GeneratorTarget} {
		if l < 0 || l > 1 {
			return fmt.Errorf("Labels must be in [0, 1], got %f", l)
		}
	}
	if cfg.PlotRows*cfg.PlotCols < cfg.PlotSamples {
		return fmt.Errorf("Grid %dx%d can't hold %d samples", cfg.PlotRows, cfg.PlotCols, cfg.PlotSamples)
	}
	return nil
}
