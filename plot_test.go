package gan_mnist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gorgonia.org/tensor"
)

func TestSamplesGrid(t *testing.T) {
	// Two 2x2 samples on 2x2 grid: last two cells stay blank
	data := []float64{
		-1, 0, 0, 1,
		5, 5, 5, 5,
	}
	grid := samplesGrid(data, 2, 2, 2, 2, 2)
	if grid.Bounds().Dx() != 4 || grid.Bounds().Dy() != 4 {
		t.Fatalf("expected 4x4 grid, got %v", grid.Bounds())
	}
	if y := grid.GrayAt(0, 0).Y; y != 255 {
		t.Fatalf("minimum of sample must be white, got %d", y)
	}
	if y := grid.GrayAt(1, 1).Y; y != 0 {
		t.Fatalf("maximum of sample must be black, got %d", y)
	}
	// Constant sample has no range to scale
	if y := grid.GrayAt(2, 0).Y; y != 255 {
		t.Fatalf("constant sample must be white, got %d", y)
	}
	if y := grid.GrayAt(1, 3).Y; y != 255 {
		t.Fatalf("empty cell must be white, got %d", y)
	}
}

func TestPlotSamples(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "samples.png")
	samples := tensor.New(tensor.WithShape(3, 4), tensor.WithBacking([]float64{
		0, 1, 2, 3,
		3, 2, 1, 0,
		1, 1, 0, 0,
	}))
	if err := PlotSamples(samples, 2, 2, 2, 2, fname); err != nil {
		t.Fatalf("PlotSamples: %v", err)
	}
	if st, err := os.Stat(fname); err != nil || st.Size() == 0 {
		t.Fatalf("expected non-empty %s: %v", fname, err)
	}
	if err := PlotSamples(samples, 2, 2, 3, 3, fname); err == nil {
		t.Fatal("expected error for wrong sample size")
	}
}

func TestPlotLosses(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "loss.png")
	if err := PlotLosses(nil, fname); err == nil {
		t.Fatal("expected error for empty history")
	}
	history := []EpochStats{
		{Epoch: 1, DiscriminatorLoss: 0.7, GeneratorLoss: 1.2, Duration: time.Second},
		{Epoch: 2, DiscriminatorLoss: 0.6, GeneratorLoss: 1.0, Duration: time.Second},
	}
	if err := PlotLosses(history, fname); err != nil {
		t.Fatalf("PlotLosses: %v", err)
	}
	if _, err := os.Stat(fname); err != nil {
		t.Fatalf("expected %s: %v", fname, err)
	}
}
