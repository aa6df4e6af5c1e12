package gan_mnist

import (
	"fmt"
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gorgonia.org/tensor"
)

// PlotSamples Arranges first rows*cols samples ([n, width*height]) into grid and saves it as image.
// Each cell is min-max scaled on its own and drawn with inverted gray palette (high values are dark).
func PlotSamples(samples *tensor.Dense, rows, cols, width, height int, fname string) error {
	if samples.Dims() != 2 || samples.Shape()[1] != width*height {
		return fmt.Errorf("Samples must have shape (n, %d), got %v", width*height, samples.Shape())
	}
	data, ok := samples.Data().([]float64)
	if !ok {
		return fmt.Errorf("Samples must be float64, got %v", samples.Dtype())
	}
	n := samples.Shape()[0]
	if n > rows*cols {
		n = rows * cols
	}
	grid := samplesGrid(data, n, rows, cols, width, height)

	p := plot.New()
	p.HideAxes()
	p.Add(plotter.NewImage(grid, 0, 0, float64(cols*width), float64(rows*height)))
	// Save the plot to a PNG file.
	if err := p.Save(10*vg.Inch, 10*vg.Inch, fname); err != nil {
		return errors.Wrap(err, "Can't save plot")
	}
	return nil
}

func samplesGrid(data []float64, n, rows, cols, width, height int) *image.Gray {
	grid := image.NewGray(image.Rect(0, 0, cols*width, rows*height))
	for i := range grid.Pix {
		grid.Pix[i] = 255
	}
	size := width * height
	for k := 0; k < n; k++ {
		sample := data[k*size : (k+1)*size]
		lo, hi := floats.Min(sample), floats.Max(sample)
		span := hi - lo
		x0, y0 := (k%cols)*width, (k/cols)*height
		for j, v := range sample {
			scaled := 0.0
			if span > 0 {
				scaled = (v - lo) / span
			}
			grid.SetGray(x0+j%width, y0+j/width, color.Gray{Y: uint8(255 * (1 - scaled))})
		}
	}
	return grid
}

// PlotLosses Plots Discriminator's and Generator's losses per epoch
func PlotLosses(history []EpochStats, fname string) error {
	if len(history) == 0 {
		return fmt.Errorf("No epochs to plot")
	}
	disData := make(plotter.XYs, len(history))
	genData := make(plotter.XYs, len(history))
	for i, st := range history {
		disData[i].X, disData[i].Y = float64(st.Epoch), st.DiscriminatorLoss
		genData[i].X, genData[i].Y = float64(st.Epoch), st.GeneratorLoss
	}
	disLine, err := plotter.NewLine(disData)
	if err != nil {
		return errors.Wrap(err, "Can't init Discriminator's line")
	}
	disLine.Color = color.RGBA{R: 255, B: 128, A: 255}
	genLine, err := plotter.NewLine(genData)
	if err != nil {
		return errors.Wrap(err, "Can't init Generator's line")
	}
	genLine.Color = color.RGBA{G: 128, B: 255, A: 255}

	p := plot.New()
	p.Title.Text = "GAN losses"
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = "Loss"
	p.Add(plotter.NewGrid())
	p.Add(disLine, genLine)
	p.Legend.Add("Discriminator", disLine)
	p.Legend.Add("Generator", genLine)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, fname); err != nil {
		return errors.Wrap(err, "Can't save plot")
	}
	return nil
}
