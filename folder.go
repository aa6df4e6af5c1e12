package gan_mnist

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	// Decoders for image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// FolderReport Outcome of folder loading: which files made it into the train set and which did not
type FolderReport struct {
	Loaded  int
	Skipped []string
}

// LoadImageFolder Reads every image in dir (sorted by name), converts it to grayscale and resizes it to width x height.
// Files which can't be opened or decoded are skipped and listed in report.
func LoadImageFolder(dir string, width, height int, norm Normalization) (*TrainSet, FolderReport, error) {
	report := FolderReport{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, report, errors.Wrapf(err, "Can't read directory '%s'", dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	rows := make([][]float64, 0, len(names))
	for _, name := range names {
		gray, err := readGrayResized(filepath.Join(dir, name), width, height)
		if err != nil {
			report.Skipped = append(report.Skipped, name)
			continue
		}
		rows = append(rows, normalizePixels(gray.Pix, norm))
	}
	report.Loaded = len(rows)
	if len(rows) == 0 {
		return nil, report, fmt.Errorf("No images could be loaded from '%s' (%d skipped)", dir, len(report.Skipped))
	}
	ts, err := NewTrainSet(rows, width, height)
	if err != nil {
		return nil, report, err
	}
	return ts, report, nil
}

func readGrayResized(fname string, width, height int) (*image.Gray, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}
