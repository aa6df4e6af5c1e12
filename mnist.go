package gan_mnist

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

const (
	MNISTBaseURL         = "https://ossci-datasets.s3.amazonaws.com/mnist/"
	MNISTTrainImagesFile = "train-images-idx3-ubyte.gz"

	idxImagesMagic = 2051
	idxMaxSide     = 4096
	idxMaxPrealloc = 1 << 16

	downloadTimeout = 10 * time.Minute
)

// LoadMNIST Loads MNIST train images from cacheDir. Archive is downloaded first if it is not cached yet.
func LoadMNIST(cacheDir string, norm Normalization) (*TrainSet, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "Can't create cache directory '%s'", cacheDir)
	}
	fname := filepath.Join(cacheDir, MNISTTrainImagesFile)
	client := &http.Client{Timeout: downloadTimeout}
	if err := downloadFile(client, MNISTBaseURL+MNISTTrainImagesFile, fname); err != nil {
		return nil, errors.Wrap(err, "Can't download MNIST")
	}
	return LoadMNISTImages(fname, norm)
}

func downloadFile(client *http.Client, url, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return nil
	}
	resp, err := client.Get(url)
	if err != nil {
		return errors.Wrapf(err, "Can't GET '%s'", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Bad status for '%s': %s", url, resp.Status)
	}
	tmp := dest + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "Can't create '%s'", tmp)
	}
	if _, err = io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "Can't write '%s'", tmp)
	}
	if err = out.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "Can't close '%s'", tmp)
	}
	return os.Rename(tmp, dest)
}

// LoadMNISTImages Parses gzipped IDX3 file (http://yann.lecun.com/exdb/mnist/) into TrainSet
func LoadMNISTImages(fname string, norm Normalization) (*TrainSet, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open '%s'", fname)
	}
	defer file.Close()
	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read gzip stream of '%s'", fname)
	}
	defer gz.Close()
	return readIDXImages(gz, norm)
}

func readIDXImages(r io.Reader, norm Normalization) (*TrainSet, error) {
	var header struct {
		Magic     int32
		NumImages int32
		Rows      int32
		Cols      int32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "Can't read IDX header")
	}
	if header.Magic != idxImagesMagic {
		return nil, fmt.Errorf("Invalid magic number: %d (expected %d)", header.Magic, idxImagesMagic)
	}
	if header.NumImages <= 0 || header.Rows <= 0 || header.Cols <= 0 {
		return nil, fmt.Errorf("Invalid IDX dimensions: %d images of %dx%d", header.NumImages, header.Rows, header.Cols)
	}
	if header.Rows > idxMaxSide || header.Cols > idxMaxSide {
		return nil, fmt.Errorf("IDX images of %dx%d are too large", header.Rows, header.Cols)
	}
	numImages := int(header.NumImages)
	pixelCount := int(header.Rows) * int(header.Cols)
	// Header count is not trusted until images are actually read
	initialCap := numImages
	if initialCap > idxMaxPrealloc {
		initialCap = idxMaxPrealloc
	}
	rows := make([][]float64, 0, initialCap)
	pixels := make([]uint8, pixelCount)
	for i := 0; i < numImages; i++ {
		if _, err := io.ReadFull(r, pixels); err != nil {
			return nil, errors.Wrapf(err, "Can't read image #%d", i)
		}
		rows = append(rows, normalizePixels(pixels, norm))
	}
	return NewTrainSet(rows, int(header.Cols), int(header.Rows))
}
