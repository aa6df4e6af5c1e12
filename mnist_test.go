package gan_mnist

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeIDX(t *testing.T, magic, n, rows, cols int32, pixels []uint8) string {
	buf := &bytes.Buffer{}
	gz := gzip.NewWriter(buf)
	for _, v := range []int32{magic, n, rows, cols} {
		if err := binary.Write(gz, binary.BigEndian, v); err != nil {
			t.Fatalf("write header: %v", err)
		}
	}
	if _, err := gz.Write(pixels); err != nil {
		t.Fatalf("write pixels: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	fname := filepath.Join(t.TempDir(), MNISTTrainImagesFile)
	if err := os.WriteFile(fname, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return fname
}

func TestLoadMNISTImages(t *testing.T) {
	pixels := []uint8{
		0, 255, 128, 0, 0, 0,
		255, 255, 255, 255, 255, 255,
		10, 20, 30, 40, 50, 60,
	}
	fname := writeIDX(t, idxImagesMagic, 3, 2, 3, pixels)
	ts, err := LoadMNISTImages(fname, NormalizeUnit)
	if err != nil {
		t.Fatalf("LoadMNISTImages: %v", err)
	}
	if ts.DataLength != 3 || ts.RowSize() != 6 || ts.Width != 3 || ts.Height != 2 {
		t.Fatalf("unexpected train set: %d samples, %dx%d", ts.DataLength, ts.Width, ts.Height)
	}
	data := ts.TrainData.Data().([]float64)
	for i, v := range data {
		if v < 0 || v > 1+1e-12 {
			t.Fatalf("value #%d out of [0, 1]: %f", i, v)
		}
	}
	if math.Abs(data[1]-1) > 1e-12 || data[0] != 0 {
		t.Fatalf("unexpected normalization: %v", data[:2])
	}
}

func TestLoadMNISTImagesSymmetric(t *testing.T) {
	fname := writeIDX(t, idxImagesMagic, 1, 1, 2, []uint8{0, 255})
	ts, err := LoadMNISTImages(fname, NormalizeSymmetric)
	if err != nil {
		t.Fatalf("LoadMNISTImages: %v", err)
	}
	data := ts.TrainData.Data().([]float64)
	if math.Abs(data[0]+1) > 1e-12 || math.Abs(data[1]-1) > 1e-12 {
		t.Fatalf("expected [-1 1], got %v", data)
	}
}

func TestLoadMNISTImagesErrors(t *testing.T) {
	if _, err := LoadMNISTImages(writeIDX(t, 2049, 1, 1, 1, []uint8{0}), NormalizeUnit); err == nil {
		t.Fatal("expected error for labels magic number")
	}
	if _, err := LoadMNISTImages(writeIDX(t, idxImagesMagic, 2, 2, 2, []uint8{1, 2, 3, 4, 5}), NormalizeUnit); err == nil {
		t.Fatal("expected error for truncated data")
	}
	if _, err := LoadMNISTImages(filepath.Join(t.TempDir(), "missing.gz"), NormalizeUnit); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMNISTUsesCache(t *testing.T) {
	fname := writeIDX(t, idxImagesMagic, 2, 2, 2, []uint8{0, 1, 2, 3, 4, 5, 6, 7})
	// Archive is already in place, so nothing is downloaded
	ts, err := LoadMNIST(filepath.Dir(fname), NormalizeUnit)
	if err != nil {
		t.Fatalf("LoadMNIST: %v", err)
	}
	if ts.DataLength != 2 {
		t.Fatalf("expected 2 samples, got %d", ts.DataLength)
	}
}

func TestLoadMNISTImagesUntrustedHeader(t *testing.T) {
	// Header claims far more images than the archive holds
	fname := writeIDX(t, idxImagesMagic, math.MaxInt32, 1, 1, []uint8{7, 8})
	if _, err := LoadMNISTImages(fname, NormalizeUnit); err == nil {
		t.Fatal("expected error for image count beyond data")
	}
	// Rows*Cols overflows int32
	fname = writeIDX(t, idxImagesMagic, 1, 65536, 65536, []uint8{0})
	if _, err := LoadMNISTImages(fname, NormalizeUnit); err == nil {
		t.Fatal("expected error for oversized images")
	}
}

func TestDownloadFile(t *testing.T) {
	payload := []byte("archive bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ok.gz" {
			http.NotFound(w, r)
			return
		}
		w.Write(payload)
	}))
	defer server.Close()
	client := &http.Client{Timeout: 5 * time.Second}
	dir := t.TempDir()

	dest := filepath.Join(dir, "ok.gz")
	if err := downloadFile(client, server.URL+"/ok.gz", dest); err != nil {
		t.Fatalf("downloadFile: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected %q, got %q", payload, got)
	}

	missing := filepath.Join(dir, "missing.gz")
	if err = downloadFile(client, server.URL+"/missing.gz", missing); err == nil {
		t.Fatal("expected error for 404")
	}
	if _, err = os.Stat(missing); err == nil {
		t.Fatal("nothing must be written on bad status")
	}
}

func TestDownloadFileTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Stall until client gives up
		<-r.Context().Done()
	}))
	defer server.Close()
	client := &http.Client{Timeout: 50 * time.Millisecond}
	dest := filepath.Join(t.TempDir(), "stalled.gz")

	done := make(chan error, 1)
	go func() {
		done <- downloadFile(client, server.URL+"/stalled.gz", dest)
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected timeout error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("download did not time out")
	}
	if _, err := os.Stat(dest); err == nil {
		t.Fatal("nothing must be written on timeout")
	}
}
