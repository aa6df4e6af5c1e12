package main

import (
	"fmt"
	"math/rand"
	"os"

	gan "github.com/LdDl/gan-mnist"
)

var (
	mnistCacheDir = "./data/mnist"
	// Set to directory with grayscale images to train on them instead of MNIST
	imagesFolder = ""
)

func main() {
	cfg := gan.DefaultTrainConfig()

	// Initialize source with constant value to reproduce results
	rng := rand.New(rand.NewSource(cfg.Seed))

	trainSet, err := loadTrainSet(cfg)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Train set: %d samples of %dx%d\n", trainSet.DataLength, trainSet.Width, trainSet.Height)

	model, err := gan.NewModel(cfg, rng)
	if err != nil {
		panic(err)
	}
	defer model.Close()

	trainer, err := gan.NewTrainer(model, trainSet, rng, os.Stdout)
	if err != nil {
		panic(err)
	}
	if err = trainer.Run(); err != nil {
		panic(err)
	}
}

func loadTrainSet(cfg gan.TrainConfig) (*gan.TrainSet, error) {
	if imagesFolder == "" {
		return gan.LoadMNIST(mnistCacheDir, gan.NormalizeUnit)
	}
	trainSet, report, err := gan.LoadImageFolder(imagesFolder, cfg.ImgWidth, cfg.ImgHeight, gan.NormalizeUnit)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Loaded %d images from '%s', skipped %d\n", report.Loaded, imagesFolder, len(report.Skipped))
	for _, name := range report.Skipped {
		fmt.Printf("\tskipped: %s\n", name)
	}
	return trainSet, nil
}
