// Command profiler is the batch entrypoint: it reads an interaction
// snapshot from a JSON file, builds the multi-centroid interest profile,
// and writes the centroid list to an output JSON file.
//
// Usage: profiler [--min-cluster-size N] <input.json> <output.json>
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/solistra/profiler/internal/clustering"
	"github.com/solistra/profiler/internal/config"
	"github.com/solistra/profiler/internal/profile"
	"github.com/solistra/profiler/internal/validation"
	"github.com/solistra/profiler/pkg/models"
)

func main() {
	os.Exit(run())
}

func run() int {
	minClusterSize := flag.Int("min-cluster-size", 0, "clustering sensitivity (default from config)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <input.json> <output.json>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		return 2
	}
	inputPath, outputPath := flag.Arg(0), flag.Arg(1)

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Default()
	if *minClusterSize > 0 {
		cfg.Profile.Clustering.MinClusterSize = *minClusterSize
	}

	// A missing or malformed input file is fatal: no output is written.
	data, err := os.ReadFile(inputPath)
	if err != nil {
		logger.WithError(err).Error("Failed to read input")
		return 1
	}
	if err := validation.ValidateSnapshot(data); err != nil {
		logger.WithError(err).Error("Input failed validation")
		return 1
	}

	var records []models.InteractionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logger.WithError(err).Error("Failed to parse input")
		return 1
	}

	clusterer, err := clustering.New(cfg.Profile.Clustering.Algorithm, clustering.Config{
		MinClusterSize:  cfg.Profile.Clustering.MinClusterSize,
		MinSamples:      cfg.Profile.Clustering.MinSamples,
		Metric:          cfg.Profile.Clustering.Metric,
		SelectionMethod: cfg.Profile.Clustering.SelectionMethod,
		Epsilon:         cfg.Profile.Clustering.Epsilon,
	})
	if err != nil {
		logger.WithError(err).Error("Failed to initialize clusterer")
		return 1
	}

	builder := profile.NewBuilder(cfg.Profile, logger, clusterer)
	result, err := builder.Build(records)
	if err != nil {
		logger.WithError(err).Error("Profile build failed")
		return 1
	}

	out, err := json.Marshal(result.Centroids)
	if err != nil {
		logger.WithError(err).Error("Failed to encode output")
		return 1
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		logger.WithError(err).Error("Failed to write output")
		return 1
	}

	logger.WithFields(logrus.Fields{
		"centroids": len(result.Centroids),
		"dropped":   result.Dropped,
		"output":    outputPath,
	}).Info("Profile written")
	return 0
}
