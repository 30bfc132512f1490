package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drakos74/geotextile/infra/config"
	"github.com/drakos74/geotextile/internal/app"
	"github.com/drakos74/geotextile/internal/artifact"
	"github.com/drakos74/geotextile/internal/dataset"
	"github.com/drakos74/geotextile/internal/inference"
	"github.com/drakos74/geotextile/internal/model"
	"github.com/drakos74/geotextile/internal/storage"
	"github.com/drakos74/geotextile/internal/train"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	cfg := train.DefaultConfig()
	config.MustLoad("train", &cfg)

	version := flag.Int64("version", cfg.Version, "artifact version to write")
	data := flag.String("dataset", cfg.Dataset, "csv dataset to train on")
	mode := flag.String("mode", string(cfg.Mode), "input encoding, clusters or features")
	dryRun := flag.Bool("dry-run", false, "train and verify the model without storing anything")
	flag.Parse()
	cfg.Version = *version
	cfg.Dataset = *data
	cfg.Mode = model.Mode(*mode)
	cfg.Artifacts = config.Getenv(app.ArtifactsEnv, cfg.Artifacts)
	if cfg.Shard == "" {
		cfg.Shard = artifact.Name
	}
	if !cfg.Mode.Valid() {
		log.Fatal().Str("mode", *mode).Msg("unknown mode")
	}

	artifacts, err := app.Artifacts(cfg.Artifacts, false, *dryRun)(cfg.Shard)
	if err != nil {
		log.Fatal().Err(err).Str("shard", cfg.Shard).Msg("could not open artifacts")
	}
	runs := app.Runs(cfg.Artifacts, *dryRun)
	k := storage.K{Model: artifact.Name, Label: cfg.Shard}
	previous, hasPrevious, err := app.Best(runs, k)
	if err != nil {
		log.Error().Err(err).Msg("could not read previous runs")
	}

	ds, err := load(cfg, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Str("dataset", cfg.Dataset).Msg("could not load dataset")
	}

	bundle, report, err := train.Run(ds, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not train")
	}

	if err := bundle.Save(artifacts, cfg.Version); err != nil {
		log.Fatal().Err(err).Msg("could not save model")
	}
	if *dryRun {
		if _, err := app.Serve(artifacts, cfg.Version, inference.DefaultConfig()); err != nil {
			log.Fatal().Err(err).Msg("trained model cannot be served")
		}
		log.Info().Str("run", report.RunID).Msg("dry run, model verified and discarded")
	}

	if err := runs.Add(k, report); err != nil {
		log.Error().Err(err).Msg("could not record training run")
	}

	fmt.Printf("run %s: accuracy=%.4f f1=%.4f rmse=%.4f baseline=%.4f epochs=%d\n",
		report.RunID, report.Test.Accuracy, report.Test.F1, report.Test.RMSE, report.Baseline, report.History.Epochs)
	if hasPrevious {
		fmt.Printf("previous best %s: accuracy=%.4f (%+.4f)\n",
			previous.RunID, previous.Test.Accuracy, report.Test.Accuracy-previous.Test.Accuracy)
	}
}

// load reads the csv dataset, generating it from the material profiles if it does not exist.
// A generated dataset is written to the dataset path unless this is a dry run.
func load(cfg train.Config, dryRun bool) (dataset.Dataset, error) {
	ds, err := dataset.ReadCSV(cfg.Dataset)
	if err == nil {
		return ds, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return ds, err
	}
	log.Warn().Str("dataset", cfg.Dataset).Int("samples", cfg.Samples).Msg("dataset not found, generating")
	ds = dataset.Generate(cfg.Samples, cfg.Seed)
	if cfg.Dataset == "" || dryRun {
		return ds, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Dataset), os.ModePerm); err != nil {
		return ds, err
	}
	return ds, dataset.WriteCSV(cfg.Dataset, ds)
}
