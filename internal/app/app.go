package app

import (
	"errors"
	"fmt"

	"github.com/drakos74/geotextile/infra/config"
	"github.com/drakos74/geotextile/internal/artifact"
	"github.com/drakos74/geotextile/internal/inference"
	"github.com/drakos74/geotextile/internal/storage"
	"github.com/drakos74/geotextile/internal/storage/file/json"
	"github.com/drakos74/geotextile/internal/train"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// PortEnv overrides the server port.
	PortEnv = "GEOTEXTILE_PORT"
	// ArtifactsEnv overrides the artifact root directory.
	ArtifactsEnv = "GEOTEXTILE_ARTIFACTS"
	// RunsPath is the registry path of the training reports.
	RunsPath = "runs"
)

// Service is the configuration of the inference service.
type Service struct {
	Port        int              `json:"port"`
	Artifacts   string           `json:"artifacts"`
	Shard       string           `json:"shard"`
	Version     int64            `json:"version"`
	LogLevel    string           `json:"log_level"`
	Debug       bool             `json:"debug"`
	Origins     []string         `json:"origins"`
	Calibration inference.Config `json:"calibration"`
}

// LoadService reads the service config and applies the environment overrides.
func LoadService() (Service, error) {
	cfg := Service{
		Port:        8000,
		Artifacts:   storage.DefaultDir,
		Shard:       artifact.Name,
		Version:     1,
		LogLevel:    zerolog.InfoLevel.String(),
		Calibration: inference.DefaultConfig(),
	}
	if _, err := config.Load("service", &cfg); err != nil {
		return cfg, err
	}
	cfg.Port = config.GetenvInt(PortEnv, cfg.Port)
	cfg.Artifacts = config.Getenv(ArtifactsEnv, cfg.Artifacts)
	return cfg, nil
}

// Artifacts returns the artifact shards under root, a dry run keeps them in memory.
func Artifacts(root string, debug, dryRun bool) storage.Shard {
	if dryRun {
		return storage.MemoryShard()
	}
	return json.BlobShard(root, storage.ArtifactDir, debug)
}

// Storage returns the artifact storage of the given shard.
func Storage(root, shard string, debug bool) (storage.Persistence, error) {
	return Artifacts(root, debug, false)(shard)
}

// Runs returns the registry of training reports, a dry run reads it but records nothing.
func Runs(root string, dryRun bool) storage.Registry {
	registry := json.NewEventRegistry(root, RunsPath)
	if dryRun {
		return storage.NewReadOnly(registry)
	}
	return registry
}

// Best returns the recorded run with the highest test accuracy.
func Best(runs storage.Registry, k storage.K) (train.Report, bool, error) {
	var reports []train.Report
	if err := runs.GetAll(k, &reports); err != nil {
		if errors.Is(err, storage.NotFoundErr) {
			return train.Report{}, false, nil
		}
		return train.Report{}, false, fmt.Errorf("could not read training runs: %w", err)
	}
	if len(reports) == 0 {
		return train.Report{}, false, nil
	}
	best := reports[0]
	for _, r := range reports[1:] {
		if r.Test.Accuracy > best.Test.Accuracy {
			best = r
		}
	}
	return best, true, nil
}

// Serve loads the bundle of the given version and creates the inference service for it.
func Serve(p storage.Persistence, version int64, cfg inference.Config) (*inference.Service, error) {
	bundle, err := artifact.Load(p, version)
	if err != nil {
		return nil, fmt.Errorf("could not load model: %w", err)
	}
	return inference.New(bundle, cfg)
}

// NewService loads the artifact bundle and creates the inference service.
func (s Service) NewService() (*inference.Service, error) {
	p, err := Storage(s.Artifacts, s.Shard, s.Debug)
	if err != nil {
		return nil, fmt.Errorf("could not open artifacts: %w", err)
	}
	return Serve(p, s.Version, s.Calibration)
}

// SetLevel sets the global log level, unknown levels are ignored.
func SetLevel(level string) {
	if level == "" {
		return
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level")
		return
	}
	zerolog.SetGlobalLevel(l)
}
