package app

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/geotextile/infra/config"
	"github.com/drakos74/geotextile/internal/dataset"
	"github.com/drakos74/geotextile/internal/inference"
	"github.com/drakos74/geotextile/internal/model"
	"github.com/drakos74/geotextile/internal/storage"
	"github.com/drakos74/geotextile/internal/train"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadService(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "service.json"), []byte(`{"port":9000,"version":3,"calibration":{"method":"temperature","temperature":1.5}}`), 0644))
	t.Setenv(config.DirEnv, dir)
	t.Setenv(PortEnv, "")
	t.Setenv(ArtifactsEnv, "/tmp/artifacts")

	cfg, err := LoadService()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, int64(3), cfg.Version)
	assert.Equal(t, "/tmp/artifacts", cfg.Artifacts)
	assert.Equal(t, inference.TemperatureMethod, cfg.Calibration.Method)
	assert.Equal(t, 1.5, cfg.Calibration.Temperature)

	t.Setenv(PortEnv, "9100")
	cfg, err = LoadService()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)

	t.Setenv(config.DirEnv, filepath.Join(dir, "missing"))
	_, err = LoadService()
	assert.Error(t, err)
}

func TestNewService(t *testing.T) {
	cfg := train.DefaultConfig()
	cfg.Hidden = []int{8}
	cfg.Optimizer.Epochs = 2
	cfg.Trees = 0
	bundle, _, err := train.Run(dataset.Generate(10, 1), cfg)
	require.NoError(t, err)

	dir := t.TempDir()
	p, err := Storage(dir, "test", false)
	require.NoError(t, err)
	require.NoError(t, bundle.Save(p, 1))

	svc := Service{Artifacts: dir, Shard: "test", Version: 1, Calibration: inference.DefaultConfig()}
	s, err := svc.NewService()
	require.NoError(t, err)
	assert.Equal(t, model.ClusterMode, s.Mode())

	svc.Version = 2
	_, err = svc.NewService()
	assert.ErrorIs(t, err, model.ModelLoadErr)
}

func TestDefaultDeployment(t *testing.T) {
	t.Setenv(config.DirEnv, filepath.Join("..", "..", "infra", "config"))
	t.Setenv(PortEnv, "")
	t.Setenv(ArtifactsEnv, t.TempDir())

	cfg := train.DefaultConfig()
	_, err := config.Load("train", &cfg)
	require.NoError(t, err)
	require.Equal(t, model.ClusterMode, cfg.Mode)
	require.Equal(t, []int{64, 32}, cfg.Hidden)
	cfg.Trees = 0

	svc, err := LoadService()
	require.NoError(t, err)
	require.Equal(t, inference.PlattMethod, svc.Calibration.Method)

	bundle, _, err := train.Run(dataset.Generate(cfg.Samples, cfg.Seed), cfg)
	require.NoError(t, err)
	require.True(t, bundle.Validation.Len() > 0)
	artifacts, err := Storage(svc.Artifacts, svc.Shard, false)
	require.NoError(t, err)
	require.NoError(t, bundle.Save(artifacts, svc.Version))

	s, err := svc.NewService()
	require.NoError(t, err)
	p, err := s.Predict(model.Request{Features: []float64{20.9, 1431.47, 1.099, 94.2, 40, 0, 71.2, 62.15, 27.4}})
	require.NoError(t, err)
	assert.Equal(t, "Recycled PET Nonwoven", p.Type)
	assert.True(t, p.Confidence > 50, "confidence %v", p.Confidence)
}

func TestDryRun(t *testing.T) {
	dir := t.TempDir()
	cfg := train.DefaultConfig()
	cfg.Hidden = nil
	cfg.Optimizer.Epochs = 2
	cfg.Trees = 0
	bundle, report, err := train.Run(dataset.Generate(10, 1), cfg)
	require.NoError(t, err)

	p, err := Artifacts(dir, false, true)("test")
	require.NoError(t, err)
	require.NoError(t, bundle.Save(p, 1))
	s, err := Serve(p, 1, inference.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, bundle.Classes, s.Classes())

	// nothing reaches the file storage
	files, err := filepath.Glob(filepath.Join(dir, "*"))
	require.NoError(t, err)
	assert.Empty(t, files)

	k := storage.K{Model: "geotextile", Label: "test"}
	runs := Runs(dir, true)
	require.NoError(t, runs.Add(k, report))
	_, ok, err := Best(runs, k)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBest(t *testing.T) {
	dir := t.TempDir()
	k := storage.K{Model: "geotextile", Label: "test"}
	runs := Runs(dir, false)

	_, ok, err := Best(runs, k)
	require.NoError(t, err)
	assert.False(t, ok)

	for i, acc := range []float64{0.8, 0.95, 0.9} {
		r := train.Report{RunID: fmt.Sprintf("run-%d", i)}
		r.Test.Accuracy = acc
		require.NoError(t, runs.Add(k, r))
	}
	best, ok, err := Best(runs, k)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run-1", best.RunID)

	// a dry run still sees the recorded history
	best, ok, err = Best(Runs(dir, true), k)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.95, best.Test.Accuracy)
}

func TestSetLevel(t *testing.T) {
	level := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(level)

	SetLevel("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	SetLevel("nonsense")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	SetLevel("")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
