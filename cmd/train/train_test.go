package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/geotextile/internal/train"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg := train.DefaultConfig()
	cfg.Samples = 3
	cfg.Dataset = filepath.Join(t.TempDir(), "dataset", "geotextile.csv")

	ds, err := load(cfg, true)
	require.NoError(t, err)
	assert.Equal(t, 27, ds.Len())
	assert.NoFileExists(t, cfg.Dataset)

	ds, err = load(cfg, false)
	require.NoError(t, err)
	assert.FileExists(t, cfg.Dataset)

	loaded, err := load(cfg, false)
	require.NoError(t, err)
	assert.Equal(t, ds.Labels(), loaded.Labels())

	require.NoError(t, os.WriteFile(cfg.Dataset, []byte("a,b\n1"), 0644))
	_, err = load(cfg, false)
	assert.Error(t, err)
}
