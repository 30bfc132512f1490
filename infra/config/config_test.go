package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Port int    `json:"port"`
	Name string `json:"name"`
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.json"), []byte(`{"port":8000,"name":"x"}`), 0644))
	t.Setenv(DirEnv, dir)

	var s sample
	_, err := Load("sample", &s)
	require.NoError(t, err)
	assert.Equal(t, sample{Port: 8000, Name: "x"}, s)

	_, err = Load("missing", &s)
	assert.Error(t, err)
	assert.Panics(t, func() {
		MustLoad("missing", &s)
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{`), 0644))
	_, err = Load("broken", &s)
	assert.Error(t, err)
}

func TestRepositoryConfigs(t *testing.T) {
	t.Setenv(DirEnv, ".")
	var v map[string]interface{}
	for _, key := range []string{"service", "train"} {
		_, err := Load(key, &v)
		assert.NoError(t, err, key)
	}
}

func TestGetenv(t *testing.T) {
	t.Setenv("GEOTEXTILE_TEST", "")
	assert.Equal(t, "fallback", Getenv("GEOTEXTILE_TEST", "fallback"))
	assert.Equal(t, 3, GetenvInt("GEOTEXTILE_TEST", 3))

	t.Setenv("GEOTEXTILE_TEST", "42")
	assert.Equal(t, "42", Getenv("GEOTEXTILE_TEST", "fallback"))
	assert.Equal(t, 42, GetenvInt("GEOTEXTILE_TEST", 3))

	t.Setenv("GEOTEXTILE_TEST", "abc")
	assert.Equal(t, 3, GetenvInt("GEOTEXTILE_TEST", 3))
}
