package storage

import (
	"errors"
	"fmt"
)

const (
	// ArtifactDir is the table holding the model artifacts.
	ArtifactDir = "artifacts"
	// RegistryDir is the table holding the append-only event logs.
	RegistryDir = "registry"
)

var (
	// DefaultDir is the root of the file storage.
	DefaultDir = "file-storage"
)

// Shard creates a new storage implementation for the given shard.
type Shard func(shard string) (Persistence, error)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Key is the storage key of a persisted item.
type Key struct {
	Version int64  `json:"version"`
	Model   string `json:"model"`
	Label   string `json:"label"`
}

// K is a simplified key for the event registry.
type K struct {
	Model string `json:"model"`
	Label string `json:"label"`
}

// Path is the file name of the key.
func (k Key) Path() string {
	return fmt.Sprintf("%s_%v_%s", k.Model, k.Version, k.Label)
}

// Persistence stores and loads single items.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}

// Registry is an append-only log of events.
type Registry interface {
	Add(key K, value interface{}) error
	// GetAll loads all events for the key into the given slice pointer.
	GetAll(key K, values interface{}) error
}
