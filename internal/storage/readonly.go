package storage

import "github.com/rs/zerolog/log"

// ReadOnly serves the events of a registry but never adds to it.
type ReadOnly struct {
	registry Registry
}

// NewReadOnly wraps the given registry.
func NewReadOnly(r Registry) *ReadOnly {
	return &ReadOnly{registry: r}
}

func (r *ReadOnly) Add(k K, _ interface{}) error {
	log.Debug().Str("model", k.Model).Str("label", k.Label).Msg("read only registry, event dropped")
	return nil
}

func (r *ReadOnly) GetAll(k K, values interface{}) error {
	return r.registry.GetAll(k, values)
}
