package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/drakos74/geotextile/internal/feature"
	"github.com/drakos74/geotextile/internal/model"
	"github.com/drakos74/geotextile/internal/net"
	"github.com/drakos74/geotextile/internal/scaler"
	"github.com/drakos74/geotextile/internal/storage"
	"github.com/rs/zerolog/log"
)

// Name is the model name used in the storage keys.
const Name = "geotextile"

const (
	manifestLabel   = "manifest"
	schemaLabel     = "schema"
	classesLabel    = "classes"
	scalerLabel     = "scaler"
	networkLabel    = "network"
	validationLabel = "validation"
)

// Validation is the held-out set captured right after training.
// Both arrays have shape [n, num_classes].
type Validation struct {
	Logits [][]float64 `json:"logits"`
	Labels [][]float64 `json:"labels"`
}

// Len is the number of validation samples.
func (v *Validation) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Logits)
}

// Manifest describes a persisted bundle.
type Manifest struct {
	RunID   string     `json:"run_id"`
	Mode    model.Mode `json:"mode"`
	Skew    bool       `json:"skew_transform"`
	Hidden  []int      `json:"hidden"`
	Created time.Time  `json:"created"`
}

// Bundle holds everything the inference service needs.
type Bundle struct {
	Manifest   Manifest
	Schema     feature.Schema
	Classes    model.Classes
	Scaler     *scaler.MinMax
	Network    *net.Network
	Validation *Validation
}

// Validate checks that the components of the bundle fit together.
func (b *Bundle) Validate() error {
	if !b.Manifest.Mode.Valid() {
		return fmt.Errorf("unknown mode '%s': %w", b.Manifest.Mode, model.ModelLoadErr)
	}
	if b.Network == nil {
		return fmt.Errorf("missing network: %w", model.ModelLoadErr)
	}
	if b.Schema.Width() != b.Network.InputDim() {
		return fmt.Errorf("schema has %d columns but network expects %d: %w", b.Schema.Width(), b.Network.InputDim(), model.ModelLoadErr)
	}
	if len(b.Classes) != b.Network.NumClasses() {
		return fmt.Errorf("%d classes but network predicts %d: %w", len(b.Classes), b.Network.NumClasses(), model.ModelLoadErr)
	}
	if b.Scaler.Width() != b.Schema.Width() {
		return fmt.Errorf("scaler has %d columns but schema has %d: %w", b.Scaler.Width(), b.Schema.Width(), model.ModelLoadErr)
	}
	if b.Validation == nil {
		return nil
	}
	if len(b.Validation.Logits) != len(b.Validation.Labels) {
		return fmt.Errorf("%d validation logits but %d labels: %w", len(b.Validation.Logits), len(b.Validation.Labels), model.ModelLoadErr)
	}
	for i := range b.Validation.Logits {
		if len(b.Validation.Logits[i]) != len(b.Classes) || len(b.Validation.Labels[i]) != len(b.Classes) {
			return fmt.Errorf("validation row %d has shape [%d|%d] expected %d: %w",
				i, len(b.Validation.Logits[i]), len(b.Validation.Labels[i]), len(b.Classes), model.ModelLoadErr)
		}
	}
	return nil
}

func key(version int64, label string) storage.Key {
	return storage.Key{
		Version: version,
		Model:   Name,
		Label:   label,
	}
}

// Save stores the bundle under the given version.
func (b *Bundle) Save(p storage.Persistence, version int64) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid bundle: %w", err)
	}
	items := []struct {
		label string
		value interface{}
	}{
		{schemaLabel, b.Schema},
		{classesLabel, b.Classes},
		{scalerLabel, b.Scaler},
		{networkLabel, b.Network},
		{manifestLabel, b.Manifest},
	}
	if b.Validation != nil {
		items = append(items, struct {
			label string
			value interface{}
		}{validationLabel, b.Validation})
	}
	for _, item := range items {
		if err := p.Store(key(version, item.label), item.value); err != nil {
			return fmt.Errorf("could not store %s: %w", item.label, err)
		}
	}
	log.Info().
		Int64("version", version).
		Str("run", b.Manifest.RunID).
		Str("mode", string(b.Manifest.Mode)).
		Int("columns", b.Schema.Width()).
		Int("classes", len(b.Classes)).
		Int("validation", b.Validation.Len()).
		Msg("saved bundle")
	return nil
}

// Load restores the bundle of the given version.
// A missing validation set is allowed, any other missing or inconsistent part fails with model.ModelLoadErr.
func Load(p storage.Persistence, version int64) (*Bundle, error) {
	b := &Bundle{Scaler: scaler.New()}
	for label, value := range map[string]interface{}{
		manifestLabel: &b.Manifest,
		schemaLabel:   &b.Schema,
		classesLabel:  &b.Classes,
		scalerLabel:   b.Scaler,
	} {
		if err := p.Load(key(version, label), value); err != nil {
			return nil, fmt.Errorf("could not load %s: %v: %w", label, err, model.ModelLoadErr)
		}
	}

	var raw json.RawMessage
	if err := p.Load(key(version, networkLabel), &raw); err != nil {
		return nil, fmt.Errorf("could not load %s: %v: %w", networkLabel, err, model.ModelLoadErr)
	}
	network, err := net.Load(raw, b.Schema.Width(), len(b.Classes))
	if err != nil {
		return nil, err
	}
	b.Network = network

	validation := new(Validation)
	err = p.Load(key(version, validationLabel), validation)
	switch {
	case err == nil:
		b.Validation = validation
	case errors.Is(err, storage.NotFoundErr):
		log.Warn().Int64("version", version).Msg("no validation set found")
	default:
		return nil, fmt.Errorf("could not load %s: %v: %w", validationLabel, err, model.ModelLoadErr)
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}
