package model

// Mode defines how a deployment encodes its input.
type Mode string

const (
	// ClusterMode one-hot encodes the cluster of each property.
	ClusterMode Mode = "clusters"
	// FeatureMode uses the raw property values.
	FeatureMode Mode = "features"
)

// Valid checks if the mode is known.
func (m Mode) Valid() bool {
	return m == ClusterMode || m == FeatureMode
}

// Request is a single classification request.
// Exactly one of Features or Clusters is expected.
type Request struct {
	Features []float64         `json:"features,omitempty"`
	Clusters map[string]string `json:"clusters,omitempty"`
}

// Prediction is the outcome of classifying one request.
type Prediction struct {
	Type          string    `json:"predicted_type"`
	Confidence    float64   `json:"confidence"`
	Description   string    `json:"description"`
	Probabilities []float64 `json:"-"`
}
