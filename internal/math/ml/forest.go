package ml

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"

	randomforest "github.com/malaschitz/randomForest"
)

// RandomForest is a tree ensemble classifier.
type RandomForest struct {
	trees  int
	forest *randomforest.Forest
}

// NewForest creates a forest of n trees.
func NewForest(n int) *RandomForest {
	return &RandomForest{
		trees: n,
	}
}

// Train fits the forest on the given rows and class indexes and returns the feature importance.
func (rf *RandomForest) Train(xData [][]float64, yData []int) ([]float64, error) {
	if len(xData) == 0 || len(xData) != len(yData) {
		return nil, fmt.Errorf("invalid training data [ %d | %d ]", len(xData), len(yData))
	}
	if rf.trees <= 0 {
		return nil, fmt.Errorf("invalid number of trees %d", rf.trees)
	}
	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: xData, Class: yData}
	forest.Train(rf.trees)
	rf.forest = forest
	log.Debug().Int("trees", rf.trees).Int("samples", len(xData)).Msg("trained forest")
	return forest.FeatureImportance, nil
}

// Predict returns the vote share of every class for the given row.
func (rf *RandomForest) Predict(xData []float64) ([]float64, error) {
	if rf.forest == nil {
		return nil, fmt.Errorf("forest is not trained")
	}
	return rf.forest.Vote(xData), nil
}

// Accuracy is the share of rows whose most voted class is the expected one.
func (rf *RandomForest) Accuracy(xData [][]float64, yData []int) (float64, error) {
	if len(xData) == 0 || len(xData) != len(yData) {
		return 0, fmt.Errorf("invalid evaluation data [ %d | %d ]", len(xData), len(yData))
	}
	hits := 0
	for i, x := range xData {
		votes, err := rf.Predict(x)
		if err != nil {
			return 0, err
		}
		if len(votes) > 0 && floats.MaxIdx(votes) == yData[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(xData)), nil
}
