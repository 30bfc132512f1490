package train

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Evaluation holds the test metrics of a classifier.
type Evaluation struct {
	Samples  int     `json:"samples"`
	Accuracy float64 `json:"accuracy"`
	// F1 is the support weighted f1 score over the classes.
	F1   float64 `json:"f1"`
	RMSE float64 `json:"rmse"`
}

// Evaluate compares the predicted distributions with the one-hot truth.
func Evaluate(truth, probs [][]float64) (Evaluation, error) {
	if len(truth) == 0 || len(truth) != len(probs) {
		return Evaluation{}, fmt.Errorf("invalid evaluation set [ %d | %d ]", len(truth), len(probs))
	}
	numClasses := len(truth[0])
	tp := make([]float64, numClasses)
	fp := make([]float64, numClasses)
	support := make([]float64, numClasses)

	hits := 0
	se := 0.0
	for i := range truth {
		if len(truth[i]) != numClasses || len(probs[i]) != numClasses {
			return Evaluation{}, fmt.Errorf("row %d has shape [%d|%d] expected %d", i, len(truth[i]), len(probs[i]), numClasses)
		}
		actual := floats.MaxIdx(truth[i])
		predicted := floats.MaxIdx(probs[i])
		support[actual]++
		if actual == predicted {
			hits++
			tp[actual]++
		} else {
			fp[predicted]++
		}
		d := make([]float64, numClasses)
		floats.SubTo(d, truth[i], probs[i])
		se += floats.Dot(d, d)
	}

	n := float64(len(truth))
	f1 := 0.0
	for c := range support {
		if support[c] == 0 {
			continue
		}
		precision := 0.0
		if tp[c]+fp[c] > 0 {
			precision = tp[c] / (tp[c] + fp[c])
		}
		recall := tp[c] / support[c]
		if precision+recall > 0 {
			f1 += support[c] * 2 * precision * recall / (precision + recall)
		}
	}

	return Evaluation{
		Samples:  len(truth),
		Accuracy: float64(hits) / n,
		F1:       f1 / n,
		RMSE:     math.Sqrt(se / (n * float64(numClasses))),
	}, nil
}
