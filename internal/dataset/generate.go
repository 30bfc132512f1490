package dataset

import (
	"math"
	"math/rand"
	"sort"

	"github.com/drakos74/geotextile/internal/model"
)

// Profile is the typical property vector of a material type, in model.Features order.
type Profile [9]float64

// Profiles are the reference properties of the known material types.
var Profiles = map[string]Profile{
	"Recycled PET Nonwoven": {22, 1400, 1.1, 93, 45, 0, 70, 65, 28},
	"PET Woven":             {150, 2500, 0.3, 80, 0, 0, 80, 180, 60},
	"Hybrid (PP+Coir)":      {45, 900, 0.8, 85, 10, 50, 50, 120, 80},
	"PP Woven":              {80, 1200, 0.2, 78, 0, 0, 75, 90, 45},
	"Glass Fiber Composite": {250, 3000, 0.1, 70, 0, 0, 95, 650, 300},
	"PP Nonwoven":           {15, 1800, 1.6, 92, 0, 0, 65, 80, 35},
	"Coir Woven":            {25, 500, 1.8, 80, 0, 100, 30, 70, 90},
	"PLA Nonwoven":          {12, 700, 1.3, 88, 0, 95, 40, 160, 50},
	"HDPE Grid":             {120, 400, 2.5, 40, 20, 0, 90, 250, 120},
}

// Spread is the relative standard deviation of the generated properties.
var Spread = 0.05

var percentages = map[model.Feature]bool{
	model.Filtration: true,
	model.Recycled:   true,
	model.Biobased:   true,
	model.UV:         true,
}

// Generate draws perClass samples around every profile.
// Zero properties stay zero and percentages stay within [0,100].
func Generate(perClass int, seed int64) Dataset {
	rnd := rand.New(rand.NewSource(seed))
	types := make([]string, 0, len(Profiles))
	for t := range Profiles {
		types = append(types, t)
	}
	sort.Strings(types)

	ds := Dataset{Samples: make([]Sample, 0, perClass*len(types))}
	for _, t := range types {
		profile := Profiles[t]
		for i := 0; i < perClass; i++ {
			values := make([]float64, len(profile))
			for j, mu := range profile {
				v := mu * (1 + Spread*rnd.NormFloat64())
				if percentages[model.Features[j]] {
					v = math.Min(v, 100)
				}
				values[j] = math.Max(v, 0)
			}
			vector, _ := model.NewFeatureVector(values)
			ds.Samples = append(ds.Samples, Sample{Features: vector, Type: t})
		}
	}
	return ds
}
