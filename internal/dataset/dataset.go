package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/drakos74/geotextile/internal/model"
)

// TypeColumn is the label column of the dataset.
const TypeColumn = "Type"

// Sample is one labelled material.
type Sample struct {
	Features model.FeatureVector
	Type     string
}

// Dataset is an ordered set of samples.
type Dataset struct {
	Samples []Sample
}

// Len returns the number of samples.
func (ds Dataset) Len() int {
	return len(ds.Samples)
}

// X returns the raw feature rows.
func (ds Dataset) X() [][]float64 {
	x := make([][]float64, len(ds.Samples))
	for i, s := range ds.Samples {
		x[i] = s.Features.Values()
	}
	return x
}

// Labels returns the label of every sample.
func (ds Dataset) Labels() []string {
	y := make([]string, len(ds.Samples))
	for i, s := range ds.Samples {
		y[i] = s.Type
	}
	return y
}

// Classes returns the sorted unique labels of the dataset.
func Classes(ds Dataset) model.Classes {
	unique := make(map[string]struct{})
	for _, s := range ds.Samples {
		unique[s.Type] = struct{}{}
	}
	classes := make([]string, 0, len(unique))
	for c := range unique {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return classes
}

// Header is the csv header of the dataset.
func Header() []string {
	return append(model.FeatureNames(), TypeColumn)
}

// Read decodes a csv dataset. The columns are matched by header name.
func Read(r io.Reader) (Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return Dataset{}, fmt.Errorf("could not read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	columns := make([]int, 0, len(model.Features))
	for _, f := range model.Features {
		i, ok := index[string(f)]
		if !ok {
			return Dataset{}, fmt.Errorf("missing column '%s'", f)
		}
		columns = append(columns, i)
	}
	label, ok := index[TypeColumn]
	if !ok {
		return Dataset{}, fmt.Errorf("missing column '%s'", TypeColumn)
	}

	ds := Dataset{Samples: make([]Sample, 0)}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return Dataset{}, fmt.Errorf("could not read line %d: %w", line, err)
		}
		if len(record) != len(header) {
			return Dataset{}, fmt.Errorf("line %d has %d columns but header has %d", line, len(record), len(header))
		}
		values := make([]float64, len(columns))
		for j, c := range columns {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[c]), 64)
			if err != nil {
				return Dataset{}, fmt.Errorf("line %d column '%s': %w", line, header[c], err)
			}
			values[j] = v
		}
		vector, err := model.NewFeatureVector(values)
		if err != nil {
			return Dataset{}, fmt.Errorf("line %d: %w", line, err)
		}
		t := strings.TrimSpace(record[label])
		if t == "" {
			return Dataset{}, fmt.Errorf("line %d has no type", line)
		}
		ds.Samples = append(ds.Samples, Sample{Features: vector, Type: t})
	}
	return ds, nil
}

// ReadCSV loads the dataset from the given file.
func ReadCSV(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("could not open dataset: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Write encodes the dataset as csv.
func Write(w io.Writer, ds Dataset) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header()); err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}
	for _, s := range ds.Samples {
		record := make([]string, 0, len(model.Features)+1)
		for _, v := range s.Features.Values() {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		record = append(record, s.Type)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("could not write sample: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSV stores the dataset in the given file.
func WriteCSV(path string, ds Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create dataset file: %w", err)
	}
	defer f.Close()
	return Write(f, ds)
}

// Splits holds the train, validation and test parts of a dataset.
type Splits struct {
	Train      Dataset
	Validation Dataset
	Test       Dataset
}

// Split shuffles the dataset with the given seed and cuts it into train, validation and test parts.
func Split(ds Dataset, train, val, test float64, seed int64) (Splits, error) {
	if train <= 0 || val < 0 || test < 0 {
		return Splits{}, fmt.Errorf("invalid split fractions [%v,%v,%v]", train, val, test)
	}
	if sum := train + val + test; sum < 0.999 || sum > 1.001 {
		return Splits{}, fmt.Errorf("split fractions must add up to 1 but got %v", sum)
	}
	n := ds.Len()
	order := rand.New(rand.NewSource(seed)).Perm(n)

	nTrain := int(math.Round(float64(n) * train))
	nVal := int(math.Round(float64(n) * val))
	if test == 0 || nTrain+nVal > n {
		nVal = n - nTrain
	}
	pick := func(idx []int) Dataset {
		part := Dataset{Samples: make([]Sample, len(idx))}
		for i, j := range idx {
			part.Samples[i] = ds.Samples[j]
		}
		return part
	}
	return Splits{
		Train:      pick(order[:nTrain]),
		Validation: pick(order[nTrain : nTrain+nVal]),
		Test:       pick(order[nTrain+nVal:]),
	}, nil
}
