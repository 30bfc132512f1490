package model

import "fmt"

// Cluster is an ordinal bucket of a material property.
type Cluster string

const (
	C1 Cluster = "C1"
	C2 Cluster = "C2"
	C3 Cluster = "C3"
	C4 Cluster = "C4"
	C5 Cluster = "C5"
)

// Clusters lists the buckets in ascending order.
var Clusters = []Cluster{C1, C2, C3, C4, C5}

// ClusterAt returns the cluster for the given zero-based bucket index.
func ClusterAt(i int) Cluster {
	if i < 0 {
		return C1
	}
	if i >= len(Clusters) {
		return C5
	}
	return Clusters[i]
}

// Valid checks if the cluster is one of the known buckets.
func (c Cluster) Valid() bool {
	for _, cc := range Clusters {
		if c == cc {
			return true
		}
	}
	return false
}

// OneHotColumn returns the indicator column name for the cluster of the given column.
func OneHotColumn(column string, symbol string) string {
	return fmt.Sprintf("%s_%s", column, symbol)
}
