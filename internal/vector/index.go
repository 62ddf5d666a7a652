// Package vector implements the in-memory similarity index used for
// duplicate detection. The index is session-scoped: it starts empty on every
// run and only ever grows.
package vector

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDimensionMismatch is returned when a vector does not match the index
// dimension.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Neighbor is one nearest-neighbor search hit.
type Neighbor struct {
	Slot     int
	Distance float32
}

// FlatIndex is an append-only flat index over fixed-dimension vectors with
// exhaustive squared-Euclidean search. Slots are assigned sequentially in
// insertion order and are never reused or removed.
type FlatIndex struct {
	dim     int
	vectors [][]float32
}

// NewFlatIndex creates an empty index for vectors of the given dimension.
func NewFlatIndex(dim int) *FlatIndex {
	return &FlatIndex{dim: dim}
}

// Len returns the number of stored vectors.
func (ix *FlatIndex) Len() int {
	return len(ix.vectors)
}

// Dimensions returns the index's vector dimension.
func (ix *FlatIndex) Dimensions() int {
	return ix.dim
}

// Insert appends a vector and returns its slot.
func (ix *FlatIndex) Insert(vec []float32) (int, error) {
	if len(vec) != ix.dim {
		return 0, fmt.Errorf("%w: got %d, index dimension is %d", ErrDimensionMismatch, len(vec), ix.dim)
	}
	stored := make([]float32, ix.dim)
	copy(stored, vec)
	ix.vectors = append(ix.vectors, stored)
	return len(ix.vectors) - 1, nil
}

// Search returns up to k nearest neighbors by squared Euclidean distance,
// sorted ascending. An empty index yields an empty result and no error.
func (ix *FlatIndex) Search(vec []float32, k int) ([]Neighbor, error) {
	if len(ix.vectors) == 0 || k <= 0 {
		return nil, nil
	}
	if len(vec) != ix.dim {
		return nil, fmt.Errorf("%w: got %d, index dimension is %d", ErrDimensionMismatch, len(vec), ix.dim)
	}

	neighbors := make([]Neighbor, len(ix.vectors))
	for slot, stored := range ix.vectors {
		neighbors[slot] = Neighbor{Slot: slot, Distance: squaredL2(vec, stored)}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}
		return neighbors[i].Slot < neighbors[j].Slot
	})

	if k < len(neighbors) {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
