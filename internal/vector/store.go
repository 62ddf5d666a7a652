package vector

import (
	"fmt"
)

// SessionStore pairs the flat index with a parallel text store. Entry N of
// the text store always corresponds to slot N of the index; the single Add
// method is the only way to grow either, which keeps them from drifting.
type SessionStore struct {
	index *FlatIndex
	texts []string
}

// NewSessionStore creates an empty store for vectors of the given dimension.
func NewSessionStore(dim int) *SessionStore {
	return &SessionStore{index: NewFlatIndex(dim)}
}

// Add inserts a (text, vector) pair and returns the assigned slot.
func (s *SessionStore) Add(text string, vec []float32) (int, error) {
	slot, err := s.index.Insert(vec)
	if err != nil {
		return 0, err
	}
	s.texts = append(s.texts, text)
	return slot, nil
}

// Len returns the number of stored entries.
func (s *SessionStore) Len() int {
	return s.index.Len()
}

// Dimensions returns the store's vector dimension.
func (s *SessionStore) Dimensions() int {
	return s.index.Dimensions()
}

// TextAt returns the text stored at a slot.
func (s *SessionStore) TextAt(slot int) (string, error) {
	if slot < 0 || slot >= len(s.texts) {
		return "", fmt.Errorf("slot %d out of range (have %d entries)", slot, len(s.texts))
	}
	return s.texts[slot], nil
}

// Search returns up to k nearest neighbors of vec, closest first.
func (s *SessionStore) Search(vec []float32, k int) ([]Neighbor, error) {
	return s.index.Search(vec, k)
}
