package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreKeepsTextsAlignedWithSlots(t *testing.T) {
	store := NewSessionStore(2)

	slotA, err := store.Add("first email", []float32{0, 0})
	require.NoError(t, err)
	slotB, err := store.Add("second email", []float32{1, 0})
	require.NoError(t, err)

	textA, err := store.TextAt(slotA)
	require.NoError(t, err)
	assert.Equal(t, "first email", textA)

	textB, err := store.TextAt(slotB)
	require.NoError(t, err)
	assert.Equal(t, "second email", textB)
}

func TestSessionStoreRejectsWrongDimensionWithoutGrowing(t *testing.T) {
	store := NewSessionStore(2)

	_, err := store.Add("bad", []float32{1, 2, 3})
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())

	_, err = store.TextAt(0)
	assert.Error(t, err)
}

func TestSessionStoreTextAtOutOfRange(t *testing.T) {
	store := NewSessionStore(2)
	_, err := store.TextAt(-1)
	assert.Error(t, err)
	_, err = store.TextAt(0)
	assert.Error(t, err)
}

func TestSessionStoreSearchFindsNearest(t *testing.T) {
	store := NewSessionStore(2)
	_, err := store.Add("far", []float32{10, 0})
	require.NoError(t, err)
	_, err = store.Add("near", []float32{1, 0})
	require.NoError(t, err)

	neighbors, err := store.Search([]float32{0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)

	text, err := store.TextAt(neighbors[0].Slot)
	require.NoError(t, err)
	assert.Equal(t, "near", text)
}
