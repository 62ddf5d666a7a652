// Package dedup combines the embedding encoder with the session similarity
// store to retrieve near-duplicate emails seen earlier in the same run.
package dedup

import (
	"context"
	"fmt"

	"github.com/ewfx/gaied-aivengers/internal/core"
	"github.com/ewfx/gaied-aivengers/internal/vector"
	"go.uber.org/zap"
)

// Detector implements core.DuplicateFinder. The distance threshold is in
// squared-Euclidean units over the configured encoder's vectors; the default
// of 0.7 is tuned for normalised 384-dimension embeddings and is not a
// universal constant.
type Detector struct {
	encoder   core.Embedder
	store     *vector.SessionStore
	logger    *zap.Logger
	threshold float32
	k         int
}

// NewDetector creates a detector over the given encoder and session store.
func NewDetector(encoder core.Embedder, store *vector.SessionStore, logger *zap.Logger, threshold float64, k int) *Detector {
	if k <= 0 {
		k = 1
	}
	return &Detector{
		encoder:   encoder,
		store:     store,
		logger:    logger,
		threshold: float32(threshold),
		k:         k,
	}
}

// Check returns stored texts within the threshold of text, closest first.
// The empty-store short-circuit runs before encoding: with nothing to
// compare against there is nothing to embed.
func (d *Detector) Check(ctx context.Context, text string) ([]string, error) {
	if d.store.Len() == 0 {
		return nil, nil
	}

	vec, err := d.encoder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}

	neighbors, err := d.store.Search(vec, d.k)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	var candidates []string
	for _, n := range neighbors {
		// Strictly below: a candidate at exactly the threshold is excluded.
		if n.Distance >= d.threshold {
			continue
		}
		candidate, err := d.store.TextAt(n.Slot)
		if err != nil {
			return nil, fmt.Errorf("text store out of sync with index: %w", err)
		}
		d.logger.Debug("Duplicate candidate retrieved",
			zap.Int("slot", n.Slot),
			zap.Float32("distance", n.Distance))
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// Remember embeds text and appends it to the session store so later emails
// can match against it. Callers must Check before Remember for the same
// email.
func (d *Detector) Remember(ctx context.Context, text string) error {
	vec, err := d.encoder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed text for indexing: %w", err)
	}
	if _, err := d.store.Add(text, vec); err != nil {
		return fmt.Errorf("failed to add text to session store: %w", err)
	}
	return nil
}
