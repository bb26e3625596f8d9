// Package dedup partitions batches into unique and duplicate items by normalized URL and
// title fingerprint, within the batch and against persisted content.
package dedup

import (
	"context"
	"fmt"
	"log/slog"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// Identity is the pair of keys used to recognise an item.
type Identity struct {
	URLKey      string
	Fingerprint string
}

// IdentityOf computes the identity keys of an item.
func IdentityOf(item domain.ContentItem) Identity {
	return Identity{
		URLKey:      NormalizeURL(item.URL),
		Fingerprint: Fingerprint(item.Title, item.Source),
	}
}

// Deduplicator checks items against each other and against the identity index.
type Deduplicator struct {
	index  ports.IdentityIndex
	logger *slog.Logger
}

// New builds a deduplicator; a nil index limits checks to the batch itself.
func New(index ports.IdentityIndex, logger *slog.Logger) *Deduplicator {
	return &Deduplicator{index: index, logger: logger}
}

// FilterDuplicates splits items; the first occurrence in the slice wins. When the store
// lookup fails the batch-only partition is returned together with the error.
func (d *Deduplicator) FilterDuplicates(ctx context.Context, items []domain.ScoredItem) (domain.Partition, error) {
	contents := make([]domain.ContentItem, len(items))
	for i, it := range items {
		contents[i] = it.Item
	}

	batch, err := d.NewBatch(ctx, contents)

	var part domain.Partition
	for _, it := range items {
		if _, ok := batch.Admit(it.Item); ok {
			part.Unique = append(part.Unique, it)
		} else {
			part.Duplicates = append(part.Duplicates, it)
		}
	}
	return part, err
}

// Batch tracks identities seen so far in one run.
type Batch struct {
	known    ports.KnownIdentities
	urls     map[string]struct{}
	prints   map[string]struct{}
	admitted int
}

// NewBatch preloads persisted identities for the candidate items. On lookup failure the
// returned batch still deduplicates within the run.
func (d *Deduplicator) NewBatch(ctx context.Context, candidates []domain.ContentItem) (*Batch, error) {
	b := &Batch{
		known:  ports.KnownIdentities{URLKeys: map[string]bool{}, Fingerprints: map[string]bool{}},
		urls:   map[string]struct{}{},
		prints: map[string]struct{}{},
	}
	if d.index == nil || len(candidates) == 0 {
		return b, nil
	}

	urlKeys := make([]string, 0, len(candidates))
	prints := make([]string, 0, len(candidates))
	for _, item := range candidates {
		id := IdentityOf(item)
		if id.URLKey != "" {
			urlKeys = append(urlKeys, id.URLKey)
		}
		if id.Fingerprint != "" {
			prints = append(prints, id.Fingerprint)
		}
	}

	known, err := d.index.KnownIdentities(ctx, urlKeys, prints)
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("identity lookup failed, deduplicating within batch only", "error", err)
		}
		return b, fmt.Errorf("lookup known identities: %w", err)
	}
	if known.URLKeys != nil {
		b.known.URLKeys = known.URLKeys
	}
	if known.Fingerprints != nil {
		b.known.Fingerprints = known.Fingerprints
	}
	return b, nil
}

// Admit records the item and reports whether it is new to both the batch and the store.
func (b *Batch) Admit(item domain.ContentItem) (Identity, bool) {
	id := IdentityOf(item)

	if id.URLKey != "" {
		if _, seen := b.urls[id.URLKey]; seen || b.known.URLKeys[id.URLKey] {
			return id, false
		}
	}
	if id.Fingerprint != "" {
		if _, seen := b.prints[id.Fingerprint]; seen || b.known.Fingerprints[id.Fingerprint] {
			return id, false
		}
	}

	if id.URLKey != "" {
		b.urls[id.URLKey] = struct{}{}
	}
	if id.Fingerprint != "" {
		b.prints[id.Fingerprint] = struct{}{}
	}
	b.admitted++
	return id, true
}

// Admitted reports how many items were accepted as unique.
func (b *Batch) Admitted() int {
	return b.admitted
}
