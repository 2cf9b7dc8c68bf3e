package catalog

import (
	"encoding/json"
	"fmt"
	"sync"

	digest "github.com/opencontainers/go-digest"
	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// Builder is the single owner of both catalogs (attributes and metrics): a
// mutex-guarded coordinator rather than a channel-per-writer actor, since
// the critical section here is O(1) map lookups plus an append, cheaper
// and simpler than message passing.
type Builder struct {
	mu sync.Mutex

	attributes  []AttributeRecord
	attrIndex   map[digest.Digest]int
	attrCanon   map[digest.Digest][]byte

	metrics     []MetricRecord
	metricIndex map[digest.Digest]int
	metricCanon map[digest.Digest][]byte
}

// New builds an empty Builder.
func New() *Builder {
	return &Builder{
		attrIndex:   make(map[digest.Digest]int),
		attrCanon:   make(map[digest.Digest][]byte),
		metricIndex: make(map[digest.Digest]int),
		metricCanon: make(map[digest.Digest][]byte),
	}
}

// InsertAttribute returns the catalog index for rec, inserting it at the
// next available index if no structurally-equal record (per the canonical
// comparator) has been inserted yet. Insertion is idempotent: inserting
// the same canonical record twice returns the same index both times.
func (b *Builder) InsertAttribute(rec AttributeRecord) (int, error) {
	canon, d, err := canonicalize(rec)
	if err != nil {
		return 0, fmt.Errorf("canonicalizing attribute %q: %w", rec.ID, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if idx, ok := b.attrIndex[d]; ok && bytesEqual(b.attrCanon[d], canon) {
		return idx, nil
	}

	idx := len(b.attributes)
	b.attributes = append(b.attributes, rec)
	b.attrIndex[d] = idx
	b.attrCanon[d] = canon
	return idx, nil
}

// InsertMetric is InsertAttribute's counterpart for the metrics catalog.
func (b *Builder) InsertMetric(rec MetricRecord) (int, error) {
	canon, d, err := canonicalize(rec)
	if err != nil {
		return 0, fmt.Errorf("canonicalizing metric %q: %w", rec.Name, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if idx, ok := b.metricIndex[d]; ok && bytesEqual(b.metricCanon[d], canon) {
		return idx, nil
	}

	idx := len(b.metrics)
	b.metrics = append(b.metrics, rec)
	b.metricIndex[d] = idx
	b.metricCanon[d] = canon
	return idx, nil
}

// Attributes returns the attribute catalog in first-insertion order.
func (b *Builder) Attributes() []AttributeRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]AttributeRecord, len(b.attributes))
	copy(out, b.attributes)
	return out
}

// Metrics returns the metric catalog in first-insertion order.
func (b *Builder) Metrics() []MetricRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]MetricRecord, len(b.metrics))
	copy(out, b.metrics)
	return out
}

// canonicalize marshals rec to JSON and runs it through RFC 8785 JSON
// canonicalization, the same canonicalize-then-digest idiom used to
// content-address wire payloads elsewhere in the stack, applied here to
// catalog entries instead.
func canonicalize(rec any) ([]byte, digest.Digest, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, "", err
	}
	canon, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, "", err
	}
	return canon, digest.FromBytes(canon), nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
