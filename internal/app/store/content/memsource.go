// internal/app/store/content/memsource.go
package content

import (
	"context"
	"sync"

	"github.com/dalemusser/stratasite/internal/domain/models"
)

// MemorySource serves queries from documents held in memory.
// It backs the markdown directory source and tests.
type MemorySource struct {
	name string

	mu   sync.RWMutex
	docs []models.Document
}

// NewMemorySource returns a source named name holding docs.
func NewMemorySource(name string, docs ...models.Document) *MemorySource {
	m := &MemorySource{name: name}
	m.Replace(docs)
	return m
}

// Name implements Source.
func (m *MemorySource) Name() string { return m.name }

// Replace swaps the whole document set.
func (m *MemorySource) Replace(docs []models.Document) {
	cp := make([]models.Document, len(docs))
	copy(cp, docs)
	m.mu.Lock()
	m.docs = cp
	m.mu.Unlock()
}

// Put inserts d or replaces the document with the same _id.
// Writes copy the slice so in-flight queries keep a stable view.
func (m *MemorySource) Put(d models.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := make([]models.Document, 0, len(m.docs)+1)
	replaced := false
	for _, existing := range m.docs {
		if existing.ID() == d.ID() {
			next = append(next, d)
			replaced = true
			continue
		}
		next = append(next, existing)
	}
	if !replaced {
		next = append(next, d)
	}
	m.docs = next
}

// Delete removes the document with the given _id.
func (m *MemorySource) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := make([]models.Document, 0, len(m.docs))
	for _, existing := range m.docs {
		if existing.ID() != id {
			next = append(next, existing)
		}
	}
	m.docs = next
}

// Len returns the number of stored documents, drafts included.
func (m *MemorySource) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// Query implements Source.
func (m *MemorySource) Query(ctx context.Context, q Query, params Params, preview bool) ([]models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	docs := m.docs
	m.mu.RUnlock()
	return Evaluate(docs, q, params, preview), nil
}

// Ping implements Source.
func (m *MemorySource) Ping(ctx context.Context) error {
	return ctx.Err()
}
