package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
)

// MemoryStore keeps workflows in process memory.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]storedDoc
	closed bool
}

// storedDoc holds the encoded workflow, so callers never share state with
// the store.
type storedDoc struct {
	data      []byte
	revision  int
	updatedAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]storedDoc)}
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, name string, w agentgraph.Workflow) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode workflow: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	m.docs[name] = storedDoc{
		data:      data,
		revision:  m.docs[name].revision + 1,
		updatedAt: time.Now().UTC(),
	}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, name string) (agentgraph.Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return agentgraph.Workflow{}, ErrStoreClosed
	}
	doc, ok := m.docs[name]
	if !ok {
		return agentgraph.Workflow{}, ErrNotFound
	}
	return decode(doc.data)
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	infos := make([]Info, 0, len(m.docs))
	for name, doc := range m.docs {
		infos = append(infos, Info{
			Name:      name,
			Revision:  doc.revision,
			UpdatedAt: doc.updatedAt,
			Size:      int64(len(doc.data)),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.docs, name)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.docs = nil
	return nil
}

// Len returns the number of stored workflows.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func decode(data []byte) (agentgraph.Workflow, error) {
	var w agentgraph.Workflow
	if err := json.Unmarshal(data, &w); err != nil {
		return agentgraph.Workflow{}, fmt.Errorf("decode workflow: %w", err)
	}
	return w, nil
}
