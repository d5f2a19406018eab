// Package store persists named workflow documents.
package store

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
)

// Store persists workflows under a name.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores w under name, replacing any previous version and
	// bumping the revision.
	Save(ctx context.Context, name string, w agentgraph.Workflow) error

	// Load retrieves the workflow stored under name.
	// Returns ErrNotFound if there is none.
	Load(ctx context.Context, name string) (agentgraph.Workflow, error)

	// List returns metadata for every stored workflow, ordered by name.
	// Returns an empty slice (not an error) for an empty store.
	List(ctx context.Context) ([]Info, error)

	// Delete removes the workflow stored under name.
	// Returns nil if there is none.
	Delete(ctx context.Context, name string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info describes a stored workflow without loading it.
type Info struct {
	Name      string    `json:"name"`
	Revision  int       `json:"revision"`
	UpdatedAt time.Time `json:"updatedAt"`
	Size      int64     `json:"size"`
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates no workflow is stored under the name.
	ErrNotFound = errors.New("workflow not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("workflow store closed")

	// ErrInvalidName indicates a blank document name.
	ErrInvalidName = errors.New("invalid workflow name")
)

// checkName rejects blank names and names that cannot be a single URL
// path segment.
func checkName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsRune(name, '/') {
		return ErrInvalidName
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return ErrInvalidName
	}
	return nil
}
