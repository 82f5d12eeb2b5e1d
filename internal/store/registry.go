package store

import (
	"covidwatch/internal/components/assert"
	"covidwatch/internal/components/chrono"
	"covidwatch/internal/components/telemetry"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// DefaultRoot is the directory stores live in when none is configured.
const DefaultRoot = "data"

const storeExt = ".json"

var ErrInvalidIdentifier = errors.New("invalid store identifier")

// Registry hands out one Store per identifier for the lifetime of the process.
// Entries are never evicted.
type Registry struct {
	root  string
	clock chrono.API
	tel   telemetry.API

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates a registry for stores under root, an empty root means
// DefaultRoot.
func NewRegistry(root string, clock chrono.API, tel telemetry.API) *Registry {
	assert.NotNil("clock", clock)
	assert.NotNil("telemetry", tel)

	if root == "" {
		root = DefaultRoot
	}
	return &Registry{
		root:   root,
		clock:  clock,
		tel:    tel,
		stores: map[string]*Store{},
	}
}

// Root is the directory backing files are resolved against.
func (r *Registry) Root() string {
	return r.root
}

func validateIdentifier(identifier string) error {
	if identifier == "" ||
		identifier == "." ||
		strings.Contains(identifier, "..") ||
		strings.ContainsAny(identifier, `/\`) ||
		strings.ContainsRune(identifier, filepath.Separator) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, identifier)
	}
	return nil
}

// PathFor resolves the backing file of a store identifier.
func (r *Registry) PathFor(identifier string) (string, error) {
	err := validateIdentifier(identifier)
	if err != nil {
		return "", err
	}
	return filepath.Abs(filepath.Join(r.root, identifier+storeExt))
}

// Get returns the store for identifier, opening (and bootstrapping) its backing
// file on first use. Later calls return the same instance without touching disk.
func (r *Registry) Get(identifier string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.stores[identifier]
	if ok {
		return existing, nil
	}

	path, err := r.PathFor(identifier)
	if err != nil {
		return nil, err
	}
	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}

	s, err := Open(path, r.clock, r.tel)
	if err != nil {
		return nil, err
	}
	r.stores[identifier] = s
	return s, nil
}

// Identifiers returns the identifiers opened so far, sorted.
func (r *Registry) Identifiers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
