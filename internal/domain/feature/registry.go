package feature

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds features keyed by name. Add-ons, key maps, themes and modes
// share one namespace.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Feature
	order  []*Feature
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Feature),
		order:  make([]*Feature, 0),
	}
}

// Register adds f to the registry.
func (r *Registry) Register(f *Feature) error {
	if f == nil {
		return ErrNilFeature
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[f.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateName, f.Name())
	}
	r.byName[f.Name()] = f
	r.order = append(r.order, f)
	return nil
}

// Create builds a feature and registers it in one step.
func (r *Registry) Create(name string, category Category) (*Feature, error) {
	f, err := NewFeature(name, category)
	if err != nil {
		return nil, err
	}
	if err := r.Register(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Lookup returns the feature registered under name.
func (r *Registry) Lookup(name string) (*Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byName[name]
	if !ok {
		return nil, &UnknownFeatureError{Name: name}
	}
	return f, nil
}

// LookupAll resolves every name, failing on the first unknown one.
func (r *Registry) LookupAll(names ...string) ([]*Feature, error) {
	features := make([]*Feature, 0, len(names))
	for _, name := range names {
		f, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, nil
}

// List returns all features in registration order.
func (r *Registry) List() []*Feature {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Feature, len(r.order))
	copy(result, r.order)
	return result
}

// ByCategory returns the features of one category in registration order.
func (r *Registry) ByCategory(c Category) []*Feature {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Feature, 0)
	for _, f := range r.order {
		if f.Category() == c {
			result = append(result, f)
		}
	}
	return result
}

// Names returns all feature names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered features.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
