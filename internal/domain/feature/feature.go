package feature

import (
	"fmt"
	"regexp"
)

// Category groups features the way CodeMirror lays out its distribution.
type Category string

const (
	CategoryAddOn  Category = "addon"
	CategoryKeyMap Category = "keymap"
	CategoryTheme  Category = "theme"
	CategoryMode   Category = "mode"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{CategoryAddOn, CategoryKeyMap, CategoryTheme, CategoryMode}
}

// ParseCategory converts a string into a Category. Empty means addon.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryAddOn, nil
	}
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown feature category %q", s)
}

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ValidateName checks that name is usable as a registry key.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Feature is a named capability (add-on, key map, theme or mode) with the
// resources it loads and the features it needs loaded first.
type Feature struct {
	name         string
	category     Category
	description  string
	resources    []*Resource
	dependencies []*Feature
}

// NewFeature creates an unregistered feature.
func NewFeature(name string, category Category) (*Feature, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if category == "" {
		category = CategoryAddOn
	}
	return &Feature{
		name:         name,
		category:     category,
		resources:    []*Resource{},
		dependencies: []*Feature{},
	}, nil
}

// Name returns the feature's unique name.
func (f *Feature) Name() string {
	return f.name
}

// Category returns the feature category.
func (f *Feature) Category() Category {
	return f.category
}

// Description returns the human-readable description.
func (f *Feature) Description() string {
	return f.description
}

// Resources returns the resources in load order.
func (f *Feature) Resources() []*Resource {
	return f.resources
}

// Dependencies returns the direct dependencies in declaration order.
func (f *Feature) Dependencies() []*Feature {
	return f.dependencies
}

// WithDescription sets the description and returns the feature for chaining.
func (f *Feature) WithDescription(d string) *Feature {
	f.description = d
	return f
}

// AddResource appends a resource. Resources load in the order they are added.
func (f *Feature) AddResource(r *Resource) error {
	if r == nil {
		return ErrNilResource
	}
	f.resources = append(f.resources, r)
	return nil
}

// AddDependency records that other must be loaded before f. Adding the same
// dependency twice is a no-op. It fails if other is f or already depends on f.
func (f *Feature) AddDependency(other *Feature) error {
	if other == nil {
		return ErrNilFeature
	}
	if other == f {
		return fmt.Errorf("%w: %s -> %s", ErrCyclicDependency, f.name, other.name)
	}
	if other.DependsOn(f) {
		return fmt.Errorf("%w: %s -> %s -> ... -> %s", ErrCyclicDependency, f.name, other.name, f.name)
	}
	for _, existing := range f.dependencies {
		if existing == other {
			return nil
		}
	}
	f.dependencies = append(f.dependencies, other)
	return nil
}

// DependsOn reports whether target is reachable through f's dependencies.
func (f *Feature) DependsOn(target *Feature) bool {
	visited := make(map[*Feature]bool)

	var walk func(n *Feature) bool
	walk = func(n *Feature) bool {
		for _, dep := range n.dependencies {
			if dep == target {
				return true
			}
			if visited[dep] {
				continue
			}
			visited[dep] = true
			if walk(dep) {
				return true
			}
		}
		return false
	}

	return walk(f)
}

// Resolve returns the transitive dependencies of f followed by f itself.
// Every feature appears once, after all of its dependencies. Independent
// dependencies keep their declaration order.
func (f *Feature) Resolve() []*Feature {
	var order []*Feature
	f.appendClosure(&order, make(map[*Feature]bool))
	return order
}

// appendClosure does a depth-first post-order walk, skipping features
// already in seen.
func (f *Feature) appendClosure(order *[]*Feature, seen map[*Feature]bool) {
	if seen[f] {
		return
	}
	seen[f] = true
	for _, dep := range f.dependencies {
		dep.appendClosure(order, seen)
	}
	*order = append(*order, f)
}

// ResolveAll merges the closures of several features. Features already emitted
// by an earlier request are skipped, so the result is still dependency ordered.
func ResolveAll(features ...*Feature) []*Feature {
	var order []*Feature
	seen := make(map[*Feature]bool)
	for _, f := range features {
		if f == nil {
			continue
		}
		f.appendClosure(&order, seen)
	}
	return order
}

// Names returns the feature names in order.
func Names(features []*Feature) []string {
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.name
	}
	return names
}
