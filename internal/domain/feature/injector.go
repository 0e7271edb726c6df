package feature

import "fmt"

// Activation reports what one Activate call did.
type Activation struct {
	// Features is the merged, dependency-ordered feature sequence.
	Features []*Feature
	// Injected lists resources appended to the document by this call.
	Injected []*Resource
	// Skipped lists resources that were already present.
	Skipped []*Resource
}

// Injector places feature resources into one document, each at most once.
// Give every document its own Injector; the injected set is per document.
type Injector struct {
	doc      Document
	provider Provider
	injected map[ResourceID]bool
	order    []ResourceID
}

// NewInjector creates an injector that places features registered in p into
// doc. A nil doc is allowed so headless callers can construct one, but every
// activation on it fails. A nil p holds no features.
func NewInjector(doc Document, p Provider) *Injector {
	if p == nil {
		p = NewRegistry()
	}
	return &Injector{
		doc:      doc,
		provider: p,
		injected: make(map[ResourceID]bool),
		order:    make([]ResourceID, 0),
	}
}

// Activate injects the resources of the requested features and of their
// dependency closures. Dependencies come first, and each resource is injected
// at most once over the injector's lifetime.
//
// Every feature in the closure must be the one the injector's provider holds
// under its name; otherwise an *UnknownFeatureError is returned and nothing
// is injected.
//
// If the document rejects an element part way through, the returned error
// wraps ErrInjection and the Activation lists what was injected before the
// failure. Those resources stay in the document.
func (i *Injector) Activate(features ...*Feature) (*Activation, error) {
	for _, f := range features {
		if f == nil {
			return nil, ErrNilFeature
		}
	}
	if i.doc == nil {
		return nil, fmt.Errorf("%w: no document available", ErrInjection)
	}

	closure := ResolveAll(features...)
	if err := i.checkRegistered(closure); err != nil {
		return nil, err
	}

	result := &Activation{
		Features: closure,
		Injected: []*Resource{},
		Skipped:  []*Resource{},
	}

	for _, f := range result.Features {
		for _, r := range f.Resources() {
			if i.injected[r.ID()] {
				result.Skipped = append(result.Skipped, r)
				continue
			}
			if err := i.inject(r); err != nil {
				return result, fmt.Errorf("%w: %s (feature %s): %w", ErrInjection, r.Key(), f.Name(), err)
			}
			i.injected[r.ID()] = true
			i.order = append(i.order, r.ID())
			result.Injected = append(result.Injected, r)
		}
	}

	return result, nil
}

// ActivateNames looks up every name in the provider before injecting
// anything, so an unknown name leaves the document untouched.
func (i *Injector) ActivateNames(names ...string) (*Activation, error) {
	features, err := i.provider.LookupAll(names...)
	if err != nil {
		return nil, err
	}
	return i.Activate(features...)
}

// checkRegistered fails on the first feature the provider does not hold. A
// different feature registered under the same name does not count.
func (i *Injector) checkRegistered(features []*Feature) error {
	for _, f := range features {
		registered, err := i.provider.Lookup(f.Name())
		if err != nil || registered != f {
			return &UnknownFeatureError{Name: f.Name()}
		}
	}
	return nil
}

// inject creates, fills and appends the element for one resource.
func (i *Injector) inject(r *Resource) error {
	el, err := i.doc.CreateElement(r.Kind())
	if err != nil {
		return fmt.Errorf("create %s element: %w", r.Kind(), err)
	}
	if keyed, ok := i.doc.(KeyedDocument); ok {
		if err := keyed.SetResourceKey(el, r.ID()); err != nil {
			return fmt.Errorf("label element: %w", err)
		}
	}
	if err := i.doc.SetContent(el, r.Payload()); err != nil {
		return fmt.Errorf("set content: %w", err)
	}
	if err := i.doc.Append(el); err != nil {
		return fmt.Errorf("append: %w", err)
	}
	return nil
}

// Adopt records resources the document already carries, such as those
// found in a page read from disk, so activations skip them.
func (i *Injector) Adopt(ids ...ResourceID) {
	for _, id := range ids {
		if i.injected[id] {
			continue
		}
		i.injected[id] = true
		i.order = append(i.order, id)
	}
}

// IsInjected reports whether the resource identity is already in the document.
func (i *Injector) IsInjected(id ResourceID) bool {
	return i.injected[id]
}

// Injected returns the injected resource identities in injection order.
func (i *Injector) Injected() []ResourceID {
	result := make([]ResourceID, len(i.order))
	copy(result, i.order)
	return result
}
