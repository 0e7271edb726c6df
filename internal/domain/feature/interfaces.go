package feature

// Provider defines read-only access to registered features. The injector and
// the application layer depend on this instead of the concrete Registry.
type Provider interface {
	// Lookup returns the feature registered under name.
	// Returns an *UnknownFeatureError if there is none.
	Lookup(name string) (*Feature, error)

	// LookupAll resolves every name, failing on the first unknown one.
	LookupAll(names ...string) ([]*Feature, error)

	// List returns all features in registration order.
	List() []*Feature

	// ByCategory returns the features of one category.
	ByCategory(c Category) []*Feature
}

// Compile-time check that Registry implements Provider.
var _ Provider = (*Registry)(nil)

// Element is an opaque handle to a node created by a Document.
type Element any

// Document is the hosting page resources are injected into.
type Document interface {
	// CreateElement creates a detached element able to host a resource of kind.
	CreateElement(kind Kind) (Element, error)

	// SetContent replaces the element's text content with payload.
	SetContent(el Element, payload string) error

	// Append attaches the element to the live document.
	Append(el Element) error
}

// KeyedDocument is implemented by documents that can label elements with the
// resource key they host.
type KeyedDocument interface {
	Document
	SetResourceKey(el Element, id ResourceID) error
}
