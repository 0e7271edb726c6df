// Package feature implements the domain layer for CodeMirror feature loading.
//
// This package follows the same rules as the other domain packages:
//   - Contains only pure Go code with standard library imports
//   - Defines the entity types (Feature, Resource) and the Registry collection
//   - Implements dependency resolution, cycle detection and idempotent injection
//   - Has no knowledge of where payloads come from or what the document is
//
// # Core Types
//
// Resource is one script or style payload, identified by its bundle key and kind.
//
// Feature is a named add-on, key map, theme or mode. It owns an ordered list of
// resources and an ordered list of dependencies. AddDependency rejects edges
// that would close a cycle, so a built graph is always a DAG.
//
// Resolve returns a feature's dependency closure in topological order, with
// independent dependencies kept in declaration order. ResolveAll merges several
// closures, skipping features an earlier request already emitted.
//
// # Registry
//
// Registry maps names to features. Names are unique across all categories.
// Provider is the read-only interface it satisfies.
//
// # Injection
//
// Injector writes the resources of features held by one Provider into a
// Document (see internal/document for implementations). A feature the provider
// does not hold is rejected before anything is written. The injector remembers
// injected resource identities, so repeated or overlapping activations never
// duplicate an element.
package feature
