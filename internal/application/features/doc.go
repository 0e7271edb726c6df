// Package features is the application layer over the feature registry.
//
// It assembles a registry from the built-in catalog, the optional user
// catalog and a payload source, and exposes the operations the commands
// need:
//   - List, ByCategory, Lookup: read the current registry
//   - Resolve: dependency-ordered expansion of a request
//   - EditorFeatures: the features an editor configuration needs
//   - Activate: inject a request into a document through its Injector
//   - Reload: rebuild the registry and swap it in
//
// # Reloading
//
// The registry in use is held behind an atomic pointer. Reload builds a
// complete replacement first and swaps only on success, so readers never
// observe a partial catalog. Every attempt is published as a ReloadEvent on
// the service's broker.
//
// # Sources
//
// OpenSource turns the assets section of the config into a bundle.Source:
// a directory holding a CodeMirror distribution, or the sqlite payload store
// filled by bundle:import. The payload-cache flag puts a read-through cache
// in front of either.
package features
