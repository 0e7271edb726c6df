// Package flags gates optional behavior behind names in the config's flags
// section. The registry is read-only once built; unknown names read as off.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/mirrorkit/internal/log"
)

const (
	// FlagUserCatalog merges catalog/*.yaml from catalog.user_dir over the
	// built-in catalog.
	FlagUserCatalog = "user-catalog"

	// FlagPayloadCache wraps the payload source in a read-through cache.
	FlagPayloadCache = "payload-cache"

	// FlagStrictOptions makes an editor option whose feature is not
	// registered an error instead of a warning.
	FlagStrictOptions = "strict-options"
)

// Known returns every flag the program reads, in declaration order.
func Known() []string {
	return []string{FlagUserCatalog, FlagPayloadCache, FlagStrictOptions}
}

// Registry holds flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New copies flags into a Registry. A nil map gives a registry with
// everything off. Names the program never reads are logged, since they are
// usually typos in the config file.
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: make(map[string]bool, len(flags))}
	maps.Copy(r.flags, flags)

	for name := range r.flags {
		if !slices.Contains(Known(), name) {
			log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
		}
	}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(r.flags), "flags", r.All())
	return r
}

// Enabled reports whether name is on. A nil registry has everything off.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.flags[name]
}

// All returns a copy of the configured flags.
func (r *Registry) All() map[string]bool {
	result := make(map[string]bool)
	if r == nil {
		return result
	}
	maps.Copy(result, r.flags)
	return result
}
