// Package catalog loads feature definitions from YAML and builds them into a
// feature registry.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	stdpath "path"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/mirrorkit/internal/domain/feature"
	"github.com/zjrosen/mirrorkit/internal/log"
)

// Dir is the directory inside a catalog file system that holds *.yaml files.
const Dir = "catalog"

//go:embed catalog/*.yaml
var defaultFS embed.FS

// DefaultFS returns the built-in CodeMirror 5 catalog.
func DefaultFS() fs.FS {
	return defaultFS
}

// File is the root structure of a catalog YAML file.
type File struct {
	Features []FeatureDef `yaml:"features"`
}

// FeatureDef defines a single feature in YAML.
type FeatureDef struct {
	Name        string        `yaml:"name"`
	Category    string        `yaml:"category"` // addon (default), keymap, theme, mode
	Description string        `yaml:"description"`
	Resources   []ResourceDef `yaml:"resources"`
	DependsOn   []string      `yaml:"depends_on"`

	// Origin is the catalog file the definition was read from.
	Origin string `yaml:"-"`
}

// ResourceDef names one payload of a feature.
type ResourceDef struct {
	Key  string `yaml:"key"`
	Kind string `yaml:"kind"` // script or style, inferred from the key when empty
}

// UnmarshalYAML accepts either a mapping or a bare key string.
func (r *ResourceDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Key = node.Value
		return nil
	}
	type plain ResourceDef
	return node.Decode((*plain)(r))
}

// ResolveKind returns the resource kind, inferring it from the key's
// extension when Kind is empty.
func (r ResourceDef) ResolveKind() (feature.Kind, error) {
	if r.Kind != "" {
		return feature.ParseKind(r.Kind)
	}
	switch stdpath.Ext(r.Key) {
	case ".js":
		return feature.KindScript, nil
	case ".css":
		return feature.KindStyle, nil
	default:
		return 0, fmt.Errorf("cannot infer kind of %q: set kind to script or style", r.Key)
	}
}

// Load parses every catalog/*.yaml file of fsys in lexical order.
// A file system without a catalog directory yields no definitions.
func Load(fsys fs.FS) ([]FeatureDef, error) {
	var defs []FeatureDef

	err := fs.WalkDir(fsys, Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != Dir {
				return fs.SkipDir
			}
			return nil
		}
		if ext := stdpath.Ext(path); ext != ".yaml" && ext != ".yml" {
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		var file File
		if err := yaml.Unmarshal(content, &file); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		for _, def := range file.Features {
			def.Origin = path
			defs = append(defs, def)
		}
		log.Debug(log.CatCatalog, "Loaded catalog file", "path", path, "features", len(file.Features))
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan catalog: %w", err)
	}

	return defs, nil
}

// Merge overlays defs onto base. A definition in overlay replaces the base
// definition of the same name in place; new names are appended.
func Merge(base, overlay []FeatureDef) []FeatureDef {
	merged := make([]FeatureDef, len(base))
	copy(merged, base)

	index := make(map[string]int, len(merged))
	for i, def := range merged {
		index[def.Name] = i
	}
	for _, def := range overlay {
		if i, ok := index[def.Name]; ok {
			log.Debug(log.CatCatalog, "Catalog override", "feature", def.Name, "origin", def.Origin)
			merged[i] = def
			continue
		}
		index[def.Name] = len(merged)
		merged = append(merged, def)
	}
	return merged
}
