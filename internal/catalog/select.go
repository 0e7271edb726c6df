package catalog

import (
	"github.com/zjrosen/mirrorkit/internal/domain/feature"
)

// Select returns the definitions of names and everything they depend on,
// in catalog order. Building the result loads only the payloads those
// features need, which matters when payloads come over the network.
func Select(defs []FeatureDef, names ...string) ([]FeatureDef, error) {
	index := make(map[string]int, len(defs))
	for i, def := range defs {
		index[def.Name] = i
	}

	keep := make([]bool, len(defs))
	var visit func(name string) error
	visit = func(name string) error {
		i, ok := index[name]
		if !ok {
			return &feature.UnknownFeatureError{Name: name}
		}
		if keep[i] {
			return nil
		}
		keep[i] = true
		for _, dep := range defs[i].DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	var selected []FeatureDef
	for i, def := range defs {
		if keep[i] {
			selected = append(selected, def)
		}
	}
	return selected, nil
}
