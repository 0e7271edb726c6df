package catalog

import (
	"context"
	"fmt"

	"github.com/zjrosen/mirrorkit/internal/bundle"
	"github.com/zjrosen/mirrorkit/internal/domain/feature"
	"github.com/zjrosen/mirrorkit/internal/log"
)

// Build creates a feature for every definition, loads its payloads from src
// and registers it in reg. Dependencies are wired in a second pass so a
// definition may depend on one declared after it.
func Build(ctx context.Context, defs []FeatureDef, src bundle.Source, reg *feature.Registry) error {
	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := buildFeature(ctx, def, src)
		if err != nil {
			return fmt.Errorf("feature %s in %s: %w", def.Name, def.Origin, err)
		}
		if err := reg.Register(f); err != nil {
			return fmt.Errorf("feature %s in %s: %w", def.Name, def.Origin, err)
		}
	}

	for _, def := range defs {
		f, err := reg.Lookup(def.Name)
		if err != nil {
			return err
		}
		for _, depName := range def.DependsOn {
			dep, err := reg.Lookup(depName)
			if err != nil {
				return fmt.Errorf("feature %s in %s: dependency: %w", def.Name, def.Origin, err)
			}
			if err := f.AddDependency(dep); err != nil {
				return fmt.Errorf("feature %s in %s: %w", def.Name, def.Origin, err)
			}
		}
	}

	log.Info(log.CatCatalog, "Built catalog", "features", len(defs))
	return nil
}

func buildFeature(ctx context.Context, def FeatureDef, src bundle.Source) (*feature.Feature, error) {
	category, err := feature.ParseCategory(def.Category)
	if err != nil {
		return nil, err
	}
	f, err := feature.NewFeature(def.Name, category)
	if err != nil {
		return nil, err
	}
	f.WithDescription(def.Description)

	kinds := make([]feature.Kind, len(def.Resources))
	for i, rd := range def.Resources {
		if kinds[i], err = rd.ResolveKind(); err != nil {
			return nil, err
		}
	}

	// Payloads load concurrently; resources are still added in declared order.
	payloads := make([]string, len(def.Resources))
	errs := make([]error, len(def.Resources))
	pending := make([]<-chan struct{}, len(def.Resources))
	for i, rd := range def.Resources {
		pending[i] = bundle.LoadAsync(ctx, src, rd.Key, bundle.CallbackFuncs{
			Success: func(payload string) { payloads[i] = payload },
			Error:   func(err error) { errs[i] = err },
		})
	}
	for _, done := range pending {
		<-done
	}

	for i, rd := range def.Resources {
		if errs[i] != nil {
			return nil, errs[i]
		}
		r, err := feature.NewResource(rd.Key, kinds[i], payloads[i])
		if err != nil {
			return nil, err
		}
		if err := f.AddResource(r); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Keys returns every distinct resource key referenced by defs, in
// declaration order.
func Keys(defs []FeatureDef) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, def := range defs {
		for _, r := range def.Resources {
			if !seen[r.Key] {
				seen[r.Key] = true
				keys = append(keys, r.Key)
			}
		}
	}
	return keys
}
