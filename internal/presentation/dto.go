package presentation

import (
	"github.com/zjrosen/mirrorkit/internal/domain/feature"
)

// FeatureDTO represents a registered feature for presentation
type FeatureDTO struct {
	Name        string        `json:"name"`
	Category    string        `json:"category"`
	Description string        `json:"description,omitempty"`
	Resources   []ResourceDTO `json:"resources"`
	DependsOn   []string      `json:"depends_on"` // direct dependencies, always present
}

// ResourceDTO represents one resource; the payload itself is omitted.
type ResourceDTO struct {
	Key  string `json:"key"`
	Kind string `json:"kind"`
	Size int    `json:"size"`
}

// ResolutionDTO is the dependency-ordered expansion of a request.
type ResolutionDTO struct {
	Requested []string      `json:"requested"`
	Features  []string      `json:"features"`
	Resources []ResourceDTO `json:"resources"`
}

// ActivationDTO reports one activation against a document.
type ActivationDTO struct {
	ID       string        `json:"id"`
	Features []string      `json:"features"`
	Injected []ResourceDTO `json:"injected"`
	Skipped  []ResourceDTO `json:"skipped"`
}

// FromResource converts a domain resource to a DTO
func FromResource(r *feature.Resource) ResourceDTO {
	return ResourceDTO{
		Key:  r.Key(),
		Kind: r.Kind().String(),
		Size: len(r.Payload()),
	}
}

func fromResources(rs []*feature.Resource) []ResourceDTO {
	dtos := make([]ResourceDTO, len(rs))
	for i, r := range rs {
		dtos[i] = FromResource(r)
	}
	return dtos
}

// FromFeature converts a domain feature to a DTO
func FromFeature(f *feature.Feature) FeatureDTO {
	return FeatureDTO{
		Name:        f.Name(),
		Category:    string(f.Category()),
		Description: f.Description(),
		Resources:   fromResources(f.Resources()),
		DependsOn:   feature.Names(f.Dependencies()),
	}
}

// FromFeatures converts a slice of domain features to DTOs
func FromFeatures(fs []*feature.Feature) []FeatureDTO {
	dtos := make([]FeatureDTO, len(fs))
	for i, f := range fs {
		dtos[i] = FromFeature(f)
	}
	return dtos
}

// FromResolution flattens an ordered feature sequence into its resources,
// dropping repeats the way the injector would.
func FromResolution(requested []string, ordered []*feature.Feature) ResolutionDTO {
	seen := make(map[feature.ResourceID]bool)
	resources := make([]ResourceDTO, 0)
	for _, f := range ordered {
		for _, r := range f.Resources() {
			if seen[r.ID()] {
				continue
			}
			seen[r.ID()] = true
			resources = append(resources, FromResource(r))
		}
	}
	return ResolutionDTO{
		Requested: requested,
		Features:  feature.Names(ordered),
		Resources: resources,
	}
}

// FromActivation converts an activation result to a DTO
func FromActivation(id string, a *feature.Activation) ActivationDTO {
	return ActivationDTO{
		ID:       id,
		Features: feature.Names(a.Features),
		Injected: fromResources(a.Injected),
		Skipped:  fromResources(a.Skipped),
	}
}
