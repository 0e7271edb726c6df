package testutil

// featureData holds a feature definition and its payloads.
type featureData struct {
	name        string
	category    string
	description string
	resources   []string
	dependsOn   []string
	payloads    map[string]string
}

// FeatureOption configures a feature added to a Builder.
type FeatureOption func(*featureData)

// Category sets the feature category (addon when unset).
func Category(c string) FeatureOption {
	return func(f *featureData) { f.category = c }
}

// Description sets the feature description.
func Description(d string) FeatureOption {
	return func(f *featureData) { f.description = d }
}

// Resources appends resource keys. Each gets a generated payload unless
// Payload supplies one.
func Resources(keys ...string) FeatureOption {
	return func(f *featureData) { f.resources = append(f.resources, keys...) }
}

// DependsOn appends dependency names.
func DependsOn(names ...string) FeatureOption {
	return func(f *featureData) { f.dependsOn = append(f.dependsOn, names...) }
}

// Payload sets the content of one resource key.
func Payload(key, data string) FeatureOption {
	return func(f *featureData) { f.payloads[key] = data }
}
