package feature

import (
	"fmt"
	"strings"
)

// Kind selects the element that hosts a resource payload.
type Kind int

const (
	KindScript Kind = iota
	KindStyle
)

func (k Kind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindStyle:
		return "style"
	default:
		return "unknown"
	}
}

// ParseKind converts "script" or "style" into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "script", "js":
		return KindScript, nil
	case "style", "css":
		return KindStyle, nil
	default:
		return 0, fmt.Errorf("unknown resource kind %q", s)
	}
}

// ResourceID identifies a resource across features. Two features shipping the
// same bundle key of the same kind share one injection.
type ResourceID struct {
	Kind Kind
	Key  string
}

func (id ResourceID) String() string {
	return id.Kind.String() + ":" + id.Key
}

// ParseResourceID parses the kind:key form String produces.
func ParseResourceID(s string) (ResourceID, error) {
	kind, key, ok := strings.Cut(s, ":")
	if !ok || key == "" {
		return ResourceID{}, fmt.Errorf("invalid resource id %q", s)
	}
	k, err := ParseKind(kind)
	if err != nil {
		return ResourceID{}, err
	}
	return ResourceID{Kind: k, Key: key}, nil
}

// Resource is one injectable script or style sheet.
type Resource struct {
	key     string // bundle key, e.g. "addon/dialog/dialog.js"
	kind    Kind
	payload string
}

// NewResource creates a resource. The key and payload must be non-empty.
func NewResource(key string, kind Kind, payload string) (*Resource, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPayload, key)
	}
	return &Resource{
		key:     key,
		kind:    kind,
		payload: payload,
	}, nil
}

// Script is shorthand for NewResource(key, KindScript, payload).
func Script(key, payload string) (*Resource, error) {
	return NewResource(key, KindScript, payload)
}

// Style is shorthand for NewResource(key, KindStyle, payload).
func Style(key, payload string) (*Resource, error) {
	return NewResource(key, KindStyle, payload)
}

// Key returns the bundle key the payload was loaded from.
func (r *Resource) Key() string {
	return r.key
}

// Kind returns the wrapper element kind.
func (r *Resource) Kind() Kind {
	return r.kind
}

// Payload returns the script or style source.
func (r *Resource) Payload() string {
	return r.payload
}

// ID returns the identity used for injection deduplication.
func (r *Resource) ID() ResourceID {
	return ResourceID{Kind: r.kind, Key: r.key}
}
