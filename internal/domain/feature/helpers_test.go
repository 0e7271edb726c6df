package feature

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingDocument is a Document that remembers appended payloads.
type recordingDocument struct {
	appended []string
	failOn   string
}

type recordedElement struct {
	kind    Kind
	payload string
}

func (d *recordingDocument) CreateElement(kind Kind) (Element, error) {
	return &recordedElement{kind: kind}, nil
}

func (d *recordingDocument) SetContent(el Element, payload string) error {
	el.(*recordedElement).payload = payload
	return nil
}

func (d *recordingDocument) Append(el Element) error {
	e := el.(*recordedElement)
	if d.failOn != "" && e.payload == d.failOn {
		return errors.New("document rejected element")
	}
	d.appended = append(d.appended, e.payload)
	return nil
}

// mkFeature registers a feature with one script resource whose payload is
// the key itself.
func mkFeature(t *testing.T, reg *Registry, name string, keys ...string) *Feature {
	t.Helper()
	f, err := reg.Create(name, CategoryAddOn)
	require.NoError(t, err)
	for _, key := range keys {
		r, err := Script(key, key)
		require.NoError(t, err)
		require.NoError(t, f.AddResource(r))
	}
	return f
}
