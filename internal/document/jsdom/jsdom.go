//go:build js && wasm

// Package jsdom implements feature.Document over the browser DOM when
// compiled to WebAssembly.
package jsdom

import (
	"errors"
	"fmt"
	"syscall/js"

	"github.com/zjrosen/mirrorkit/internal/document"
	"github.com/zjrosen/mirrorkit/internal/domain/feature"
)

// ErrNoDocument is returned when the global scope has no document, as in a
// web worker.
var ErrNoDocument = errors.New("no DOM document in global scope")

// Document appends resources to document.head of the hosting page.
type Document struct {
	doc  js.Value
	head js.Value
}

// Compile-time check that Document implements feature.KeyedDocument.
var _ feature.KeyedDocument = (*Document)(nil)

// Current returns the page's document.
func Current() (*Document, error) {
	doc := js.Global().Get("document")
	if doc.IsUndefined() || doc.IsNull() {
		return nil, ErrNoDocument
	}
	head := doc.Get("head")
	if head.IsUndefined() || head.IsNull() {
		head = doc.Get("documentElement")
	}
	return &Document{doc: doc, head: head}, nil
}

func value(el feature.Element) (js.Value, error) {
	v, ok := el.(js.Value)
	if !ok || v.IsUndefined() || v.IsNull() {
		return js.Value{}, fmt.Errorf("not a DOM element: %T", el)
	}
	return v, nil
}

// CreateElement creates a detached <script> or <style> element.
func (d *Document) CreateElement(kind feature.Kind) (feature.Element, error) {
	switch kind {
	case feature.KindScript:
		el := d.doc.Call("createElement", "script")
		el.Set("type", "text/javascript")
		return el, nil
	case feature.KindStyle:
		return d.doc.Call("createElement", "style"), nil
	default:
		return nil, fmt.Errorf("unsupported resource kind %s", kind)
	}
}

// SetContent sets the element's text. Scripts run when appended.
func (d *Document) SetContent(el feature.Element, payload string) error {
	v, err := value(el)
	if err != nil {
		return err
	}
	v.Set("textContent", payload)
	return nil
}

// SetResourceKey labels the element with the resource id.
func (d *Document) SetResourceKey(el feature.Element, id feature.ResourceID) error {
	v, err := value(el)
	if err != nil {
		return err
	}
	v.Call("setAttribute", document.ResourceAttr, id.String())
	return nil
}

// Append attaches the element to document.head. A script that throws while
// evaluating is reported as an error.
func (d *Document) Append(el feature.Element) (err error) {
	v, err := value(el)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("appending element: %v", r)
		}
	}()
	d.head.Call("appendChild", v)
	return nil
}

// Resources returns the resource ids already present anywhere in the page,
// so a page that injected resources before the module loaded is not
// duplicated.
func (d *Document) Resources() []string {
	nodes := d.doc.Call("querySelectorAll", "["+document.ResourceAttr+"]")
	ids := make([]string, 0, nodes.Length())
	for i := 0; i < nodes.Length(); i++ {
		ids = append(ids, nodes.Index(i).Call("getAttribute", document.ResourceAttr).String())
	}
	return ids
}
