// Package htmldoc implements feature.Document over an in-memory HTML tree.
package htmldoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/zjrosen/mirrorkit/internal/document"
	"github.com/zjrosen/mirrorkit/internal/domain/feature"
)

const blankPage = `<!DOCTYPE html><html><head><meta charset="utf-8"></head><body></body></html>`

// Raw text elements end at the first matching close tag, whatever the
// payload meant by it.
var (
	scriptClose   = regexp.MustCompile(`(?i)</(script)`)
	scriptComment = regexp.MustCompile(`<!--`)
	styleClose    = regexp.MustCompile(`(?i)</(style)`)
)

// ErrForeignElement is returned when an element was not created by the
// document it is passed to.
var ErrForeignElement = errors.New("element does not belong to this document")

// Document is an HTML page whose <head> receives injected resources.
// It is safe for concurrent use.
type Document struct {
	mu      sync.Mutex
	root    *html.Node
	head    *html.Node
	created map[*html.Node]bool
}

// Compile-time check that Document implements feature.KeyedDocument.
var _ feature.KeyedDocument = (*Document)(nil)

// New returns an empty HTML5 page.
func New() *Document {
	doc, err := Parse(strings.NewReader(blankPage))
	if err != nil {
		panic(fmt.Sprintf("htmldoc: parsing blank page: %v", err))
	}
	return doc
}

// Parse reads a page. The HTML parser always synthesizes a <head>, so any
// input yields a usable document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	head := find(root, atom.Head)
	if head == nil {
		return nil, errors.New("parsing html: no head element")
	}
	return &Document{
		root:    root,
		head:    head,
		created: make(map[*html.Node]bool),
	}, nil
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, a); found != nil {
			return found
		}
	}
	return nil
}

// CreateElement creates a detached <script> or <style> element.
func (d *Document) CreateElement(kind feature.Kind) (feature.Element, error) {
	var n *html.Node
	switch kind {
	case feature.KindScript:
		n = &html.Node{Type: html.ElementNode, DataAtom: atom.Script, Data: "script"}
	case feature.KindStyle:
		n = &html.Node{Type: html.ElementNode, DataAtom: atom.Style, Data: "style"}
	default:
		return nil, fmt.Errorf("unsupported resource kind %s", kind)
	}

	d.mu.Lock()
	d.created[n] = true
	d.mu.Unlock()
	return n, nil
}

func (d *Document) node(el feature.Element) (*html.Node, error) {
	n, ok := el.(*html.Node)
	if !ok || !d.created[n] {
		return nil, ErrForeignElement
	}
	return n, nil
}

// SetContent replaces the element's text with payload. Sequences that would
// end a <script> or <style> early are escaped so the rendered page parses
// back to the same elements: "</script" becomes "<\/script", "<!--" in a
// script becomes "<\!--" and "</style" becomes the CSS escape "<\2f style".
func (d *Document) SetContent(el feature.Element, payload string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.node(el)
	if err != nil {
		return err
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: escapeRawText(n.DataAtom, payload)})
	return nil
}

func escapeRawText(a atom.Atom, payload string) string {
	switch a {
	case atom.Script:
		payload = scriptClose.ReplaceAllString(payload, `<\/${1}`)
		return scriptComment.ReplaceAllString(payload, `<\!--`)
	case atom.Style:
		return styleClose.ReplaceAllString(payload, `<\2f ${1}`)
	default:
		return payload
	}
}

// SetResourceKey records the resource id on the element.
func (d *Document) SetResourceKey(el feature.Element, id feature.ResourceID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.node(el)
	if err != nil {
		return err
	}
	for i, a := range n.Attr {
		if a.Key == document.ResourceAttr {
			n.Attr[i].Val = id.String()
			return nil
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: document.ResourceAttr, Val: id.String()})
	return nil
}

// Append attaches the element to the end of <head>.
func (d *Document) Append(el feature.Element) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.node(el)
	if err != nil {
		return err
	}
	if n.Parent != nil {
		return errors.New("element is already attached")
	}
	d.head.AppendChild(n)
	return nil
}

// Resources returns the resource ids of every labeled element in the page,
// in document order. Labels outside <head> count too, since tools that
// rewrite pages may move elements into <body>.
func (d *Document) Resources() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := []string{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == document.ResourceAttr {
					ids = append(ids, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return ids
}

// SetTitle sets the page title, creating <title> when missing.
func (d *Document) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := find(d.head, atom.Title)
	if t == nil {
		t = &html.Node{Type: html.ElementNode, DataAtom: atom.Title, Data: "title"}
		d.head.AppendChild(t)
	}
	for c := t.FirstChild; c != nil; c = t.FirstChild {
		t.RemoveChild(c)
	}
	t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
}

// Render writes the page.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String renders the page to a string.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}
