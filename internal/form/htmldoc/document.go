// Package htmldoc exposes a parsed HTML document as a form.Page.
package htmldoc

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kalambet/jobfill/internal/form"
)

const (
	animationsID   = "jobfill-animations"
	notificationID = "jobfill-notification"
)

const animationsCSS = `
@keyframes slideIn {
  from { transform: translateX(400px); opacity: 0; }
  to { transform: translateX(0); opacity: 1; }
}
@keyframes slideOut {
  from { transform: translateX(0); opacity: 1; }
  to { transform: translateX(400px); opacity: 0; }
}
`

var notificationStyle = []declaration{
	{"position", "fixed"},
	{"top", "20px"},
	{"right", "20px"},
	{"background", "#667eea"},
	{"color", "white"},
	{"padding", "15px 20px"},
	{"border-radius", "5px"},
	{"box-shadow", "0 4px 12px rgba(0,0,0,0.3)"},
	{"z-index", "999999"},
	{"font-family", "-apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif"},
	{"font-size", "14px"},
	{"font-weight", "600"},
	{"animation", "slideIn 0.3s ease-out"},
}

// Document is a mutable HTML page. All reads and writes go through one
// mutex so scheduled style reverts may run while the page is rendered.
type Document struct {
	mu     sync.Mutex
	doc    *goquery.Document
	events map[*html.Node][]string
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return &Document{doc: doc, events: make(map[*html.Node][]string)}, nil
}

// ParseString reads an HTML page from s.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Inputs returns every input element in document order.
func (d *Document) Inputs() []form.Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []form.Element
	d.doc.Find("input").Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Input{d: d, sel: s})
	})
	return out
}

// Notify appends a notification banner to the body, installing the
// slide-in/slide-out keyframes on first use.
func (d *Document) Notify(message string) form.Notice {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.doc.Find("style#"+animationsID).Length() == 0 {
		d.doc.Find("head").AppendNodes(element(atom.Style, []html.Attribute{{Key: "id", Val: animationsID}}, animationsCSS))
	}

	n := element(atom.Div, []html.Attribute{
		{Key: "id", Val: notificationID},
		{Key: "style", Val: formatStyle(notificationStyle)},
	}, message)
	body := d.doc.Find("body")
	if body.Length() == 0 {
		return nil
	}
	body.AppendNodes(n)
	return &notice{d: d, node: n}
}

func element(a atom.Atom, attrs []html.Attribute, text string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}

// Render writes the current document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, n := range d.doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("rendering html: %w", err)
		}
	}
	return nil
}

// HTML returns the rendered document.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type notice struct {
	d    *Document
	node *html.Node
}

func (n *notice) SetStyle(prop, value string) {
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	setStyleAttr(n.d.doc.FindNodes(n.node), prop, value)
}

func (n *notice) Remove() {
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	if n.node.Parent != nil {
		n.node.Parent.RemoveChild(n.node)
	}
}

func setStyleAttr(s *goquery.Selection, prop, value string) {
	cur, _ := s.Attr("style")
	style := formatStyle(setProperty(parseStyle(cur), prop, value))
	if style == "" {
		s.RemoveAttr("style")
		return
	}
	s.SetAttr("style", style)
}
