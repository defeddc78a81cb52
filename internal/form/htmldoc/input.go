package htmldoc

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Input is an <input> element of a Document.
type Input struct {
	d   *Document
	sel *goquery.Selection
}

func (in *Input) Attr(name string) string {
	in.d.mu.Lock()
	defer in.d.mu.Unlock()
	v, _ := in.sel.Attr(name)
	return v
}

func (in *Input) Type() (string, bool) {
	in.d.mu.Lock()
	defer in.d.mu.Unlock()
	v, ok := in.sel.Attr("type")
	return strings.ToLower(strings.TrimSpace(v)), ok
}

func (in *Input) Value() string {
	return in.Attr("value")
}

func (in *Input) SetValue(v string) {
	in.d.mu.Lock()
	defer in.d.mu.Unlock()
	in.sel.SetAttr("value", v)
}

// LabelText resolves the element's label the way a browser user would
// see it: label[for=id], then an enclosing label, then the nearest
// preceding sibling label.
func (in *Input) LabelText() string {
	in.d.mu.Lock()
	defer in.d.mu.Unlock()

	if id, ok := in.sel.Attr("id"); ok && id != "" {
		byFor := in.d.doc.Find("label").FilterFunction(func(_ int, s *goquery.Selection) bool {
			f, _ := s.Attr("for")
			return f == id
		})
		if byFor.Length() > 0 {
			return byFor.First().Text()
		}
	}

	if parent := in.sel.Closest("label"); parent.Length() > 0 {
		return parent.Text()
	}

	// Any earlier sibling label counts, even across other controls.
	if prev := in.sel.PrevAllFiltered("label").First(); prev.Length() > 0 {
		return prev.Text()
	}
	return ""
}

func (in *Input) SetStyle(prop, value string) {
	in.d.mu.Lock()
	defer in.d.mu.Unlock()
	setStyleAttr(in.sel, prop, value)
}

func (in *Input) Dispatch(event string) {
	in.d.mu.Lock()
	defer in.d.mu.Unlock()
	n := in.sel.Nodes[0]
	in.d.events[n] = append(in.d.events[n], event)
}

// Events returns the synthetic events dispatched to the element, in order.
func (in *Input) Events() []string {
	in.d.mu.Lock()
	defer in.d.mu.Unlock()
	return append([]string(nil), in.d.events[in.sel.Nodes[0]]...)
}
