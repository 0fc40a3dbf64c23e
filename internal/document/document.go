// Package document holds the in-memory export tree and its XML serializer.
//
// The tree is owned and append-only: a Document owns its child Elements by
// value and an Element owns its attributes. Nothing points back to a parent.
// Serialization is a separate pure step over the finished tree (see Encode),
// so the same tree always produces the same bytes.
package document

// RootName is the name of the document element of every export.
const RootName = "webreplay"

// Attr is a single attribute. Attributes keep their insertion order.
type Attr struct {
	Name  string
	Value string
}

// Element is one exported record.
type Element struct {
	Name  string
	Text  string
	Attrs []Attr
}

// NewElement creates an element with the given name and body text.
func NewElement(name, text string) Element {
	return Element{Name: name, Text: text}
}

// Set appends an attribute, or replaces the value of an existing attribute of
// the same name in place.
func (e *Element) Set(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// Get returns the value of the named attribute and whether it is present.
func (e Element) Get(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Document is the export tree: one root element with ordered children.
type Document struct {
	root     string
	children []Element
}

// New creates a document whose root element is RootName.
func New() *Document {
	return &Document{root: RootName}
}

// Root returns the name of the document element.
func (d *Document) Root() string {
	return d.root
}

// Append adds el as the last child of the root.
func (d *Document) Append(el Element) {
	d.children = append(d.children, el)
}

// Len returns the number of children of the root.
func (d *Document) Len() int {
	return len(d.children)
}

// Children returns a copy of the root's children in insertion order.
func (d *Document) Children() []Element {
	out := make([]Element, len(d.children))
	copy(out, d.children)
	return out
}

// Count returns how many children are named name.
func (d *Document) Count(name string) int {
	n := 0
	for _, el := range d.children {
		if el.Name == name {
			n++
		}
	}
	return n
}
