// Package fragment decodes the small XML documents WebReplay stores in the
// Script column of a task row.
//
// A bookmark task keeps its target address as the URL attribute of the
// fragment's document element:
//
//	<task URL="http://example.test/"/>
//
// The fragment has to be a complete, well-formed XML document. Anything the
// decoder cannot parse is reported as a *DecodeError; the caller decides what
// that means for the surrounding export (it aborts it).
package fragment

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// URLAttr is the attribute on the document element that carries the address.
const URLAttr = "URL"

// DecodeError reports a fragment that is not a well-formed XML document.
type DecodeError struct {
	// Fragment is the raw text that failed to parse.
	Fragment string

	// Err is the underlying parser error.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed fragment %q: %v", truncate(e.Fragment, 64), e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var (
	errEmpty         = errors.New("root element is missing")
	errUnclosed      = errors.New("root element is not closed")
	errMultipleRoot  = errors.New("multiple root elements")
	errTrailingText  = errors.New("text outside the root element")
	errMisplacedDecl = errors.New("XML declaration is not at the start")
)

// DecodeURL parses fragment and returns the URL attribute of its document
// element. A well-formed fragment without the attribute yields "".
func DecodeURL(fragment string) (string, error) {
	return DecodeAttr(fragment, URLAttr)
}

// DecodeAttr parses fragment and returns the named, un-namespaced attribute of
// its document element, or "" when the element does not carry it.
func DecodeAttr(fragment, attr string) (string, error) {
	root, err := parseRoot(fragment)
	if err != nil {
		return "", &DecodeError{Fragment: fragment, Err: err}
	}
	for _, a := range root.Attr {
		if a.Name.Space == "" && a.Name.Local == attr {
			return a.Value, nil
		}
	}
	return "", nil
}

// parseRoot reads the whole fragment and returns the start tag of its single
// document element. The rest of the input is consumed so that trailing
// garbage is rejected instead of silently ignored.
//
// Tokens are read raw so that prefixes, attribute names and tag nesting can
// be checked exactly as written.
func parseRoot(fragment string) (*xml.StartElement, error) {
	dec := xml.NewDecoder(strings.NewReader(fragment))
	dec.Strict = true
	// The fragment is already decoded text; an encoding named in the
	// declaration (WebReplay writes utf-16) describes the original bytes.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var (
		root   *xml.StartElement
		open   []scope
		closed bool
	)
	for n := 0; ; n++ {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.ProcInst:
			if t.Target == "xml" && n > 0 {
				return nil, errMisplacedDecl
			}
		case xml.StartElement:
			if closed {
				return nil, errMultipleRoot
			}
			s, err := openScope(t, open)
			if err != nil {
				return nil, err
			}
			if len(open) == 0 {
				start := t.Copy()
				root = &start
			}
			open = append(open, s)
		case xml.EndElement:
			if len(open) == 0 {
				return nil, fmt.Errorf("unexpected end tag </%s>", qualified(t.Name))
			}
			if top := open[len(open)-1]; top.name != t.Name {
				return nil, fmt.Errorf("element <%s> closed by </%s>", qualified(top.name), qualified(t.Name))
			}
			open = open[:len(open)-1]
			if len(open) == 0 {
				closed = true
			}
		case xml.CharData:
			if len(open) == 0 && len(strings.TrimSpace(string(t))) > 0 {
				return nil, errTrailingText
			}
		}
	}

	if len(open) > 0 {
		return nil, errUnclosed
	}
	if root == nil {
		return nil, errEmpty
	}
	return root, nil
}

// scope is one open element and the prefixes it declares.
type scope struct {
	name     xml.Name
	prefixes map[string]bool
}

// openScope checks a raw start tag: no repeated attribute, every prefix on
// the element and its attributes declared here or by an ancestor.
func openScope(t xml.StartElement, open []scope) (scope, error) {
	s := scope{name: t.Name, prefixes: make(map[string]bool)}
	seen := make(map[xml.Name]bool, len(t.Attr))
	for _, a := range t.Attr {
		if seen[a.Name] {
			return s, fmt.Errorf("duplicate attribute %s on <%s>", qualified(a.Name), qualified(t.Name))
		}
		seen[a.Name] = true
		if a.Name.Space == "xmlns" {
			if a.Value == "" {
				return s, fmt.Errorf("empty namespace for prefix %q", a.Name.Local)
			}
			s.prefixes[a.Name.Local] = true
		}
	}

	if !bound(t.Name.Space, s, open) {
		return s, fmt.Errorf("undeclared namespace prefix %q on <%s>", t.Name.Space, qualified(t.Name))
	}
	for _, a := range t.Attr {
		if a.Name.Space != "xmlns" && !bound(a.Name.Space, s, open) {
			return s, fmt.Errorf("undeclared namespace prefix %q on attribute %s", a.Name.Space, qualified(a.Name))
		}
	}
	return s, nil
}

func bound(prefix string, s scope, open []scope) bool {
	switch prefix {
	case "", "xml":
		return true
	case "xmlns":
		return false
	}
	if s.prefixes[prefix] {
		return true
	}
	for i := len(open) - 1; i >= 0; i-- {
		if open[i].prefixes[prefix] {
			return true
		}
	}
	return false
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
