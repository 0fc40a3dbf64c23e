package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Encoding selects the character encoding of the serialized document.
type Encoding string

const (
	// UTF8 is the default output encoding.
	UTF8 Encoding = "utf-8"

	// UTF16 writes little-endian UTF-16 with a byte order mark.
	UTF16 Encoding = "utf-16"
)

// ValidEncodings lists the accepted encoding names.
var ValidEncodings = []Encoding{UTF8, UTF16}

// ParseEncoding maps a user-supplied name to an Encoding. Matching is case
// insensitive and the dash is optional ("UTF8", "utf-16").
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", "")) {
	case "", "utf8":
		return UTF8, nil
	case "utf16":
		return UTF16, nil
	}
	return "", fmt.Errorf("unsupported encoding %q: must be one of %v", name, ValidEncodings)
}

const indent = "  "

// Marshal serializes the document in the given encoding.
//
// Output layout: an XML declaration line, the root element, each child on its
// own line indented by two spaces with its body inline, and a final newline.
// A document without children serializes its root as an empty element pair.
func (d *Document) Marshal(enc Encoding) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf, enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes the serialized document to w.
func (d *Document) Encode(w io.Writer, enc Encoding) error {
	if enc == "" {
		enc = UTF8
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<?xml version=\"1.0\" encoding=\"%s\"?>\n", enc)
	if err := d.encodeTree(&buf); err != nil {
		return err
	}
	buf.WriteByte('\n')

	out := buf.Bytes()
	switch enc {
	case UTF8:
	case UTF16:
		var err error
		out, err = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes(out)
		if err != nil {
			return fmt.Errorf("encode utf-16: %w", err)
		}
	default:
		return fmt.Errorf("unsupported encoding %q", enc)
	}

	_, err := w.Write(out)
	return err
}

func (d *Document) encodeTree(w io.Writer) error {
	e := xml.NewEncoder(w)
	e.Indent("", indent)

	root := xml.StartElement{Name: xml.Name{Local: d.root}}
	if err := e.EncodeToken(root); err != nil {
		return fmt.Errorf("encode root: %w", err)
	}

	for i, el := range d.children {
		if err := encodeElement(e, el); err != nil {
			return fmt.Errorf("encode %s #%d: %w", el.Name, i, err)
		}
	}

	if err := e.EncodeToken(root.End()); err != nil {
		return fmt.Errorf("encode root: %w", err)
	}
	return e.Close()
}

func encodeElement(e *xml.Encoder, el Element) error {
	start := xml.StartElement{
		Name: xml.Name{Local: el.Name},
		Attr: make([]xml.Attr, 0, len(el.Attrs)),
	}
	for _, a := range el.Attrs {
		if err := checkChars(a.Value); err != nil {
			return fmt.Errorf("attribute %s: %w", a.Name, err)
		}
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := checkChars(el.Text); err != nil {
		return fmt.Errorf("body: %w", err)
	}

	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if el.Text != "" {
		if err := e.EncodeToken(xml.CharData(el.Text)); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// InvalidCharError reports a value that cannot be written to an XML 1.0
// document without changing it.
type InvalidCharError struct {
	Offset int  // byte offset in the value
	Rune   rune // utf8.RuneError for an invalid byte
	Byte   byte // the offending byte when Rune is utf8.RuneError
}

func (e *InvalidCharError) Error() string {
	if e.Rune == utf8.RuneError {
		return fmt.Sprintf("invalid UTF-8 byte 0x%02x at offset %d", e.Byte, e.Offset)
	}
	return fmt.Sprintf("character %U at offset %d is not allowed in XML", e.Rune, e.Offset)
}

// checkChars rejects invalid UTF-8 and characters outside the XML 1.0 Char
// production. xml.Encoder would silently replace them with U+FFFD.
func checkChars(s string) error {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return &InvalidCharError{Offset: i, Rune: r, Byte: s[i]}
		}
		if !isXMLChar(r) {
			return &InvalidCharError{Offset: i, Rune: r}
		}
		i += size
	}
	return nil
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
