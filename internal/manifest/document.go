package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Jeffail/gabs"
)

// ErrInvalidDocument is returned when bytes are not a single valid JSON value.
var ErrInvalidDocument = errors.New("invalid json document")

// Document is a parsed catalog or its cached copy.
// A nil *Document, or one whose root is JSON null, is absent.
type Document struct {
	container *gabs.Container
}

// Parse decodes a JSON document. Numbers are kept verbatim as json.Number.
func Parse(data []byte) (*Document, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	container, err := gabs.ParseJSONDecoder(decoder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	// Anything but whitespace after the first value is garbage.
	if _, err = decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after top-level value", ErrInvalidDocument)
	}

	return &Document{container: container}, nil
}

// IsAbsent reports whether the document carries no catalog at all.
func (d *Document) IsAbsent() bool {
	return d == nil || d.container == nil || d.container.Data() == nil
}

// Bytes serializes the document back to JSON without HTML escaping,
// so download URLs keep their literal '&' characters.
func (d *Document) Bytes() ([]byte, error) {
	var value any
	if d != nil && d.container != nil {
		value = d.container.Data()
	}

	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(value); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// String returns the compact JSON form, or an empty string if encoding fails.
func (d *Document) String() string {
	data, err := d.Bytes()
	if err != nil {
		return ""
	}

	return string(data)
}

// root returns the top-level container of a present document.
func (d *Document) root() (*gabs.Container, bool) {
	if d.IsAbsent() {
		return nil, false
	}

	return d.container, true
}

// field looks up key in an object container.
func field(c *gabs.Container, key string) (*gabs.Container, bool) {
	if c == nil {
		return nil, false
	}

	if _, isObject := c.Data().(map[string]any); !isObject {
		return nil, false
	}

	children, err := c.ChildrenMap()
	if err != nil {
		return nil, false
	}

	child, ok := children[key]

	return child, ok
}

// elements returns the items of an array container.
func elements(c *gabs.Container) ([]*gabs.Container, bool) {
	if c == nil {
		return nil, false
	}

	if _, isArray := c.Data().([]any); !isArray {
		return nil, false
	}

	children, err := c.Children()
	if err != nil {
		return nil, false
	}

	return children, true
}

// stringField looks up key in an object container and requires a string value.
func stringField(c *gabs.Container, key string) (string, bool) {
	child, ok := field(c, key)
	if !ok {
		return "", false
	}

	s, ok := child.Data().(string)

	return s, ok
}
