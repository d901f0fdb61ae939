package manifest

import (
	"bytes"
	"encoding/json"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/maquette-dev/maquette/internal/enginerr"
)

// Parse decodes a JSON manifest document.
func Parse(data []byte) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, enginerr.New("M107").Wrap(err)
	}
	normalizeNumbers(&m)
	return &m, nil
}

// ParseYAML decodes a hand-authored YAML manifest document.
func ParseYAML(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, enginerr.New("M107").Wrap(err)
	}
	normalizeKeys(&m)
	return &m, nil
}

// Encode produces the canonical JSON exchange form of the manifest.
// Parse(Encode(m)) is the identity for any manifest that passed
// validation.
func (m *Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, enginerr.New("M107").Wrap(err)
	}
	return buf.Bytes(), nil
}

// normalizeNumbers converts json.Number prop values to int64 where
// integral and float64 otherwise, so round-tripped props compare equal
// regardless of how many times a document has been re-encoded. Whole
// numbers written with a fractional part ("1.0") fold to int64 as well:
// encoding drops the ".0", so keeping them as floats would make the
// second parse disagree with the first.
func normalizeNumbers(m *Manifest) {
	m.Walk(func(node *ComponentNode) bool {
		node.Props = normalizeMap(node.Props)
		node.ThemeOverrides = normalizeMap(node.ThemeOverrides)
		return true
	})
	m.Theme.Tokens = normalizeMap(m.Theme.Tokens)
}

func normalizeMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	for k, v := range in {
		in[k] = normalizeValue(v)
	}
	return in
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return foldFloat(f)
		}
		return val.String()
	case map[string]any:
		return normalizeMap(val)
	case []any:
		for i := range val {
			val[i] = normalizeValue(val[i])
		}
		return val
	default:
		return v
	}
}

// foldFloat collapses a float that is exactly a whole number into an
// int64. Only values inside the exact-integer range of a float64 fold;
// larger magnitudes stay floats.
func foldFloat(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return f
}

// normalizeKeys converts yaml map[any]any values into map[string]any
// and yaml ints into int64 so YAML-ingested manifests behave like their
// JSON equivalents.
func normalizeKeys(m *Manifest) {
	m.Walk(func(node *ComponentNode) bool {
		node.Props = normalizeYAMLMap(node.Props)
		node.ThemeOverrides = normalizeYAMLMap(node.ThemeOverrides)
		return true
	})
	m.Theme.Tokens = normalizeYAMLMap(m.Theme.Tokens)
}

func normalizeYAMLMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	for k, v := range in {
		in[k] = normalizeYAMLValue(v)
	}
	return in
}

func normalizeYAMLValue(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case float64:
		return foldFloat(val)
	case map[string]any:
		return normalizeYAMLMap(val)
	case []any:
		for i := range val {
			val[i] = normalizeYAMLValue(val[i])
		}
		return val
	default:
		return v
	}
}
