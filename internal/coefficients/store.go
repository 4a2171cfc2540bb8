package coefficients

import (
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/clinictariff/internal/fileio"
)

// ErrUnreadable is returned by Edit when the stored file exists but cannot be
// read or parsed.
var ErrUnreadable = errors.New("coefficients file unreadable")

// legacyKeys maps the labels written by the desktop settings dialog onto the
// canonical keys, so an old coefficients.json keeps working.
var legacyKeys = map[string]string{
	"کای حرفه‌ای # دار":  ProfHashed,
	"کای فنی # دار":      TechHashed,
	"کای حرفه‌ای بدون #": ProfPlain,
	"کای فنی بدون #":     TechPlain,
	"کای حرفه‌ای دولتی":  ProfGov,
	"کای فنی دولتی":      TechGov,
}

// Load reads a flat mapping of coefficient keys to numbers from path. YAML is
// a superset of JSON, so both formats are accepted.
//
// Load always returns a usable Set: a missing file yields Defaults() with a nil
// error, and an unreadable or malformed file yields Defaults() together with the
// error so the caller can log it.
func Load(path string) (Set, error) {
	if path == "" {
		return Defaults(), nil
	}
	data, err := fileio.ReadFile(path)
	if err != nil {
		return Defaults(), fmt.Errorf("read coefficients: %w", err)
	}
	if data == nil {
		return Defaults(), nil
	}
	return Parse(data)
}

// Parse decodes a coefficient mapping, substituting defaults for missing keys.
func Parse(data []byte) (Set, error) {
	raw := make(map[string]float64)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Defaults(), fmt.Errorf("parse coefficients: %w", err)
	}
	for label, key := range legacyKeys {
		v, ok := raw[label]
		if !ok {
			continue
		}
		if _, set := raw[key]; !set {
			raw[key] = v
		}
	}
	return FromMap(raw), nil
}

// Edit loads the set stored at path, applies fn, validates and saves the
// result. A file that cannot be read or parsed is left untouched unless force
// is set, in which case fn starts from Defaults().
func Edit(path string, force bool, fn func(Set) Set) (Set, error) {
	cur, err := Load(path)
	if err != nil && !force {
		return Set{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	next := fn(cur)
	if err := next.Validate(); err != nil {
		return Set{}, err
	}
	if err := Save(path, next); err != nil {
		return Set{}, err
	}
	return next, nil
}

// Save writes the six values verbatim to path, replacing the file atomically.
func Save(path string, s Set) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	if err := fileio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write coefficients: %w", err)
	}
	return nil
}

// Marshal encodes s as a YAML mapping in canonical key order. Values are
// written in plain decimal notation rather than the exponent form yaml.v3
// uses for large floats.
func Marshal(s Set) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range Keys() {
		v, _ := s.Get(k)
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(v, 'f', -1, 64)},
		)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode coefficients: %w", err)
	}
	return data, nil
}
