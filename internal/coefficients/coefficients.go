package coefficients

import (
	"errors"
	"fmt"
)

// Keys of the persisted coefficient mapping.
const (
	ProfHashed = "prof_hashed"
	TechHashed = "tech_hashed"
	ProfPlain  = "prof_plain"
	TechPlain  = "tech_plain"
	ProfGov    = "prof_gov"
	TechGov    = "tech_gov"
)

// Default rates used when a key is absent from the persisted mapping.
const (
	DefaultProfHashed = 568000
	DefaultTechHashed = 1777000
	DefaultProfPlain  = 1011000
	DefaultTechPlain  = 2843000
	DefaultProfGov    = 302000
	DefaultTechGov    = 428000
)

// ErrNegative is returned by Validate when any rate is below zero.
var ErrNegative = errors.New("coefficient must be non-negative")

// Set holds the six per-unit rates ("kai") that scale a service's professional
// and technical values into currency amounts. A Set is a value: it is replaced
// wholesale on settings save and never mutated in place.
type Set struct {
	ProfHashed float64 `yaml:"prof_hashed" json:"prof_hashed"`
	TechHashed float64 `yaml:"tech_hashed" json:"tech_hashed"`
	ProfPlain  float64 `yaml:"prof_plain" json:"prof_plain"`
	TechPlain  float64 `yaml:"tech_plain" json:"tech_plain"`
	ProfGov    float64 `yaml:"prof_gov" json:"prof_gov"`
	TechGov    float64 `yaml:"tech_gov" json:"tech_gov"`
}

// Defaults returns the published default rates.
func Defaults() Set {
	return Set{
		ProfHashed: DefaultProfHashed,
		TechHashed: DefaultTechHashed,
		ProfPlain:  DefaultProfPlain,
		TechPlain:  DefaultTechPlain,
		ProfGov:    DefaultProfGov,
		TechGov:    DefaultTechGov,
	}
}

// Keys returns the coefficient keys in canonical order.
func Keys() []string {
	return []string{ProfHashed, TechHashed, ProfPlain, TechPlain, ProfGov, TechGov}
}

// FromMap builds a Set from a flat key-value mapping. Missing keys fall back
// to their defaults; unknown keys are ignored.
func FromMap(m map[string]float64) Set {
	s := Defaults()
	for _, k := range Keys() {
		v, ok := m[k]
		if !ok {
			continue
		}
		*s.field(k) = v
	}
	return s
}

// ToMap returns the six values keyed by their persisted names.
func (s Set) ToMap() map[string]float64 {
	m := make(map[string]float64, 6)
	for _, k := range Keys() {
		m[k] = *s.field(k)
	}
	return m
}

// Get returns the value stored under key, or ok=false for an unknown key.
func (s Set) Get(key string) (float64, bool) {
	p := s.field(key)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// With returns a copy of s with key set to v.
func (s Set) With(key string, v float64) (Set, error) {
	p := s.field(key)
	if p == nil {
		return s, fmt.Errorf("unknown coefficient %q", key)
	}
	*p = v
	return s, nil
}

// Validate checks that every rate is non-negative.
func (s Set) Validate() error {
	for _, k := range Keys() {
		if v := *s.field(k); v < 0 {
			return fmt.Errorf("%s=%v: %w", k, v, ErrNegative)
		}
	}
	return nil
}

// field maps a key to the address of the matching field on s.
func (s *Set) field(key string) *float64 {
	switch key {
	case ProfHashed:
		return &s.ProfHashed
	case TechHashed:
		return &s.TechHashed
	case ProfPlain:
		return &s.ProfPlain
	case TechPlain:
		return &s.TechPlain
	case ProfGov:
		return &s.ProfGov
	case TechGov:
		return &s.TechGov
	}
	return nil
}
