// Package catalog holds the tariff service list: loading it from a Parquet
// sheet, looking entries up by code, and filtering by category and free text.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gyeh/clinictariff/internal/classify"
	"github.com/gyeh/clinictariff/internal/model"
	"github.com/gyeh/clinictariff/internal/normalize"
	"github.com/gyeh/clinictariff/internal/parquetread"
)

// ErrNotFound is returned when no service carries the requested code.
var ErrNotFound = errors.New("service not found")

// Catalog is an immutable, ordered list of services indexed by code.
type Catalog struct {
	services []model.Service
	byCode   map[string]int
}

// New builds a Catalog from parsed services. When a code repeats, the first
// occurrence wins for Lookup; every row stays listed.
func New(services []model.Service) *Catalog {
	c := &Catalog{
		services: services,
		byCode:   make(map[string]int, len(services)),
	}
	for i, s := range services {
		if _, dup := c.byCode[s.Code]; !dup {
			c.byCode[s.Code] = i
		}
	}
	return c
}

// FromRows parses raw sheet rows. Rows without a code are dropped; numeric
// cells that do not parse count as zero.
func FromRows(rows []model.ServiceRow) *Catalog {
	services := make([]model.Service, 0, len(rows))
	for i := range rows {
		s, ok := ParseRow(&rows[i])
		if !ok {
			continue
		}
		services = append(services, s)
	}
	return New(services)
}

// ParseRow converts one sheet row. ok is false for rows without a code.
func ParseRow(row *model.ServiceRow) (model.Service, bool) {
	code := normalize.Code(row.Code)
	if code == "" {
		return model.Service{}, false
	}
	return model.Service{
		Code:         code,
		TypeMarker:   strings.TrimSpace(deref(row.TypeMarker)),
		Description:  strings.TrimSpace(row.Description),
		Professional: normalize.ParseNumber(deref(row.Professional)),
		Technical:    normalize.ParseNumber(deref(row.Technical)),
	}, true
}

// LoadFile reads and parses a catalog Parquet file.
func LoadFile(path string) (*Catalog, error) {
	rows, err := parquetread.ReadAll(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return FromRows(rows), nil
}

// Len returns the number of listed services.
func (c *Catalog) Len() int {
	return len(c.services)
}

// Services returns every listed service in sheet order.
func (c *Catalog) Services() []model.Service {
	out := make([]model.Service, len(c.services))
	copy(out, c.services)
	return out
}

// Lookup returns the service with the given code.
func (c *Catalog) Lookup(code string) (model.Service, error) {
	i, ok := c.byCode[normalize.Code(code)]
	if !ok {
		return model.Service{}, fmt.Errorf("%s: %w", code, ErrNotFound)
	}
	return c.services[i], nil
}

// Search returns the services in category whose description or code contains
// query. An empty query matches every service in the category.
func (c *Catalog) Search(category classify.Category, query string) []model.Service {
	q := normalize.Text(query)
	var out []model.Service
	for _, s := range c.services {
		if !classify.Matches(s.DisplayText(), category) {
			continue
		}
		if q != "" && !strings.Contains(normalize.Text(s.Description), q) && !strings.Contains(normalize.Text(s.Code), q) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// CountByCategory tallies listed services per category.
func (c *Catalog) CountByCategory() map[classify.Category]int {
	counts := make(map[classify.Category]int)
	for _, s := range c.services {
		counts[classify.Classify(s.DisplayText())]++
	}
	return counts
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
