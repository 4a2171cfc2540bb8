package invoice

import (
	"errors"
	"fmt"

	"github.com/gyeh/clinictariff/internal/catalog"
	"github.com/gyeh/clinictariff/internal/pricing"
)

// ErrUnpriceable is returned for catalog entries with no professional or
// technical value.
var ErrUnpriceable = errors.New("service has no tariff value")

// Builder prices catalog entries into invoice lines.
type Builder struct {
	catalog *catalog.Catalog
	engine  *pricing.Engine
}

// NewBuilder returns a Builder over the given catalog and engine.
func NewBuilder(c *catalog.Catalog, e *pricing.Engine) *Builder {
	return &Builder{catalog: c, engine: e}
}

// Request describes one service to add to an invoice.
type Request struct {
	Code       string     `json:"code"`
	Tariff     TariffType `json:"tariff"`
	Anesthesia bool       `json:"anesthesia"`
}

// Line looks up the requested code and prices it.
func (b *Builder) Line(r Request) (Line, error) {
	s, err := b.catalog.Lookup(r.Code)
	if err != nil {
		return Line{}, err
	}
	if !s.Priceable() {
		return Line{}, fmt.Errorf("%s: %w", s.Code, ErrUnpriceable)
	}
	q := b.engine.Price(s.TypeMarker, s.Professional, s.Technical, r.Anesthesia)
	return NewServiceLine(s.Code, s.DisplayText(), q, r.Tariff)
}

// Build prices every request into a new invoice.
func (b *Builder) Build(reqs []Request, d Discount) (*Invoice, error) {
	inv := &Invoice{Discount: d}
	for i, r := range reqs {
		l, err := b.Line(r)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		inv.Add(l)
	}
	return inv, nil
}
