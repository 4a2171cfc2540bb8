package catalog

import (
	"github.com/gyeh/clinictariff/internal/classify"
	"github.com/gyeh/clinictariff/internal/coefficients"
	"github.com/gyeh/clinictariff/internal/model"
	"github.com/gyeh/clinictariff/internal/pricing"
)

// PriceRow prices one service into a PricedRow. Callers skip services that
// are not Priceable.
func PriceRow(s model.Service, c coefficients.Set) model.PricedRow {
	q := pricing.Price(s.TypeMarker, s.Professional, s.Technical, c)
	return model.PricedRow{
		Code:         s.Code,
		TypeMarker:   s.TypeMarker,
		Description:  s.Description,
		Category:     string(classify.Classify(s.DisplayText())),
		Professional: s.Professional,
		Technical:    s.Technical,
		Private:      q.Private,
		Insurance:    q.Insurance,
		Organization: q.Organization,
		Government:   q.Government,
		Government70: q.Government70,
	}
}

// PriceAll prices every priceable service and reports how many were skipped.
func (c *Catalog) PriceAll(set coefficients.Set) (rows []model.PricedRow, skipped int) {
	rows = make([]model.PricedRow, 0, len(c.services))
	for _, s := range c.services {
		if !s.Priceable() {
			skipped++
			continue
		}
		rows = append(rows, PriceRow(s, set))
	}
	return rows, skipped
}
