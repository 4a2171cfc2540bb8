package pricing

import "github.com/gyeh/clinictariff/internal/coefficients"

// Engine prices services against the coefficients currently held by a Table.
// Each call reads one snapshot, so a concurrent Replace never mixes two sets
// inside a single quote.
type Engine struct {
	table *coefficients.Table
}

// NewEngine returns an Engine bound to table.
func NewEngine(table *coefficients.Table) *Engine {
	return &Engine{table: table}
}

// Price prices one service, applying the anesthesia uplift when requested.
func (e *Engine) Price(marker string, professional, technical float64, anesthesia bool) Quote {
	q := Price(marker, professional, technical, e.table.Current())
	if anesthesia {
		q = ApplyAnesthesia(q)
	}
	return q
}

// Coefficients returns the snapshot the engine would price with right now.
func (e *Engine) Coefficients() coefficients.Set {
	return e.table.Current()
}
