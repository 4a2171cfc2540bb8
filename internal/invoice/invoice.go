// Package invoice turns priced services into invoice lines and aggregates
// them into the totals shown to the patient.
package invoice

import "fmt"

// Invoice is an ordered list of lines and an optional discount.
type Invoice struct {
	Lines    []Line   `json:"lines"`
	Discount Discount `json:"discount"`
}

// Summary holds the aggregated amounts of an invoice.
type Summary struct {
	Total          int64 `json:"total"`
	Organization   int64 `json:"organization"`
	Patient        int64 `json:"patient"`
	DiscountAmount int64 `json:"discount_amount"`
	FinalTotal     int64 `json:"final_total"`
	FinalPatient   int64 `json:"final_patient"`
}

// Add appends a line.
func (inv *Invoice) Add(l Line) {
	inv.Lines = append(inv.Lines, l)
}

// Remove deletes the line at index i.
func (inv *Invoice) Remove(i int) error {
	if i < 0 || i >= len(inv.Lines) {
		return fmt.Errorf("line %d out of range [0,%d)", i, len(inv.Lines))
	}
	inv.Lines = append(inv.Lines[:i], inv.Lines[i+1:]...)
	return nil
}

// Tariff reports the tariff of the first priced line, or Misc when the
// invoice holds only manual lines.
func (inv *Invoice) Tariff() TariffType {
	for _, l := range inv.Lines {
		if l.Tariff != Misc {
			return l.Tariff
		}
	}
	return Misc
}

// Summarize sums the lines and applies the discount. The discount amount is
// taken off the total and, separately, off the patient share; each result is
// clamped at zero on its own, so the two can diverge.
func (inv *Invoice) Summarize() Summary {
	var s Summary
	for _, l := range inv.Lines {
		s.Total += l.Total
		s.Organization += l.Organization
		s.Patient += l.Patient
	}
	s.FinalTotal, s.DiscountAmount = ApplyDiscount(s.Total, inv.Discount.Value, inv.Discount.Kind)
	s.FinalPatient = clamp(s.Patient - s.DiscountAmount)
	return s
}
