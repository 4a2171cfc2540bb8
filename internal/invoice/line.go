package invoice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gyeh/clinictariff/internal/pricing"
)

var (
	// ErrInvalidMisc is returned for a manual line without a title or with a
	// non-positive amount.
	ErrInvalidMisc = errors.New("misc line needs a title and a positive amount")
	// ErrAnesthesiaApplied is returned when the surcharge is requested for a
	// line that already carries it.
	ErrAnesthesiaApplied = errors.New("anesthesia already applied")
	// ErrNotPriced is returned when a manual line is asked for a surcharge.
	ErrNotPriced = errors.New("line has no tariff quote")
)

// TariffType is the billing mode of an invoice line.
type TariffType string

const (
	Insured    TariffType = "insured"
	Private    TariffType = "private"
	Government TariffType = "government"
	Misc       TariffType = "misc"
)

var tariffLabels = map[TariffType]string{
	Insured:    "بیمه",
	Private:    "آزاد",
	Government: "دولتی",
	Misc:       "متفرقه",
}

// Label returns the Persian name shown on invoices.
func (t TariffType) Label() string {
	return tariffLabels[t]
}

// ParseTariffType accepts the English name or the Persian label of a
// priceable tariff type. Misc is not selectable.
func ParseTariffType(s string) (TariffType, error) {
	s = strings.TrimSpace(s)
	for _, t := range []TariffType{Insured, Private, Government} {
		if strings.EqualFold(s, string(t)) || s == t.Label() {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tariff type %q", s)
}

// Line is one row of an invoice.
type Line struct {
	Code         string         `json:"code,omitempty"`
	Description  string         `json:"description"`
	Tariff       TariffType     `json:"tariff"`
	Quote        *pricing.Quote `json:"quote,omitempty"`
	Total        int64          `json:"total"`
	Organization int64          `json:"organization"`
	Patient      int64          `json:"patient"`
}

// NewServiceLine binds a quote to a description under the given tariff type.
//
//	private    total=Private     org=0                  patient=Private
//	government total=Government  org=0                  patient=Government
//	insured    total=Private     org=OrganizationShare  patient=Insurance
func NewServiceLine(code, description string, q pricing.Quote, tariff TariffType) (Line, error) {
	l := Line{Code: code, Description: description, Tariff: tariff, Quote: &q}
	switch tariff {
	case Private:
		l.Total, l.Patient = q.Private, q.Private
	case Government:
		l.Total, l.Patient = q.Government, q.Government
	case Insured:
		l.Total, l.Organization, l.Patient = q.Private, q.OrganizationShare, q.Insurance
	default:
		return Line{}, fmt.Errorf("tariff type %q cannot price a service", tariff)
	}
	return l, nil
}

// NewMiscLine builds a manual cost line paid in full by the patient.
func NewMiscLine(title string, amount int64) (Line, error) {
	title = strings.TrimSpace(title)
	if title == "" || amount <= 0 {
		return Line{}, ErrInvalidMisc
	}
	return Line{
		Description: title,
		Tariff:      Misc,
		Total:       amount,
		Patient:     amount,
	}, nil
}

// WithAnesthesia returns the line recomputed from its quote with the local
// anesthesia surcharge applied.
func (l Line) WithAnesthesia() (Line, error) {
	if l.Quote == nil {
		return l, ErrNotPriced
	}
	if l.Quote.Anesthesia {
		return l, ErrAnesthesiaApplied
	}
	return NewServiceLine(l.Code, l.Description, pricing.ApplyAnesthesia(*l.Quote), l.Tariff)
}
