package invoice

import (
	"errors"
	"testing"

	"github.com/gyeh/clinictariff/internal/catalog"
	"github.com/gyeh/clinictariff/internal/coefficients"
	"github.com/gyeh/clinictariff/internal/model"
	"github.com/gyeh/clinictariff/internal/pricing"
)

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		value      int64
		kind       DiscountKind
		wantFinal  int64
		wantAmount int64
	}{
		{"percentage", 1000, 10, Percentage, 900, 100},
		{"flat clamps total", 50, 100, Flat, 0, 100},
		{"percentage floors", 999, 10, Percentage, 900, 99},
		{"flat exact", 500, 500, Flat, 0, 500},
		{"zero discount", 700, 0, Flat, 700, 0},
		{"full percentage", 1234, 100, Percentage, 0, 1234},
		{"over hundred percent", 100, 150, Percentage, 0, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			final, amount := ApplyDiscount(tt.total, tt.value, tt.kind)
			if final != tt.wantFinal || amount != tt.wantAmount {
				t.Errorf("ApplyDiscount(%d, %d, %s) = (%d, %d), want (%d, %d)",
					tt.total, tt.value, tt.kind, final, amount, tt.wantFinal, tt.wantAmount)
			}
		})
	}
}

func TestParseDiscountKind(t *testing.T) {
	for in, want := range map[string]DiscountKind{"percent": Percentage, "%": Percentage, " Flat ": Flat, "amount": Flat} {
		got, err := ParseDiscountKind(in)
		if err != nil || got != want {
			t.Errorf("ParseDiscountKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseDiscountKind("bogus"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

var sampleQuote = pricing.Quote{
	Private:           4406000,
	Insurance:         3489700,
	Organization:      916300,
	Government:        1309000,
	Government70:      916300,
	OrganizationShare: 916300,
	HasCoverage:       true,
}

func TestNewServiceLine(t *testing.T) {
	tests := []struct {
		tariff              TariffType
		total, org, patient   int64
	}{
		{Private, 4406000, 0, 4406000},
		{Government, 1309000, 0, 1309000},
		{Insured, 4406000, 916300, 3489700},
	}
	for _, tt := range tests {
		t.Run(string(tt.tariff), func(t *testing.T) {
			l, err := NewServiceLine("701500", "701500 - sono", sampleQuote, tt.tariff)
			if err != nil {
				t.Fatalf("NewServiceLine: %v", err)
			}
			if l.Total != tt.total || l.Organization != tt.org || l.Patient != tt.patient {
				t.Errorf("line = (%d, %d, %d), want (%d, %d, %d)",
					l.Total, l.Organization, l.Patient, tt.total, tt.org, tt.patient)
			}
		})
	}
	if _, err := NewServiceLine("1", "x", sampleQuote, Misc); err == nil {
		t.Error("misc tariff should not price a service")
	}
}

func TestNewMiscLine(t *testing.T) {
	l, err := NewMiscLine("  dressing ", 25000)
	if err != nil {
		t.Fatalf("NewMiscLine: %v", err)
	}
	if l.Description != "dressing" || l.Total != 25000 || l.Organization != 0 || l.Patient != 25000 || l.Tariff != Misc {
		t.Errorf("line = %+v", l)
	}
	for _, tc := range []struct {
		title  string
		amount int64
	}{{"", 100}, {"   ", 100}, {"x", 0}, {"x", -5}} {
		if _, err := NewMiscLine(tc.title, tc.amount); !errors.Is(err, ErrInvalidMisc) {
			t.Errorf("NewMiscLine(%q, %d) err = %v, want ErrInvalidMisc", tc.title, tc.amount, err)
		}
	}
}

func TestWithAnesthesia(t *testing.T) {
	l, err := NewServiceLine("701500", "sono", sampleQuote, Insured)
	if err != nil {
		t.Fatal(err)
	}
	l, err = l.WithAnesthesia()
	if err != nil {
		t.Fatalf("WithAnesthesia: %v", err)
	}
	if l.Total != 5287200 || l.Organization != 916300 || l.Patient != 5287200-916300 {
		t.Errorf("line = (%d, %d, %d)", l.Total, l.Organization, l.Patient)
	}
	if _, err := l.WithAnesthesia(); !errors.Is(err, ErrAnesthesiaApplied) {
		t.Errorf("second surcharge err = %v, want ErrAnesthesiaApplied", err)
	}

	misc, _ := NewMiscLine("x", 10)
	if _, err := misc.WithAnesthesia(); !errors.Is(err, ErrNotPriced) {
		t.Errorf("misc surcharge err = %v, want ErrNotPriced", err)
	}
}

func TestParseTariffType(t *testing.T) {
	for in, want := range map[string]TariffType{"insured": Insured, "PRIVATE": Private, "دولتی": Government, "بیمه": Insured} {
		got, err := ParseTariffType(in)
		if err != nil || got != want {
			t.Errorf("ParseTariffType(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseTariffType("misc"); err == nil {
		t.Error("misc should not be selectable")
	}
}

func TestInvoice_Summarize(t *testing.T) {
	var inv Invoice
	a, _ := NewServiceLine("1", "a", sampleQuote, Insured)
	b, _ := NewMiscLine("b", 100000)
	inv.Add(a)
	inv.Add(b)
	inv.Discount = Discount{Kind: Percentage, Value: 10}

	s := inv.Summarize()
	want := Summary{
		Total:          4506000,
		Organization:   916300,
		Patient:        3589700,
		DiscountAmount: 450600,
		FinalTotal:     4055400,
		FinalPatient:   3139100,
	}
	if s != want {
		t.Errorf("Summarize = %+v, want %+v", s, want)
	}
}

func TestInvoice_SummarizeIndependentClamps(t *testing.T) {
	var inv Invoice
	l, _ := NewServiceLine("1", "a", pricing.Quote{Private: 1000, OrganizationShare: 700, Insurance: 300}, Insured)
	inv.Add(l)
	inv.Discount = Discount{Kind: Flat, Value: 500}

	s := inv.Summarize()
	if s.FinalTotal != 500 {
		t.Errorf("FinalTotal = %d, want 500", s.FinalTotal)
	}
	if s.FinalPatient != 0 {
		t.Errorf("FinalPatient = %d, want 0 (clamped on its own)", s.FinalPatient)
	}
	if s.DiscountAmount != 500 {
		t.Errorf("DiscountAmount = %d, want 500", s.DiscountAmount)
	}
}

func TestInvoice_Tariff(t *testing.T) {
	misc, _ := NewMiscLine("dressing", 100)
	inv := &Invoice{Lines: []Line{misc}}
	if got := inv.Tariff(); got != Misc {
		t.Errorf("misc-only Tariff = %q, want misc", got)
	}

	q := pricing.Price("", 1, 1, coefficients.Defaults())
	gov, _ := NewServiceLine("700123", "x-ray", q, Government)
	priv, _ := NewServiceLine("700123", "x-ray", q, Private)
	inv.Add(gov)
	inv.Add(priv)
	if got := inv.Tariff(); got != Government {
		t.Errorf("Tariff = %q, want the first priced line's (government)", got)
	}
	if got := (&Invoice{}).Tariff(); got != Misc {
		t.Errorf("empty Tariff = %q, want misc", got)
	}
}

func TestInvoice_Remove(t *testing.T) {
	var inv Invoice
	for _, title := range []string{"a", "b", "c"} {
		l, _ := NewMiscLine(title, 1)
		inv.Add(l)
	}
	if err := inv.Remove(1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(inv.Lines) != 2 || inv.Lines[0].Description != "a" || inv.Lines[1].Description != "c" {
		t.Errorf("lines = %+v", inv.Lines)
	}
	if err := inv.Remove(5); err == nil {
		t.Error("expected out of range error")
	}
}

func newBuilder() *Builder {
	c := catalog.New([]model.Service{
		{Code: "701500", TypeMarker: "701500#", Description: "سونوگرافی", Professional: 1.5, Technical: 2},
		{Code: "100", Description: "empty"},
	})
	return NewBuilder(c, pricing.NewEngine(coefficients.NewTable(coefficients.Defaults())))
}

func TestBuilder_Line(t *testing.T) {
	b := newBuilder()

	l, err := b.Line(Request{Code: "701500", Tariff: Insured})
	if err != nil {
		t.Fatalf("Line: %v", err)
	}
	if l.Total != 4406000 || l.Organization != 916300 || l.Patient != 3489700 {
		t.Errorf("line = %+v", l)
	}
	if l.Description != "701500 - سونوگرافی" {
		t.Errorf("description = %q", l.Description)
	}

	l, err = b.Line(Request{Code: "701500", Tariff: Private, Anesthesia: true})
	if err != nil {
		t.Fatalf("Line: %v", err)
	}
	if l.Total != 5287200 || !l.Quote.Anesthesia {
		t.Errorf("anesthesia line = %+v", l)
	}

	if _, err := b.Line(Request{Code: "100", Tariff: Private}); !errors.Is(err, ErrUnpriceable) {
		t.Errorf("err = %v, want ErrUnpriceable", err)
	}
	if _, err := b.Line(Request{Code: "404", Tariff: Private}); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("err = %v, want catalog.ErrNotFound", err)
	}
}

func TestBuilder_Build(t *testing.T) {
	b := newBuilder()
	inv, err := b.Build([]Request{
		{Code: "701500", Tariff: Government},
		{Code: "701500", Tariff: Private},
	}, Discount{Kind: Flat, Value: 9000})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := inv.Summarize()
	if s.Total != 1309000+4406000 || s.FinalTotal != s.Total-9000 {
		t.Errorf("summary = %+v", s)
	}
	if _, err := b.Build([]Request{{Code: "404", Tariff: Private}}, Discount{}); err == nil {
		t.Error("expected error for unknown code")
	}
}
