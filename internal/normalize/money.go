package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var digitReplacer = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"٫", ".", "٬", "", ",", "",
)

// ParseNumberE parses a decimal number as typed by an operator or stored in a
// spreadsheet cell. Thousands separators are ignored and Persian or Arabic
// digits are accepted.
func ParseNumberE(s string) (float64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// ParseNumber is the total form of ParseNumberE: anything that does not parse
// becomes 0. Catalog rows go through this so a bad cell never blocks pricing.
func ParseNumber(s string) float64 {
	f, err := ParseNumberE(s)
	if err != nil {
		return 0
	}
	return f
}

// ParseAmountE parses a whole currency amount; any fraction is truncated.
func ParseAmountE(s string) (int64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	return d.IntPart(), nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(digitReplacer.Replace(s))
	if clean == "" {
		return decimal.Zero, fmt.Errorf("empty number")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse number %q: %w", s, err)
	}
	return d, nil
}

// FormatAmount renders an amount with comma thousands separators.
func FormatAmount(v int64) string {
	s := decimal.NewFromInt(v).String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
