package invoice

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountKind selects how a discount value is interpreted.
type DiscountKind string

const (
	Percentage DiscountKind = "percentage"
	Flat       DiscountKind = "flat"
)

// ParseDiscountKind accepts "percentage"/"percent"/"%" and "flat"/"amount".
func ParseDiscountKind(s string) (DiscountKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percentage", "percent", "%":
		return Percentage, nil
	case "flat", "amount":
		return Flat, nil
	}
	return "", fmt.Errorf("unknown discount kind %q", s)
}

// Discount is the invoice-level discount request. The zero value applies no
// discount.
type Discount struct {
	Kind  DiscountKind `json:"kind"`
	Value int64        `json:"value"`
}

// ApplyDiscount reduces total by value. A percentage discount takes
// floor(total*value/100); a flat discount takes value as is. The final total
// is clamped at zero, while amount always reports the requested discount.
func ApplyDiscount(total, value int64, kind DiscountKind) (final, amount int64) {
	switch kind {
	case Percentage:
		amount = decimal.NewFromInt(total).
			Mul(decimal.NewFromInt(value)).
			Div(decimal.NewFromInt(100)).
			Floor().
			IntPart()
	default:
		amount = value
	}
	return clamp(total - amount), amount
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
