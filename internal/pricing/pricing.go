// Package pricing turns a service's professional and technical values into the
// four parallel price quotes used on an invoice:
//
//	private      = round(p*profCoef + t*techCoef)
//	government   = round(p*prof_gov + t*tech_gov)
//	organization = round(government * 0.7)
//	insurance    = private - organization
//
// The hashed coefficient pair applies when the service's type marker contains
// '#'; every other service uses the plain pair.
package pricing

import (
	"math"
	"strings"

	"github.com/gyeh/clinictariff/internal/coefficients"
)

const (
	// OrganizationRatio is the share of the government price covered by the
	// insuring organization.
	OrganizationRatio = 0.7

	// AnesthesiaMultiplier is the private-price uplift for local anesthesia.
	AnesthesiaMultiplier = 1.20

	hashMarker = "#"
)

// Quote is the priced result for a single service. Organization and
// Government70 always equal OrganizationShare.
type Quote struct {
	Private           int64 `json:"private"`
	Insurance         int64 `json:"insurance"`
	Organization      int64 `json:"organization"`
	Government        int64 `json:"government"`
	Government70      int64 `json:"government_70"`
	OrganizationShare int64 `json:"organization_share"`
	HasCoverage       bool  `json:"has_coverage"`
	Anesthesia        bool  `json:"anesthesia"`
}

// IsHashed reports whether marker routes to the hashed coefficient pair.
func IsHashed(marker string) bool {
	return marker != "" && strings.Contains(marker, hashMarker)
}

// Price computes the quote for one service. It never fails: any numeric input
// produces a Quote, and a negative Insurance is passed through unclamped.
func Price(marker string, professional, technical float64, c coefficients.Set) Quote {
	if professional == 0 && technical == 0 {
		return Quote{HasCoverage: true}
	}

	profCoef, techCoef := c.ProfPlain, c.TechPlain
	if IsHashed(marker) {
		profCoef, techCoef = c.ProfHashed, c.TechHashed
	}

	private := round(professional*profCoef + technical*techCoef)
	government := round(professional*c.ProfGov + technical*c.TechGov)
	share := round(float64(government) * OrganizationRatio)

	return Quote{
		Private:           private,
		Insurance:         private - share,
		Organization:      share,
		Government:        government,
		Government70:      share,
		OrganizationShare: share,
		HasCoverage:       true,
	}
}

// ApplyAnesthesia returns q with the local-anesthesia uplift on the private
// price. The government side is untouched; insurance is re-derived holding the
// organization share fixed. Applying it twice compounds the uplift, so callers
// apply it at most once per quote.
func ApplyAnesthesia(q Quote) Quote {
	q.Private = int64(float64(q.Private) * AnesthesiaMultiplier)
	q.Insurance = q.Private - q.OrganizationShare
	q.Anesthesia = true
	return q
}

// round rounds to the nearest integer, ties to even.
func round(v float64) int64 {
	return int64(math.RoundToEven(v))
}
