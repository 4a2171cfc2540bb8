package model

// Service is a parsed catalog entry ready for pricing.
type Service struct {
	Code         string  `json:"code"`
	TypeMarker   string  `json:"type_marker"`
	Description  string  `json:"description"`
	Professional float64 `json:"professional_value"`
	Technical    float64 `json:"technical_value"`
}

// Priceable reports whether the service carries any value to price. Rows
// with both values zero are listed but never priced.
func (s Service) Priceable() bool {
	return s.Professional != 0 || s.Technical != 0
}

// DisplayText renders the entry the way the catalog list shows it.
func (s Service) DisplayText() string {
	if s.Code == "" {
		return s.Description
	}
	return s.Code + " - " + s.Description
}
