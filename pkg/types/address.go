package types

import "strings"

// Address captures the shipping address collected at checkout.
type Address struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country,omitempty"`
}

// IsZero reports whether no address field was provided.
func (a Address) IsZero() bool {
	return a.Line1 == "" && a.City == "" && a.State == "" && a.PostalCode == ""
}

// Format renders the address as a single shipping label line.
func (a Address) Format() string {
	parts := make([]string, 0, 6)
	if a.Line1 != "" {
		parts = append(parts, a.Line1)
	}
	if a.Line2 != nil && *a.Line2 != "" {
		parts = append(parts, *a.Line2)
	}
	if a.City != "" {
		parts = append(parts, a.City)
	}
	if a.State != "" {
		parts = append(parts, a.State)
	}
	if a.PostalCode != "" {
		parts = append(parts, a.PostalCode)
	}
	if a.Country != "" {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, ", ")
}
