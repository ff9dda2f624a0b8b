package address

import "strings"

// Address is the postal destination shared by accounts and shipments.
type Address struct {
	Street     string
	City       string
	PostalCode string
	Country    string
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// Label renders the address as a single shipping-label line, skipping
// empty segments.
func (a Address) Label() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.City, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
