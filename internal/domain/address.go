package domain

import "strings"

// Address is a freeform postal address passed to the carrier collaborator
// for validation; the carrier returns an opaque address code we cache.
type Address struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Country string `json:"country"`
	ZipCode string `json:"zipCode,omitempty"`
}

// Empty reports whether no routable address fields are set.
func (a Address) Empty() bool {
	return strings.TrimSpace(a.Street) == "" && strings.TrimSpace(a.City) == ""
}

// Freeform flattens the address into the single-line form the carrier
// validation endpoint expects.
func (a Address) Freeform() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.City, a.State, a.ZipCode, a.Country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}
