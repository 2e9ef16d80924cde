package domain

import "strings"

// ShippingSnapshot is the delivery address frozen into an order at creation.
// Later edits to the customer profile never reach past orders.
type ShippingSnapshot struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// ResolveShippingSnapshot builds the snapshot for a new order, either copying
// the customer's saved address or validating a supplied override. Override
// name and phone fall back to the profile when blank.
func ResolveShippingSnapshot(c *Customer, useSaved bool, override *AddressOverride) (ShippingSnapshot, error) {
	if useSaved {
		hasSaved := !blank(c.AddressLine1) || !blank(c.City) || !blank(c.PostalCode) || !blank(c.Country)
		if !hasSaved {
			return ShippingSnapshot{}, ErrNoSavedAddress
		}
		return ShippingSnapshot{
			FirstName:    c.FirstName,
			LastName:     c.LastName,
			AddressLine1: c.AddressLine1,
			AddressLine2: c.AddressLine2,
			City:         c.City,
			State:        c.State,
			PostalCode:   c.PostalCode,
			Country:      c.Country,
			Phone:        c.Phone,
		}, nil
	}

	if override == nil {
		return ShippingSnapshot{}, ErrMissingOverride
	}
	if blank(override.AddressLine1) || blank(override.City) || blank(override.PostalCode) || blank(override.Country) {
		return ShippingSnapshot{}, ErrIncompleteAddress
	}

	snap := ShippingSnapshot{
		FirstName:    override.FirstName,
		LastName:     override.LastName,
		AddressLine1: override.AddressLine1,
		AddressLine2: override.AddressLine2,
		City:         override.City,
		State:        override.State,
		PostalCode:   override.PostalCode,
		Country:      override.Country,
		Phone:        override.Phone,
	}
	if blank(snap.FirstName) {
		snap.FirstName = c.FirstName
	}
	if blank(snap.LastName) {
		snap.LastName = c.LastName
	}
	if blank(snap.Phone) {
		snap.Phone = c.Phone
	}
	return snap, nil
}

// FormattedAddress joins the non-empty address components with " • " for
// display; city and state collapse into one comma-joined segment.
func (s ShippingSnapshot) FormattedAddress() string {
	cityState := joinNonEmpty(", ", s.City, s.State)
	name := strings.TrimSpace(s.FirstName + " " + s.LastName)
	return joinNonEmpty(" • ", name, s.AddressLine1, s.AddressLine2, cityState, s.PostalCode, s.Country)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if !blank(p) {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, sep)
}
