package models

import (
	"fmt"

	"mxaddress/pkg/platform/sentinel"
)

// InteriorNone and InteriorNoNumber are the two non-numeral interior values.
const (
	InteriorNone     = ""
	InteriorNoNumber = "S/N"
)

// PostalEntry is one valid (postal code, neighborhood) pair for a
// (state, municipality) key. PostalCode is always exactly 5 digits.
type PostalEntry struct {
	PostalCode   string `json:"postal_code"`
	Neighborhood string `json:"neighborhood"`
}

// RawStreetCandidate is an address point returned by the geocoded street
// source. StreetName, HouseNumber and PostalCode are never empty.
type RawStreetCandidate struct {
	StreetName   string
	HouseNumber  string
	Unit         string
	PostalCode   string
	Neighborhood string
}

// StreetSegment is a named road found inside a neighborhood.
type StreetSegment struct {
	Name string     `json:"name"`
	Type StreetType `json:"type"`
}

// ResolvedAddress is the engine output. Every field except InteriorNumber is
// non-empty; InteriorNumber is "", "S/N" or a small numeral.
type ResolvedAddress struct {
	Neighborhood   string     `json:"neighborhood"`
	StreetType     StreetType `json:"street_type"`
	StreetName     string     `json:"street_name"`
	ExteriorNumber string     `json:"exterior_number"`
	InteriorNumber string     `json:"interior_number"`
	PostalCode     string     `json:"postal_code"`
}

// PartialAddress carries caller-supplied address fields for completion.
// Blank fields are filled in by the engine.
type PartialAddress struct {
	State          string
	Municipality   string
	Neighborhood   string
	StreetType     string
	StreetName     string
	ExteriorNumber string
	InteriorNumber string
	PostalCode     string
}

// CompletedAddress is a PartialAddress with every field filled in.
type CompletedAddress struct {
	State        string          `json:"state"`
	Municipality string          `json:"municipality"`
	Address      ResolvedAddress `json:"address"`
}

// Tier labels how an address was produced. It is used for logs and metrics
// and never leaves the engine.
type Tier string

const (
	TierReal      Tier = "real"
	TierCatalog   Tier = "catalog"
	TierSynthetic Tier = "synthetic"
)

// NoAddressDataError is returned in strict mode when no real address could be
// built for the key.
type NoAddressDataError struct {
	State        string
	Municipality string
}

func (e *NoAddressDataError) Error() string {
	return fmt.Sprintf("no address data for %s, %s", e.Municipality, e.State)
}

func (e *NoAddressDataError) Unwrap() error {
	return sentinel.ErrNotFound
}
