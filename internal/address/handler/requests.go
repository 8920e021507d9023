package handler

import (
	"strings"

	"mxaddress/internal/address/models"
	dErrors "mxaddress/pkg/domain-errors"
)

// ResolveRequest asks for an address in a state and municipality.
// AllowFallback defaults to true when omitted.
type ResolveRequest struct {
	State         string `json:"state"`
	Municipality  string `json:"municipality"`
	AllowFallback *bool  `json:"allow_fallback,omitempty"`
}

func (r *ResolveRequest) Validate() error {
	r.State = strings.TrimSpace(r.State)
	r.Municipality = strings.TrimSpace(r.Municipality)
	if r.State == "" {
		return dErrors.New(dErrors.CodeValidation, "state is required")
	}
	if r.Municipality == "" {
		return dErrors.New(dErrors.CodeValidation, "municipality is required")
	}
	return nil
}

func (r *ResolveRequest) allowFallback() bool {
	return r.AllowFallback == nil || *r.AllowFallback
}

// CompleteRequest carries a partially filled address.
type CompleteRequest struct {
	State          string `json:"state"`
	Municipality   string `json:"municipality"`
	Neighborhood   string `json:"neighborhood,omitempty"`
	StreetType     string `json:"street_type,omitempty"`
	StreetName     string `json:"street_name,omitempty"`
	ExteriorNumber string `json:"exterior_number,omitempty"`
	InteriorNumber string `json:"interior_number,omitempty"`
	PostalCode     string `json:"postal_code,omitempty"`
}

func (r *CompleteRequest) Validate() error {
	if strings.TrimSpace(r.State) == "" {
		return dErrors.New(dErrors.CodeValidation, "state is required")
	}
	if strings.TrimSpace(r.Municipality) == "" {
		return dErrors.New(dErrors.CodeValidation, "municipality is required")
	}
	return nil
}

func (r *CompleteRequest) partial() models.PartialAddress {
	return models.PartialAddress{
		State:          r.State,
		Municipality:   r.Municipality,
		Neighborhood:   r.Neighborhood,
		StreetType:     r.StreetType,
		StreetName:     r.StreetName,
		ExteriorNumber: r.ExteriorNumber,
		InteriorNumber: r.InteriorNumber,
		PostalCode:     r.PostalCode,
	}
}

// CatalogResponse lists the postal entries of one key.
type CatalogResponse struct {
	State        string               `json:"state"`
	Municipality string               `json:"municipality"`
	Entries      []models.PostalEntry `json:"entries"`
}

// HealthResponse reports catalog readiness.
type HealthResponse struct {
	Status         string `json:"status"`
	CatalogLoaded  bool   `json:"catalog_loaded"`
	CatalogKeys    int    `json:"catalog_keys"`
	CatalogEntries int    `json:"catalog_entries"`
}
