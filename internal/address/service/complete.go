package service

import (
	"context"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mxaddress/internal/address/classify"
	"mxaddress/internal/address/keys"
	"mxaddress/internal/address/models"
	dErrors "mxaddress/pkg/domain-errors"
	"mxaddress/pkg/requestcontext"
)

// Complete fills in the blank fields of a caller-supplied address. Supplied
// fields are kept as given; missing ones come from the catalog, the
// neighborhood street lookup, or random reference values.
func (s *Service) Complete(ctx context.Context, partial models.PartialAddress) (*models.CompletedAddress, error) {
	p, err := normalizePartial(partial)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "address.Complete", trace.WithAttributes(
		attribute.String("address.state", p.State),
		attribute.String("address.municipality", p.Municipality),
	))
	defer span.End()

	postalCode, neighborhood := s.completeLocation(ctx, p)

	var typ models.StreetType
	if p.StreetType != "" {
		// validated by normalizePartial
		typ, _ = models.ParseStreetType(p.StreetType)
	}
	name := strings.ToUpper(p.StreetName)

	switch {
	case name != "" && typ == models.StreetTypeUnknown:
		typ = classify.InferStreetType(name)
	case name == "":
		foundType, foundName := s.pickStreet(ctx, p.State, p.Municipality, neighborhood)
		name = foundName
		if typ == models.StreetTypeUnknown {
			typ = foundType
		}
	}
	name = classify.StripGenericPrefix(typ, name)
	if name == "" {
		name = s.rand.pick(classify.StreetNameWords)
	}

	exterior := p.ExteriorNumber
	if exterior == "" {
		exterior = strconv.Itoa(s.rand.between(10, 3999))
	}
	interior := p.InteriorNumber
	if interior == "" {
		interior = s.rand.completionInterior()
	}

	s.logger.InfoContext(ctx, "address completed",
		"request_id", requestcontext.RequestID(ctx),
		"state", p.State,
		"municipality", p.Municipality,
		"postal_code", postalCode,
	)

	return &models.CompletedAddress{
		State:        strings.ToUpper(keys.DisplayState(p.State)),
		Municipality: strings.ToUpper(p.Municipality),
		Address: models.ResolvedAddress{
			Neighborhood:   neighborhood,
			StreetType:     typ,
			StreetName:     name,
			ExteriorNumber: exterior,
			InteriorNumber: interior,
			PostalCode:     postalCode,
		},
	}, nil
}

// completeLocation settles the postal code and neighborhood pair, filling
// whichever side is missing from the catalog when possible.
func (s *Service) completeLocation(ctx context.Context, p models.PartialAddress) (postalCode, neighborhood string) {
	postalCode, neighborhood = p.PostalCode, strings.ToUpper(p.Neighborhood)
	if postalCode != "" && neighborhood != "" {
		return postalCode, neighborhood
	}

	entries := s.entriesFor(ctx, p.State, p.Municipality)

	switch {
	case postalCode != "":
		var matches []string
		for _, e := range entries {
			if e.PostalCode == postalCode {
				matches = append(matches, e.Neighborhood)
			}
		}
		if len(matches) > 0 {
			return postalCode, s.rand.pick(matches)
		}
		return postalCode, "COLONIA " + postalCode

	case neighborhood != "":
		want := keys.Normalize(neighborhood)
		var matches []string
		for _, e := range entries {
			if keys.Normalize(e.Neighborhood) == want {
				matches = append(matches, e.PostalCode)
			}
		}
		if len(matches) > 0 {
			return s.rand.pick(matches), neighborhood
		}
		return s.rand.pseudoPostalCode(), neighborhood

	default:
		if len(entries) > 0 {
			e := entries[s.rand.index(len(entries))]
			return e.PostalCode, e.Neighborhood
		}
		return s.rand.pseudoPostalCode(), s.rand.syntheticNeighborhood()
	}
}

// normalizePartial trims every field, upper-cases the house numbers and
// rejects values that cannot be used.
func normalizePartial(p models.PartialAddress) (models.PartialAddress, error) {
	p.State = strings.TrimSpace(p.State)
	p.Municipality = strings.TrimSpace(p.Municipality)
	p.Neighborhood = strings.TrimSpace(p.Neighborhood)
	p.StreetType = strings.TrimSpace(p.StreetType)
	p.StreetName = strings.TrimSpace(p.StreetName)
	p.ExteriorNumber = strings.ToUpper(strings.TrimSpace(p.ExteriorNumber))
	p.InteriorNumber = strings.ToUpper(strings.TrimSpace(p.InteriorNumber))
	p.PostalCode = strings.TrimSpace(p.PostalCode)

	if p.State == "" {
		return p, dErrors.New(dErrors.CodeValidation, "state is required")
	}
	if p.Municipality == "" {
		return p, dErrors.New(dErrors.CodeValidation, "municipality is required")
	}
	if p.PostalCode != "" {
		code, ok := keys.PostalCode(p.PostalCode)
		if !ok {
			return p, dErrors.New(dErrors.CodeValidation, "postal code must have at most 5 digits")
		}
		p.PostalCode = code
	}
	if p.StreetType != "" {
		if _, err := models.ParseStreetType(p.StreetType); err != nil {
			return p, dErrors.Wrap(err, dErrors.CodeValidation, "unknown street type")
		}
	}
	return p, nil
}
