package service

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"mxaddress/internal/address/classify"
	"mxaddress/internal/address/keys"
	"mxaddress/internal/address/models"
)

type request struct {
	state        string
	municipality string
}

// strategy is one level of the resolution cascade. ok is false when the
// strategy had nothing usable and the next one should run.
type strategy interface {
	resolve(ctx context.Context, req request) (addr *models.ResolvedAddress, tier models.Tier, ok bool)
}

// realStrategy cross-references geocoded address points with the postal
// catalog. Only candidates whose postal code is attested for the
// municipality survive.
type realStrategy struct {
	svc *Service
}

type scoredCandidate struct {
	candidate models.RawStreetCandidate
	typ       models.StreetType
	name      string
}

func (st *realStrategy) resolve(ctx context.Context, req request) (*models.ResolvedAddress, models.Tier, bool) {
	s := st.svc

	var candidates []models.RawStreetCandidate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.candidates.Candidates(gctx, req.state, req.municipality)
		candidates = found
		return err
	})
	g.Go(func() error {
		return s.ensureCatalog(gctx)
	})
	if err := g.Wait(); err != nil {
		s.logger.DebugContext(ctx, "real address tier skipped", "error", err)
		return nil, "", false
	}
	if len(candidates) == 0 {
		return nil, "", false
	}

	byCode := neighborhoodsByCode(s.catalog.Lookup(req.state, req.municipality))
	if len(byCode) == 0 {
		return nil, "", false
	}

	var attested []scoredCandidate
	for _, c := range candidates {
		if _, ok := byCode[c.PostalCode]; !ok {
			continue
		}
		name := strings.ToUpper(strings.TrimSpace(c.StreetName))
		attested = append(attested, scoredCandidate{
			candidate: c,
			typ:       classify.InferStreetType(name),
			name:      name,
		})
	}
	if len(attested) == 0 {
		s.logger.DebugContext(ctx, "no candidate postal code attested in catalog",
			"state", req.state,
			"municipality", req.municipality,
			"candidates", len(candidates),
		)
		return nil, "", false
	}

	pool := preferred(attested)
	chosen := pool[s.rand.index(len(pool))]
	c := chosen.candidate

	addr := &models.ResolvedAddress{
		Neighborhood:   st.neighborhood(c, byCode[c.PostalCode]),
		StreetType:     chosen.typ,
		StreetName:     classify.StripGenericPrefix(chosen.typ, chosen.name),
		ExteriorNumber: strings.TrimSpace(c.HouseNumber),
		InteriorNumber: interiorFromUnit(c.Unit, s.rand),
		PostalCode:     c.PostalCode,
	}
	return addr, models.TierReal, true
}

// neighborhood returns the catalog spelling of the candidate's neighborhood
// when it is valid for the postal code, else a random valid one.
func (st *realStrategy) neighborhood(c models.RawStreetCandidate, valid []string) string {
	if want := keys.Normalize(c.Neighborhood); want != "" {
		for _, n := range valid {
			if keys.Normalize(n) == want {
				return n
			}
		}
	}
	return st.svc.rand.pick(valid)
}

// preferred narrows candidates to the best non-empty preference level:
// short urban names, then any urban name, then everything.
func preferred(candidates []scoredCandidate) []scoredCandidate {
	var short, urban []scoredCandidate
	for _, c := range candidates {
		if !classify.IsUrbanPlausible(c.name) {
			continue
		}
		urban = append(urban, c)
		if utf8.RuneCountInString(c.name) <= classify.ShortNameLimit {
			short = append(short, c)
		}
	}
	switch {
	case len(short) > 0:
		return short
	case len(urban) > 0:
		return urban
	default:
		return candidates
	}
}

// neighborhoodsByCode groups catalog entries by postal code, keeping the
// first-seen order of neighborhoods and dropping duplicates.
func neighborhoodsByCode(entries []models.PostalEntry) map[string][]string {
	byCode := make(map[string][]string, len(entries))
	seen := make(map[models.PostalEntry]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		byCode[e.PostalCode] = append(byCode[e.PostalCode], e.Neighborhood)
	}
	return byCode
}

func interiorFromUnit(unit string, r *randomSource) string {
	unit = strings.TrimSpace(unit)
	if unit == "" || strings.EqualFold(unit, models.InteriorNoNumber) {
		return r.interiorNumber()
	}
	return unit
}

// fallbackStrategy builds an address from a catalog entry, or from invented
// data when the catalog has none for the key. It always succeeds.
type fallbackStrategy struct {
	svc *Service
}

func (st *fallbackStrategy) resolve(ctx context.Context, req request) (*models.ResolvedAddress, models.Tier, bool) {
	s := st.svc

	tier := models.TierCatalog
	var postalCode, neighborhood string
	if entries := s.entriesFor(ctx, req.state, req.municipality); len(entries) > 0 {
		e := entries[s.rand.index(len(entries))]
		postalCode, neighborhood = e.PostalCode, e.Neighborhood
	} else {
		tier = models.TierSynthetic
		postalCode = s.rand.pseudoPostalCode()
		neighborhood = s.rand.syntheticNeighborhood()
	}

	typ, name := s.pickStreet(ctx, req.state, req.municipality, neighborhood)

	addr := &models.ResolvedAddress{
		Neighborhood:   neighborhood,
		StreetType:     typ,
		StreetName:     name,
		ExteriorNumber: strconv.Itoa(s.rand.between(100, 999)),
		InteriorNumber: s.rand.interiorNumber(),
		PostalCode:     postalCode,
	}
	return addr, tier, true
}

// pickStreet returns a real road of the neighborhood when one is known, or a
// random type and name from the reference lists.
func (s *Service) pickStreet(ctx context.Context, state, municipality, neighborhood string) (models.StreetType, string) {
	segments := s.neighborhoodStreets(ctx, state, municipality, neighborhood)
	if len(segments) > 0 {
		seg := segments[s.rand.index(len(segments))]
		name := strings.ToUpper(strings.TrimSpace(seg.Name))
		typ := seg.Type
		if !typ.IsValid() {
			typ = classify.InferStreetType(name)
		}
		if stripped := classify.StripGenericPrefix(typ, name); stripped != "" {
			return typ, stripped
		}
	}
	return s.rand.streetType(classify.StreetTypeWords), s.rand.pick(classify.StreetNameWords)
}
