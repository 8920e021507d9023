package service

import (
	"strconv"
	"sync"

	"github.com/brianvoe/gofakeit/v6"

	"mxaddress/internal/address/models"
)

// randomSource serializes access to a seedable faker. Seed 0 seeds from
// crypto/rand, so output differs across runs.
type randomSource struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

func newRandomSource(seed int64) *randomSource {
	return &randomSource{faker: gofakeit.New(seed)}
}

// between returns a uniform int in [lo, hi].
func (r *randomSource) between(lo, hi int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.faker.Number(lo, hi)
}

// index returns a uniform index into a slice of length n > 0.
func (r *randomSource) index(n int) int {
	return r.between(0, n-1)
}

func (r *randomSource) float() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.faker.Float64()
}

func (r *randomSource) pick(values []string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.faker.RandomString(values)
}

// interiorNumber draws the interior number of a generated address:
// 60% none, 25% "S/N", 15% a numeral from 1 to 10.
func (r *randomSource) interiorNumber() string {
	switch p := r.float(); {
	case p < 0.60:
		return models.InteriorNone
	case p < 0.85:
		return models.InteriorNoNumber
	default:
		return strconv.Itoa(r.between(1, 10))
	}
}

// completionInterior draws the interior number for a completed manual
// address: 40% "S/N", otherwise a numeral from 1 to 50.
func (r *randomSource) completionInterior() string {
	if r.float() < 0.40 {
		return models.InteriorNoNumber
	}
	return strconv.Itoa(r.between(1, 50))
}

// pseudoPostalCode invents a 5-digit code: a 2-digit region prefix (10-99)
// and three random digits.
func (r *randomSource) pseudoPostalCode() string {
	prefix := r.between(10, 99)
	r.mu.Lock()
	defer r.mu.Unlock()
	return strconv.Itoa(prefix) + r.faker.Numerify("###")
}

func (r *randomSource) syntheticNeighborhood() string {
	return "COLONIA " + strconv.Itoa(r.between(1, 200))
}

func (r *randomSource) streetType(types []models.StreetType) models.StreetType {
	return types[r.index(len(types))]
}
