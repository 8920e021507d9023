// Package classify labels street names with a street type and scores them as
// urban or rural/technical. The rules are lexical heuristics; false positives
// are expected.
package classify

import (
	"strings"
	"unicode/utf8"

	"mxaddress/internal/address/keys"
	"mxaddress/internal/address/models"
)

// prefixRule maps leading tokens to a street type. Rules are checked in order.
type prefixRule struct {
	prefixes []string
	typ      models.StreetType
}

var prefixRules = []prefixRule{
	{[]string{"AV ", "AV. ", "AVENIDA "}, models.StreetTypeAvenida},
	{[]string{"BLVD ", "BLVD. ", "BOULEVARD "}, models.StreetTypeBoulevard},
	{[]string{"CALZ ", "CALZ. ", "CALZADA "}, models.StreetTypeCalzada},
	{[]string{"CARRETERA ", "CTRA ", "CTRA. "}, models.StreetTypeCarretera},
	{[]string{"PROL ", "PROL. ", "PROLONGACION "}, models.StreetTypeProlongacion},
	{[]string{"ANDADOR "}, models.StreetTypeAndador},
	{[]string{"CERRADA "}, models.StreetTypeCerrada},
	{[]string{"CIRCUITO "}, models.StreetTypeCircuito},
	{[]string{"RETORNO "}, models.StreetTypeRetorno},
	{[]string{"PASEO "}, models.StreetTypePaseo},
	{[]string{"VIADUCTO "}, models.StreetTypeViaducto},
	{[]string{"PERIFERICO "}, models.StreetTypePeriferico},
	{[]string{"LIBRAMIENTO "}, models.StreetTypeLibramiento},
	{[]string{"AUTOPISTA "}, models.StreetTypeAutopista},
	{[]string{"CAMINO "}, models.StreetTypeCamino},
}

// ruralMarkers flag route segments, junctions and highways.
var ruralMarkers = []string{
	"RAMAL",
	"TRAMO",
	"ENTRONQUE",
	"LIBRAMIENTO",
	"CUOTA",
	"AUTOPISTA",
	"PERIFERICO",
	"CARRETERA",
	"BRECHA",
	"VEREDA",
	"KM",
	"KILOMETRO",
}

const (
	// ShortNameLimit is the preferred maximum length for a selected street name.
	ShortNameLimit = 25
	maxUrbanLength = 40
)

// InferStreetType returns the type implied by the leading word of name, or
// StreetTypeCalle when nothing matches.
func InferStreetType(name string) models.StreetType {
	n := keys.Normalize(name)
	for _, rule := range prefixRules {
		for _, p := range rule.prefixes {
			if strings.HasPrefix(n, p) {
				return rule.typ
			}
		}
	}
	return models.StreetTypeCalle
}

// IsUrbanPlausible reports whether name reads like a city street rather than
// a highway segment or rural path.
func IsUrbanPlausible(name string) bool {
	n := keys.Normalize(name)
	if n == "" {
		return false
	}
	for _, marker := range ruralMarkers {
		if strings.Contains(n, marker) {
			return false
		}
	}
	length := utf8.RuneCountInString(n)
	if strings.Contains(n, "-") && length > ShortNameLimit {
		return false
	}
	return length <= maxUrbanLength
}

// StreetTypeForHighway maps an OpenStreetMap highway tag to a street type.
func StreetTypeForHighway(tag string) models.StreetType {
	switch tag {
	case "primary", "secondary", "tertiary", "trunk":
		return models.StreetTypeAvenida
	case "motorway":
		return models.StreetTypeCarretera
	case "service":
		return models.StreetTypePrivada
	case "footway", "path":
		return models.StreetTypeAndador
	default:
		return models.StreetTypeCalle
	}
}

// StripGenericPrefix drops a leading "CALLE " from name when t is the generic
// type, so the rendered address never reads "CALLE CALLE X".
func StripGenericPrefix(t models.StreetType, name string) string {
	name = strings.TrimSpace(name)
	if t == models.StreetTypeCalle && strings.HasPrefix(name, "CALLE ") {
		return strings.TrimSpace(name[len("CALLE "):])
	}
	return name
}
