// Package keys canonicalizes free-text place names so values from the postal
// catalog, the geocoder and callers can be compared by equality.
package keys

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key is an upper-cased, accent-stripped, whitespace-collapsed string.
type Key = string

// Normalize trims, upper-cases, strips combining marks and collapses
// whitespace runs. Empty input yields "".
func Normalize(text string) Key {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	// transform.Chain keeps per-use buffers, so it is built per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripMarks, strings.ToUpper(text))
	if err != nil {
		stripped = strings.ToUpper(text)
	}
	return strings.Join(strings.Fields(stripped), " ")
}

// CanonicalState normalizes a state name and maps known alternate spellings
// and abbreviations to the catalog spelling. Unknown names pass through
// normalized.
func CanonicalState(text string) Key {
	base := Normalize(text)
	if canonical, ok := stateAliases[base]; ok {
		return canonical
	}
	return base
}

var stateAliases = map[Key]Key{
	"AGUASCALIENTES": "AGUASCALIENTES",
	"AGUASCALIENTE":  "AGUASCALIENTES",
	"AGS":            "AGUASCALIENTES",

	"BAJA CALIFORNIA":       "BAJA CALIFORNIA",
	"BAJA CALIFORNIA NORTE": "BAJA CALIFORNIA",
	"BC":                    "BAJA CALIFORNIA",

	"BAJA CALIFORNIA SUR": "BAJA CALIFORNIA SUR",
	"BCS":                 "BAJA CALIFORNIA SUR",

	"CAMPECHE": "CAMPECHE",
	"CHIAPAS":  "CHIAPAS",

	"CHIHUAHUA": "CHIHUAHUA",
	"CHIH":      "CHIHUAHUA",

	"CIUDAD DE MEXICO": "CIUDAD DE MEXICO",
	"CDMX":             "CIUDAD DE MEXICO",
	"DISTRITO FEDERAL": "CIUDAD DE MEXICO",
	"DF":               "CIUDAD DE MEXICO",
	"D.F.":             "CIUDAD DE MEXICO",

	"COAHUILA":             "COAHUILA DE ZARAGOZA",
	"COAHUILA DE ZARAGOZA": "COAHUILA DE ZARAGOZA",

	"COLIMA":  "COLIMA",
	"DURANGO": "DURANGO",

	"GUANAJUATO": "GUANAJUATO",
	"GTO":        "GUANAJUATO",

	"GUERRERO": "GUERRERO",

	"HIDALGO":           "HIDALGO",
	"HIDALGO DE OCAMPO": "HIDALGO",

	"JALISCO": "JALISCO",

	"MEXICO":           "MEXICO",
	"ESTADO DE MEXICO": "MEXICO",
	"EDO DE MEXICO":    "MEXICO",
	"EDO. DE MEXICO":   "MEXICO",
	"EDOMEX":           "MEXICO",

	"MICHOACAN":           "MICHOACAN DE OCAMPO",
	"MICHOACAN DE OCAMPO": "MICHOACAN DE OCAMPO",

	"MORELOS": "MORELOS",
	"NAYARIT": "NAYARIT",

	"NUEVO LEON": "NUEVO LEON",
	"NL":         "NUEVO LEON",

	"OAXACA": "OAXACA",

	"PUEBLA":             "PUEBLA",
	"PUEBLA DE ZARAGOZA": "PUEBLA",

	"QUERETARO":            "QUERETARO",
	"QUERETARO DE ARTEAGA": "QUERETARO",
	"QRO":                  "QUERETARO",

	"QUINTANA ROO": "QUINTANA ROO",
	"QROO":         "QUINTANA ROO",

	"SAN LUIS POTOSI": "SAN LUIS POTOSI",
	"SLP":             "SAN LUIS POTOSI",

	"SINALOA":    "SINALOA",
	"SONORA":     "SONORA",
	"TABASCO":    "TABASCO",
	"TAMAULIPAS": "TAMAULIPAS",

	"TLAXCALA":                 "TLAXCALA",
	"TLAXCALA DE XICOHTENCATL": "TLAXCALA",

	"VERACRUZ":                        "VERACRUZ DE IGNACIO DE LA LLAVE",
	"VERACRUZ DE IGNACIO DE LA LLAVE": "VERACRUZ DE IGNACIO DE LA LLAVE",
	"VERACRUZ LLAVE":                  "VERACRUZ DE IGNACIO DE LA LLAVE",
	"VERACRUZ-LLAVE":                  "VERACRUZ DE IGNACIO DE LA LLAVE",

	"YUCATAN":   "YUCATAN",
	"ZACATECAS": "ZACATECAS",
}

// PostalCode cleans a raw postal code: a spreadsheet float such as "88500.0"
// loses its fraction, other non-digits ("C.P. 88500") are stripped and the
// result is left-padded to 5 digits. ok is false when no digits remain or
// more than 5 do.
func PostalCode(raw string) (code string, ok bool) {
	raw = strings.TrimSpace(raw)
	if whole, frac, found := strings.Cut(raw, "."); found && isDigits(whole) && isDigits(frac) {
		raw = whole
	}
	digits := strings.Map(func(r rune) rune {
		if isDigit(r) {
			return r
		}
		return -1
	}, raw)
	if digits == "" || len(digits) > 5 {
		return "", false
	}
	return strings.Repeat("0", 5-len(digits)) + digits, true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// isDigits reports whether s is non-empty and all ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}
	return true
}
