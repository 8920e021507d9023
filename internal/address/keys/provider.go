package keys

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// providerStates holds geocoder spellings that title-casing gets wrong.
var providerStates = map[Key]string{
	"CIUDAD DE MEXICO":                "Ciudad de México",
	"MEXICO":                          "Estado de México",
	"VERACRUZ DE IGNACIO DE LA LLAVE": "Veracruz",
	"COAHUILA DE ZARAGOZA":            "Coahuila",
	"MICHOACAN DE OCAMPO":             "Michoacán",
}

// ProviderState returns the state spelling the geocoder expects.
func ProviderState(text string) string {
	if name, ok := providerStates[CanonicalState(text)]; ok {
		return name
	}
	return titleCase(text)
}

// ProviderMunicipality returns the municipality spelling the geocoder expects.
func ProviderMunicipality(text string) string {
	return titleCase(text)
}

// DisplayState returns the official long form for the Veracruz spellings and
// the input otherwise.
func DisplayState(text string) string {
	if CanonicalState(text) == "VERACRUZ DE IGNACIO DE LA LLAVE" {
		return "VERACRUZ DE IGNACIO DE LA LLAVE"
	}
	return text
}

func titleCase(text string) string {
	return cases.Title(language.Spanish).String(strings.ToLower(strings.Join(strings.Fields(text), " ")))
}
