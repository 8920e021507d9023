package models

import (
	"fmt"

	"mxaddress/internal/address/keys"
)

// StreetType is the road-type label printed before a street name.
type StreetType uint8

const (
	StreetTypeUnknown StreetType = iota
	StreetTypeCalle
	StreetTypeAvenida
	StreetTypeBoulevard
	StreetTypeBlvd
	StreetTypeCalzada
	StreetTypeCarretera
	StreetTypeCamino
	StreetTypeAndador
	StreetTypeCerrada
	StreetTypeCircuito
	StreetTypeRetorno
	StreetTypeViaducto
	StreetTypeEje
	StreetTypeEjeVial
	StreetTypePeriferico
	StreetTypeLibramiento
	StreetTypeProlongacion
	StreetTypePasoADesnivel
	StreetTypePasoANivel
	StreetTypeBrecha
	StreetTypeVereda
	StreetTypeCuota
	StreetTypeAutopista
	StreetTypeDiagonal
	StreetTypeGlorieta
	StreetTypePasaje
	StreetTypePeatonal
	StreetTypeSendero
	StreetTypeTravesia
	StreetTypeVialidad
	StreetTypeCorredor
	StreetTypeMalecon
	StreetTypeParVial
	StreetTypePaseo
	StreetTypeAcceso
	StreetTypeEnsenada
	StreetTypeTramo
	StreetTypeZona
	StreetTypeSeccion
	StreetTypeManzana
	StreetTypePrivada
	StreetTypeUnidadHabitacional
	StreetTypeFraccionamiento
	StreetTypeRancho
	StreetTypeEjido
	StreetTypeParcela
	StreetTypeNodoVial
	StreetTypeEntronque
	StreetTypeDistribuidorVial

	streetTypeCount
)

var streetTypeNames = [streetTypeCount]string{
	StreetTypeUnknown:            "",
	StreetTypeCalle:              "CALLE",
	StreetTypeAvenida:            "AVENIDA",
	StreetTypeBoulevard:          "BOULEVARD",
	StreetTypeBlvd:               "BLVD",
	StreetTypeCalzada:            "CALZADA",
	StreetTypeCarretera:          "CARRETERA",
	StreetTypeCamino:             "CAMINO",
	StreetTypeAndador:            "ANDADOR",
	StreetTypeCerrada:            "CERRADA",
	StreetTypeCircuito:           "CIRCUITO",
	StreetTypeRetorno:            "RETORNO",
	StreetTypeViaducto:           "VIADUCTO",
	StreetTypeEje:                "EJE",
	StreetTypeEjeVial:            "EJE VIAL",
	StreetTypePeriferico:         "PERIFERICO",
	StreetTypeLibramiento:        "LIBRAMIENTO",
	StreetTypeProlongacion:       "PROLONGACION",
	StreetTypePasoADesnivel:      "PASO A DESNIVEL",
	StreetTypePasoANivel:         "PASO A NIVEL",
	StreetTypeBrecha:             "BRECHA",
	StreetTypeVereda:             "VEREDA",
	StreetTypeCuota:              "CUOTA",
	StreetTypeAutopista:          "AUTOPISTA",
	StreetTypeDiagonal:           "DIAGONAL",
	StreetTypeGlorieta:           "GLORIETA",
	StreetTypePasaje:             "PASAJE",
	StreetTypePeatonal:           "PEATONAL",
	StreetTypeSendero:            "SENDERO",
	StreetTypeTravesia:           "TRAVESIA",
	StreetTypeVialidad:           "VIALIDAD",
	StreetTypeCorredor:           "CORREDOR",
	StreetTypeMalecon:            "MALECON",
	StreetTypeParVial:            "PAR VIAL",
	StreetTypePaseo:              "PASEO",
	StreetTypeAcceso:             "ACCESO",
	StreetTypeEnsenada:           "ENSEÑADA",
	StreetTypeTramo:              "TRAMO",
	StreetTypeZona:               "ZONA",
	StreetTypeSeccion:            "SECCION",
	StreetTypeManzana:            "MANZANA",
	StreetTypePrivada:            "PRIVADA",
	StreetTypeUnidadHabitacional: "UNIDAD HABITACIONAL",
	StreetTypeFraccionamiento:    "FRACCIONAMIENTO",
	StreetTypeRancho:             "RANCHO",
	StreetTypeEjido:              "EJIDO",
	StreetTypeParcela:            "PARCELA",
	StreetTypeNodoVial:           "NODO VIAL",
	StreetTypeEntronque:          "ENTRONQUE",
	StreetTypeDistribuidorVial:   "DISTRIBUIDOR VIAL",
}

// streetTypesByKey maps the normalized display name to its type, so parsing
// tolerates case, accents and extra spaces.
var streetTypesByKey = func() map[keys.Key]StreetType {
	m := make(map[keys.Key]StreetType, streetTypeCount)
	for t := StreetTypeCalle; t < streetTypeCount; t++ {
		m[keys.Normalize(streetTypeNames[t])] = t
	}
	return m
}()

func (t StreetType) String() string {
	if t >= streetTypeCount {
		return ""
	}
	return streetTypeNames[t]
}

// IsValid reports whether t is a known, non-zero street type.
func (t StreetType) IsValid() bool {
	return t > StreetTypeUnknown && t < streetTypeCount
}

// AllStreetTypes returns every valid street type in declaration order.
func AllStreetTypes() []StreetType {
	out := make([]StreetType, 0, streetTypeCount-1)
	for t := StreetTypeCalle; t < streetTypeCount; t++ {
		out = append(out, t)
	}
	return out
}

// ParseStreetType resolves a display name such as "Avenida" or "eje  vial".
func ParseStreetType(s string) (StreetType, error) {
	if t, ok := streetTypesByKey[keys.Normalize(s)]; ok {
		return t, nil
	}
	return StreetTypeUnknown, fmt.Errorf("unknown street type %q", s)
}

func (t StreetType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid street type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *StreetType) UnmarshalText(text []byte) error {
	parsed, err := ParseStreetType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
