package classify

import "mxaddress/internal/address/models"

// StreetTypeWords are the street types drawn when no real street is known.
var StreetTypeWords = models.AllStreetTypes()

// StreetNameWords are common Mexican street names drawn when no real street
// is known.
var StreetNameWords = []string{
	// historical figures
	"HIDALGO",
	"JUAREZ",
	"MORELOS",
	"MADERO",
	"OBREGON",
	"ZARAGOZA",
	"ITURBIDE",
	"REFORMA",
	"INSURGENTES",
	"CONSTITUCION",
	"INDEPENDENCIA",
	"REVOLUCION",
	"BENITO JUAREZ",
	"EMILIANO ZAPATA",
	"VENUSTIANO CARRANZA",
	"FRANCISCO I MADERO",
	"ADOLFO LOPEZ MATEOS",
	"LAZARO CARDENAS",
	"MANUEL AVILA CAMACHO",

	// colonial surnames
	"GUERRERO",
	"ALLENDE",
	"ALDAMA",
	"MINA",
	"VICTORIA",
	"MATAMOROS",
	"BRAVO",
	"GALEANA",
	"ALVARADO",
	"HERRERA",
	"ESCOBEDO",
	"TREVIÑO",
	"ZAMORA",
	"SALINAS",
	"RAMIREZ",
	"RODRIGUEZ",
	"ROCHA",

	// dates
	"5 DE MAYO",
	"16 DE SEPTIEMBRE",
	"20 DE NOVIEMBRE",
	"1 DE MAYO",
	"18 DE MARZO",
	"24 DE FEBRERO",
	"21 DE MARZO",
	"12 DE OCTUBRE",

	// landscape
	"LAS PALMAS",
	"LOS PINOS",
	"LAS FLORES",
	"EL ROCIO",
	"EL MIRADOR",
	"LA LOMA",
	"LA SIERRA",
	"EL BOSQUE",
	"EL PARAISO",
	"EL NARANJO",
	"LOS ENCINOS",
	"EL ROBLE",
	"LA CEIBA",

	// subdivisions
	"DEL SOL",
	"DEL VALLE",
	"LAS AMERICAS",
	"LOS ARCOS",
	"MONTE CARLO",
	"MONTEBELLO",
	"LOS OLIVOS",
	"RESIDENCIAL DEL NORTE",
	"RESIDENCIAL DEL SUR",
	"TORRES DEL VALLE",
	"PASEOS DEL SOL",

	// culture and science
	"SOR JUANA",
	"OCTAVIO PAZ",
	"PANCHO VILLA",
	"NEZAHUALCOYOTL",
	"NETZAHUALCOYOTL",
	"FRIDA KAHLO",
	"DIEGO RIVERA",
	"DAVID ALFARO SIQUEIROS",
	"CARLOS FUENTES",
	"MARIO MOLINA",

	// industrial
	"INDUSTRIAL",
	"COMERCIAL",
	"LOGISTICA",
	"FERROCARRIL",
	"AEROPUERTO",
	"PARQUE INDUSTRIAL",
}
