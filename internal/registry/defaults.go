package registry

// defaultConfig describes the currently deployed fleet. TSGR units are the
// plant-room group units; everything else sits on floor 4.
var defaultConfig = Config{
	Units: []string{
		"A0101", "A0102", "A0103", "A0104", "A0105", "A0106", "A0107", "A0108",
		"A0201", "A0202", "A0203", "A0204", "A0205", "A0206", "A0207", "A0208",
		"A0301", "A0302", "A0303", "A0304", "A0305", "A0306", "A0307", "A0308",
		"A0401b", "A0401", "A0402", "A0403", "A0404", "A0405", "A0406",
		"A0501", "A0502", "A0503", "A0504", "A0505", "A0506", "A0507", "A0508",
		"A0601", "A0602", "A0603", "A0604", "A0605", "A0606", "A0606b",
		"TSGR1", "TSGR2", "TSGR3",
	},
	Floors: []FloorRule{
		{Prefix: "TSGR", Floor: TechnicalFloor},
		{Prefix: "A", Floor: "4"},
	},
	FailureTags: []string{
		"Ventilateur HS",
		"Compresseur HS",
		"Fusible HS",
		"Non communiquant",
		"Filtre sale",
		"Filtre à tamis obstrué",
		"Régulateur HS",
		"Mauvais zoning",
		"Problème condensats",
		"Sonde t° HS",
		"Non opérable via GTB",
	},
}
