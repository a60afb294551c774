package board

import "sync"

var (
	stdMapOnce sync.Once
	stdMapInst *Map
)

// StandardMap returns the standard 75-province board. The map is built once
// and cached; subsequent calls return the same pointer. Callers must not
// mutate the returned map.
func StandardMap() *Map {
	stdMapOnce.Do(func() {
		stdMapInst = buildStandardMap()
	})
	return stdMapInst
}

func buildStandardMap() *Map {
	b := newMapBuilder()

	// --- Inland provinces (14) ---
	b.prov("BOH", "Bohemia", Land, false, Neutral)
	b.prov("BUD", "Budapest", Land, true, Austria)
	b.prov("BUR", "Burgundy", Land, false, Neutral)
	b.prov("GAL", "Galicia", Land, false, Neutral)
	b.prov("MOS", "Moscow", Land, true, Russia)
	b.prov("MUN", "Munich", Land, true, Germany)
	b.prov("PAR", "Paris", Land, true, France)
	b.prov("RUH", "Ruhr", Land, false, Neutral)
	b.prov("SER", "Serbia", Land, true, Neutral)
	b.prov("SIL", "Silesia", Land, false, Neutral)
	b.prov("TYR", "Tyrolia", Land, false, Neutral)
	b.prov("UKR", "Ukraine", Land, false, Neutral)
	b.prov("VIE", "Vienna", Land, true, Austria)
	b.prov("WAR", "Warsaw", Land, true, Russia)

	// --- Coastal provinces without split coasts (39) ---
	b.prov("ALB", "Albania", Coast, false, Neutral)
	b.prov("ANK", "Ankara", Coast, true, Turkey)
	b.prov("APU", "Apulia", Coast, false, Neutral)
	b.prov("ARM", "Armenia", Coast, false, Neutral)
	b.prov("BEL", "Belgium", Coast, true, Neutral)
	b.prov("BER", "Berlin", Coast, true, Germany)
	b.prov("BRE", "Brest", Coast, true, France)
	b.prov("CLY", "Clyde", Coast, false, Neutral)
	b.prov("CON", "Constantinople", Coast, true, Turkey)
	b.prov("DEN", "Denmark", Coast, true, Neutral)
	b.prov("EDI", "Edinburgh", Coast, true, England)
	b.prov("FIN", "Finland", Coast, false, Neutral)
	b.prov("GAS", "Gascony", Coast, false, Neutral)
	b.prov("GRE", "Greece", Coast, true, Neutral)
	b.prov("HOL", "Holland", Coast, true, Neutral)
	b.prov("KIE", "Kiel", Coast, true, Germany)
	b.prov("LON", "London", Coast, true, England)
	b.prov("LVN", "Livonia", Coast, false, Neutral)
	b.prov("LVP", "Liverpool", Coast, true, England)
	b.prov("MAR", "Marseilles", Coast, true, France)
	b.prov("NAF", "North Africa", Coast, false, Neutral)
	b.prov("NAP", "Naples", Coast, true, Italy)
	b.prov("NWY", "Norway", Coast, true, Neutral)
	b.prov("PIC", "Picardy", Coast, false, Neutral)
	b.prov("PIE", "Piedmont", Coast, false, Neutral)
	b.prov("POR", "Portugal", Coast, true, Neutral)
	b.prov("PRU", "Prussia", Coast, false, Neutral)
	b.prov("ROM", "Rome", Coast, true, Italy)
	b.prov("RUM", "Rumania", Coast, true, Neutral)
	b.prov("SEV", "Sevastopol", Coast, true, Russia)
	b.prov("SMY", "Smyrna", Coast, true, Turkey)
	b.prov("SWE", "Sweden", Coast, true, Neutral)
	b.prov("SYR", "Syria", Coast, false, Neutral)
	b.prov("TRI", "Trieste", Coast, true, Austria)
	b.prov("TUN", "Tunisia", Coast, true, Neutral)
	b.prov("TUS", "Tuscany", Coast, false, Neutral)
	b.prov("VEN", "Venice", Coast, true, Italy)
	b.prov("WAL", "Wales", Coast, false, Neutral)
	b.prov("YOR", "Yorkshire", Coast, false, Neutral)

	// --- Split-coast provinces (3) ---
	b.prov("BUL", "Bulgaria", Coast, true, Neutral, "EC", "SC")
	b.prov("SPA", "Spain", Coast, true, Neutral, "NC", "SC")
	b.prov("STP", "St. Petersburg", Coast, true, Russia, "NC", "SC")

	// --- Sea provinces (19) ---
	b.prov("ADR", "Adriatic Sea", Water, false, Neutral)
	b.prov("AEG", "Aegean Sea", Water, false, Neutral)
	b.prov("BAL", "Baltic Sea", Water, false, Neutral)
	b.prov("BAR", "Barents Sea", Water, false, Neutral)
	b.prov("BLA", "Black Sea", Water, false, Neutral)
	b.prov("BOT", "Gulf of Bothnia", Water, false, Neutral)
	b.prov("EAS", "Eastern Mediterranean", Water, false, Neutral)
	b.prov("ENG", "English Channel", Water, false, Neutral)
	b.prov("GOL", "Gulf of Lyon", Water, false, Neutral)
	b.prov("HEL", "Heligoland Bight", Water, false, Neutral)
	b.prov("ION", "Ionian Sea", Water, false, Neutral)
	b.prov("IRI", "Irish Sea", Water, false, Neutral)
	b.prov("MAO", "Mid-Atlantic Ocean", Water, false, Neutral)
	b.prov("NAO", "North Atlantic Ocean", Water, false, Neutral)
	b.prov("NRG", "Norwegian Sea", Water, false, Neutral)
	b.prov("NTH", "North Sea", Water, false, Neutral)
	b.prov("SKA", "Skagerrak", Water, false, Neutral)
	b.prov("TYS", "Tyrrhenian Sea", Water, false, Neutral)
	b.prov("WES", "Western Mediterranean", Water, false, Neutral)

	// Each adjacency pair appears exactly once. Split-coast fleet edges name
	// the exact coastal coordinate; army edges always use base coordinates.

	// ---- Sea-to-sea (fleet only) ----
	b.seaEdge("ADR", "ION")
	b.seaEdge("AEG", "EAS")
	b.seaEdge("AEG", "ION")
	b.seaEdge("BAL", "BOT")
	b.seaEdge("ENG", "IRI")
	b.seaEdge("ENG", "MAO")
	b.seaEdge("ENG", "NTH")
	b.seaEdge("GOL", "TYS")
	b.seaEdge("GOL", "WES")
	b.seaEdge("HEL", "NTH")
	b.seaEdge("ION", "EAS")
	b.seaEdge("ION", "TYS")
	b.seaEdge("IRI", "MAO")
	b.seaEdge("IRI", "NAO")
	b.seaEdge("MAO", "NAO")
	b.seaEdge("MAO", "WES")
	b.seaEdge("NAO", "NRG")
	b.seaEdge("NTH", "NRG")
	b.seaEdge("NTH", "SKA")
	b.seaEdge("NRG", "BAR")
	b.seaEdge("TYS", "WES")

	// ---- Sea-to-coastal (fleet only) ----
	b.seaEdge("ADR", "ALB")
	b.seaEdge("ADR", "APU")
	b.seaEdge("ADR", "TRI")
	b.seaEdge("ADR", "VEN")

	b.seaEdge("AEG", "BUL/SC")
	b.seaEdge("AEG", "CON")
	b.seaEdge("AEG", "GRE")
	b.seaEdge("AEG", "SMY")

	b.seaEdge("BAL", "BER")
	b.seaEdge("BAL", "DEN")
	b.seaEdge("BAL", "KIE")
	b.seaEdge("BAL", "LVN")
	b.seaEdge("BAL", "PRU")
	b.seaEdge("BAL", "SWE")

	b.seaEdge("BAR", "NWY")
	b.seaEdge("BAR", "STP/NC")

	b.seaEdge("BLA", "ANK")
	b.seaEdge("BLA", "ARM")
	b.seaEdge("BLA", "BUL/EC")
	b.seaEdge("BLA", "CON")
	b.seaEdge("BLA", "RUM")
	b.seaEdge("BLA", "SEV")

	b.seaEdge("BOT", "FIN")
	b.seaEdge("BOT", "LVN")
	b.seaEdge("BOT", "STP/SC")
	b.seaEdge("BOT", "SWE")

	b.seaEdge("EAS", "SMY")
	b.seaEdge("EAS", "SYR")

	b.seaEdge("ENG", "BEL")
	b.seaEdge("ENG", "BRE")
	b.seaEdge("ENG", "LON")
	b.seaEdge("ENG", "PIC")
	b.seaEdge("ENG", "WAL")

	b.seaEdge("GOL", "MAR")
	b.seaEdge("GOL", "PIE")
	b.seaEdge("GOL", "SPA/SC")
	b.seaEdge("GOL", "TUS")

	b.seaEdge("HEL", "DEN")
	b.seaEdge("HEL", "HOL")
	b.seaEdge("HEL", "KIE")

	b.seaEdge("ION", "ALB")
	b.seaEdge("ION", "APU")
	b.seaEdge("ION", "GRE")
	b.seaEdge("ION", "NAP")
	b.seaEdge("ION", "TUN")

	b.seaEdge("IRI", "LVP")
	b.seaEdge("IRI", "WAL")

	b.seaEdge("MAO", "BRE")
	b.seaEdge("MAO", "GAS")
	b.seaEdge("MAO", "NAF")
	b.seaEdge("MAO", "POR")
	b.seaEdge("MAO", "SPA/NC")
	b.seaEdge("MAO", "SPA/SC")

	b.seaEdge("NAO", "CLY")
	b.seaEdge("NAO", "LVP")

	b.seaEdge("NTH", "BEL")
	b.seaEdge("NTH", "DEN")
	b.seaEdge("NTH", "EDI")
	b.seaEdge("NTH", "HOL")
	b.seaEdge("NTH", "LON")
	b.seaEdge("NTH", "NWY")
	b.seaEdge("NTH", "YOR")

	b.seaEdge("NRG", "CLY")
	b.seaEdge("NRG", "EDI")
	b.seaEdge("NRG", "NWY")

	b.seaEdge("SKA", "DEN")
	b.seaEdge("SKA", "NWY")
	b.seaEdge("SKA", "SWE")

	b.seaEdge("TYS", "NAP")
	b.seaEdge("TYS", "ROM")
	b.seaEdge("TYS", "TUN")
	b.seaEdge("TYS", "TUS")

	b.seaEdge("WES", "NAF")
	b.seaEdge("WES", "SPA/SC")
	b.seaEdge("WES", "TUN")

	// ---- Inland-to-inland (army only) ----
	b.landEdge("BOH", "GAL")
	b.landEdge("BOH", "MUN")
	b.landEdge("BOH", "SIL")
	b.landEdge("BOH", "TYR")
	b.landEdge("BOH", "VIE")
	b.landEdge("BUD", "GAL")
	b.landEdge("BUD", "VIE")
	b.landEdge("BUR", "MUN")
	b.landEdge("BUR", "PAR")
	b.landEdge("BUR", "RUH")
	b.landEdge("GAL", "SIL")
	b.landEdge("GAL", "UKR")
	b.landEdge("GAL", "VIE")
	b.landEdge("GAL", "WAR")
	b.landEdge("MOS", "UKR")
	b.landEdge("MOS", "WAR")
	b.landEdge("MUN", "RUH")
	b.landEdge("MUN", "SIL")
	b.landEdge("MUN", "TYR")
	b.landEdge("SIL", "WAR")
	b.landEdge("TYR", "VIE")
	b.landEdge("UKR", "WAR")

	// ---- Inland-to-coastal (army only) ----
	b.landEdge("BUD", "RUM")
	b.landEdge("BUD", "SER")
	b.landEdge("BUD", "TRI")
	b.landEdge("BUR", "BEL")
	b.landEdge("BUR", "GAS")
	b.landEdge("BUR", "MAR")
	b.landEdge("BUR", "PIC")
	b.landEdge("GAL", "RUM")
	b.landEdge("GAS", "MAR")
	b.landEdge("MOS", "LVN")
	b.landEdge("MOS", "SEV")
	b.landEdge("MOS", "STP")
	b.landEdge("MUN", "BER")
	b.landEdge("MUN", "KIE")
	b.landEdge("PAR", "BRE")
	b.landEdge("PAR", "GAS")
	b.landEdge("PAR", "PIC")
	b.landEdge("RUH", "BEL")
	b.landEdge("RUH", "HOL")
	b.landEdge("RUH", "KIE")
	b.landEdge("SER", "ALB")
	b.landEdge("SER", "BUL")
	b.landEdge("SER", "GRE")
	b.landEdge("SER", "RUM")
	b.landEdge("SER", "TRI")
	b.landEdge("SIL", "BER")
	b.landEdge("SIL", "PRU")
	b.landEdge("TYR", "PIE")
	b.landEdge("TYR", "TRI")
	b.landEdge("TYR", "VEN")
	b.landEdge("UKR", "RUM")
	b.landEdge("UKR", "SEV")
	b.landEdge("VIE", "TRI")
	b.landEdge("WAR", "LVN")
	b.landEdge("WAR", "PRU")

	// ---- Coastal-to-coastal sharing both land and sea borders ----
	b.bothEdge("ALB", "GRE")
	b.bothEdge("ALB", "TRI")
	b.bothEdge("ANK", "ARM")
	b.bothEdge("ANK", "CON")
	b.bothEdge("APU", "NAP")
	b.bothEdge("APU", "VEN")
	b.bothEdge("BEL", "HOL")
	b.bothEdge("BEL", "PIC")
	b.bothEdge("BER", "KIE")
	b.bothEdge("BER", "PRU")
	b.bothEdge("BRE", "GAS")
	b.bothEdge("BRE", "PIC")
	b.bothEdge("CLY", "EDI")
	b.bothEdge("CLY", "LVP")
	b.bothEdge("CON", "SMY")
	b.bothEdge("DEN", "KIE")
	b.bothEdge("DEN", "SWE")
	b.bothEdge("EDI", "YOR")
	b.bothEdge("FIN", "SWE")
	b.bothEdge("HOL", "KIE")
	b.bothEdge("LON", "WAL")
	b.bothEdge("LON", "YOR")
	b.bothEdge("LVP", "WAL")
	b.bothEdge("MAR", "PIE")
	b.bothEdge("NAF", "TUN")
	b.bothEdge("NWY", "SWE")
	b.bothEdge("PIE", "TUS")
	b.bothEdge("PRU", "LVN")
	b.bothEdge("ROM", "NAP")
	b.bothEdge("ROM", "TUS")
	b.bothEdge("SEV", "ARM")
	b.bothEdge("SEV", "RUM")
	b.bothEdge("SMY", "SYR")
	b.bothEdge("TRI", "VEN")

	// ---- Coastal-to-coastal: land border only ----
	b.landEdge("ANK", "SMY")
	b.landEdge("APU", "ROM")
	b.landEdge("ARM", "SMY")
	b.landEdge("ARM", "SYR")
	b.landEdge("EDI", "LVP")
	b.landEdge("FIN", "NWY")
	b.landEdge("LVP", "YOR")
	b.landEdge("PIE", "VEN")
	b.landEdge("ROM", "VEN")
	b.landEdge("TUS", "VEN")
	b.landEdge("WAL", "YOR")

	// ---- Coastal-to-split-coast: fleet along the named coast ----
	b.seaEdge("CON", "BUL/EC")
	b.seaEdge("CON", "BUL/SC")
	b.seaEdge("GRE", "BUL/SC")
	b.seaEdge("RUM", "BUL/EC")
	b.seaEdge("GAS", "SPA/NC")
	b.seaEdge("MAR", "SPA/SC")
	b.seaEdge("POR", "SPA/NC")
	b.seaEdge("POR", "SPA/SC")
	b.seaEdge("FIN", "STP/SC")
	b.seaEdge("LVN", "STP/SC")
	b.seaEdge("NWY", "STP/NC")

	// ---- Coastal-to-split-coast: armies ignore coasts ----
	b.landEdge("CON", "BUL")
	b.landEdge("GRE", "BUL")
	b.landEdge("RUM", "BUL")
	b.landEdge("GAS", "SPA")
	b.landEdge("MAR", "SPA")
	b.landEdge("POR", "SPA")
	b.landEdge("FIN", "STP")
	b.landEdge("LVN", "STP")
	b.landEdge("NWY", "STP")

	return b.freeze()
}
