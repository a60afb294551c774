// Package board embeds the standard-map rules oracle the agent layer plays
// on: province metadata, unit-kind-aware adjacency, and board snapshots.
// It knows nothing about prompts or LLMs; it only answers map questions.
package board

import (
	"sort"
	"strings"
)

// TerrainKind classifies a province as land, water, or coast.
type TerrainKind int

const (
	UnknownTerrain TerrainKind = iota
	Land                       // inland, armies only
	Water                      // open sea, fleets only
	Coast                      // shoreline, armies or fleets
)

func (t TerrainKind) String() string {
	switch t {
	case Land:
		return "LAND"
	case Water:
		return "WATER"
	case Coast:
		return "COAST"
	}
	return "UNKNOWN"
}

// UnitKind is the type of a military unit, which determines the edge set a
// unit may traverse.
type UnitKind int

const (
	Army UnitKind = iota
	Fleet
)

func (k UnitKind) String() string {
	if k == Army {
		return "A"
	}
	return "F"
}

// Power names a great power. The empty power marks neutral ownership.
type Power string

const (
	Austria Power = "AUSTRIA"
	England Power = "ENGLAND"
	France  Power = "FRANCE"
	Germany Power = "GERMANY"
	Italy   Power = "ITALY"
	Russia  Power = "RUSSIA"
	Turkey  Power = "TURKEY"
	Neutral Power = ""
)

// AllPowers returns the seven great powers in standard order.
func AllPowers() []Power {
	return []Power{Austria, England, France, Germany, Italy, Russia, Turkey}
}

// ShortCode normalizes a full location coordinate to its three-letter
// uppercase province code. A coordinate like "STP/SC" normalizes to "STP".
// Returns "" for tokens too short to carry a province code.
func ShortCode(full string) string {
	base := full
	if i := strings.IndexAny(full, "/ "); i >= 0 {
		base = full[:i]
	}
	base = strings.TrimSpace(base)
	if len(base) < 3 {
		return ""
	}
	return strings.ToUpper(base[:3])
}

// Unit is a single military unit on the board. Loc is a full coordinate and
// may carry a coastal variant for fleets on split-coast provinces.
type Unit struct {
	Kind  UnitKind `json:"kind"`
	Power Power    `json:"power"`
	Loc   string   `json:"loc"`
}

// Descriptor renders the unit in standard notation, e.g. "A PAR" or "F STP/SC".
func (u Unit) Descriptor() string {
	return u.Kind.String() + " " + u.Loc
}

// GameState is a read-only snapshot of unit positions and supply-center
// ownership at one instant.
type GameState struct {
	Year    int              `json:"year"`
	Season  string           `json:"season"`
	Units   []Unit           `json:"units"`
	Centers map[string]Power `json:"centers"` // short code -> owning power
}

// UnitAt returns the unit at the given full coordinate, or nil if none.
func (gs *GameState) UnitAt(loc string) *Unit {
	for i := range gs.Units {
		if gs.Units[i].Loc == loc {
			return &gs.Units[i]
		}
	}
	return nil
}

// UnitsOf returns all units belonging to the given power.
func (gs *GameState) UnitsOf(power Power) []Unit {
	var units []Unit
	for _, u := range gs.Units {
		if u.Power == power {
			units = append(units, u)
		}
	}
	return units
}

// CentersOf returns the short codes of supply centers owned by the given
// power, sorted ascending.
func (gs *GameState) CentersOf(power Power) []string {
	var codes []string
	for code, owner := range gs.Centers {
		if owner == power {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// PowerIsAlive reports whether the power still has a unit or a supply center.
func (gs *GameState) PowerIsAlive(power Power) bool {
	for _, u := range gs.Units {
		if u.Power == power {
			return true
		}
	}
	for _, owner := range gs.Centers {
		if owner == power {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the snapshot.
func (gs *GameState) Clone() *GameState {
	c := &GameState{Year: gs.Year, Season: gs.Season}
	if gs.Units != nil {
		c.Units = make([]Unit, len(gs.Units))
		copy(c.Units, gs.Units)
	}
	if gs.Centers != nil {
		c.Centers = make(map[string]Power, len(gs.Centers))
		for k, v := range gs.Centers {
			c.Centers[k] = v
		}
	}
	return c
}

// NewInitialState returns the standard 1901 starting position.
func NewInitialState() *GameState {
	return &GameState{
		Year:   1901,
		Season: "SPRING",
		Units:  initialUnits(),
		Centers: map[string]Power{
			"VIE": Austria, "BUD": Austria, "TRI": Austria,
			"LON": England, "EDI": England, "LVP": England,
			"BRE": France, "PAR": France, "MAR": France,
			"KIE": Germany, "BER": Germany, "MUN": Germany,
			"NAP": Italy, "ROM": Italy, "VEN": Italy,
			"STP": Russia, "MOS": Russia, "WAR": Russia, "SEV": Russia,
			"ANK": Turkey, "CON": Turkey, "SMY": Turkey,
			"NWY": Neutral, "SWE": Neutral, "DEN": Neutral,
			"HOL": Neutral, "BEL": Neutral, "SPA": Neutral,
			"POR": Neutral, "TUN": Neutral, "GRE": Neutral,
			"SER": Neutral, "BUL": Neutral, "RUM": Neutral,
		},
	}
}

func initialUnits() []Unit {
	return []Unit{
		{Army, Austria, "VIE"},
		{Army, Austria, "BUD"},
		{Fleet, Austria, "TRI"},
		{Fleet, England, "LON"},
		{Fleet, England, "EDI"},
		{Army, England, "LVP"},
		{Fleet, France, "BRE"},
		{Army, France, "PAR"},
		{Army, France, "MAR"},
		{Fleet, Germany, "KIE"},
		{Army, Germany, "BER"},
		{Army, Germany, "MUN"},
		{Fleet, Italy, "NAP"},
		{Army, Italy, "ROM"},
		{Army, Italy, "VEN"},
		{Fleet, Russia, "STP/SC"},
		{Army, Russia, "MOS"},
		{Army, Russia, "WAR"},
		{Fleet, Russia, "SEV"},
		{Fleet, Turkey, "ANK"},
		{Army, Turkey, "CON"},
		{Army, Turkey, "SMY"},
	}
}
