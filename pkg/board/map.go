package board

import "sort"

// Province holds the static metadata for one board province.
type Province struct {
	Code         string // three-letter uppercase code
	Name         string
	Terrain      TerrainKind
	SupplyCenter bool
	Home         Power    // power whose home center this is ("" if none)
	CoastTags    []string // non-empty only for split-coast provinces, e.g. ["NC","SC"]
}

// edge is one directed adjacency between full coordinates.
type edge struct {
	to    string
	army  bool
	fleet bool
}

// Map is the static rules oracle for a board: provinces, the full coordinate
// list, coastal variants, and the unit-kind abutment predicate. A Map is
// immutable once built.
type Map struct {
	provinces map[string]*Province
	locs      []string            // every full coordinate, sorted ascending
	variants  map[string][]string // short code -> its full coordinates, sorted
	shortOf   map[string]string   // full coordinate -> short code
	centers   []string            // supply-center short codes, sorted
	adj       map[string][]edge   // keyed by from full coordinate
}

// Locations returns every full coordinate on the map, sorted ascending.
func (m *Map) Locations() []string { return m.locs }

// Variants returns the full coordinates belonging to a short code: the base
// coordinate plus any coastal variants. Nil for unknown codes.
func (m *Map) Variants(short string) []string { return m.variants[short] }

// ShortCode returns the short province code for a full coordinate, or "" if
// the coordinate is not on the map.
func (m *Map) ShortCode(full string) string { return m.shortOf[full] }

// Terrain returns the terrain kind of a short code.
func (m *Map) Terrain(short string) TerrainKind {
	p, ok := m.provinces[short]
	if !ok {
		return UnknownTerrain
	}
	return p.Terrain
}

// SupplyCenters returns the short codes of all supply-center provinces,
// sorted ascending.
func (m *Map) SupplyCenters() []string { return m.centers }

// Province returns the metadata for a short code, or nil if unknown.
func (m *Map) Province(short string) *Province { return m.provinces[short] }

// Abuts reports whether a unit of the given kind may move directly from one
// full coordinate to another.
func (m *Map) Abuts(kind UnitKind, from, to string) bool {
	for _, e := range m.adj[from] {
		if e.to != to {
			continue
		}
		if kind == Fleet {
			if e.fleet {
				return true
			}
			continue
		}
		if e.army {
			return true
		}
	}
	return false
}

// mapBuilder accumulates provinces and edges before freezing them into a Map.
type mapBuilder struct {
	m *Map
}

func newMapBuilder() *mapBuilder {
	return &mapBuilder{m: &Map{
		provinces: make(map[string]*Province),
		variants:  make(map[string][]string),
		shortOf:   make(map[string]string),
		adj:       make(map[string][]edge),
	}}
}

// prov registers a province. Split-coast provinces pass their coast tags;
// each tag yields an extra full coordinate CODE/TAG alongside the base.
func (b *mapBuilder) prov(code, name string, terrain TerrainKind, sc bool, home Power, coasts ...string) {
	b.m.provinces[code] = &Province{
		Code:         code,
		Name:         name,
		Terrain:      terrain,
		SupplyCenter: sc,
		Home:         home,
		CoastTags:    coasts,
	}
	fulls := []string{code}
	for _, c := range coasts {
		fulls = append(fulls, code+"/"+c)
	}
	for _, f := range fulls {
		b.m.shortOf[f] = code
	}
	b.m.variants[code] = fulls
}

func (b *mapBuilder) addEdge(from, to string, army, fleet bool) {
	b.m.adj[from] = append(b.m.adj[from], edge{to: to, army: army, fleet: fleet})
}

// landEdge links two base coordinates for armies, both directions.
func (b *mapBuilder) landEdge(a, c string) {
	b.addEdge(a, c, true, false)
	b.addEdge(c, a, true, false)
}

// seaEdge links two full coordinates for fleets, both directions. Arguments
// may carry coastal variants ("STP/NC").
func (b *mapBuilder) seaEdge(a, c string) {
	b.addEdge(a, c, false, true)
	b.addEdge(c, a, false, true)
}

// bothEdge links two base coordinates for armies and fleets, both directions.
func (b *mapBuilder) bothEdge(a, c string) {
	b.addEdge(a, c, true, true)
	b.addEdge(c, a, true, true)
}

// freeze finalizes the derived lists and returns the immutable Map.
func (b *mapBuilder) freeze() *Map {
	m := b.m
	for full := range m.shortOf {
		m.locs = append(m.locs, full)
	}
	sort.Strings(m.locs)
	for code := range m.variants {
		sort.Strings(m.variants[code])
	}
	for code, p := range m.provinces {
		if p.SupplyCenter {
			m.centers = append(m.centers, code)
		}
	}
	sort.Strings(m.centers)
	return m
}
