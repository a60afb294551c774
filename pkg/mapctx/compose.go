package mapctx

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/efreeman/statecraft/pkg/board"
)

// Default result caps for the nearest-X queries.
const (
	DefaultTopEnemies = 3
	DefaultTopCenters = 3
)

// SnapUnit is one unit descriptor inside a snapshot: kind plus full
// coordinate. Ownership comes from the snapshot key it is stored under.
type SnapUnit struct {
	Kind board.UnitKind
	Loc  string
}

// Descriptor renders the unit with its owner, e.g. "A PAR (FRANCE)".
func (u SnapUnit) Descriptor(power board.Power) string {
	return u.Kind.String() + " " + u.Loc + " (" + string(power) + ")"
}

// Snapshot is a read-only capture of unit positions and supply-center
// ownership per power at one instant. The composer never mutates it.
type Snapshot struct {
	UnitsByPower   map[board.Power][]SnapUnit
	CentersByPower map[board.Power][]string
}

// SnapshotFromState converts a board game state into the per-power snapshot
// shape the composer consumes.
func SnapshotFromState(gs *board.GameState) *Snapshot {
	s := &Snapshot{
		UnitsByPower:   make(map[board.Power][]SnapUnit),
		CentersByPower: make(map[board.Power][]string),
	}
	for _, u := range gs.Units {
		s.UnitsByPower[u.Power] = append(s.UnitsByPower[u.Power], SnapUnit{Kind: u.Kind, Loc: u.Loc})
	}
	for code, owner := range gs.Centers {
		if owner != board.Neutral {
			s.CentersByPower[owner] = append(s.CentersByPower[owner], code)
		}
	}
	for p := range s.CentersByPower {
		sort.Strings(s.CentersByPower[p])
	}
	return s
}

// powers returns every power present in the snapshot, sorted ascending.
func (s *Snapshot) powers() []board.Power {
	seen := make(map[board.Power]bool)
	for p := range s.UnitsByPower {
		seen[p] = true
	}
	for p := range s.CentersByPower {
		seen[p] = true
	}
	out := make([]board.Power, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// unitAt finds the unit at an exact full coordinate, scanning powers in
// sorted order. Returns false if no unit occupies the coordinate.
func (s *Snapshot) unitAt(loc string) (board.Power, SnapUnit, bool) {
	for _, p := range s.powers() {
		for _, u := range s.UnitsByPower[p] {
			if u.Loc == loc {
				return p, u, true
			}
		}
	}
	return board.Neutral, SnapUnit{}, false
}

// centerOwner returns the power owning a supply-center code, or false if it
// is unowned.
func (s *Snapshot) centerOwner(code string) (board.Power, bool) {
	for _, p := range s.powers() {
		for _, c := range s.CentersByPower[p] {
			if c == code {
				return p, true
			}
		}
	}
	return board.Neutral, false
}

// Composer renders per-unit tactical context blocks from a graph, the map
// metadata, and a board snapshot. It is stateless apart from configuration
// and safe for concurrent use.
type Composer struct {
	graph      *Graph
	data       MapData
	log        zerolog.Logger
	topEnemies int
	topCenters int
	isCenter   map[string]bool
}

// NewComposer builds a composer over a graph and its map. The logger is
// injected so skip/omission warnings stay attributable to the caller.
func NewComposer(g *Graph, data MapData, logger zerolog.Logger) *Composer {
	isCenter := make(map[string]bool)
	for _, sc := range data.SupplyCenters() {
		isCenter[sc] = true
	}
	return &Composer{
		graph:      g,
		data:       data,
		log:        logger,
		topEnemies: DefaultTopEnemies,
		topCenters: DefaultTopCenters,
		isCenter:   isCenter,
	}
}

// reached pairs a result label with the BFS path that found it.
type reached struct {
	label string
	path  []string
}

// Compose renders one <UnitContext> block per supplied location and wraps
// them in <PossibleOrdersContext>. Locations with no unit in the snapshot are
// skipped with a warning; every other failure to find a result renders an
// explicit none line. The output is deterministic for identical input:
// locations are emitted in ascending order and every inner list carries a
// fixed sort.
func (c *Composer) Compose(snap *Snapshot, power board.Power, ordersByLoc map[string][]string) string {
	locs := make([]string, 0, len(ordersByLoc))
	for loc := range ordersByLoc {
		locs = append(locs, loc)
	}
	sort.Strings(locs)

	var b strings.Builder
	b.WriteString("<PossibleOrdersContext>\n")
	for _, loc := range locs {
		c.writeUnitContext(&b, snap, power, loc, ordersByLoc[loc])
	}
	b.WriteString("</PossibleOrdersContext>\n")
	return b.String()
}

func (c *Composer) writeUnitContext(b *strings.Builder, snap *Snapshot, power board.Power, loc string, orders []string) {
	owner, unit, ok := snap.unitAt(loc)
	if !ok {
		c.log.Warn().Str("loc", loc).Str("power", string(power)).Msg("No unit at ordered location, skipping")
		return
	}

	code := c.normalize(loc)
	fmt.Fprintf(b, "  <UnitContext loc=%q>\n", loc)

	// UnitInformation
	b.WriteString("    <UnitInformation>\n")
	fmt.Fprintf(b, "      Unit: %s\n", unit.Descriptor(owner))
	fmt.Fprintf(b, "      Province: %s, terrain %s\n", code, c.data.Terrain(code))
	b.WriteString("      " + c.centerLine(snap, code) + "\n")
	if desc, path, found := c.nearestFriendly(snap, owner, unit); found {
		fmt.Fprintf(b, "      Nearest friendly unit: %s, %s\n", desc, describePath(path))
	} else {
		b.WriteString("      No friendly unit reachable.\n")
	}
	b.WriteString("    </UnitInformation>\n")

	// PossibleMoves
	b.WriteString("    <PossibleMoves>\n")
	if len(orders) == 0 {
		b.WriteString("      None found.\n")
	}
	for _, o := range orders {
		b.WriteString("      " + o + "\n")
	}
	b.WriteString("    </PossibleMoves>\n")

	// NearestEnemyUnits
	b.WriteString("    <NearestEnemyUnits>\n")
	enemies := c.nearestEnemies(snap, owner, unit)
	if len(enemies) == 0 {
		b.WriteString("      None found.\n")
	}
	for _, e := range enemies {
		fmt.Fprintf(b, "      %s, %s\n", e.label, describePath(e.path))
	}
	b.WriteString("    </NearestEnemyUnits>\n")

	// NearestUncontrolledSupplyCenters
	b.WriteString("    <NearestUncontrolledSupplyCenters>\n")
	centers := c.nearestCenters(snap, owner, unit)
	if len(centers) == 0 {
		b.WriteString("      None found.\n")
	}
	for _, sc := range centers {
		fmt.Fprintf(b, "      %s, %s\n", sc.label, describePath(sc.path))
	}
	b.WriteString("    </NearestUncontrolledSupplyCenters>\n")

	// AdjacentTerritories
	b.WriteString("    <AdjacentTerritories>\n")
	c.writeAdjacent(b, snap, code, unit.Kind)
	b.WriteString("    </AdjacentTerritories>\n")

	b.WriteString("  </UnitContext>\n")
}

// centerLine renders supply-center status for a province.
func (c *Composer) centerLine(snap *Snapshot, code string) string {
	if !c.isCenter[code] {
		return "Supply center: no"
	}
	if owner, ok := snap.centerOwner(code); ok {
		return "Supply center: yes, owned by " + string(owner)
	}
	return "Supply center: yes, unowned"
}

// nearestFriendly finds the closest other unit of the same power by BFS over
// the edge set of the queried unit's kind.
func (c *Composer) nearestFriendly(snap *Snapshot, power board.Power, unit SnapUnit) (string, []string, bool) {
	start := c.normalize(unit.Loc)
	occupied := make(map[string]string) // code -> best descriptor
	for _, u := range snap.UnitsByPower[power] {
		code := c.normalize(u.Loc)
		if code == start {
			continue
		}
		desc := u.Descriptor(power)
		if prev, ok := occupied[code]; !ok || desc < prev {
			occupied[code] = desc
		}
	}
	if len(occupied) == 0 {
		return "", nil, false
	}
	path := ShortestPath(c.graph, unit.Loc, unit.Kind, func(code string) bool {
		_, ok := occupied[code]
		return ok
	}, c.log)
	if path == nil {
		return "", nil, false
	}
	return occupied[path[len(path)-1]], path, true
}

// nearestEnemies runs one BFS per enemy-occupied province and keeps the top N
// reachable results. Ties at equal distance order by unit descriptor.
func (c *Composer) nearestEnemies(snap *Snapshot, power board.Power, unit SnapUnit) []reached {
	var results []reached
	for _, p := range snap.powers() {
		if p == power {
			continue
		}
		for _, enemy := range snap.UnitsByPower[p] {
			target := c.normalize(enemy.Loc)
			path := ShortestPath(c.graph, unit.Loc, unit.Kind, func(code string) bool {
				return code == target
			}, c.log)
			if path == nil {
				continue
			}
			results = append(results, reached{label: enemy.Descriptor(p), path: path})
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if len(results[i].path) != len(results[j].path) {
			return len(results[i].path) < len(results[j].path)
		}
		return results[i].label < results[j].label
	})
	if len(results) > c.topEnemies {
		results = results[:c.topEnemies]
	}
	return results
}

// nearestCenters runs one BFS per supply center not owned by the power and
// keeps the top N reachable results, ordered by (distance, label) so that
// equidistant centers render in ascending label order.
func (c *Composer) nearestCenters(snap *Snapshot, power board.Power, unit SnapUnit) []reached {
	var results []reached
	for _, sc := range c.data.SupplyCenters() {
		owner, owned := snap.centerOwner(sc)
		if owned && owner == power {
			continue
		}
		label := sc + " (" + centerOwnerLabel(owner, owned) + ")"
		path := ShortestPath(c.graph, unit.Loc, unit.Kind, func(code string) bool {
			return code == sc
		}, c.log)
		if path == nil {
			continue
		}
		results = append(results, reached{label: label, path: path})
	}
	sort.Slice(results, func(i, j int) bool {
		if len(results[i].path) != len(results[j].path) {
			return len(results[i].path) < len(results[j].path)
		}
		return results[i].label < results[j].label
	})
	if len(results) > c.topCenters {
		results = results[:c.topCenters]
	}
	return results
}

func centerOwnerLabel(owner board.Power, owned bool) string {
	if !owned {
		return "UNOWNED"
	}
	return string(owner)
}

// writeAdjacent renders one line per one-hop neighbor of the unit's province,
// with terrain, center ownership, any occupant, and the units that could move
// into that neighbor from its own neighbors.
func (c *Composer) writeAdjacent(b *strings.Builder, snap *Snapshot, origin string, kind board.UnitKind) {
	neighbors := c.graph.Neighbors(origin, kind)
	if len(neighbors) == 0 {
		b.WriteString("      None relevant.\n")
		return
	}
	for _, nb := range neighbors {
		line := nb + ": terrain " + c.data.Terrain(nb).String()
		if c.isCenter[nb] {
			if owner, ok := snap.centerOwner(nb); ok {
				line += ", supply center owned by " + string(owner)
			} else {
				line += ", unowned supply center"
			}
		}
		if p, u, ok := c.unitAtCode(snap, nb); ok {
			line += ", occupied by " + u.Descriptor(p)
		}
		b.WriteString("      " + line + "\n")

		for _, desc := range c.movers(snap, origin, nb) {
			b.WriteString("        could move in: " + desc + "\n")
		}
	}
}

// unitAtCode finds a unit whose normalized location matches the short code,
// scanning powers in sorted order.
func (c *Composer) unitAtCode(snap *Snapshot, code string) (board.Power, SnapUnit, bool) {
	for _, p := range snap.powers() {
		for _, u := range snap.UnitsByPower[p] {
			if c.normalize(u.Loc) == code {
				return p, u, true
			}
		}
	}
	return board.Neutral, SnapUnit{}, false
}

// movers collects units one hop out from a neighbor that could move into it,
// excluding the origin province and the neighbor itself. Results are
// deduplicated and sorted ascending.
func (c *Composer) movers(snap *Snapshot, origin, nb string) []string {
	candidates := make(map[string]bool)
	for _, kind := range []board.UnitKind{board.Army, board.Fleet} {
		for _, nn := range c.graph.Neighbors(nb, kind) {
			if nn != origin && nn != nb {
				candidates[nn] = true
			}
		}
	}

	seen := make(map[string]bool)
	var descs []string
	for _, p := range snap.powers() {
		for _, u := range snap.UnitsByPower[p] {
			code := c.normalize(u.Loc)
			if !candidates[code] {
				continue
			}
			if !containsCode(c.graph.Neighbors(code, u.Kind), nb) {
				continue
			}
			desc := u.Descriptor(p)
			if !seen[desc] {
				seen[desc] = true
				descs = append(descs, desc)
			}
		}
	}
	sort.Strings(descs)
	return descs
}

func containsCode(codes []string, want string) bool {
	for _, c := range codes {
		if c == want {
			return true
		}
	}
	return false
}

func (c *Composer) normalize(full string) string {
	return normalize(c.data, full)
}

// describePath renders a BFS path as hop count plus the route, e.g.
// "2 moves away via PAR -> BUR -> MUN".
func describePath(path []string) string {
	hops := len(path) - 1
	noun := "moves"
	if hops == 1 {
		noun = "move"
	}
	if hops == 0 {
		return "0 moves away"
	}
	return fmt.Sprintf("%d %s away via %s", hops, noun, strings.Join(path, " -> "))
}
