// Package mapctx turns raw board-adjacency rules into a traversable province
// graph, answers nearest-X queries over it with breadth-first search, and
// renders per-unit tactical context blocks for prompt assembly.
package mapctx

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/efreeman/statecraft/pkg/board"
)

// MapData is the slice of the rules engine the graph builder consumes: the
// full coordinate list, coastal variants, code normalization, terrain and
// supply-center metadata, and the move abutment predicate.
type MapData interface {
	Locations() []string
	Variants(short string) []string
	ShortCode(full string) string
	Terrain(short string) board.TerrainKind
	SupplyCenters() []string
	Abuts(kind board.UnitKind, fromFull, toFull string) bool
}

// Graph is the adjacency graph over short province codes, with separate edge
// sets for army and fleet movement. Provinces are held in a dense index arena
// (codes sorted ascending, neighbors stored as sorted index lists) so that
// traversal order is reproducible and string hashing stays at the boundary.
// A Graph is immutable after construction and safe for concurrent use.
type Graph struct {
	codes []string       // index -> short code, sorted ascending
	index map[string]int // short code -> index
	army  [][]int32      // per-province neighbor indexes, sorted ascending
	fleet [][]int32
}

// BuildGraph derives the province set from the map's full coordinate list and
// probes the abutment predicate across every coastal-variant pair to build
// the army and fleet edge sets. The result is a pure function of the map
// input. Cost is quadratic in province count; fine for boards with tens of
// provinces.
func BuildGraph(data MapData, logger zerolog.Logger) *Graph {
	codeSet := make(map[string]bool)
	for _, full := range data.Locations() {
		code := normalize(data, full)
		if code == "" {
			logger.Warn().Str("loc", full).Msg("Discarding malformed location token")
			continue
		}
		codeSet[code] = true
	}

	codes := make([]string, 0, len(codeSet))
	for code := range codeSet {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	g := &Graph{
		codes: codes,
		index: make(map[string]int, len(codes)),
		army:  make([][]int32, len(codes)),
		fleet: make([][]int32, len(codes)),
	}
	for i, code := range codes {
		g.index[code] = i
	}

	for si, src := range codes {
		srcVars := variantsOf(data, src)
		for di, dst := range codes {
			if si == di {
				continue // no self-loops
			}
			dstVars := variantsOf(data, dst)
			if anyAbuts(data, board.Army, srcVars, dstVars) {
				g.army[si] = append(g.army[si], int32(di))
			}
			if anyAbuts(data, board.Fleet, srcVars, dstVars) {
				g.fleet[si] = append(g.fleet[si], int32(di))
			}
		}
		sortDedup(&g.army[si])
		sortDedup(&g.fleet[si])
	}

	logger.Debug().Int("provinces", len(codes)).Msg("Province graph built")
	return g
}

// anyAbuts reports whether any pair of full-coordinate variants abuts for the
// given unit kind.
func anyAbuts(data MapData, kind board.UnitKind, from, to []string) bool {
	for _, f := range from {
		for _, t := range to {
			if data.Abuts(kind, f, t) {
				return true
			}
		}
	}
	return false
}

// variantsOf returns the coastal-variant coordinates of a short code, falling
// back to the code itself when the map lists none.
func variantsOf(data MapData, short string) []string {
	if v := data.Variants(short); len(v) > 0 {
		return v
	}
	return []string{short}
}

// normalize maps a full coordinate to its short code, preferring the map's
// own mapping and falling back to token normalization.
func normalize(data MapData, full string) string {
	if code := data.ShortCode(full); code != "" {
		return code
	}
	return board.ShortCode(full)
}

func sortDedup(s *[]int32) {
	v := *s
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })
	out := v[:0]
	for i, x := range v {
		if i == 0 || x != v[i-1] {
			out = append(out, x)
		}
	}
	*s = out
}

// Len returns the number of provinces in the graph.
func (g *Graph) Len() int { return len(g.codes) }

// Contains reports whether the short code is a node of the graph.
func (g *Graph) Contains(code string) bool {
	_, ok := g.index[code]
	return ok
}

// Codes returns every short code in the graph, sorted ascending. The caller
// must not mutate the returned slice.
func (g *Graph) Codes() []string { return g.codes }

// Neighbors returns the short codes reachable in one move from code by a unit
// of the given kind, sorted ascending. Nil for codes not in the graph.
func (g *Graph) Neighbors(code string, kind board.UnitKind) []string {
	i, ok := g.index[code]
	if !ok {
		return nil
	}
	idxs := g.army[i]
	if kind == board.Fleet {
		idxs = g.fleet[i]
	}
	out := make([]string, len(idxs))
	for j, n := range idxs {
		out[j] = g.codes[n]
	}
	return out
}

// neighborIdx returns the raw neighbor index list for BFS.
func (g *Graph) neighborIdx(i int, kind board.UnitKind) []int32 {
	if kind == board.Fleet {
		return g.fleet[i]
	}
	return g.army[i]
}

var (
	sharedMu     sync.Mutex
	sharedGraphs = make(map[MapData]*Graph)
)

// SharedGraph returns the cached graph for a map, building it on first
// access. Construction and publication happen under a mutex so concurrent
// first callers share a single build. The MapData value must be comparable
// (implementations hand out a stable pointer, like board.StandardMap).
func SharedGraph(data MapData, logger zerolog.Logger) *Graph {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if g, ok := sharedGraphs[data]; ok {
		return g
	}
	g := BuildGraph(data, logger)
	sharedGraphs[data] = g
	return g
}
