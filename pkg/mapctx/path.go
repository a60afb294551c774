package mapctx

import (
	"github.com/rs/zerolog"

	"github.com/efreeman/statecraft/pkg/board"
)

// ShortestPath runs a breadth-first search from startFull over the edge set
// for the given unit kind and returns the shortest short-code path, start and
// target inclusive, to the first province satisfying pred. The predicate is
// evaluated on dequeue, including on the start province itself, so a start
// that already satisfies it yields a single-element path.
//
// Equal-length paths tie-break by ascending short code: neighbors are
// expanded in the sorted order fixed at build time. Returns nil when the
// start is not on the graph (logged as a warning) or when no reachable
// province satisfies pred; unreachable is a valid outcome, not an error.
func ShortestPath(g *Graph, startFull string, kind board.UnitKind, pred func(code string) bool, logger zerolog.Logger) []string {
	start := board.ShortCode(startFull)
	si, ok := g.index[start]
	if !ok {
		logger.Warn().Str("loc", startFull).Str("code", start).Msg("Pathfinding start not in province graph")
		return nil
	}

	visited := make([]bool, len(g.codes))
	prev := make([]int32, len(g.codes))
	for i := range prev {
		prev[i] = -1
	}

	queue := []int32{int32(si)}
	visited[si] = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if pred(g.codes[cur]) {
			return buildPath(g, prev, cur)
		}

		for _, n := range g.neighborIdx(int(cur), kind) {
			if visited[n] {
				continue
			}
			visited[n] = true
			prev[n] = cur
			queue = append(queue, n)
		}
	}
	return nil
}

// buildPath walks the predecessor chain back to the start and reverses it.
func buildPath(g *Graph, prev []int32, end int32) []string {
	var rev []string
	for i := end; i >= 0; i = prev[i] {
		rev = append(rev, g.codes[i])
	}
	path := make([]string, len(rev))
	for i, code := range rev {
		path[len(rev)-1-i] = code
	}
	return path
}
