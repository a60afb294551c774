// contextdump prints the composed order context for a power on the initial
// board. Development tool for eyeballing prompt input without a game server;
// possible moves are synthesized from map adjacency, so they are not the
// server's adjudicated lists.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/efreeman/statecraft/internal/logger"
	"github.com/efreeman/statecraft/pkg/board"
	"github.com/efreeman/statecraft/pkg/mapctx"
)

func main() {
	powerFlag := flag.String("power", "FRANCE", "power to render the context for")
	flag.Parse()

	logger.Init()

	power := board.Power(strings.ToUpper(*powerFlag))
	found := false
	for _, p := range board.AllPowers() {
		if p == power {
			found = true
			break
		}
	}
	if !found {
		fmt.Fprintf(os.Stderr, "unknown power %q\n", *powerFlag)
		os.Exit(1)
	}

	data := board.StandardMap()
	graph := mapctx.SharedGraph(data, log.Logger)
	composer := mapctx.NewComposer(graph, data, log.Logger)

	state := board.NewInitialState()
	snap := mapctx.SnapshotFromState(state)

	fmt.Print(composer.Compose(snap, power, syntheticOrders(graph, state, power)))
}

// syntheticOrders builds hold and one-step move orders for a power's units
// from graph adjacency.
func syntheticOrders(g *mapctx.Graph, state *board.GameState, power board.Power) map[string][]string {
	orders := make(map[string][]string)
	for _, unit := range state.UnitsOf(power) {
		code := board.ShortCode(unit.Loc)
		list := []string{fmt.Sprintf("%s %s H", unit.Kind, unit.Loc)}
		for _, nb := range g.Neighbors(code, unit.Kind) {
			list = append(list, fmt.Sprintf("%s %s - %s", unit.Kind, unit.Loc, nb))
		}
		orders[unit.Loc] = list
	}
	return orders
}
