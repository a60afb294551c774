package mapctx

import (
	"strings"
	"testing"

	"github.com/efreeman/statecraft/pkg/board"
)

// tinyWorld is a seven-province synthetic board: a chain AAA-BBB-CCC-DDD with
// a branch BBB-EEE-FFF, two unowned centers (CCC, EEE) equidistant from AAA,
// and an isolated province III.
func tinyWorld() *stubMap {
	return &stubMap{
		locs:    []string{"AAA", "BBB", "CCC", "DDD", "EEE", "FFF", "III"},
		centers: []string{"CCC", "EEE"},
		land: map[string][]string{
			"AAA": {"BBB"},
			"BBB": {"AAA", "CCC", "EEE"},
			"CCC": {"BBB", "DDD"},
			"DDD": {"CCC"},
			"EEE": {"BBB", "FFF"},
			"FFF": {"EEE"},
		},
	}
}

func tinySnapshot() *Snapshot {
	return &Snapshot{
		UnitsByPower: map[board.Power][]SnapUnit{
			board.France:  {{Kind: board.Army, Loc: "AAA"}, {Kind: board.Army, Loc: "DDD"}, {Kind: board.Army, Loc: "III"}},
			board.Germany: {{Kind: board.Army, Loc: "FFF"}},
		},
		CentersByPower: map[board.Power][]string{},
	}
}

func tinyComposer(t *testing.T) *Composer {
	t.Helper()
	m := tinyWorld()
	return NewComposer(BuildGraph(m, nop()), m, nop())
}

func TestComposeFullBlock(t *testing.T) {
	c := tinyComposer(t)
	got := c.Compose(tinySnapshot(), board.France, map[string][]string{
		"AAA": {"A AAA H", "A AAA - BBB"},
	})

	want := `<PossibleOrdersContext>
  <UnitContext loc="AAA">
    <UnitInformation>
      Unit: A AAA (FRANCE)
      Province: AAA, terrain LAND
      Supply center: no
      Nearest friendly unit: A DDD (FRANCE), 3 moves away via AAA -> BBB -> CCC -> DDD
    </UnitInformation>
    <PossibleMoves>
      A AAA H
      A AAA - BBB
    </PossibleMoves>
    <NearestEnemyUnits>
      A FFF (GERMANY), 3 moves away via AAA -> BBB -> EEE -> FFF
    </NearestEnemyUnits>
    <NearestUncontrolledSupplyCenters>
      CCC (UNOWNED), 2 moves away via AAA -> BBB -> CCC
      EEE (UNOWNED), 2 moves away via AAA -> BBB -> EEE
    </NearestUncontrolledSupplyCenters>
    <AdjacentTerritories>
      BBB: terrain LAND
    </AdjacentTerritories>
  </UnitContext>
</PossibleOrdersContext>
`
	if got != want {
		t.Errorf("compose output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestComposeSkipsLocationWithoutUnit(t *testing.T) {
	c := tinyComposer(t)
	got := c.Compose(tinySnapshot(), board.France, map[string][]string{
		"AAA": {"A AAA H"},
		"BBB": {"A BBB H"}, // stale input: nobody is at BBB
	})
	if n := strings.Count(got, "<UnitContext"); n != 1 {
		t.Errorf("rendered %d unit blocks, want 1", n)
	}
	if !strings.Contains(got, `<UnitContext loc="AAA">`) {
		t.Error("AAA block missing; skipping BBB must not affect other locations")
	}
	if strings.Contains(got, `loc="BBB"`) {
		t.Error("BBB block rendered despite missing unit")
	}
}

func TestComposeEquidistantCentersSortByLabel(t *testing.T) {
	c := tinyComposer(t)
	got := c.Compose(tinySnapshot(), board.France, map[string][]string{
		"AAA": {"A AAA H"},
	})
	ci := strings.Index(got, "CCC (UNOWNED)")
	ei := strings.Index(got, "EEE (UNOWNED)")
	if ci < 0 || ei < 0 {
		t.Fatalf("expected both centers in output:\n%s", got)
	}
	if ci > ei {
		t.Error("equidistant centers must render in ascending label order")
	}
}

func TestComposeIsolatedProvince(t *testing.T) {
	c := tinyComposer(t)
	got := c.Compose(tinySnapshot(), board.France, map[string][]string{
		"III": {"A III H"},
	})
	for _, want := range []string{
		"No friendly unit reachable.",
		"None found.",
		"None relevant.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestComposeEnemyTieBreakByDescriptor(t *testing.T) {
	m := tinyWorld()
	g := BuildGraph(m, nop())
	c := NewComposer(g, m, nop())
	// Two enemies equidistant from AAA: CCC and EEE are both 2 hops out.
	snap := &Snapshot{
		UnitsByPower: map[board.Power][]SnapUnit{
			board.France:  {{Kind: board.Army, Loc: "AAA"}},
			board.Germany: {{Kind: board.Army, Loc: "EEE"}},
			board.Russia:  {{Kind: board.Army, Loc: "CCC"}},
		},
		CentersByPower: map[board.Power][]string{},
	}
	got := c.Compose(snap, board.France, map[string][]string{"AAA": {"A AAA H"}})
	ri := strings.Index(got, "A CCC (RUSSIA)")
	gi := strings.Index(got, "A EEE (GERMANY)")
	if ri < 0 || gi < 0 {
		t.Fatalf("expected both enemies in output:\n%s", got)
	}
	if ri > gi {
		t.Error("equal-distance enemies must order by ascending unit descriptor")
	}
}

func TestComposeEnemyTruncation(t *testing.T) {
	m := tinyWorld()
	g := BuildGraph(m, nop())
	c := NewComposer(g, m, nop())
	snap := &Snapshot{
		UnitsByPower: map[board.Power][]SnapUnit{
			board.France:  {{Kind: board.Army, Loc: "AAA"}},
			board.Germany: {{Kind: board.Army, Loc: "BBB"}, {Kind: board.Army, Loc: "CCC"}, {Kind: board.Army, Loc: "EEE"}},
			board.Russia:  {{Kind: board.Army, Loc: "DDD"}, {Kind: board.Army, Loc: "FFF"}},
		},
		CentersByPower: map[board.Power][]string{},
	}
	got := c.Compose(snap, board.France, map[string][]string{"AAA": {"A AAA H"}})
	block := between(got, "<NearestEnemyUnits>", "</NearestEnemyUnits>")
	lines := 0
	for _, l := range strings.Split(block, "\n") {
		if strings.TrimSpace(l) != "" {
			lines++
		}
	}
	if lines != DefaultTopEnemies {
		t.Errorf("rendered %d enemy lines, want %d:\n%s", lines, DefaultTopEnemies, block)
	}
	// The 1-hop enemy must be first.
	if !strings.HasPrefix(strings.TrimSpace(block), "A BBB (GERMANY)") {
		t.Errorf("closest enemy not ranked first:\n%s", block)
	}
}

func TestComposeAdjacentDetail(t *testing.T) {
	m := tinyWorld()
	g := BuildGraph(m, nop())
	c := NewComposer(g, m, nop())
	// Germany holds center EEE and occupies it; Russia sits one further out
	// at FFF and could move into EEE.
	snap := &Snapshot{
		UnitsByPower: map[board.Power][]SnapUnit{
			board.France:  {{Kind: board.Army, Loc: "BBB"}},
			board.Germany: {{Kind: board.Army, Loc: "EEE"}},
			board.Russia:  {{Kind: board.Army, Loc: "FFF"}},
		},
		CentersByPower: map[board.Power][]string{
			board.Germany: {"EEE"},
		},
	}
	got := c.Compose(snap, board.France, map[string][]string{"BBB": {"A BBB H"}})
	if !strings.Contains(got, "EEE: terrain LAND, supply center owned by GERMANY, occupied by A EEE (GERMANY)") {
		t.Errorf("neighbor detail line missing:\n%s", got)
	}
	if !strings.Contains(got, "could move in: A FFF (RUSSIA)") {
		t.Errorf("reinforcement line missing:\n%s", got)
	}
	// The origin itself never appears as a potential mover into EEE.
	if strings.Contains(got, "could move in: A BBB (FRANCE)") {
		t.Errorf("origin leaked into reinforcement list:\n%s", got)
	}
}

func TestComposeStandardMapSmoke(t *testing.T) {
	m := board.StandardMap()
	g := SharedGraph(m, nop())
	c := NewComposer(g, m, nop())
	snap := SnapshotFromState(board.NewInitialState())

	got := c.Compose(snap, board.France, map[string][]string{
		"PAR": {"A PAR H", "A PAR - BUR", "A PAR - PIC"},
	})

	for _, want := range []string{
		`<UnitContext loc="PAR">`,
		"Unit: A PAR (FRANCE)",
		"Province: PAR, terrain LAND",
		"Supply center: yes, owned by FRANCE",
		"Nearest friendly unit: F BRE (FRANCE), 1 move away via PAR -> BRE",
		"A MUN (GERMANY), 2 moves away via PAR -> BUR -> MUN",
		"</PossibleOrdersContext>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestComposeDeterministic(t *testing.T) {
	c := tinyComposer(t)
	orders := map[string][]string{"AAA": {"A AAA H"}, "DDD": {"A DDD H"}}
	a := c.Compose(tinySnapshot(), board.France, orders)
	b := c.Compose(tinySnapshot(), board.France, orders)
	if a != b {
		t.Error("compose output differs across identical calls")
	}
}

func between(s, open, close string) string {
	i := strings.Index(s, open)
	j := strings.Index(s, close)
	if i < 0 || j < 0 || j < i {
		return ""
	}
	return s[i+len(open) : j]
}
