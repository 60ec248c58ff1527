package mapgen

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"thistoken/indexer/config"
	"thistoken/indexer/coord"
	"thistoken/indexer/model"
)

func compile(t *testing.T, seed int64, text string) *model.WorldDescriptor {
	t.Helper()
	c := NewCompiler(config.Teams(), rand.New(rand.NewSource(seed)))
	world, err := c.Compile("test", strings.NewReader(text))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return world
}

func TestEmptyInput(t *testing.T) {
	world := compile(t, 1, "")
	if world.Width != 0 || world.Height != 0 {
		t.Fatalf("empty map dimensions %dx%d", world.Width, world.Height)
	}
	if len(world.Cities) != 0 || len(world.Queue) != 0 {
		t.Fatalf("empty map produced cities=%d queue=%d", len(world.Cities), len(world.Queue))
	}
}

func TestDeterministicUnderFixedSeed(t *testing.T) {
	text := "---\n-3-\n---\n2-1"
	a := compile(t, 42, text)
	b := compile(t, 42, text)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different descriptors:\n%+v\n%+v", a, b)
	}
}

func TestLeveledCityScenario(t *testing.T) {
	// row 1 is odd, so x=1 is its only checkerboard-valid position;
	// the '3' there lands at city column (1-1)/2 = 0
	world := compile(t, 7, "---\n-3-\n---")
	if world.Height != 3 {
		t.Fatalf("height = %d", world.Height)
	}
	if len(world.Cities) != 1 {
		t.Fatalf("cities = %d", len(world.Cities))
	}
	city := world.Cities[0]
	if city != coord.FromXY(0, 1) {
		t.Fatalf("city at %s", city)
	}

	var starts, upgrades []model.PlacementAction
	for _, a := range world.Queue {
		if a.Coord != city {
			continue
		}
		switch a.Action {
		case model.ActionStart:
			starts = append(starts, a)
		case model.ActionUpgrade:
			upgrades = append(upgrades, a)
		}
	}
	if len(starts) < 1 || len(starts) > 3 {
		t.Fatalf("city starts = %d", len(starts))
	}
	if len(upgrades) != 2 {
		t.Fatalf("level 3 city should queue 2 upgrades, got %d", len(upgrades))
	}
	for _, u := range upgrades {
		if u.Player != starts[0].Player {
			t.Fatalf("upgrade for player %d, first start was %d", u.Player, starts[0].Player)
		}
	}

	// every '-' cell only generates starts
	for _, a := range world.Queue {
		if a.Coord == city {
			continue
		}
		if a.Action != model.ActionStart {
			t.Fatalf("path cell %s queued %s", a.Coord, a.Action)
		}
	}
}

func TestUpgradesImmediatelyFollowFirstStart(t *testing.T) {
	world := compile(t, 3, "5--\n---")

	// find the first start per city coordinate and check the 4
	// upgrades sit right behind it
	for _, c := range world.Cities {
		firstStart := -1
		for i, a := range world.Queue {
			if a.Coord == c && a.Action == model.ActionStart {
				firstStart = i
				break
			}
		}
		if firstStart < 0 {
			t.Fatalf("no start queued for city %s", c)
		}
		for i := 1; i <= 4; i++ {
			a := world.Queue[firstStart+i]
			if a.Action != model.ActionUpgrade || a.Coord != c || a.Player != world.Queue[firstStart].Player {
				t.Fatalf("queue[%d] = %+v, want upgrade for first start", firstStart+i, a)
			}
		}
	}
}

func TestColocationInvariant(t *testing.T) {
	world := compile(t, 99, "---------\n---------\n---------")
	teams := make(map[coord.Coord]string)
	for _, a := range world.Queue {
		if a.Action != model.ActionStart {
			continue
		}
		if prev, ok := teams[a.Coord]; ok && prev != a.Address {
			t.Fatalf("coordinate %s assigned teams %s and %s", a.Coord, prev, a.Address)
		}
		teams[a.Coord] = a.Address
	}
}

func TestPlayerSlotsConsecutive(t *testing.T) {
	world := compile(t, 5, "---\n-3-")
	next := firstPlayerSlot
	for _, a := range world.Queue {
		if a.Action != model.ActionStart {
			continue
		}
		if a.Player != next {
			t.Fatalf("start slot %d, want %d", a.Player, next)
		}
		next++
	}
}

func TestLevelOneCityQueuesNothing(t *testing.T) {
	world := compile(t, 11, "1")
	if len(world.Cities) != 1 {
		t.Fatalf("cities = %d", len(world.Cities))
	}
	if len(world.Queue) != 0 {
		t.Fatalf("unclaimed level-1 city queued %d actions", len(world.Queue))
	}
}

func TestCityColumns(t *testing.T) {
	// even rows shift city columns right by one
	world := compile(t, 13, "2")
	if world.Cities[0] != coord.FromXY(1, 0) {
		t.Fatalf("city on even row at %s, want 1:0", world.Cities[0])
	}
	world = compile(t, 13, "...\n.2.")
	if world.Cities[0] != coord.FromXY(0, 1) {
		t.Fatalf("city on odd row at %s, want 0:1", world.Cities[0])
	}
}

func TestWidthTracksMaxColumn(t *testing.T) {
	world := compile(t, 17, "-.-.-")
	// row 0 valid x: 0,2,4 -> columns 1,2,3
	if world.Width != 3 {
		t.Fatalf("width = %d", world.Width)
	}
}
