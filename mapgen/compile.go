// Package mapgen compiles human-authored ASCII maps into world
// descriptors: dimensions, the city list and the placement queue that
// seeds the contract with players.
package mapgen

import (
	"bufio"
	"io"
	"math/rand"

	"thistoken/indexer/coord"
	"thistoken/indexer/model"
)

// firstPlayerSlot skips the accounts reserved for deploy/test drivers.
const firstPlayerSlot = 3

// Compiler turns map text into a WorldDescriptor. Team memoization is
// scoped to a single Compile call, so one process can compile several
// maps without leaking assignments across them.
type Compiler struct {
	teams []string
	rng   *rand.Rand
}

// NewCompiler builds a compiler picking teams from the given roster with
// rng. A fixed-seed rng makes compilation fully deterministic.
func NewCompiler(teams []string, rng *rand.Rand) *Compiler {
	return &Compiler{teams: teams, rng: rng}
}

// Compile consumes one line per map row and produces the descriptor.
// Characters only matter at checkerboard-valid positions (y%2 == x%2):
// '-' is an unclaimed path cell, digits 1-8 declare a city of that
// level. Everything else is padding. Empty input yields an empty
// descriptor.
func (c *Compiler) Compile(name string, r io.Reader) (*model.WorldDescriptor, error) {
	world := &model.WorldDescriptor{
		Name:   name,
		Queue:  []model.PlacementAction{},
		Cities: []coord.Coord{},
	}
	memo := make(map[coord.Coord]string)
	player := firstPlayerSlot

	scanner := bufio.NewScanner(r)
	y := 0
	for scanner.Scan() {
		line := scanner.Text()
		for x := 0; x < len(line); x++ {
			if y%2 != x%2 {
				continue
			}
			var cityX int
			if y%2 == 1 {
				cityX = (x - 1) / 2
			} else {
				cityX = x/2 + 1
			}
			if world.Width < cityX {
				world.Width = cityX
			}
			cell := coord.FromXY(cityX, y)
			ch := line[x]
			// occupant count is rolled for every valid cell,
			// claimed or not, to keep the draw sequence stable
			num := 1 + c.rng.Intn(3)
			switch {
			case ch == '-':
				for n := 0; n < num; n++ {
					world.Queue = append(world.Queue, model.PlacementAction{
						Action:  model.ActionStart,
						Address: c.teamFor(memo, cell),
						Coord:   cell,
						Player:  player,
					})
					player++
				}
			case ch >= '1' && ch <= '8':
				level := int(ch - '0')
				world.Cities = append(world.Cities, cell)
				if level > 1 {
					// pre-claimed city: the first placed
					// player raises its defence to the
					// declared level
					for n := 0; n < num; n++ {
						world.Queue = append(world.Queue, model.PlacementAction{
							Action:  model.ActionStart,
							Address: c.teamFor(memo, cell),
							Coord:   cell,
							Player:  player,
						})
						if n == 0 {
							for i := 2; i <= level; i++ {
								world.Queue = append(world.Queue, model.PlacementAction{
									Action: model.ActionUpgrade,
									Coord:  cell,
									Player: player,
								})
							}
						}
						player++
					}
				}
			}
		}
		y++
		world.Height++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return world, nil
}

// teamFor picks a random team for a coordinate once; every later action
// at the same coordinate reuses it, so co-located players share a team.
func (c *Compiler) teamFor(memo map[coord.Coord]string, cell coord.Coord) string {
	if team, ok := memo[cell]; ok {
		return team
	}
	team := c.teams[c.rng.Intn(len(c.teams))]
	memo[cell] = team
	return team
}
